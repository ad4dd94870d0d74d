package conformance

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/tovalang/tova/pkg/bytecode"
)

// BuildChunk assembles a test case's program into a chunk.
func BuildChunk(tc *TestCase) (*bytecode.Chunk, error) {
	chunk := bytecode.NewChunk()
	for i, instr := range tc.Program {
		line := instr.Line
		if line == 0 {
			line = 1
		}
		if instr.Op == "CONSTANT" {
			if err := chunk.WriteConstant(operandValue(&instr), line); err != nil {
				return nil, fmt.Errorf("instruction %d: %w", i, err)
			}
			continue
		}
		op, ok := bytecode.OpcodeByName(instr.Op)
		if !ok {
			return nil, fmt.Errorf("instruction %d: unknown mnemonic %q", i, instr.Op)
		}
		chunk.WriteOp(op, line)
	}
	return chunk, nil
}

func operandValue(instr *Instruction) bytecode.Value {
	switch {
	case instr.Int != nil:
		return bytecode.IntValue(*instr.Int)
	case instr.Float != nil:
		return bytecode.FloatValue(*instr.Float)
	case instr.Bool != nil:
		return bytecode.BoolValue(*instr.Bool)
	case instr.Str != nil:
		return bytecode.ObjectValue(bytecode.StringObjectFrom(*instr.Str))
	default:
		return bytecode.NullValue()
	}
}

// Run executes a test case on a fresh VM and checks its expectations.
// A non-nil return describes the first divergence.
func Run(tc *TestCase) error {
	chunk, err := BuildChunk(tc)
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	vm := bytecode.NewVM()
	defer vm.Free()
	var out bytes.Buffer
	vm.SetOutput(&out)

	runErr := vm.Interpret(chunk)

	if tc.Error != "" {
		var rerr *bytecode.RuntimeError
		if !errors.As(runErr, &rerr) {
			return fmt.Errorf("expected runtime error %q, got %v", tc.Error, runErr)
		}
		if rerr.Message != tc.Error {
			return fmt.Errorf("error message %q, want %q", rerr.Message, tc.Error)
		}
		if tc.ErrorLine != 0 && rerr.Line != tc.ErrorLine {
			return fmt.Errorf("error at line %d, want line %d", rerr.Line, tc.ErrorLine)
		}
		if out.Len() != 0 {
			return fmt.Errorf("failed program printed %q", out.String())
		}
		return nil
	}

	if runErr != nil {
		return fmt.Errorf("unexpected error: %w", runErr)
	}
	got := strings.TrimSuffix(out.String(), "\n")
	if got != *tc.Output {
		return fmt.Errorf("printed %q, want %q", got, *tc.Output)
	}
	if vm.StackDepth() != 0 {
		return fmt.Errorf("stack depth %d after run, want 0", vm.StackDepth())
	}
	return nil
}
