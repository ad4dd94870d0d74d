package bytecode

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tliron/commonlog"
)

// DefaultStackCapacity is the default operand stack depth. It is a
// checked limit, not a silent-overflow constant; callers needing
// deeper expression nesting configure it through NewVMWithCapacity.
const DefaultStackCapacity = 255

// Compiler is the boundary to the external source-to-bytecode compiler.
// A Compiler populates the chunk it is handed; on failure it returns a
// *CompileError which the engine forwards unmodified without running.
type Compiler interface {
	Compile(source []byte, chunk *Chunk) error
}

// CompileError is produced by the external compiler and merely
// forwarded by the engine.
type CompileError struct {
	Line    int
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("[line %d] compile error: %s", e.Line, e.Message)
}

// RuntimeError is a dynamic type or precondition violation detected
// during instruction execution. It carries the source line of the
// offending instruction, looked up from the chunk's line table.
type RuntimeError struct {
	Line    int
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d] in script: %s", e.Line, e.Message)
}

// VM executes bytecode chunks.
//
// A VM owns its operand stack and its heap-object registry for the
// whole instance lifetime; chunks are borrowed read-only per run. The
// VM is single-threaded and non-reentrant: nothing in it suspends or
// blocks, and concurrent use from multiple goroutines requires
// external synchronization.
type VM struct {
	// Current execution state
	chunk *Chunk  // Borrowed chunk for the active run
	ip    int     // Instruction pointer
	stack []Value // Operand stack, fixed capacity
	sp    int     // Stack pointer: one past the top element

	// Owned chunk slot, reused across InterpretSource calls.
	ownChunk *Chunk

	// Heap-object registry: every allocation the VM has made, linked
	// most-recently-allocated first, freed in one pass by Free.
	objects     *Object
	objectCount int

	// Diagnostics
	out        io.Writer        // Printed result values
	log        commonlog.Logger // Trace and runtime-error channel
	trace      bool             // Per-instruction disassembly trace
	traceStack bool             // Per-instruction stack contents trace

	// Optional preemption hook, checked once per dispatch iteration.
	interrupt func() error

	lastPrinted Value
	hasPrinted  bool
}

// NewVM creates a VM with the default stack capacity.
func NewVM() *VM {
	return NewVMWithCapacity(DefaultStackCapacity)
}

// NewVMWithCapacity creates a VM whose operand stack holds up to
// capacity values. Exceeding the capacity at runtime is a diagnosed
// stack overflow error, never silent corruption.
func NewVMWithCapacity(capacity int) *VM {
	if capacity <= 0 {
		capacity = DefaultStackCapacity
	}
	return &VM{
		stack:    make([]Value, capacity),
		ownChunk: NewChunk(),
		out:      os.Stdout,
		log:      commonlog.GetLogger("tova.vm"),
	}
}

// SetOutput redirects where the engine prints returned values.
func (vm *VM) SetOutput(w io.Writer) {
	vm.out = w
}

// SetTrace enables per-instruction disassembly on the trace channel.
// Tracing has no effect on program semantics.
func (vm *VM) SetTrace(on bool) {
	vm.trace = on
}

// SetTraceStack enables per-instruction stack dumps on the trace channel.
func (vm *VM) SetTraceStack(on bool) {
	vm.traceStack = on
}

// SetInterruptCheck installs a hook called once per dispatch
// iteration. A non-nil return aborts the run with that error. This is
// the extension point for caller-injected preemption; the engine
// itself never times out or cancels.
func (vm *VM) SetInterruptCheck(f func() error) {
	vm.interrupt = f
}

// StackDepth returns the current operand stack depth.
func (vm *VM) StackDepth() int {
	return vm.sp
}

// LastPrinted returns the value printed by the most recent successful
// run, for embedders and test harnesses.
func (vm *VM) LastPrinted() (Value, bool) {
	return vm.lastPrinted, vm.hasPrinted
}

// InterpretSource compiles source into the engine's owned chunk slot
// and runs it. The chunk buffer is reused across calls; it is reset
// before compilation. Compile errors are forwarded unmodified and
// nothing is executed.
func (vm *VM) InterpretSource(c Compiler, source []byte) error {
	vm.ownChunk.Reset()
	if err := c.Compile(source, vm.ownChunk); err != nil {
		return err
	}
	return vm.Interpret(vm.ownChunk)
}

// Interpret runs a populated chunk to completion or to the first
// runtime error. The chunk is validated once up front so the dispatch
// loop can trust operand bytes and constant indices.
func (vm *VM) Interpret(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("interpret: nil chunk")
	}
	if err := chunk.Validate(); err != nil {
		return fmt.Errorf("interpret: malformed chunk: %w", err)
	}
	vm.chunk = chunk
	vm.ip = 0
	vm.sp = 0
	vm.hasPrinted = false
	return vm.run()
}

// run is the fetch-decode-execute loop. It terminates on OpReturn
// (success) or on the first runtime error (failure). On any runtime
// error the stack is reset to empty so the instance stays reusable.
func (vm *VM) run() error {
	for {
		if vm.interrupt != nil {
			if err := vm.interrupt(); err != nil {
				vm.sp = 0
				return err
			}
		}

		if vm.ip >= len(vm.chunk.Code) {
			return vm.runtimeErr("unexpected end of bytecode (missing return)")
		}

		if vm.trace || vm.traceStack {
			vm.traceInstruction()
		}

		op := Opcode(vm.chunk.Code[vm.ip])
		vm.ip++

		switch op {
		case OpConstant:
			idx := vm.chunk.Code[vm.ip]
			vm.ip++
			if err := vm.push(vm.chunk.Constants[idx]); err != nil {
				return err
			}

		case OpNull:
			if err := vm.push(NullValue()); err != nil {
				return err
			}

		case OpTrue:
			if err := vm.push(BoolValue(true)); err != nil {
				return err
			}

		case OpFalse:
			if err := vm.push(BoolValue(false)); err != nil {
				return err
			}

		case OpAdd, OpSubtract, OpMultiply, OpDivide, OpGreater, OpLess:
			if err := vm.binaryOp(op); err != nil {
				return err
			}

		case OpNegate:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			switch v.Kind {
			case KindInt:
				_ = vm.push(IntValue(-v.I))
			case KindFloat:
				_ = vm.push(FloatValue(-v.F))
			default:
				return vm.runtimeErr("operand must be a number")
			}

		case OpNot:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			if !v.IsBool() {
				return vm.runtimeErr("operator '!' can only be used with bool operand")
			}
			_ = vm.push(BoolValue(!v.B))

		case OpEqual:
			right, err := vm.pop()
			if err != nil {
				return err
			}
			left, err := vm.pop()
			if err != nil {
				return err
			}
			_ = vm.push(BoolValue(left.Equals(right)))

		case OpReturn:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			vm.lastPrinted = v
			vm.hasPrinted = true
			fmt.Fprintln(vm.out, v.String())
			return nil

		default:
			return vm.runtimeErr("unknown opcode 0x%02x", byte(op))
		}
	}
}

// binaryOp dispatches the shared two-operand path: arithmetic,
// ordering comparison, and string concatenation. The right operand is
// popped first (it was pushed last). A type mismatch short-circuits
// with a runtime error before any arithmetic runs.
func (vm *VM) binaryOp(op Opcode) error {
	right, err := vm.pop()
	if err != nil {
		return err
	}
	left, err := vm.pop()
	if err != nil {
		return err
	}

	if left.IsString() && right.IsString() {
		if op == OpAdd {
			return vm.concatenate(left.Obj, right.Obj)
		}
		return vm.runtimeErr("binary operation only allowed between ints or floats")
	}

	switch {
	case left.IsInt() && right.IsInt():
		switch op {
		case OpAdd:
			return vm.push(IntValue(left.I + right.I))
		case OpSubtract:
			return vm.push(IntValue(left.I - right.I))
		case OpMultiply:
			return vm.push(IntValue(left.I * right.I))
		case OpDivide:
			if right.I == 0 {
				return vm.runtimeErr("division by zero")
			}
			// Go's integer division truncates toward zero.
			return vm.push(IntValue(left.I / right.I))
		case OpGreater:
			return vm.push(BoolValue(left.I > right.I))
		case OpLess:
			return vm.push(BoolValue(left.I < right.I))
		}

	case left.IsFloat() && right.IsFloat():
		switch op {
		case OpAdd:
			return vm.push(FloatValue(left.F + right.F))
		case OpSubtract:
			return vm.push(FloatValue(left.F - right.F))
		case OpMultiply:
			return vm.push(FloatValue(left.F * right.F))
		case OpDivide:
			// IEEE-754: float division by zero yields ±Inf or NaN.
			return vm.push(FloatValue(left.F / right.F))
		case OpGreater:
			return vm.push(BoolValue(left.F > right.F))
		case OpLess:
			return vm.push(BoolValue(left.F < right.F))
		}
	}

	return vm.runtimeErr("binary operation only allowed between ints or floats")
}

// concatenate allocates a new string sized to the sum of both inputs,
// copies left then right, links it into the heap registry, and pushes
// a reference to it. The inputs are not mutated and stay allocated
// until VM teardown.
func (vm *VM) concatenate(left, right *Object) error {
	chars := make([]byte, left.Len()+right.Len())
	copy(chars, left.Chars())
	copy(chars[left.Len():], right.Chars())
	return vm.push(ObjectValue(vm.allocateString(chars)))
}

// ---------------------------------------------------------------------------
// Operand stack
// ---------------------------------------------------------------------------

func (vm *VM) push(v Value) error {
	if vm.sp >= len(vm.stack) {
		return vm.runtimeErr("stack overflow (capacity %d)", len(vm.stack))
	}
	vm.stack[vm.sp] = v
	vm.sp++
	return nil
}

func (vm *VM) pop() (Value, error) {
	if vm.sp <= 0 {
		return Value{}, vm.runtimeErr("stack underflow")
	}
	vm.sp--
	return vm.stack[vm.sp], nil
}

// peek returns the value distance slots below the top without popping.
// Part of the stack contract for future opcodes even though the
// current instruction set does not exercise it.
func (vm *VM) peek(distance int) (Value, error) {
	idx := vm.sp - 1 - distance
	if idx < 0 || idx >= vm.sp {
		return Value{}, vm.runtimeErr("stack underflow")
	}
	return vm.stack[idx], nil
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

// runtimeErr builds a RuntimeError for the currently-executing
// instruction, reports it on the diagnostic channel, and resets the
// stack so a later Interpret on the same instance never observes a
// corrupted depth.
func (vm *VM) runtimeErr(format string, args ...interface{}) error {
	line := 0
	if vm.chunk != nil {
		offset := vm.ip - 1
		if offset < 0 {
			offset = 0
		}
		line = vm.chunk.Line(offset)
	}
	err := &RuntimeError{Line: line, Message: fmt.Sprintf(format, args...)}
	vm.log.Errorf("%s", err.Error())
	vm.sp = 0
	return err
}

// traceInstruction emits the instruction about to execute, and
// optionally the stack contents, on the trace channel. Purely a
// diagnostic side channel.
func (vm *VM) traceInstruction() {
	if vm.traceStack {
		vm.log.Debugf("stack: %s", vm.stackString())
	}
	if vm.trace {
		text, _ := vm.chunk.DisassembleInstruction(vm.ip)
		vm.log.Debugf("%04d %s", vm.ip, text)
	}
}

func (vm *VM) stackString() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < vm.sp; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(vm.stack[i].String())
	}
	sb.WriteByte(']')
	return sb.String()
}
