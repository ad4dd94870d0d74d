package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the whole chunk,
// annotated with source lines. The disassembler is a read-only
// consumer: it never mutates the chunk or the VM, and it tolerates
// any well-formed chunk including empty code.
func (c *Chunk) Disassemble(name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}

	if len(c.Constants) > 0 {
		sb.WriteString("; Constants:\n")
		for i, v := range c.Constants {
			display := v.String()
			if len(display) > 40 {
				display = display[:37] + "..."
			}
			display = strings.ReplaceAll(display, "\n", "\\n")
			display = strings.ReplaceAll(display, "\t", "\\t")
			sb.WriteString(fmt.Sprintf(";   [%3d] %s %s\n", i, v.Kind, display))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("; Code:\n")
	offset := 0
	for offset < len(c.Code) {
		text, next := c.DisassembleInstruction(offset)
		sb.WriteString(fmt.Sprintf("%04d %4d  %s\n", offset, c.Line(offset), text))
		if next <= offset {
			break
		}
		offset = next
	}

	return sb.String()
}

// DisassembleInstruction decodes exactly one instruction at the given
// byte offset, returning its text (mnemonic, operand, and resolved
// constant where applicable) and the offset of the next instruction.
func (c *Chunk) DisassembleInstruction(offset int) (string, int) {
	if offset < 0 || offset >= len(c.Code) {
		return "<end of code>", offset
	}

	op := Opcode(c.Code[offset])
	info := GetOpcodeInfo(op)

	switch op {
	case OpConstant:
		if offset+1 >= len(c.Code) {
			return fmt.Sprintf("%s <truncated>", info.Name), len(c.Code)
		}
		idx := c.Code[offset+1]
		resolved := "<out of range>"
		if int(idx) < len(c.Constants) {
			resolved = c.Constants[idx].String()
			if len(resolved) > 20 {
				resolved = resolved[:17] + "..."
			}
		}
		return fmt.Sprintf("%s %d ; %s", info.Name, idx, resolved), offset + 2

	default:
		if !op.IsValid() {
			return info.Name, offset + 1
		}
		return info.Name, offset + op.InstructionLen()
	}
}

// InstructionCount returns the number of instructions in the chunk.
// O(n) over the code section.
func (c *Chunk) InstructionCount() int {
	count := 0
	offset := 0
	for offset < len(c.Code) {
		_, next := c.DisassembleInstruction(offset)
		if next <= offset {
			break
		}
		offset = next
		count++
	}
	return count
}
