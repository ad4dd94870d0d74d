package bytecode

import "fmt"

// MaxConstants is the size limit of a chunk's constant pool, fixed by
// the single-byte operand of OpConstant.
const MaxConstants = 256

// Chunk is a compiled unit of bytecode: instruction bytes, a parallel
// array of source line numbers (one per code byte, used only for
// diagnostics), and the constant pool referenced by OpConstant.
//
// A chunk is produced by the compiler and treated as read-only by the
// VM for the duration of a run. The engine's owned chunk slot is reset
// and repopulated at the start of each interpretation cycle.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []Value
}

// NewChunk creates a new empty chunk.
func NewChunk() *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 64),
		Lines:     make([]int, 0, 64),
		Constants: make([]Value, 0, 8),
	}
}

// Write appends a raw byte to the code section, recording the source
// line it was emitted for. Every code byte gets a line entry so the
// two arrays stay parallel.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode to the code section.
func (c *Chunk) WriteOp(op Opcode, line int) {
	c.Write(byte(op), line)
}

// AddConstant adds a value to the constant pool and returns its index.
// Returns an error once the pool exceeds the single-byte operand range.
func (c *Chunk) AddConstant(v Value) (int, error) {
	if len(c.Constants) >= MaxConstants {
		return 0, fmt.Errorf("too many constants in one chunk (max %d)", MaxConstants)
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1, nil
}

// AddStringConstant adds a chunk-owned string literal to the pool.
// The object it creates belongs to the chunk, not to any VM registry.
func (c *Chunk) AddStringConstant(s string, line int) error {
	return c.WriteConstant(ObjectValue(StringObjectFrom(s)), line)
}

// WriteConstant emits an OpConstant instruction for the given value,
// adding it to the pool.
func (c *Chunk) WriteConstant(v Value, line int) error {
	idx, err := c.AddConstant(v)
	if err != nil {
		return err
	}
	c.WriteOp(OpConstant, line)
	c.Write(byte(idx), line)
	return nil
}

// GetConstant returns the constant at the given index.
func (c *Chunk) GetConstant(index int) Value {
	return c.Constants[index]
}

// CodeLen returns the length of the code section in bytes.
func (c *Chunk) CodeLen() int {
	return len(c.Code)
}

// ConstantCount returns the number of constants in the pool.
func (c *Chunk) ConstantCount() int {
	return len(c.Constants)
}

// Line returns the source line recorded for the code byte at offset,
// or 0 if the offset is out of range.
func (c *Chunk) Line(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return 0
	}
	return c.Lines[offset]
}

// Reset clears the code, line, and constant sections, retaining the
// backing storage. Called at the start of each interpretation cycle
// when the engine's chunk slot is reused.
func (c *Chunk) Reset() {
	c.Code = c.Code[:0]
	c.Lines = c.Lines[:0]
	c.Constants = c.Constants[:0]
}

// Validate checks the structural invariants a well-formed compiler
// output must satisfy: the line array parallel to the code, every
// opcode defined, no truncated operands, and every constant operand
// within the pool. The VM runs this once per Interpret call so the
// dispatch loop can index without bounds checks.
func (c *Chunk) Validate() error {
	if len(c.Lines) != len(c.Code) {
		return fmt.Errorf("line table length %d does not match code length %d", len(c.Lines), len(c.Code))
	}
	offset := 0
	for offset < len(c.Code) {
		op := Opcode(c.Code[offset])
		if !op.IsValid() {
			return fmt.Errorf("undefined opcode 0x%02X at offset %d", byte(op), offset)
		}
		if offset+op.InstructionLen() > len(c.Code) {
			return fmt.Errorf("truncated %s instruction at offset %d", op, offset)
		}
		if op == OpConstant {
			idx := int(c.Code[offset+1])
			if idx >= len(c.Constants) {
				return fmt.Errorf("constant index %d out of range at offset %d (pool size %d)", idx, offset, len(c.Constants))
			}
		}
		offset += op.InstructionLen()
	}
	return nil
}
