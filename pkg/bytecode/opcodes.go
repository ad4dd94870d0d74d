package bytecode

import "fmt"

// Opcode represents a bytecode instruction.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Constants and literals (0x10-0x1F)
	// ========================================================================

	OpConstant Opcode = 0x10 // Push constant from pool: OpConstant <index:u8>
	OpNull     Opcode = 0x11 // Push null
	OpTrue     Opcode = 0x12 // Push true
	OpFalse    Opcode = 0x13 // Push false

	// ========================================================================
	// Arithmetic (0x50-0x5F)
	// ========================================================================

	OpAdd      Opcode = 0x50 // Pop two, push sum (or concatenation for strings)
	OpSubtract Opcode = 0x51 // Pop two, push difference (a - b where b is TOS)
	OpMultiply Opcode = 0x52 // Pop two, push product
	OpDivide   Opcode = 0x53 // Pop two, push quotient
	OpNegate   Opcode = 0x54 // Arithmetic negation of top of stack

	// ========================================================================
	// Comparison (0x60-0x6F)
	// ========================================================================

	OpEqual   Opcode = 0x60 // Pop two, push true if structurally equal
	OpGreater Opcode = 0x61 // Pop two, push true if a > b
	OpLess    Opcode = 0x62 // Pop two, push true if a < b

	// ========================================================================
	// Logical operations (0x68-0x6F)
	// ========================================================================

	OpNot Opcode = 0x68 // Logical negation of a boolean operand

	// ========================================================================
	// Return (0xF0-0xFF)
	// ========================================================================

	OpReturn Opcode = 0xF0 // Pop top of stack, print it, terminate execution
)

// OpcodeInfo provides metadata about each opcode for the disassembler,
// the trace channel, and validation. The engine and the disassembler
// share this table so mnemonics never drift from the instruction set.
type OpcodeInfo struct {
	Name       string // Human-readable mnemonic
	StackPop   int    // How many values popped from stack
	StackPush  int    // How many values pushed to stack
	OperandLen int    // Number of operand bytes following the opcode
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	// Constants and literals
	OpConstant: {"CONSTANT", 0, 1, 1},
	OpNull:     {"NULL", 0, 1, 0},
	OpTrue:     {"TRUE", 0, 1, 0},
	OpFalse:    {"FALSE", 0, 1, 0},

	// Arithmetic
	OpAdd:      {"ADD", 2, 1, 0},
	OpSubtract: {"SUBTRACT", 2, 1, 0},
	OpMultiply: {"MULTIPLY", 2, 1, 0},
	OpDivide:   {"DIVIDE", 2, 1, 0},
	OpNegate:   {"NEGATE", 1, 1, 0},

	// Comparison
	OpEqual:   {"EQUAL", 2, 1, 0},
	OpGreater: {"GREATER", 2, 1, 0},
	OpLess:    {"LESS", 2, 1, 0},

	// Logical
	OpNot: {"NOT", 1, 1, 0},

	// Return
	OpReturn: {"RETURN", 1, 0, 0},
}

// opcodeNameIndex maps mnemonics back to opcodes, built from the info
// table so the two can never disagree.
var opcodeNameIndex = func() map[string]Opcode {
	idx := make(map[string]Opcode, len(opcodeInfoTable))
	for op, info := range opcodeInfoTable {
		idx[info.Name] = op
	}
	return idx
}()

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with an UNKNOWN name if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// OpcodeByName returns the opcode for a mnemonic.
func OpcodeByName(name string) (Opcode, bool) {
	op, ok := opcodeNameIndex[name]
	return op, ok
}

// IsValid returns true if op is a defined instruction.
func (op Opcode) IsValid() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// String returns the human-readable mnemonic of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// OperandLen returns the number of operand bytes for this opcode.
func (op Opcode) OperandLen() int {
	return GetOpcodeInfo(op).OperandLen
}

// InstructionLen returns the total length of an instruction (1 + operand bytes).
func (op Opcode) InstructionLen() int {
	return 1 + op.OperandLen()
}

// IsBinary returns true if this opcode is a binary arithmetic or
// comparison instruction sharing the two-operand dispatch path.
func (op Opcode) IsBinary() bool {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpGreater, OpLess:
		return true
	}
	return false
}

// IsReturn returns true if this opcode terminates execution.
func (op Opcode) IsReturn() bool {
	return op == OpReturn
}

// AllOpcodes returns a slice of all defined opcodes.
// Useful for testing that all opcodes have metadata.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
