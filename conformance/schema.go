// Package conformance runs YAML-described execution scenarios against
// the bytecode VM. Each fixture file under testdata/ holds a suite of
// programs written as opcode sequences with the output or runtime
// error they must produce.
package conformance

// TestSuite is one YAML fixture file.
type TestSuite struct {
	Name  string     `yaml:"name"`
	Tests []TestCase `yaml:"tests"`
}

// TestCase is a single program plus its expected observable behavior.
// Exactly one of Output or Error is set.
type TestCase struct {
	Name    string        `yaml:"name"`
	Program []Instruction `yaml:"program"`

	// Output is the value the program must print, without the
	// trailing newline.
	Output *string `yaml:"output"`

	// Error is the runtime error message the program must raise.
	Error string `yaml:"error"`

	// ErrorLine, when non-zero, is the source line the error must
	// be attributed to.
	ErrorLine int `yaml:"error_line"`
}

// Instruction is one emitted instruction. For CONSTANT, exactly one of
// the operand fields carries the pooled value; a CONSTANT with no
// operand field pools a null.
type Instruction struct {
	Op   string `yaml:"op"`
	Line int    `yaml:"line"`

	Int   *int64   `yaml:"int"`
	Float *float64 `yaml:"float"`
	Bool  *bool    `yaml:"bool"`
	Str   *string  `yaml:"str"`
}
