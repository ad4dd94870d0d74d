// Package bytecode implements the Tova runtime core: a stack-based
// virtual machine executing a linear instruction stream over
// dynamically-typed operands.
//
// The bytecode format is designed for:
//   - Compact representation (one opcode byte plus at most one operand byte)
//   - Fast decoding (fixed-width opcodes, single dispatch switch)
//   - Easy serialization (the "TVBC" CBOR image format in image.go)
//
// # Architecture Overview
//
//   - Value: a closed variant over null, bool, 64-bit int, IEEE-754
//     float, and heap object references. Pure data; equality and
//     printing only.
//
//   - Object: heap-allocated payloads (currently only strings), linked
//     into the owning VM's registry list most-recently-allocated first
//     and freed in one pass at VM teardown. No reference counting, no
//     tracing collector.
//
//   - Chunk: instruction bytes, a parallel source-line array for
//     diagnostics, and the constant pool. Produced by the external
//     compiler behind the Compiler interface; read-only to the VM.
//
//   - VM: the fetch-decode-execute loop, the fixed-capacity operand
//     stack, binary-operator dispatch, and runtime type errors.
//
//   - Disassembler: a read-only diagnostic printer over a Chunk,
//     sharing the engine's opcode metadata table.
//
// # Error Handling
//
// Runtime type violations yield *RuntimeError with the source line of
// the offending instruction, reported as "[line L] in script: <msg>".
// After any runtime error the operand stack is reset, so a VM instance
// stays safe to reuse. Compile errors come from the external compiler
// and are forwarded unmodified.
//
// # Concurrency
//
// A VM instance is single-threaded and non-reentrant. The engine,
// stack, and heap registry are exclusively owned by the instance;
// concurrent access requires external synchronization. The only
// preemption mechanism is the caller-injected interrupt check, polled
// once per dispatch iteration.
package bytecode
