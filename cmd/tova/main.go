// Tova CLI - runs and inspects compiled bytecode images.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/tovalang/tova/manifest"
	"github.com/tovalang/tova/pkg/bytecode"

	_ "github.com/tliron/commonlog/simple"
)

const (
	exitUsage   = 64
	exitData    = 65
	exitRuntime = 70
)

func main() {
	disasm := flag.Bool("d", false, "Disassemble the image instead of running it")
	trace := flag.Bool("trace", false, "Trace each instruction as it executes")
	traceStack := flag.Bool("trace-stack", false, "Dump the operand stack before each instruction")
	manifestDir := flag.String("manifest", ".", "Directory to look up tova.toml in")
	verbosity := flag.Int("verbosity", 0, "Log verbosity (higher is chattier)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tova [options] <image.tvc>\n\n")
		fmt.Fprintf(os.Stderr, "Runs a compiled Tova bytecode image.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tova prog.tvc            # Run an image\n")
		fmt.Fprintf(os.Stderr, "  tova -d prog.tvc         # Print its disassembly\n")
		fmt.Fprintf(os.Stderr, "  tova -trace prog.tvc     # Run with an instruction trace\n")
	}
	flag.Parse()

	commonlog.Configure(*verbosity, nil)

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(exitUsage)
	}
	path := flag.Arg(0)

	m := manifest.Default()
	if manifest.Exists(*manifestDir) {
		loaded, err := manifest.Load(*manifestDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitUsage)
		}
		m = loaded
	}

	chunk, err := bytecode.ReadImageFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitData)
	}

	if *disasm {
		fmt.Print(chunk.Disassemble(filepath.Base(path)))
		return
	}

	vm := bytecode.NewVMWithCapacity(m.VM.StackCapacity)
	defer vm.Free()
	vm.SetTrace(*trace || m.VM.TraceExecution)
	vm.SetTraceStack(*traceStack || m.VM.TraceStack)

	if err := vm.Interpret(chunk); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		var rerr *bytecode.RuntimeError
		if errors.As(err, &rerr) {
			os.Exit(exitRuntime)
		}
		os.Exit(exitData)
	}
}
