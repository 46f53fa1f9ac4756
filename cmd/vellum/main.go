// cmd/vellum is the CLI entry point (spec section 6): it parses the flags,
// compiles one source file, and runs it to completion on a fresh VM.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kr/pretty"
	"github.com/mattn/go-isatty"

	"vellum/internal/compiler"
	"vellum/internal/value"
	"vellum/internal/vm"

	_ "vellum/internal/modules/cryptomod"
	_ "vellum/internal/modules/datemod"
	_ "vellum/internal/modules/dbmod"
	_ "vellum/internal/modules/netmod"
	_ "vellum/internal/stdlib"
)

const version = "0.1.0"

const (
	exitOK           = 0
	exitCompileError = 10
	exitRuntimeError = 11
	exitFatal        = 12
)

type flags struct {
	help        bool
	showVersion bool
	dump        bool
	trace       bool
	lineBuffer  bool
	gcKiB       int
	file        string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	f, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCompileError
	}
	if f.help {
		printUsage()
		return exitOK
	}
	if f.showVersion {
		fmt.Println("vellum", version)
		return exitOK
	}
	if f.file == "" {
		printUsage()
		return exitOK
	}

	source, err := os.ReadFile(f.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vellum:", err)
		return exitRuntimeError
	}

	absPath, err := filepath.Abs(f.file)
	if err != nil {
		absPath = f.file
	}
	mod := value.NewModule("", absPath)

	exe, err := os.Executable()
	if err != nil {
		exe = "."
	}

	machine := vm.New(vm.Config{
		ExecutableDir:    filepath.Dir(exe),
		Trace:            f.trace,
		LineBufferStdout: f.lineBuffer,
		InitialGCBytes:   int64(f.gcKiB) * 1024,
	})

	fn, cerr := compileWithGC(source, absPath, mod, machine)
	if cerr != nil {
		fmt.Fprintln(os.Stderr, cerr)
		return exitCompileError
	}

	if f.dump {
		dumpBytecode(fn)
	}

	if ierr := machine.Interpret(fn); ierr != nil {
		machine.Flush()
		if fatal, ok := ierr.(interface{ Diagnostic() string }); ok {
			printRuntimeDiagnostic(fmt.Errorf("%s", fatal.Diagnostic()))
			return exitFatal
		}
		printRuntimeDiagnostic(ierr)
		return exitRuntimeError
	}
	machine.Flush()
	return exitOK
}

// compileWithGC threads the VM's collector into the compiler so constants
// allocated during compilation (string literals, nested Function objects)
// are tracked by the same GC that will run the program.
func compileWithGC(source []byte, path string, mod *value.ObjModule, machine *vm.VM) (*value.ObjFunction, error) {
	return compiler.Compile(string(source), path, mod, machine.GC())
}

// dumpBytecode implements -d: a rough disassembly via kr/pretty, good
// enough for debugging without a dedicated instruction-printer (spec
// explicitly scopes source-level debugging out of the core).
func dumpBytecode(fn *value.ObjFunction) {
	fmt.Fprintf(os.Stderr, "--- %s ---\n", fn.Name)
	fmt.Fprintf(os.Stderr, "%# v\n", pretty.Formatter(fn.Chunk))
}

func printRuntimeDiagnostic(err error) {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "\x1b[31m%s\x1b[0m\n", err)
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

func parseFlags(args []string) (flags, error) {
	var f flags
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch a {
		case "-h", "--help":
			f.help = true
		case "-v", "--version":
			f.showVersion = true
		case "-d":
			f.dump = true
		case "-j":
			f.trace = true
		case "-b":
			f.lineBuffer = true
		case "-g":
			i++
			if i >= len(args) {
				return f, fmt.Errorf("vellum: -g requires an argument")
			}
			n, err := strconv.Atoi(args[i])
			if err != nil || n < 0 {
				return f, fmt.Errorf("vellum: invalid -g value %q", args[i])
			}
			f.gcKiB = n
		default:
			if len(a) > 0 && a[0] == '-' {
				return f, fmt.Errorf("vellum: unknown flag %q", a)
			}
			f.file = a
		}
	}
	return f, nil
}

func printUsage() {
	fmt.Println(`usage: vellum [flags] [file]

flags:
  -h        show this help
  -v        show version
  -d        dump compiled bytecode before running
  -j        accepted; no instruction trace is printed
  -b        line-buffer stdout
  -g N      minimum heap size in KiB before first collection`)
}
