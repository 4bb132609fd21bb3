package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/marmoset/compiler"
	"github.com/chazu/marmoset/manifest"
	"github.com/chazu/marmoset/vm"
)

var log = commonlog.GetLogger("marmoset")

func main() {
	verbose := flag.Int("v", 0, "log verbosity")
	steps := flag.Int("steps", 0, "override the run step cap")
	history := flag.Int("history", 0, "override the history capacity")
	flag.Parse()

	commonlog.Configure(*verbose, nil)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	verb := args[0]
	rest := args[1:]

	var err error
	switch verb {
	case "run":
		err = runCommand(rest, *steps, *history, false)
	case "trace":
		err = runCommand(rest, *steps, *history, true)
	case "disasm":
		err = disasmCommand(rest)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "marmoset:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: marmoset [flags] <command> [file.java]

commands:
  run      compile and run a Java source file
  trace    run with sqlite step recording
  disasm   compile and print the instruction listing

With no file argument, the entry from marmoset.toml is used.`)
}

// loadConfig resolves the manifest (if present) and the source path.
func loadConfig(args []string) (*manifest.Manifest, string, error) {
	m := manifest.Default()
	if manifest.Exists(".") {
		loaded, err := manifest.Load(".")
		if err != nil {
			return nil, "", err
		}
		m = loaded
	}

	path := m.EntryPath()
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, "", fmt.Errorf("no source file given and no entry in %s", manifest.FileName)
	}
	return m, path, nil
}

func compileFile(path string) (*vm.CompiledProgram, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	program, err := compiler.CompileProgram(string(source))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}
	log.Infof("compiled %s: %d classes, %d instructions",
		path, len(program.Classes), len(program.Instructions))
	return program, nil
}

func runCommand(args []string, steps, history int, trace bool) error {
	m, path, err := loadConfig(args)
	if err != nil {
		return err
	}
	program, err := compileFile(path)
	if err != nil {
		return err
	}

	sim := vm.NewSimulator(program)
	if steps <= 0 {
		steps = m.Run.MaxSteps
	}
	sim.SetMaxSteps(steps)
	if history <= 0 {
		history = m.Run.HistoryCapacity
	}
	sim.SetHistoryCapacity(history)

	var store *vm.TraceStore
	if trace || m.Trace.Enabled {
		store, err = vm.OpenTraceStore(m.Trace.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.BeginRun(program.MainClass); err != nil {
			return err
		}
		log.Infof("tracing to %s", m.Trace.Path)
	}

	for sim.CanStepForward() {
		result := sim.Step()
		if store != nil {
			if err := store.Record(result.State, result); err != nil {
				return err
			}
		}
		if result.State.StepNumber >= steps {
			log.Warningf("stopped at step cap %d", steps)
			break
		}
	}

	state := sim.GetState()
	for _, line := range state.Output {
		fmt.Println(line)
	}
	if state.Status == vm.VMError {
		return fmt.Errorf("runtime fault: %s", state.Error)
	}
	log.Infof("finished in %d steps, status %s", state.StepNumber, state.Status)
	return nil
}

func disasmCommand(args []string) error {
	_, path, err := loadConfig(args)
	if err != nil {
		return err
	}
	program, err := compileFile(path)
	if err != nil {
		return err
	}
	fmt.Print(vm.Disassemble(program))
	return nil
}
