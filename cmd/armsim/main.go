// Command armsim assembles and runs an ARM2-era pedagogical assembly
// source file, either headlessly to completion or under the interactive
// debugger.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/arm-pedagogical/armsim/asm"
	"github.com/arm-pedagogical/armsim/config"
	"github.com/arm-pedagogical/armsim/debugger"
	"github.com/arm-pedagogical/armsim/debugger/tui"
	"github.com/arm-pedagogical/armsim/vm"
)

func main() {
	var (
		debugFlag  = flag.Bool("debug", false, "launch the interactive CLI debugger")
		tuiFlag    = flag.Bool("tui", false, "launch the text-mode debugger")
		maxCycles  = flag.Uint64("max-cycles", 0, "instruction limit for headless runs (0 = use config default)")
		configPath = flag.String("config", "", "path to a config.toml (default: platform config dir)")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <source.s>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "armsim: %v\n", err)
		os.Exit(1)
	}

	sourcePath := flag.Arg(0)
	lines, err := readLines(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "armsim: %v\n", err)
		os.Exit(1)
	}

	settings := asm.DefaultSettings()
	bundle, errs := asm.Assemble(lines, settings)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "armsim: %v\n", e)
		}
		os.Exit(1)
	}

	machine, err := vm.Load(bundle, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "armsim: %v\n", err)
		os.Exit(1)
	}

	dbg := debugger.New(machine, bundle)
	dbg.AutoSaveBreakpoints = cfg.Debugger.AutoSaveBreaks
	dbg.NumberFormat = cfg.Display.NumberFormat
	dbg.BytesPerLine = cfg.Display.BytesPerLine
	machine.Log.SetLimit(cfg.Debugger.HistorySize)
	applyStackSize(machine, settings, cfg.Execution.StackSize)

	switch {
	case *tuiFlag:
		runTUI(dbg, lines)
	case *debugFlag:
		runDebugCLI(dbg)
	default:
		runHeadless(dbg, cfg, *maxCycles)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- user-supplied source file
	if err != nil {
		return nil, fmt.Errorf("opening source file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading source file: %w", err)
	}
	return lines, nil
}

// applyStackSize seeds SP to settings.MaxTotalMem minus stackSize, leaving
// the top stackSize bytes of the VM's memory above SP, mirroring
// config.Config.Execution.StackSize. A zero size, or one not below
// MaxTotalMem, leaves whatever SP the assembler/loader already set.
func applyStackSize(machine *vm.VM, settings asm.Settings, stackSize uint) {
	if stackSize == 0 {
		return
	}
	size, err := vm.CheckedUint32(int64(stackSize))
	if err != nil || settings.MaxTotalMem <= size {
		return
	}
	machine.Regs.Set(13, settings.MaxTotalMem-size)
}

func runHeadless(dbg *debugger.Debugger, cfg *config.Config, maxCycles uint64) {
	limit := cfg.Execution.MaxCycles
	if maxCycles != 0 {
		limit = maxCycles
	}
	if err := dbg.Run(int(limit)); err != nil {
		fmt.Fprintf(os.Stderr, "armsim: runtime error: %v\n", err)
		os.Exit(1)
	}
	if dbg.LastBreak != nil {
		fmt.Printf("stopped: %s %s\n", dbg.LastBreak.Kind, dbg.LastBreak.Detail)
	}
	regs := dbg.GetRegisters()
	fmt.Printf("cycles=%d pc=0x%08X r0=0x%08X\n", dbg.GetCycleCount(), dbg.GetCurrentInstructionAddress(), regs.General[0])
}

func runDebugCLI(dbg *debugger.Debugger) {
	if err := debugger.RunCLI(dbg, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "armsim: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(dbg *debugger.Debugger, sourceLines []string) {
	padded := append([]string{""}, sourceLines...)
	if err := tui.New(dbg, padded).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "armsim: %v\n", err)
		os.Exit(1)
	}
}
