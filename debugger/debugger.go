// Package debugger implements the simulator facade: lifecycle,
// inspection, mutation, breakpoints, interrupts and a diff stream, wrapping
// the vm package's core fetch/decode/execute loop for an interactive front
// end (a CLI REPL or the tui subpackage).
package debugger

import (
	"fmt"

	"github.com/arm-pedagogical/armsim/asm"
	"github.com/arm-pedagogical/armsim/vm"
	"github.com/arm-pedagogical/armsim/vm/history"
)

// StepMode selects what one Step call does.
type StepMode int

const (
	StepInto StepMode = iota
	StepForward
	StepOut
)

// Debugger wraps a *vm.VM with the bookkeeping the facade needs: source-line
// breakpoints, a run/stop flag and the diff-stream checkpoint.
type Debugger struct {
	VM     *vm.VM
	Bundle *asm.Bundle

	InstrBkpts *InstrBreakpoints

	// AutoSaveBreakpoints mirrors config.Config.Debugger.AutoSaveBreaks: when
	// false, Reset drops instruction and flag breakpoints along with the rest
	// of the run state instead of carrying them into the fresh VM.
	AutoSaveBreakpoints bool
	// NumberFormat mirrors config.Config.Display.NumberFormat ("hex", "dec"
	// or "both"), consulted by the CLI's register printer.
	NumberFormat string
	// BytesPerLine mirrors config.Config.Display.BytesPerLine, the wrap
	// width the CLI's "dump" command uses.
	BytesPerLine int

	Running       bool
	LastBreak     *vm.BreakpointHit
	LastAssertion *asm.Assertion
	checkpoint    history.Checkpoint

	flagBkpts  map[string]string
	prevFlags  FlagSnapshot
	periodicBy []periodicInterrupt

	errorsPending []string
}

// New builds a Debugger over an already-loaded VM, with the display/
// breakpoint-persistence defaults config.DefaultConfig() would produce.
func New(machine *vm.VM, bundle *asm.Bundle) *Debugger {
	d := &Debugger{
		VM:                  machine,
		Bundle:              bundle,
		InstrBkpts:          newInstrBreakpoints(),
		checkpoint:          machine.Log.SetCheckpoint(),
		AutoSaveBreakpoints: true,
		NumberFormat:        "hex",
		BytesPerLine:        16,
	}
	d.prevFlags = d.GetFlags()
	return d
}

// Reset reloads the bundle into a fresh VM, discarding all execution
// state. Instruction and flag breakpoints survive the reset unless
// AutoSaveBreakpoints is false.
func (d *Debugger) Reset(settings asm.Settings) error {
	machine, err := vm.Load(d.Bundle, settings)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	d.VM = machine
	d.checkpoint = machine.Log.SetCheckpoint()
	d.Running = false
	d.LastBreak = nil
	d.LastAssertion = nil
	d.errorsPending = nil
	if !d.AutoSaveBreakpoints {
		d.InstrBkpts = newInstrBreakpoints()
		d.flagBkpts = nil
	}
	d.prevFlags = d.GetFlags()
	return nil
}

// currentLine returns the source line mapped to the VM's current PC, or 0
// if none (e.g. mid-literal-pool).
func (d *Debugger) currentLine() int {
	lines := d.Bundle.AddrToLine[d.VM.Regs.PCPhysical()]
	if len(lines) == 0 {
		return 0
	}
	return lines[0]
}

func flagValue(f FlagSnapshot, name string) bool {
	switch name {
	case "N":
		return f.N
	case "Z":
		return f.Z
	case "C":
		return f.C
	case "V":
		return f.V
	case "I":
		return f.I
	case "F":
		return f.F
	}
	return false
}

// checkFlagBreak panics a *vm.BreakpointHit if an armed flag changed value
// since the last check; flag breakpoints live in the facade rather than the
// register file because CPSR is replaced as a whole, not per logical flag.
func (d *Debugger) checkFlagBreak() {
	cur := d.GetFlags()
	for name, mode := range d.flagBkpts {
		if containsByte(mode, 'w') && flagValue(cur, name) != flagValue(d.prevFlags, name) {
			d.prevFlags = cur
			panic(&vm.BreakpointHit{Kind: "flag", Detail: name})
		}
	}
	d.prevFlags = cur
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

// Step runs exactly one facade step in the given mode. A
// *vm.BreakpointHit recovered from vm.Step (memory/register/flag/assertion)
// is captured on the Debugger rather than propagated, since state mutations
// up to the point of the hit must be preserved.
func (d *Debugger) Step(mode StepMode) (res vm.StepResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			if bp, ok := r.(*vm.BreakpointHit); ok {
				d.captureBreak(bp)
				return
			}
			panic(r)
		}
	}()

	switch mode {
	case StepOut:
		res, err = d.stepOut()
	case StepForward:
		res, err = d.stepForward()
	default:
		res, err = d.VM.Step()
	}
	if err == nil {
		d.rearmPeriodic()
		d.checkFlagBreak()
	} else if _, halted := err.(*vm.HaltError); !halted {
		d.errorsPending = append(d.errorsPending, err.Error())
	}
	return res, err
}

// GetErrorsFormatted drains the runtime errors collected by Step/Run since
// the last call, ready for a UI to display.
func (d *Debugger) GetErrorsFormatted() []string {
	out := d.errorsPending
	d.errorsPending = nil
	return out
}

// stepForward steps over a BL without descending into the called routine,
// by running until LR's value would be returned to.
func (d *Debugger) stepForward() (vm.StepResult, error) {
	startDepth := d.VM.Regs.Get(14)
	res, err := d.VM.Step()
	if err != nil || d.VM.Regs.Get(14) == startDepth {
		return res, err
	}
	target := d.VM.Regs.Get(14)
	for d.VM.Regs.PCPhysical() != target {
		res, err = d.VM.Step()
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// stepOut runs until the current routine's LR value is reached.
func (d *Debugger) stepOut() (vm.StepResult, error) {
	target := d.VM.Regs.Get(14)
	var res vm.StepResult
	var err error
	for {
		res, err = d.VM.Step()
		if err != nil {
			return res, err
		}
		if d.VM.Regs.PCPhysical() == target {
			return res, nil
		}
	}
}

// captureBreak records a recovered breakpoint hit, resolving assertion
// hits back to their compiled Assertion record by source line.
func (d *Debugger) captureBreak(bp *vm.BreakpointHit) {
	d.LastBreak = bp
	if bp.Kind != "assertion" {
		return
	}
	for i := range d.Bundle.Assertions {
		if d.Bundle.Assertions[i].Line == bp.Line {
			d.LastAssertion = &d.Bundle.Assertions[i]
			return
		}
	}
}

// StepBack rewinds n instruction boundaries.
func (d *Debugger) StepBack(n int) int {
	d.LastBreak = nil
	return d.VM.StepBack(n)
}

// Run steps until a breakpoint, an error, or the instruction-count limit is
// reached. maxSteps==0 means unbounded.
func (d *Debugger) Run(maxSteps int) (err error) {
	d.Running = true
	defer func() { d.Running = false }()

	defer func() {
		if r := recover(); r != nil {
			if bp, ok := r.(*vm.BreakpointHit); ok {
				d.captureBreak(bp)
				err = nil
				return
			}
			panic(r)
		}
	}()

	steps := 0
	for maxSteps == 0 || steps < maxSteps {
		if line := d.currentLine(); line != 0 && d.InstrBkpts.Has(line) {
			d.LastBreak = &vm.BreakpointHit{Kind: "instruction", Detail: fmt.Sprintf("line %d", line)}
			return nil
		}
		if _, stepErr := d.VM.Step(); stepErr != nil {
			if _, ok := stepErr.(*vm.HaltError); ok {
				return nil
			}
			d.errorsPending = append(d.errorsPending, stepErr.Error())
			return stepErr
		}
		d.rearmPeriodic()
		d.checkFlagBreak()
		steps++
	}
	return nil
}
