package debugger

import "github.com/arm-pedagogical/armsim/vm"

// SetBreakpointInstr replaces the set of source lines that stop a run
// before they execute.
func (d *Debugger) SetBreakpointInstr(lines []int) {
	d.InstrBkpts.Set(lines)
}

// SetBreakpointMem installs a per-byte mask ("x","w","r","u" combined, ""
// clears) at addr.
// Repeated calls with the same arguments are idempotent.
func (d *Debugger) SetBreakpointMem(addr uint32, modeStr string) {
	d.VM.Mem.SetBreakpoint(addr, modeStr)
}

// SetBreakpointRegister installs a 2-bit read/write mask on one register in
// one mode's bank.
func (d *Debugger) SetBreakpointRegister(bank string, reg int, modeStr string) {
	mode, ok := bankFromString(bank)
	if !ok {
		mode = d.VM.Regs.Mode()
	}
	d.VM.Regs.SetBreakpoint(mode, reg, modeStr)
}

// SetBreakpointFlag arms a flag-change breakpoint. Flag breakpoints are
// evaluated by the facade after each step rather than inside the register
// file, since CPSR changes as a whole rather than per logical flag.
func (d *Debugger) SetBreakpointFlag(flag string, modeStr string) {
	if d.flagBkpts == nil {
		d.flagBkpts = map[string]string{}
	}
	if modeStr == "" {
		delete(d.flagBkpts, flag)
		return
	}
	d.flagBkpts[flag] = modeStr
}

func bankFromString(s string) (vm.Mode, bool) {
	switch s {
	case "USER":
		return vm.ModeUser, true
	case "FIQ":
		return vm.ModeFIQ, true
	case "IRQ":
		return vm.ModeIRQ, true
	case "SVC":
		return vm.ModeSVC, true
	}
	return 0, false
}
