package debugger

import "github.com/arm-pedagogical/armsim/vm"

// RegisterSnapshot is the current mode's sixteen logical registers (R15 in
// its as-read +8 form) plus the mode name, returned by GetRegisters. Banked
// registers of other modes are not included.
type RegisterSnapshot struct {
	General [16]uint32
	Mode    string
}

// GetRegisters reads the current mode's register file without tripping
// register breakpoints.
func (d *Debugger) GetRegisters() RegisterSnapshot {
	snap := RegisterSnapshot{Mode: d.VM.Regs.Mode().String()}
	d.VM.Regs.WithBreakpointsDisabled(func() {
		for i := 0; i < 16; i++ {
			snap.General[i] = d.VM.Regs.Get(i)
		}
	})
	return snap
}

// FlagSnapshot is the current CPSR's condition flags and interrupt masks.
type FlagSnapshot struct {
	N, Z, C, V bool
	I, F       bool
}

// GetFlags returns the current CPSR's flags.
func (d *Debugger) GetFlags() FlagSnapshot {
	c := d.VM.Regs.CPSR()
	return FlagSnapshot{N: c.N, Z: c.Z, C: c.C, V: c.V, I: c.I, F: c.F}
}

// GetMemory reads length bytes starting at addr without tripping memory
// breakpoints.
func (d *Debugger) GetMemory(addr, length uint32) ([]byte, error) {
	return d.VM.Mem.GetBytes(addr, length)
}

// GetCurrentInstructionAddress returns the address of the next instruction
// to execute.
func (d *Debugger) GetCurrentInstructionAddress() uint32 {
	return d.VM.Regs.PCPhysical()
}

// GetCurrentLine returns the source line mapped to the current instruction
// address, or 0 if there is none.
func (d *Debugger) GetCurrentLine() int {
	return d.currentLine()
}

// GetCycleCount returns the number of instructions retired so far.
func (d *Debugger) GetCycleCount() uint64 {
	return d.VM.Cycles
}

// CurrentInfo is one annotation getCurrentInfos() attaches to the current
// instruction for a UI to render: the disassembly text plus
// whether this step just hit a breakpoint or assertion.
type CurrentInfo struct {
	Address      uint32
	Line         int
	Disassembly  string
	BreakpointAt *vm.BreakpointHit
}

// GetCurrentInfos returns the highlight/disassembly annotations for the
// current instruction.
func (d *Debugger) GetCurrentInfos() CurrentInfo {
	addr := d.VM.Regs.PCPhysical()
	raw, err := d.VM.Mem.GetBytes(addr, 4)
	info := CurrentInfo{Address: addr, Line: d.currentLine(), BreakpointAt: d.LastBreak}
	if err != nil || len(raw) != 4 {
		info.Disassembly = "???"
		return info
	}
	word := uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16 | uint32(raw[3])<<24
	info.Disassembly = vm.Disassemble(vm.Decode(word))
	return info
}
