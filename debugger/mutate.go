package debugger

import "fmt"

// SetRegister writes a register in the current mode. PC is written in its
// as-read (+8) form, the same form GetRegisters reports it in, and is
// never put behind the pipeline offset.
func (d *Debugger) SetRegister(bank string, id int, value uint32) error {
	if bank != "" && bank != d.VM.Regs.Mode().String() {
		return fmt.Errorf("setRegister: writing another mode's bank directly is not supported; switch mode first")
	}
	if id == 15 {
		if value < 8 {
			value = 8
		}
		value -= 8
	}
	d.VM.Regs.Set(id, value)
	return nil
}

// SetMemory writes a single byte.
func (d *Debugger) SetMemory(addr uint32, value byte) error {
	return d.VM.Mem.WriteByte(addr, value)
}

// SetMemoryHalfword writes a 16-bit value at a half-word aligned address.
func (d *Debugger) SetMemoryHalfword(addr uint32, value uint16) error {
	return d.VM.Mem.WriteHalfword(addr, value)
}

// SetFlag sets or clears one CPSR condition flag.
func (d *Debugger) SetFlag(name string, value bool) error {
	c := d.VM.Regs.CPSR()
	switch name {
	case "N":
		c.N = value
	case "Z":
		c.Z = value
	case "C":
		c.C = value
	case "V":
		c.V = value
	case "I":
		c.I = value
	case "F":
		c.F = value
	default:
		return fmt.Errorf("setFlag: unknown flag %q", name)
	}
	d.VM.Regs.SetCPSR(c)
	return nil
}
