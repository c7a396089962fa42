package vm

// execMultiply implements MUL/MLA: Rd = Rm*Rs
// modulo 2^32, with MLA additionally accumulating Rn.
func (vm *VM) execMultiply(d Decoded) error {
	rm := vm.Regs.Get(d.Rm)
	rs := vm.Regs.Get(d.Rs)
	result := rm * rs
	if d.ABit {
		result += vm.Regs.Get(d.Rn)
	}
	vm.Regs.Set(d.Rd, result)
	if d.SBit {
		c := vm.Regs.CPSR()
		c.setNZ(result)
		vm.Regs.SetCPSR(c)
	}
	return nil
}
