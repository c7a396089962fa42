package vm

// execSwap implements SWP{B} Rd, Rm, [Rn]: load word/byte at [Rn] into a temporary, store Rm
// to [Rn], then write the temporary into Rd, as one indivisible step.
func (vm *VM) execSwap(d Decoded) error {
	addr := vm.Regs.Get(d.Rn)
	storeVal := vm.Regs.Get(d.Rm)

	if d.BBit {
		old, err := vm.Mem.ReadByte(addr)
		if err != nil {
			return err
		}
		if err := vm.Mem.WriteByte(addr, byte(storeVal)); err != nil {
			return err
		}
		vm.Regs.Set(d.Rd, uint32(old))
		return nil
	}

	old, err := vm.Mem.ReadWord(addr)
	if err != nil {
		return err
	}
	if err := vm.Mem.WriteWord(addr, storeVal); err != nil {
		return err
	}
	vm.Regs.Set(d.Rd, old)
	return nil
}
