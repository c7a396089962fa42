package vm

// execMemorySingle implements LDR/STR{B}: compute
// the effective address from the base plus an immediate or shifted-register
// offset, honoring pre/post indexing and writeback. Returns whether it
// wrote R15 itself (an LDR into PC), so execute() skips the PC+4 advance.
func (vm *VM) execMemorySingle(d Decoded) (bool, error) {
	var offset uint32
	if d.ImmOp {
		offset = d.Operand2
	} else {
		shiftType := d.ShiftType
		if d.ShiftAmount == 0 && shiftType == ShiftROR {
			shiftType = ShiftRRX
		}
		offset, _ = barrelShift(vm.Regs.Get(d.Rm), d.ShiftAmount, shiftType, vm.Regs.CPSR().C)
	}

	base := vm.Regs.Get(d.Rn)
	var indexed uint32
	if d.UBit {
		indexed = base + offset
	} else {
		indexed = base - offset
	}

	addr := base
	if d.PBit {
		addr = indexed
	}

	var loaded uint32
	if d.LBit {
		if d.BBit {
			b, err := vm.Mem.ReadByte(addr)
			if err != nil {
				return false, err
			}
			loaded = uint32(b)
		} else {
			w, err := vm.Mem.ReadWord(addr)
			if err != nil {
				return false, err
			}
			loaded = w
		}
	} else {
		value := vm.Regs.Get(d.Rd)
		if d.BBit {
			if err := vm.Mem.WriteByte(addr, byte(value)); err != nil {
				return false, err
			}
		} else {
			if err := vm.Mem.WriteWord(addr, value); err != nil {
				return false, err
			}
		}
	}

	// Writeback happens before the load's destination write: when Rn==Rd,
	// ARM calls the result unpredictable; here the loaded value wins over
	// the written-back address so the outcome is deterministic.
	if !d.PBit || d.WBit {
		vm.Regs.Set(d.Rn, indexed)
	}

	if d.LBit {
		vm.Regs.Set(d.Rd, loaded)
		return d.Rd == 15, nil
	}
	return false, nil
}
