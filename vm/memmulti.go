package vm

// execMemoryMultiple implements LDM/STM: the
// register list is transferred low-to-high register regardless of
// direction, with the addressing mode (IA/IB/DA/DB) derived from the P/U
// bits and selecting which end of the block the base register points at.
func (vm *VM) execMemoryMultiple(d Decoded) (bool, error) {
	n := uint32(len(d.RegList))
	base := vm.Regs.Get(d.Rn)

	var start, writeback uint32
	if d.UBit {
		if d.PBit {
			start = base + 4
		} else {
			start = base
		}
		writeback = base + 4*n
	} else {
		if d.PBit {
			start = base - 4*n
		} else {
			start = base - 4*n + 4
		}
		writeback = base - 4*n
	}

	// S-bit: force User-bank access for the
	// listed registers other than PC.
	useUserBank := d.BBit && vm.Regs.Mode() != ModeUser

	addr := start
	pcWritten := false
	for _, r := range d.RegList {
		if d.LBit {
			value, err := vm.Mem.ReadWord(addr)
			if err != nil {
				return false, err
			}
			if r == 15 {
				vm.Regs.Set(15, value)
				pcWritten = true
				if d.BBit {
					vm.Regs.SetCPSR(vm.Regs.SPSR(vm.Regs.Mode()))
				}
			} else if useUserBank {
				vm.Regs.setRaw(r, value, ModeUser)
			} else {
				vm.Regs.Set(r, value)
			}
		} else {
			var value uint32
			if useUserBank {
				value = vm.Regs.getRaw(r, ModeUser)
			} else {
				value = vm.Regs.Get(r)
			}
			if err := vm.Mem.WriteWord(addr, value); err != nil {
				return false, err
			}
		}
		addr += 4
	}

	if d.WBit {
		vm.Regs.Set(d.Rn, writeback)
	}

	return pcWritten, nil
}
