package vm

// execBranch implements B/BL: the 24-bit signed
// word offset was already sign-extended and shifted left 2 by Decode; the
// target is relative to PC read as instrAddr+8. BL additionally stores the return address in the current
// mode's R14.
func (vm *VM) execBranch(d Decoded, instrAddr uint32) {
	target := uint32(int32(instrAddr+pcReadOffset) + d.Offset)
	if d.LBit2 {
		vm.Regs.Set(14, instrAddr+4)
	}
	vm.Regs.Set(15, target)
}
