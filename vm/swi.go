package vm

// execSWI implements the software-interrupt exception entry: save CPSR to SPSR_svc, save the return
// address (the next instruction) to LR_svc, switch to SVC mode, set the I
// mask, and jump to the SWI vector.
func (vm *VM) execSWI(d Decoded, instrAddr uint32) {
	vm.enterException(ModeSVC, VectorSWI, true, false, instrAddr+4)
}
