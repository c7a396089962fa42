package vm

import "fmt"

// execute dispatches one decoded instruction to its family handler and
// advances PC unless the handler already redirected it (branches, and any
// write to R15).
func (vm *VM) execute(d Decoded, instrAddr uint32) error {
	pcWritten := false
	var err error

	switch d.Family {
	case FamDataProc:
		pcWritten, err = vm.execDataProc(d)
	case FamMemorySingle:
		pcWritten, err = vm.execMemorySingle(d)
	case FamMemoryMultiple:
		pcWritten, err = vm.execMemoryMultiple(d)
	case FamBranch:
		vm.execBranch(d, instrAddr)
		pcWritten = true
	case FamMultiply:
		err = vm.execMultiply(d)
	case FamSWI:
		vm.execSWI(d, instrAddr)
		pcWritten = true
	case FamPSR:
		err = vm.execPSR(d)
	case FamSwap:
		err = vm.execSwap(d)
	case FamMisc:
		if d.IsHalt {
			return &HaltError{}
		}
		// NOP: nothing to do.
	default:
		return fmt.Errorf("undefined instruction 0x%08X at 0x%08X", d.Raw, instrAddr)
	}
	if err != nil {
		return err
	}
	if !pcWritten {
		vm.Regs.Set(15, instrAddr+4)
	}
	return nil
}

// HaltError signals the HALT pseudo-instruction; the debugger facade
// treats it as a clean run stop rather than an execution fault.
type HaltError struct{}

func (*HaltError) Error() string { return "halt" }

// shifterOperand resolves operand2 for a data-processing instruction,
// returning the value and the carry the barrel shifter produced. LDR/STR
// register offsets call barrelShift directly instead.
func (vm *VM) shifterOperand(d Decoded) (uint32, bool) {
	rmVal := vm.Regs.Get(d.Rm)
	carry := vm.Regs.CPSR().C
	amount := d.ShiftAmount
	if amount == -1 {
		amount = int(vm.Regs.Get(d.Rs) & 0xFF)
		if amount == 0 {
			// A register-held amount of zero leaves value and carry alone,
			// for every shift type.
			return rmVal, carry
		}
	}
	return barrelShift(rmVal, amount, d.ShiftType, carry)
}
