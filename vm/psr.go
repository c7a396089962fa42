package vm

import "fmt"

// PSR field-mask bits, matching asm's psrFieldMask encoding (the `f`/`c`
// fields; the assembler also accepts `s`/`x`, whose bits execPSR ignores).
const (
	psrFieldFlags   = 1 << 3
	psrFieldControl = 1 << 0
)

// execPSR implements MRS/MSR, honoring the flags-only vs. control-field
// mask split: a control-field write is rejected outside a privileged mode.
func (vm *VM) execPSR(d Decoded) error {
	if !d.IsMSR {
		var src CPSR
		if d.RBit {
			src = vm.Regs.SPSR(vm.Regs.Mode())
		} else {
			src = vm.Regs.CPSR()
		}
		vm.Regs.Set(d.Rd, src.ToUint32())
		return nil
	}

	var value uint32
	if d.ImmOp {
		value = d.Operand2
	} else {
		value = vm.Regs.Get(d.Rm)
	}

	var target CPSR
	if d.RBit {
		target = vm.Regs.SPSR(vm.Regs.Mode())
	} else {
		target = vm.Regs.CPSR()
	}

	if d.FieldMsk&psrFieldFlags != 0 {
		flags := FromUint32(value)
		target.N, target.Z, target.C, target.V = flags.N, flags.Z, flags.C, flags.V
	}
	if d.FieldMsk&psrFieldControl != 0 {
		if vm.Regs.Mode() == ModeUser {
			return fmt.Errorf("MSR: control-field write requires a privileged mode")
		}
		control := FromUint32(value)
		target.Mode, target.I, target.F = control.Mode, control.I, control.F
	}

	if d.RBit {
		vm.Regs.SetSPSR(vm.Regs.Mode(), target)
	} else {
		vm.Regs.SetCPSR(target)
	}
	return nil
}
