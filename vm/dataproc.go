package vm

// Data-processing opcodes, matching the encoding table in asm/encode_dataproc.go.
const (
	opAND = 0x0
	opEOR = 0x1
	opSUB = 0x2
	opRSB = 0x3
	opADD = 0x4
	opADC = 0x5
	opSBC = 0x6
	opRSC = 0x7
	opTST = 0x8
	opTEQ = 0x9
	opCMP = 0xA
	opCMN = 0xB
	opORR = 0xC
	opMOV = 0xD
	opBIC = 0xE
	opMVN = 0xF
)

// execDataProc implements the 16 ARM data-processing opcodes. It reports whether it wrote R15 itself so execute()
// knows not to also advance PC by 4.
func (vm *VM) execDataProc(d Decoded) (bool, error) {
	cpsr := vm.Regs.CPSR()
	var operand2 uint32
	var shifterCarry bool
	if d.ImmOp {
		operand2 = d.Operand2
		if d.ImmRotate == 0 {
			shifterCarry = cpsr.C
		} else {
			shifterCarry = operand2&(1<<31) != 0
		}
	} else {
		operand2, shifterCarry = vm.shifterOperand(d)
	}

	rn := vm.Regs.Get(d.Rn)
	isCompare := d.Opcode == opTST || d.Opcode == opTEQ || d.Opcode == opCMP || d.Opcode == opCMN
	isLogical := d.Opcode == opAND || d.Opcode == opEOR || d.Opcode == opTST || d.Opcode == opTEQ ||
		d.Opcode == opORR || d.Opcode == opMOV || d.Opcode == opBIC || d.Opcode == opMVN

	var result uint32
	var carry, overflow bool

	switch d.Opcode {
	case opAND, opTST:
		result = rn & operand2
	case opEOR, opTEQ:
		result = rn ^ operand2
	case opSUB, opCMP:
		result, carry, overflow = addWithCarry(rn, ^operand2, true)
	case opRSB:
		result, carry, overflow = addWithCarry(operand2, ^rn, true)
	case opADD, opCMN:
		result, carry, overflow = addWithCarry(rn, operand2, false)
	case opADC:
		result, carry, overflow = addWithCarry(rn, operand2, cpsr.C)
	case opSBC:
		result, carry, overflow = addWithCarry(rn, ^operand2, cpsr.C)
	case opRSC:
		result, carry, overflow = addWithCarry(operand2, ^rn, cpsr.C)
	case opORR:
		result = rn | operand2
	case opMOV:
		result = operand2
	case opBIC:
		result = rn &^ operand2
	case opMVN:
		result = ^operand2
	}

	if !isCompare {
		vm.Regs.Set(d.Rd, result)
	}

	if d.SBit {
		if d.Rd == 15 && vm.Regs.Mode() != ModeUser {
			// Exception/mode return: restore CPSR from the current mode's SPSR
			// rather than computing NZCV. User mode has no SPSR, so an S-bit
			// PC write there falls through to the ordinary flag update.
			vm.Regs.SetCPSR(vm.Regs.SPSR(vm.Regs.Mode()))
		} else {
			c := vm.Regs.CPSR()
			c.setNZ(result)
			if isLogical {
				c.C = shifterCarry
			} else {
				c.C = carry
				c.V = overflow
			}
			vm.Regs.SetCPSR(c)
		}
	}

	return !isCompare && d.Rd == 15, nil
}
