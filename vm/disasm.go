package vm

import "fmt"

var condNames = [16]string{"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC", "HI", "LS", "GE", "LT", "GT", "LE", "AL", "NV"}

var dataProcNames = [16]string{
	"AND", "EOR", "SUB", "RSB", "ADD", "ADC", "SBC", "RSC",
	"TST", "TEQ", "CMP", "CMN", "ORR", "MOV", "BIC", "MVN",
}

var shiftNames = [4]string{"LSL", "LSR", "ASR", "ROR"}

func condSuffix(c ConditionCode) string {
	if c == CondAL {
		return ""
	}
	return condNames[c]
}

func regName(r int) string {
	switch r {
	case 13:
		return "SP"
	case 14:
		return "LR"
	case 15:
		return "PC"
	default:
		return fmt.Sprintf("R%d", r)
	}
}

// Disassemble renders a decoded instruction back to assembly-like text, used
// by getCurrentInfos() and the disassembler half of the
// assembler round-trip property.
func Disassemble(d Decoded) string {
	cond := condSuffix(d.Cond)
	switch d.Family {
	case FamDataProc:
		return disasmDataProc(d, cond)
	case FamMemorySingle:
		return disasmMemSingle(d, cond)
	case FamMemoryMultiple:
		return disasmMemMulti(d, cond)
	case FamBranch:
		root := "B"
		if d.LBit2 {
			root = "BL"
		}
		return fmt.Sprintf("%s%s #%d", root, cond, d.Offset)
	case FamMultiply:
		root := "MUL"
		if d.ABit {
			root = "MLA"
		}
		s := ""
		if d.SBit {
			s = "S"
		}
		if d.ABit {
			return fmt.Sprintf("%s%s%s %s, %s, %s, %s", root, s, cond, regName(d.Rd), regName(d.Rm), regName(d.Rs), regName(d.Rn))
		}
		return fmt.Sprintf("%s%s%s %s, %s, %s", root, s, cond, regName(d.Rd), regName(d.Rm), regName(d.Rs))
	case FamSWI:
		return fmt.Sprintf("SWI%s #%d", cond, d.Offset)
	case FamPSR:
		return disasmPSR(d, cond)
	case FamSwap:
		b := ""
		if d.BBit {
			b = "B"
		}
		return fmt.Sprintf("SWP%s%s %s, %s, [%s]", b, cond, regName(d.Rd), regName(d.Rm), regName(d.Rn))
	case FamMisc:
		if d.IsHalt {
			return "HALT"
		}
		return "NOP"
	default:
		return fmt.Sprintf("UNDEFINED 0x%08X", d.Raw)
	}
}

func disasmDataProc(d Decoded, cond string) string {
	s := ""
	if d.SBit {
		s = "S"
	}
	root := dataProcNames[d.Opcode]
	operand2 := disasmOperand2(d)
	switch root {
	case "MOV", "MVN":
		return fmt.Sprintf("%s%s%s %s, %s", root, s, cond, regName(d.Rd), operand2)
	case "CMP", "CMN", "TST", "TEQ":
		return fmt.Sprintf("%s%s %s, %s", root, cond, regName(d.Rn), operand2)
	default:
		return fmt.Sprintf("%s%s%s %s, %s, %s", root, s, cond, regName(d.Rd), regName(d.Rn), operand2)
	}
}

func disasmOperand2(d Decoded) string {
	if d.ImmOp {
		return fmt.Sprintf("#%d", d.Operand2)
	}
	if d.ShiftAmount == 0 && d.ShiftType == ShiftLSL {
		return regName(d.Rm)
	}
	if d.ShiftType == ShiftRRX {
		return fmt.Sprintf("%s, RRX", regName(d.Rm))
	}
	if d.ShiftAmount == -1 {
		return fmt.Sprintf("%s, %s %s", regName(d.Rm), shiftNames[d.ShiftType], regName(d.Rs))
	}
	return fmt.Sprintf("%s, %s #%d", regName(d.Rm), shiftNames[d.ShiftType], d.ShiftAmount)
}

func disasmMemSingle(d Decoded, cond string) string {
	root := "LDR"
	if !d.LBit {
		root = "STR"
	}
	b := ""
	if d.BBit {
		b = "B"
	}
	// The sign sits after the # for immediates and before the register
	// otherwise, matching what the parser accepts.
	var offset string
	switch {
	case d.ImmOp && d.UBit:
		offset = fmt.Sprintf("#%d", d.Operand2)
	case d.ImmOp:
		offset = fmt.Sprintf("#-%d", d.Operand2)
	default:
		offset = disasmOperand2(Decoded{ImmOp: false, Rm: d.Rm, ShiftAmount: d.ShiftAmount, ShiftType: d.ShiftType})
		if !d.UBit {
			offset = "-" + offset
		}
	}
	if d.PBit {
		addr := fmt.Sprintf("[%s, %s]", regName(d.Rn), offset)
		if d.WBit {
			addr += "!"
		}
		return fmt.Sprintf("%s%s%s %s, %s", root, b, cond, regName(d.Rd), addr)
	}
	return fmt.Sprintf("%s%s%s %s, [%s], %s", root, b, cond, regName(d.Rd), regName(d.Rn), offset)
}

func disasmMemMulti(d Decoded, cond string) string {
	root := "LDM"
	if !d.LBit {
		root = "STM"
	}
	mode := "IA"
	switch {
	case d.PBit && d.UBit:
		mode = "IB"
	case !d.PBit && d.UBit:
		mode = "IA"
	case d.PBit && !d.UBit:
		mode = "DB"
	case !d.PBit && !d.UBit:
		mode = "DA"
	}
	list := "{"
	for i, r := range d.RegList {
		if i > 0 {
			list += ", "
		}
		list += regName(r)
	}
	list += "}"
	wb := ""
	if d.WBit {
		wb = "!"
	}
	return fmt.Sprintf("%s%s%s %s%s, %s", root, mode, cond, regName(d.Rn), wb, list)
}

func disasmPSR(d Decoded, cond string) string {
	psr := "CPSR"
	if d.RBit {
		psr = "SPSR"
	}
	if !d.IsMSR {
		return fmt.Sprintf("MRS%s %s, %s", cond, regName(d.Rd), psr)
	}
	fields := ""
	if d.FieldMsk&psrFieldFlags != 0 {
		fields += "f"
	}
	if d.FieldMsk&psrFieldControl != 0 {
		fields += "c"
	}
	var src string
	if d.ImmOp {
		src = fmt.Sprintf("#%d", d.Operand2)
	} else {
		src = regName(d.Rm)
	}
	return fmt.Sprintf("MSR%s %s_%s, %s", cond, psr, fields, src)
}
