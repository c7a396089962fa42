package asm

import "fmt"

var dataProcOpcode = map[string]uint32{
	"AND": 0x0, "EOR": 0x1, "SUB": 0x2, "RSB": 0x3,
	"ADD": 0x4, "ADC": 0x5, "SBC": 0x6, "RSC": 0x7,
	"TST": 0x8, "TEQ": 0x9, "CMP": 0xA, "CMN": 0xB,
	"ORR": 0xC, "MOV": 0xD, "BIC": 0xE, "MVN": 0xF,
}

var dataProcIsCompare = map[string]bool{"TST": true, "TEQ": true, "CMP": true, "CMN": true}
var dataProcIsUnary = map[string]bool{"MOV": true, "MVN": true}

// encodeDataProc encodes the 16 data-processing mnemonics (the bits 27-26
// = 00 instruction class).
func (a *Assembler) encodeDataProc(d decoded, cond uint32, operands []string, lineNo int) (uint32, error) {
	opcode := dataProcOpcode[d.root]
	sBit := uint32(0)
	if d.sFlag || dataProcIsCompare[d.root] {
		sBit = 1
	}

	var rd, rn uint32
	var operand2 string

	switch {
	case dataProcIsUnary[d.root]:
		if len(operands) < 2 {
			return 0, fmt.Errorf("%s requires 2 operands, got %d", d.root, len(operands))
		}
		r, err := parseRegister(operands[0])
		if err != nil {
			return 0, err
		}
		rd = r
		operand2 = joinRest(operands[1:])

	case dataProcIsCompare[d.root]:
		if len(operands) < 2 {
			return 0, fmt.Errorf("%s requires 2 operands, got %d", d.root, len(operands))
		}
		r, err := parseRegister(operands[0])
		if err != nil {
			return 0, err
		}
		rn = r
		operand2 = joinRest(operands[1:])

	default:
		if len(operands) < 3 {
			return 0, fmt.Errorf("%s requires 3 operands, got %d", d.root, len(operands))
		}
		rdv, err := parseRegister(operands[0])
		if err != nil {
			return 0, err
		}
		rnv, err := parseRegister(operands[1])
		if err != nil {
			return 0, err
		}
		rd, rn = rdv, rnv
		operand2 = joinRest(operands[2:])
	}

	return encodeOperand2(cond, opcode, rn, rd, sBit, operand2)
}

func joinRest(fields []string) string {
	out := fields[0]
	for _, f := range fields[1:] {
		out += "," + f
	}
	return out
}

// encodeOperand2 builds the shifter-operand field shared by every
// data-processing instruction, switching between the immediate (I=1) and
// register-shifted (I=0) encodings.
func encodeOperand2(cond, opcode, rn, rd, sBit uint32, operand string) (uint32, error) {
	operand = trimAll(operand)
	if len(operand) > 0 && (operand[0] == '#' || isDigitOrSignPrefixed(operand)) {
		value, err := parseImmediate(operand)
		if err != nil {
			return 0, err
		}
		encoded, ok := encodeImmediate(value)
		if !ok {
			return 0, fmt.Errorf("immediate 0x%08X cannot be encoded as a rotated 8-bit ARM immediate", value)
		}
		return (cond << 28) | (1 << 25) | (opcode << 21) | (sBit << 20) | (rn << 16) | (rd << 12) | encoded, nil
	}

	fields := splitTopLevelCommas(operand)
	rm, err := parseRegister(fields[0])
	if err != nil {
		return 0, err
	}

	var shiftField uint32
	if len(fields) > 1 {
		spec, err := parseShift(joinRest(fields[1:]))
		if err != nil {
			return 0, err
		}
		if spec.regSrc >= 0 {
			shiftField = (uint32(spec.regSrc) << 8) | (spec.typ << 5) | (1 << 4) | rm
		} else {
			shiftField = (spec.amount << 7) | (spec.typ << 5) | rm
		}
	} else {
		shiftField = rm
	}

	return (cond << 28) | (opcode << 21) | (sBit << 20) | (rn << 16) | (rd << 12) | shiftField, nil
}

func isDigitOrSignPrefixed(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c >= '0' && c <= '9' || (c == '-' && len(s) > 1)
}

func trimAll(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
