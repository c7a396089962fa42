package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arm-pedagogical/armsim/token"
)

// parseRegister parses "R0".."R15", "SP", "LR", "PC" into a register number.
func parseRegister(s string) (uint32, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "SP":
		return 13, nil
	case "LR":
		return 14, nil
	case "PC":
		return 15, nil
	}
	if strings.HasPrefix(s, "R") {
		n, err := strconv.ParseUint(s[1:], 10, 32)
		if err != nil || n > 15 {
			return 0, fmt.Errorf("invalid register: %s", s)
		}
		return uint32(n), nil
	}
	return 0, fmt.Errorf("invalid register: %s", s)
}

// parseImmediate parses a decimal, 0x-hex, 0b-binary or 'c' character
// immediate, with an optional leading '#' and/or '-'.
func parseImmediate(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	if s == "" {
		return 0, fmt.Errorf("empty immediate")
	}

	if strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") && len(s) >= 3 {
		body := s[1 : len(s)-1]
		if strings.HasPrefix(body, "\\") {
			b, n, err := token.ParseEscapeChar(body)
			if err != nil || n != len(body) {
				return 0, fmt.Errorf("invalid character literal: %s", s)
			}
			return uint32(b), nil
		}
		if len(body) != 1 {
			return 0, fmt.Errorf("character literal must be one character: %s", s)
		}
		return uint32(body[0]), nil
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	var value uint64
	var err error
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		value, err = strconv.ParseUint(s[2:], 16, 32)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		value, err = strconv.ParseUint(s[2:], 2, 32)
	default:
		value, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid immediate: %s", s)
	}

	result := uint32(value)
	if negative {
		result = uint32(-int64(result))
	}
	return result, nil
}

// encodeImmediate finds an (8-bit value, 4-bit rotation) pair that
// reconstructs value, per the ARM data-processing immediate encoding.
func encodeImmediate(value uint32) (uint32, bool) {
	for rotate := uint32(0); rotate < 32; rotate += 2 {
		rotated := (value >> rotate) | (value << (32 - rotate))
		if rotated <= 0xFF {
			decodeRotate := (32 - rotate) % 32
			return ((decodeRotate / 2) << 8) | rotated, true
		}
	}
	return 0, false
}

// shiftSpec describes a parsed shifter-operand suffix such as "LSL #2" or
// "LSR R3".
type shiftSpec struct {
	present bool
	typ     uint32 // 0=LSL 1=LSR 2=ASR 3=ROR (RRX encoded as ROR with amount 0 and reg=false)
	amount  uint32
	regSrc  int32 // >=0 if the shift amount comes from a register
}

func parseShift(s string) (shiftSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return shiftSpec{}, nil
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return shiftSpec{}, nil
	}

	switch strings.ToUpper(fields[0]) {
	case "RRX":
		return shiftSpec{present: true, typ: 3, amount: 0, regSrc: -1}, nil
	case "LSL":
		return parseShiftAmount(fields, 0)
	case "LSR":
		return parseShiftAmount(fields, 1)
	case "ASR":
		return parseShiftAmount(fields, 2)
	case "ROR":
		return parseShiftAmount(fields, 3)
	default:
		return shiftSpec{}, fmt.Errorf("unknown shift operator: %s", fields[0])
	}
}

func parseShiftAmount(fields []string, typ uint32) (shiftSpec, error) {
	if len(fields) < 2 {
		return shiftSpec{}, fmt.Errorf("missing shift amount")
	}
	operand := fields[1]
	if strings.HasPrefix(operand, "#") {
		amount, err := parseImmediate(operand)
		if err != nil {
			return shiftSpec{}, err
		}
		return shiftSpec{present: true, typ: typ, amount: amount, regSrc: -1}, nil
	}
	reg, err := parseRegister(operand)
	if err != nil {
		return shiftSpec{}, err
	}
	return shiftSpec{present: true, typ: typ, regSrc: int32(reg)}, nil
}

// parseRegisterList expands "{R0,R1,R4-R7,LR}" into a 16-bit register bitmap.
func parseRegisterList(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	if s == "" {
		return 0, fmt.Errorf("empty register list")
	}

	var mask uint32
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if dash := strings.Index(part, "-"); dash > 0 {
			lo, err := parseRegister(part[:dash])
			if err != nil {
				return 0, err
			}
			hi, err := parseRegister(part[dash+1:])
			if err != nil {
				return 0, err
			}
			if hi < lo {
				lo, hi = hi, lo
			}
			for r := lo; r <= hi; r++ {
				mask |= 1 << r
			}
			continue
		}
		r, err := parseRegister(part)
		if err != nil {
			return 0, err
		}
		mask |= 1 << r
	}
	return mask, nil
}
