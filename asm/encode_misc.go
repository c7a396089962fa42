package asm

import (
	"fmt"
	"strings"
)

// encodeSWI encodes the software-interrupt instruction with its 24-bit comment field.
func encodeSWI(cond uint32, operands []string) (uint32, error) {
	imm := uint32(0)
	if len(operands) > 0 && strings.TrimSpace(operands[0]) != "" {
		v, err := parseImmediate(operands[0])
		if err != nil {
			return 0, err
		}
		if v > 0xFFFFFF {
			return 0, fmt.Errorf("SWI immediate too large: 0x%X (max 0xFFFFFF)", v)
		}
		imm = v
	}
	return (cond << 28) | (0xF << 24) | imm, nil
}

// encodeSwap encodes SWP{B} Rd, Rm, [Rn]: an indivisible load-then-store.
func encodeSwap(d decoded, cond uint32, operands []string) (uint32, error) {
	if len(operands) < 3 {
		return 0, fmt.Errorf("SWP requires 3 operands, got %d", len(operands))
	}
	rd, err := parseRegister(operands[0])
	if err != nil {
		return 0, err
	}
	rm, err := parseRegister(operands[1])
	if err != nil {
		return 0, err
	}
	addr := strings.TrimSpace(operands[2])
	addr = strings.TrimPrefix(addr, "[")
	addr = strings.TrimSuffix(addr, "]")
	rn, err := parseRegister(addr)
	if err != nil {
		return 0, err
	}
	bBit := uint32(0)
	if d.byteOp {
		bBit = 1
	}
	return (cond << 28) | (0x2 << 23) | (bBit << 22) | (rn << 16) | (rd << 12) | (0x9 << 4) | rm, nil
}

// psrFieldMask parses the CPSR_f / CPSR_c / CPSR_fc / SPSR_... style operand
// into (useSPSR, 4-bit field mask).
func psrFieldMask(operand string) (bool, uint32, error) {
	operand = strings.TrimSpace(operand)
	parts := strings.SplitN(operand, "_", 2)
	var useSPSR bool
	switch strings.ToUpper(parts[0]) {
	case "CPSR":
		useSPSR = false
	case "SPSR":
		useSPSR = true
	default:
		return false, 0, fmt.Errorf("invalid PSR operand: %s", operand)
	}

	mask := uint32(0)
	if len(parts) == 1 {
		mask = 0x9 // f and c, matching a bare CPSR/SPSR reference
		return useSPSR, mask, nil
	}
	for _, c := range strings.ToLower(parts[1]) {
		switch c {
		case 'f':
			mask |= 1 << 3
		case 's':
			mask |= 1 << 2
		case 'x':
			mask |= 1 << 1
		case 'c':
			mask |= 1 << 0
		default:
			return false, 0, fmt.Errorf("invalid PSR field selector %q in %s", c, operand)
		}
	}
	return useSPSR, mask, nil
}

// encodePSR encodes MRS/MSR with the full flags/control field mask.
func encodePSR(d decoded, cond uint32, operands []string) (uint32, error) {
	if d.root == "MRS" {
		if len(operands) < 2 {
			return 0, fmt.Errorf("MRS requires 2 operands, got %d", len(operands))
		}
		rd, err := parseRegister(operands[0])
		if err != nil {
			return 0, err
		}
		if rd == 15 {
			return 0, fmt.Errorf("MRS: R15 not permitted as destination")
		}
		useSPSR, _, err := psrFieldMask(operands[1])
		if err != nil {
			return 0, err
		}
		rBit := uint32(0)
		if useSPSR {
			rBit = 1
		}
		return (cond << 28) | (0x2 << 23) | (rBit << 22) | (0xF << 16) | (rd << 12), nil
	}

	// MSR PSR_fields, Rm | #imm
	if len(operands) < 2 {
		return 0, fmt.Errorf("MSR requires 2 operands, got %d", len(operands))
	}
	useSPSR, fieldMask, err := psrFieldMask(operands[0])
	if err != nil {
		return 0, err
	}
	rBit := uint32(0)
	if useSPSR {
		rBit = 1
	}

	src := strings.TrimSpace(operands[1])
	if strings.HasPrefix(src, "#") || isDigitOrSignPrefixed(src) {
		value, err := parseImmediate(src)
		if err != nil {
			return 0, err
		}
		encoded, ok := encodeImmediate(value)
		if !ok {
			return 0, fmt.Errorf("MSR immediate 0x%08X cannot be encoded", value)
		}
		return (cond << 28) | (1 << 25) | (0x2 << 23) | (rBit << 22) | (0x2 << 20) |
			(fieldMask << 16) | (0xF << 12) | encoded, nil
	}

	rm, err := parseRegister(src)
	if err != nil {
		return 0, err
	}
	return (cond << 28) | (0x2 << 23) | (rBit << 22) | (0x2 << 20) | (fieldMask << 16) | (0xF << 12) | rm, nil
}

// encodeMisc encodes NOP/HALT: bits 25,24,21 set, everything else below the
// condition clear, with bit 16 as the NOP/HALT discriminator.
func encodeMisc(d decoded, cond uint32) uint32 {
	word := (cond << 28) | (1 << 25) | (1 << 24) | (1 << 21)
	if d.root == "HALT" {
		word |= 1 << 16
	}
	return word
}
