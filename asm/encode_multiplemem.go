package asm

import (
	"fmt"
	"strings"
)

var multipleModeBits = map[string][2]uint32{
	"IA": {0, 1},
	"IB": {1, 1},
	"DA": {0, 0},
	"DB": {1, 0},
}

// encodeMultipleMem encodes LDM/STM with their IA/IB/DA/DB address modes.
func encodeMultipleMem(d decoded, cond uint32, operands []string) (uint32, error) {
	if len(operands) < 2 {
		return 0, fmt.Errorf("%s requires 2 operands, got %d", d.root, len(operands))
	}

	baseField := strings.TrimSpace(operands[0])
	writeBack := strings.HasSuffix(baseField, "!")
	if writeBack {
		baseField = strings.TrimSuffix(baseField, "!")
	}
	rn, err := parseRegister(baseField)
	if err != nil {
		return 0, err
	}

	regMask, err := parseRegisterList(operands[1])
	if err != nil {
		return 0, err
	}

	bits, ok := multipleModeBits[d.mode]
	if !ok {
		bits = multipleModeBits["IA"]
	}
	pBit, uBit := bits[0], bits[1]

	lBit := uint32(0)
	if d.root == "LDM" {
		lBit = 1
	}
	wBit := uint32(0)
	if writeBack {
		wBit = 1
	}

	return (cond << 28) | (1 << 27) | (pBit << 24) | (uBit << 23) | (wBit << 21) |
		(lBit << 20) | (rn << 16) | regMask, nil
}
