package asm

import "fmt"

// encodeMultiplyInst encodes MUL/MLA.
func encodeMultiplyInst(d decoded, cond uint32, operands []string) (uint32, error) {
	sBit := uint32(0)
	if d.sFlag {
		sBit = 1
	}

	if d.root == "MUL" {
		if len(operands) < 3 {
			return 0, fmt.Errorf("MUL requires 3 operands, got %d", len(operands))
		}
		rd, err := parseRegister(operands[0])
		if err != nil {
			return 0, err
		}
		rm, err := parseRegister(operands[1])
		if err != nil {
			return 0, err
		}
		rs, err := parseRegister(operands[2])
		if err != nil {
			return 0, err
		}
		if rd == rm {
			return 0, fmt.Errorf("MUL: Rd and Rm must differ (got R%d for both)", rd)
		}
		if rd == 15 || rm == 15 || rs == 15 {
			return 0, fmt.Errorf("MUL: R15 not permitted as an operand")
		}
		return (cond << 28) | (sBit << 20) | (rd << 16) | (rs << 8) | (0x9 << 4) | rm, nil
	}

	if len(operands) < 4 {
		return 0, fmt.Errorf("MLA requires 4 operands, got %d", len(operands))
	}
	rd, err := parseRegister(operands[0])
	if err != nil {
		return 0, err
	}
	rm, err := parseRegister(operands[1])
	if err != nil {
		return 0, err
	}
	rs, err := parseRegister(operands[2])
	if err != nil {
		return 0, err
	}
	rn, err := parseRegister(operands[3])
	if err != nil {
		return 0, err
	}
	if rd == rm || rd == 15 || rm == 15 || rs == 15 || rn == 15 {
		return 0, fmt.Errorf("MLA: R15 not permitted and Rd must differ from Rm")
	}
	return (cond << 28) | (1 << 21) | (sBit << 20) | (rd << 16) | (rn << 12) | (rs << 8) | (0x9 << 4) | rm, nil
}
