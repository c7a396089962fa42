package asm

import (
	"fmt"
	"strings"
)

// encodeMemorySingle encodes LDR/STR{B}, including the `=value`/`=label`
// literal-pool pseudo-form and the bare `label` PC-relative load form.
func (a *Assembler) encodeMemorySingle(d decoded, cond uint32, operands []string, lineNo int) (uint32, *Dependency, error) {
	if len(operands) < 2 {
		return 0, nil, fmt.Errorf("%s requires at least 2 operands, got %d", d.root, len(operands))
	}

	rd, err := parseRegister(operands[0])
	if err != nil {
		return 0, nil, err
	}

	lBit := uint32(0)
	if d.root == "LDR" {
		lBit = 1
	}
	bBit := uint32(0)
	if d.byteOp {
		bBit = 1
	}

	addrMode := strings.TrimSpace(operands[1])
	if strings.HasPrefix(addrMode, "=") {
		return a.encodeLiteralLoad(cond, rd, lBit, bBit, addrMode[1:])
	}
	if !strings.HasPrefix(addrMode, "[") {
		// Bare label: PC-relative load/store of the word stored AT the
		// label's address.
		word := (cond << 28) | (1 << 26) | (1 << 24) | (1 << 23) | (bBit << 22) | (lBit << 20) | (15 << 16) | (rd << 12)
		return word, &Dependency{Kind: DepAddr, Label: addrMode}, nil
	}

	if len(operands) > 2 && strings.HasSuffix(addrMode, "]") && !strings.HasSuffix(addrMode, "]!") {
		addrMode = addrMode + "," + operands[2]
	}

	word, err := encodeAddressingMode(cond, lBit, bBit, rd, addrMode)
	return word, nil, err
}

func (a *Assembler) encodeLiteralLoad(cond, rd, lBit, bBit uint32, expr string) (uint32, *Dependency, error) {
	expr = strings.TrimSpace(expr)
	var key string
	if value, err := parseImmediate(expr); err == nil {
		key = fmt.Sprintf("0x%08X", value)
		a.internLiteral(a.curSection, key, true, value, "")
	} else {
		key = "L:" + expr
		a.internLiteral(a.curSection, key, false, 0, expr)
	}
	word := (cond << 28) | (1 << 26) | (1 << 24) | (1 << 23) | (bBit << 22) | (lBit << 20) | (15 << 16) | (rd << 12)
	return word, &Dependency{Kind: DepAddrPtr, Label: key}, nil
}

// encodeAddressingMode handles the explicit bracketed forms: [Rn], [Rn,
// #imm]{!}, [Rn, Rm, shift]{!} and the post-indexed [Rn], offset.
func encodeAddressingMode(cond, lBit, bBit, rd uint32, addrMode string) (uint32, error) {
	if !strings.HasPrefix(addrMode, "[") {
		return 0, fmt.Errorf("invalid addressing mode: %s", addrMode)
	}

	postIndexed := strings.Contains(addrMode, "],")
	writeBack := strings.HasSuffix(addrMode, "]!")
	if writeBack {
		addrMode = strings.TrimSuffix(addrMode, "!")
	}

	var parts []string
	if postIndexed {
		addrMode = strings.TrimPrefix(addrMode, "[")
		parts = strings.SplitN(addrMode, "],", 2)
	} else {
		addrMode = strings.TrimPrefix(addrMode, "[")
		addrMode = strings.TrimSuffix(addrMode, "]")
		parts = splitTopLevelCommas(addrMode)
	}

	rn, err := parseRegister(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, err
	}

	pBit := uint32(1)
	if postIndexed {
		pBit = 0
	}
	wBit := uint32(0)
	if writeBack || postIndexed {
		wBit = 1
	}

	var iBit, uBit, offsetField uint32 = 0, 1, 0

	if len(parts) > 1 {
		offsetStr := strings.TrimSpace(joinRest(parts[1:]))
		isImm := strings.HasPrefix(offsetStr, "#")
		offsetStr = strings.TrimPrefix(offsetStr, "#")
		if strings.HasPrefix(offsetStr, "-") {
			uBit = 0
			offsetStr = strings.TrimPrefix(offsetStr, "-")
		} else {
			offsetStr = strings.TrimPrefix(offsetStr, "+")
		}
		offsetStr = strings.TrimSpace(offsetStr)

		if offsetStr != "" && (isImm || isDigitOrSignPrefixed(offsetStr)) {
			iBit = 0
			offset, err := parseImmediate(offsetStr)
			if err != nil {
				return 0, err
			}
			if offset > 0xFFF {
				return 0, fmt.Errorf("offset too large: %d (max 4095)", offset)
			}
			offsetField = offset
		} else if offsetStr != "" {
			iBit = 1
			regFields := splitTopLevelCommas(offsetStr)
			rm, err := parseRegister(strings.TrimSpace(regFields[0]))
			if err != nil {
				return 0, err
			}
			if len(regFields) > 1 {
				spec, err := parseShift(joinRest(regFields[1:]))
				if err != nil {
					return 0, err
				}
				offsetField = (spec.amount << 7) | (spec.typ << 5) | rm
			} else {
				offsetField = rm
			}
		}
	}

	return (cond << 28) | (1 << 26) | (iBit << 25) | (pBit << 24) | (uBit << 23) |
		(bBit << 22) | (wBit << 21) | (lBit << 20) | (rn << 16) | (rd << 12) | offsetField, nil
}
