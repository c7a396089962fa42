package asm

import "fmt"

// encodeBranchInst encodes B/BL. The target is always a label, left as a
// deferred branch dependency so forward references work.
func (a *Assembler) encodeBranchInst(d decoded, cond uint32, operands []string, lineNo int) (uint32, *Dependency, error) {
	if len(operands) < 1 {
		return 0, nil, fmt.Errorf("%s requires 1 operand, got %d", d.root, len(operands))
	}
	target := operands[0]

	lBit := uint32(0)
	if d.root == "BL" {
		lBit = 1
	}

	word := (cond << 28) | (5 << 25) | (lBit << 24)
	return word, &Dependency{Kind: DepAddrBranch, Label: target}, nil
}
