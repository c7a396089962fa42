package asm

import "fmt"

// parseInstruction decomposes a mnemonic and dispatches to the matching
// per-family encoder, producing one 4-byte instruction word and an optional
// deferred label dependency.
func (a *Assembler) parseInstruction(mnemonicRaw, rest string, lineNo int, raw string) (Record, error) {
	d, ok := decomposeMnemonic(mnemonicRaw)
	if !ok {
		return Record{}, lineErr(lineNo, "unrecognized instruction: %s", mnemonicRaw)
	}
	a.ensureSection()

	var operands []string
	if trimAll(rest) != "" {
		operands = splitTopLevelCommas(rest)
	}
	cond := conditionCode(d.cond)

	var word uint32
	var dep *Dependency
	var err error

	switch d.fam {
	case famDataProc:
		word, err = a.encodeDataProc(d, cond, operands, lineNo)
	case famMemory:
		word, dep, err = a.encodeMemorySingle(d, cond, operands, lineNo)
	case famBranch:
		word, dep, err = a.encodeBranchInst(d, cond, operands, lineNo)
	case famMultiply:
		word, err = encodeMultiplyInst(d, cond, operands)
	case famMultipleMem:
		word, err = encodeMultipleMem(d, cond, operands)
	case famSWI:
		word, err = encodeSWI(cond, operands)
	case famPSR:
		word, err = encodePSR(d, cond, operands)
	case famSwap:
		word, err = encodeSwap(d, cond, operands)
	case famMisc:
		word = encodeMisc(d, cond)
	default:
		err = fmt.Errorf("instruction family not recognized for %s", mnemonicRaw)
	}
	if err != nil {
		return Record{}, lineErr(lineNo, "%s: %v", mnemonicRaw, err)
	}

	buf := make([]byte, 4)
	putLE32(buf, word)
	return Record{Kind: RecBytecode, Line: lineNo, Bytes: buf, Dep: dep, IsInstruction: true}, nil
}
