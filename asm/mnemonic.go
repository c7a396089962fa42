package asm

import "strings"

// conditions lists the ARM condition mnemonics (the 16 condition codes plus
// the HS/LO aliases); longest-match order doesn't matter here since they're
// all two letters (AL/NV included).
var conditions = map[string]bool{
	"EQ": true, "NE": true, "CS": true, "HS": true, "CC": true, "LO": true,
	"MI": true, "PL": true, "VS": true, "VC": true, "HI": true, "LS": true,
	"GE": true, "LT": true, "GT": true, "LE": true, "AL": true, "NV": true,
}

// family identifies which encoder a mnemonic root routes to.
type family int

const (
	famDataProc family = iota
	famMemory
	famBranch
	famMultiply
	famMultipleMem
	famSWI
	famPSR
	famSwap
	famMisc
	famUnknown
)

var dataProcRoots = []string{"MOV", "MVN", "ADD", "ADC", "SUB", "SBC", "RSB", "RSC",
	"AND", "ORR", "EOR", "BIC", "CMP", "CMN", "TST", "TEQ"}

// decoded describes a mnemonic after stripping its condition, S-flag,
// byte-size and addressing-mode suffixes.
type decoded struct {
	fam    family
	root   string // e.g. "ADD", "LDR", "STM"
	cond   string // "" defaults to AL
	sFlag  bool   // S suffix requesting flag update
	byteOp bool   // B suffix on LDR/STR/SWP (byte-sized access)
	mode   string // IA/IB/DA/DB for LDM/STM, "" = default IA
}

// decomposeMnemonic splits a raw mnemonic token (e.g. "ADDSEQ", "LDRB",
// "STMDB", "BNE") into its instruction family and modifier suffixes.
func decomposeMnemonic(raw string) (decoded, bool) {
	m := strings.ToUpper(raw)

	switch m {
	case "NOP", "HALT":
		return decoded{fam: famMisc, root: m}, true
	case "SWI", "SVC":
		d, _ := stripCond(m, "SWI")
		d.fam = famSWI
		d.root = "SWI"
		return d, true
	case "MRS", "MSR":
		d, _ := stripCond(m, m[:3])
		d.fam = famPSR
		d.root = m[:3]
		return d, true
	}

	for _, root := range dataProcRoots {
		if strings.HasPrefix(m, root) {
			rest := m[len(root):]
			d := decoded{fam: famDataProc, root: root}
			if strings.HasPrefix(rest, "S") {
				d.sFlag = true
				rest = rest[1:]
			}
			if rest == "" {
				d.cond = "AL"
				return d, true
			}
			if conditions[rest] {
				d.cond = rest
				return d, true
			}
		}
	}

	if strings.HasPrefix(m, "LDR") || strings.HasPrefix(m, "STR") {
		root := m[:3]
		rest := m[3:]
		d := decoded{fam: famMemory, root: root}
		if strings.HasPrefix(rest, "B") {
			d.byteOp = true
			rest = rest[1:]
		}
		if rest == "" {
			d.cond = "AL"
			return d, true
		}
		if conditions[rest] {
			d.cond = rest
			return d, true
		}
	}

	if strings.HasPrefix(m, "LDM") || strings.HasPrefix(m, "STM") {
		root := m[:3]
		rest := m[3:]
		d := decoded{fam: famMultipleMem, root: root, mode: "IA"}
		for _, mode := range []string{"IA", "IB", "DA", "DB"} {
			if strings.HasPrefix(rest, mode) {
				d.mode = mode
				rest = rest[len(mode):]
				break
			}
		}
		if rest == "" {
			d.cond = "AL"
			return d, true
		}
		if conditions[rest] {
			d.cond = rest
			return d, true
		}
	}

	if strings.HasPrefix(m, "B") {
		// Plain B has priority for the ambiguous BL* mnemonics: BLT, BLE,
		// BLS and BLO are conditional branches, not conditional BLs.
		switch {
		case m == "B":
			return decoded{fam: famBranch, root: "B", cond: "AL"}, true
		case m == "BL":
			return decoded{fam: famBranch, root: "BL", cond: "AL"}, true
		case conditions[m[1:]]:
			return decoded{fam: famBranch, root: "B", cond: m[1:]}, true
		case m[1] == 'L' && conditions[m[2:]]:
			return decoded{fam: famBranch, root: "BL", cond: m[2:]}, true
		}
	}

	if strings.HasPrefix(m, "MUL") || strings.HasPrefix(m, "MLA") {
		root := m[:3]
		d, ok := stripCondWithS(m, root)
		if ok {
			d.fam = famMultiply
			d.root = root
			return d, true
		}
	}

	if strings.HasPrefix(m, "SWP") {
		rest := m[3:]
		d := decoded{fam: famSwap, root: "SWP"}
		if strings.HasPrefix(rest, "B") {
			d.byteOp = true
			rest = rest[1:]
		}
		if rest == "" {
			d.cond = "AL"
			return d, true
		}
		if conditions[rest] {
			d.cond = rest
			return d, true
		}
	}

	return decoded{}, false
}

func stripCond(m, root string) (decoded, bool) {
	rest := m[len(root):]
	if rest == "" {
		return decoded{cond: "AL"}, true
	}
	if conditions[rest] {
		return decoded{cond: rest}, true
	}
	return decoded{}, false
}

func stripCondWithS(m, root string) (decoded, bool) {
	rest := m[len(root):]
	d := decoded{}
	if strings.HasPrefix(rest, "S") {
		d.sFlag = true
		rest = rest[1:]
	}
	if rest == "" {
		d.cond = "AL"
		return d, true
	}
	if conditions[rest] {
		d.cond = rest
		return d, true
	}
	return decoded{}, false
}

// conditionCode maps a 2-letter (or "AL") condition mnemonic to its 4-bit
// ARM encoding (bits 31-28 of the instruction word).
func conditionCode(cond string) uint32 {
	switch cond {
	case "EQ":
		return 0x0
	case "NE":
		return 0x1
	case "CS", "HS":
		return 0x2
	case "CC", "LO":
		return 0x3
	case "MI":
		return 0x4
	case "PL":
		return 0x5
	case "VS":
		return 0x6
	case "VC":
		return 0x7
	case "HI":
		return 0x8
	case "LS":
		return 0x9
	case "GE":
		return 0xA
	case "LT":
		return 0xB
	case "GT":
		return 0xC
	case "LE":
		return 0xD
	case "NV":
		return 0xF
	default: // AL and unrecognized
		return 0xE
	}
}
