package asm

import "testing"

func TestDecomposeMnemonic(t *testing.T) {
	tests := []struct {
		in     string
		fam    family
		root   string
		cond   string
		sFlag  bool
		byteOp bool
		mode   string
		ok     bool
	}{
		{"MOV", famDataProc, "MOV", "AL", false, false, "", true},
		{"ADDS", famDataProc, "ADD", "AL", true, false, "", true},
		{"ADDSEQ", famDataProc, "ADD", "EQ", true, false, "", true},
		{"SUBNE", famDataProc, "SUB", "NE", false, false, "", true},
		{"CMP", famDataProc, "CMP", "AL", false, false, "", true},
		{"LDR", famMemory, "LDR", "AL", false, false, "", true},
		{"LDRB", famMemory, "LDR", "AL", false, true, "", true},
		{"STRBEQ", famMemory, "STR", "EQ", false, true, "", true},
		{"LDMIA", famMultipleMem, "LDM", "AL", false, false, "IA", true},
		{"STMDB", famMultipleMem, "STM", "AL", false, false, "DB", true},
		{"LDMFD", famMultipleMem, "", "", false, false, "", false}, // stack aliases unsupported
		{"B", famBranch, "B", "AL", false, false, "", true},
		{"BL", famBranch, "BL", "AL", false, false, "", true},
		{"BNE", famBranch, "B", "NE", false, false, "", true},
		{"BLT", famBranch, "B", "LT", false, false, "", true},
		{"BLE", famBranch, "B", "LE", false, false, "", true},
		{"BLS", famBranch, "B", "LS", false, false, "", true},
		{"BLLT", famBranch, "BL", "LT", false, false, "", true},
		{"BLEQ", famBranch, "BL", "EQ", false, false, "", true},
		{"MUL", famMultiply, "MUL", "AL", false, false, "", true},
		{"MLAS", famMultiply, "MLA", "AL", true, false, "", true},
		{"SWI", famSWI, "SWI", "AL", false, false, "", true},
		{"SVC", famSWI, "SWI", "AL", false, false, "", true},
		{"MRS", famPSR, "MRS", "AL", false, false, "", true},
		{"MSR", famPSR, "MSR", "AL", false, false, "", true},
		{"SWP", famSwap, "SWP", "AL", false, false, "", true},
		{"SWPB", famSwap, "SWP", "AL", false, true, "", true},
		{"NOP", famMisc, "NOP", "", false, false, "", true},
		{"HALT", famMisc, "HALT", "", false, false, "", true},
		{"FROB", famUnknown, "", "", false, false, "", false},
	}
	for _, tt := range tests {
		d, ok := decomposeMnemonic(tt.in)
		if ok != tt.ok {
			t.Errorf("decomposeMnemonic(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if d.fam != tt.fam || d.root != tt.root || d.cond != tt.cond ||
			d.sFlag != tt.sFlag || d.byteOp != tt.byteOp || d.mode != tt.mode {
			t.Errorf("decomposeMnemonic(%q) = %+v, want fam=%v root=%q cond=%q s=%v b=%v mode=%q",
				tt.in, d, tt.fam, tt.root, tt.cond, tt.sFlag, tt.byteOp, tt.mode)
		}
	}
}

func TestConditionCodeBits(t *testing.T) {
	tests := map[string]uint32{
		"EQ": 0x0, "NE": 0x1, "CS": 0x2, "HS": 0x2, "CC": 0x3, "LO": 0x3,
		"MI": 0x4, "PL": 0x5, "VS": 0x6, "VC": 0x7, "HI": 0x8, "LS": 0x9,
		"GE": 0xA, "LT": 0xB, "GT": 0xC, "LE": 0xD, "AL": 0xE, "NV": 0xF,
	}
	for cond, want := range tests {
		if got := conditionCode(cond); got != want {
			t.Errorf("conditionCode(%q) = %X, want %X", cond, got, want)
		}
	}
}

func TestSplitTopLevelCommas(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"R0, R1, R2", []string{"R0", "R1", "R2"}},
		{"R0, [R1, #4]", []string{"R0", "[R1, #4]"}},
		{"R1!, {R0,R2}", []string{"R1!", "{R0,R2}"}},
		{"R0, [R1], #4", []string{"R0", "[R1]", "#4"}},
	}
	for _, tt := range tests {
		got := splitTopLevelCommas(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitTopLevelCommas(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitTopLevelCommas(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
