package vm_test

import (
	"testing"

	"github.com/arm-pedagogical/armsim/asm"
	"github.com/arm-pedagogical/armsim/vm"
)

// encodeLine assembles one instruction in snippet mode and returns the word.
func encodeLine(t *testing.T, line string) uint32 {
	t.Helper()
	bundle, errs := asm.Assemble([]string{line}, asm.DefaultSettings())
	if len(errs) > 0 {
		t.Fatalf("Assemble(%q): %v", line, errs)
	}
	code := bundle.Sections["SNIPPET"]
	if len(code) < 4 {
		t.Fatalf("Assemble(%q) produced %d bytes", line, len(code))
	}
	return uint32(code[0]) | uint32(code[1])<<8 | uint32(code[2])<<16 | uint32(code[3])<<24
}

func TestDecodeFamilies(t *testing.T) {
	tests := []struct {
		line string
		fam  vm.Family
	}{
		{"MOV R0, #1", vm.FamDataProc},
		{"ADDS R1, R2, R3", vm.FamDataProc},
		{"CMP R0, #5", vm.FamDataProc},
		{"LDR R0, [R1, #4]", vm.FamMemorySingle},
		{"STRB R0, [R1]", vm.FamMemorySingle},
		{"LDMIA R1!, {R0, R2}", vm.FamMemoryMultiple},
		{"STMDB SP!, {R0-R3}", vm.FamMemoryMultiple},
		{"MUL R0, R1, R2", vm.FamMultiply},
		{"MLA R0, R1, R2, R3", vm.FamMultiply},
		{"SWI #42", vm.FamSWI},
		{"SWP R0, R1, [R2]", vm.FamSwap},
		{"SWPB R0, R1, [R2]", vm.FamSwap},
		{"MRS R0, CPSR", vm.FamPSR},
		{"MSR CPSR_f, R0", vm.FamPSR},
		{"MSR CPSR_f, #0xF0000000", vm.FamPSR},
		{"NOP", vm.FamMisc},
		{"HALT", vm.FamMisc},
	}
	for _, tt := range tests {
		d := vm.Decode(encodeLine(t, tt.line))
		if d.Family != tt.fam {
			t.Errorf("Decode(%q).Family = %v, want %v", tt.line, d.Family, tt.fam)
		}
	}
}

func TestDecodeBranchFamily(t *testing.T) {
	// Branches need a label; assemble a tiny loop instead of a single line.
	bundle, errs := asm.Assemble([]string{"loop: NOP", "B loop"}, asm.DefaultSettings())
	if len(errs) > 0 {
		t.Fatalf("Assemble: %v", errs)
	}
	code := bundle.Sections["SNIPPET"]
	word := uint32(code[4]) | uint32(code[5])<<8 | uint32(code[6])<<16 | uint32(code[7])<<24
	d := vm.Decode(word)
	if d.Family != vm.FamBranch {
		t.Fatalf("Family = %v, want branch", d.Family)
	}
	if d.Offset != -12 {
		t.Errorf("Offset = %d, want -12 (back to 0 from 4+8)", d.Offset)
	}
}

func TestDecodeUndefined(t *testing.T) {
	// A coprocessor transfer and BX both fall outside the supported set.
	for _, word := range []uint32{0xEC000000, 0xE12FFF10} {
		d := vm.Decode(word)
		if d.Family != vm.FamUndefined {
			t.Errorf("Decode(0x%08X).Family = %v, want undefined", word, d.Family)
		}
	}
}

func TestDecodeConditionField(t *testing.T) {
	d := vm.Decode(encodeLine(t, "MOVEQ R0, #1"))
	if d.Cond != vm.CondEQ {
		t.Errorf("Cond = %v, want EQ", d.Cond)
	}
	d = vm.Decode(encodeLine(t, "MOV R0, #1"))
	if d.Cond != vm.CondAL {
		t.Errorf("Cond = %v, want AL", d.Cond)
	}
}

// Assembling the disassembly of an assembled instruction must reproduce
// the same word.
func TestAssembleDisassembleRoundTrip(t *testing.T) {
	lines := []string{
		"MOV R0, #1",
		"MOVS R0, #255",
		"MVN R3, R4",
		"ADD R1, R2, R3",
		"ADDEQ R1, R2, #4",
		"SUBS R5, R6, R7, LSL #2",
		"MOV R0, R1, LSR #1",
		"MOV R0, R1, ASR #31",
		"MOV R0, R1, ROR #16",
		"MOV R0, R1, RRX",
		"MOV R0, R1, LSL R2",
		"AND R0, R1, R2",
		"ORR R0, R1, #0xFF",
		"EOR R0, R1, R2",
		"BIC R0, R1, #1",
		"CMP R0, #5",
		"CMN R0, R1",
		"TST R0, #1",
		"TEQ R0, R1",
		"LDR R0, [R1, #4]",
		"LDR R0, [R1, #-8]",
		"STR R2, [R3]",
		"STRB R2, [R3, #1]",
		"LDRB R4, [R5]",
		"LDR R0, [R1, R2, LSL #2]",
		"LDR R0, [R1], #4",
		"STR R0, [R1, #4]!",
		"LDMIA R1!, {R0, R2, R7}",
		"STMDB SP!, {R0-R3, LR}",
		"LDMIB R2, {R0, R1}",
		"STMDA R3, {R4}",
		"MUL R0, R1, R2",
		"MULS R0, R1, R2",
		"MLA R0, R1, R2, R3",
		"SWI #42",
		"SWP R0, R1, [R2]",
		"SWPB R0, R1, [R2]",
		"MRS R0, CPSR",
		"MRS R1, SPSR",
		"MSR CPSR_f, R0",
		"MSR SPSR_f, R0",
		"MSR CPSR_f, #0xF0000000",
		"NOP",
		"HALT",
	}
	for _, line := range lines {
		word := encodeLine(t, line)
		text := vm.Disassemble(vm.Decode(word))
		back := encodeLine(t, text)
		if back != word {
			t.Errorf("round trip %q -> 0x%08X -> %q -> 0x%08X", line, word, text, back)
		}
	}
}
