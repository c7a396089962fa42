package vm

import "testing"

func TestMemoryByteRoundTrip(t *testing.T) {
	m := NewMemory(64, nil)
	if err := m.WriteByte(4, 0xAB); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	got, err := m.ReadByte(4)
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if got != 0xAB {
		t.Errorf("ReadByte(4) = 0x%X, want 0xAB", got)
	}
}

func TestMemoryWordLittleEndian(t *testing.T) {
	m := NewMemory(64, nil)
	if err := m.WriteWord(0, 0x01020304); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}
	b0, _ := m.ReadByte(0)
	b1, _ := m.ReadByte(1)
	b2, _ := m.ReadByte(2)
	b3, _ := m.ReadByte(3)
	if b0 != 0x04 || b1 != 0x03 || b2 != 0x02 || b3 != 0x01 {
		t.Errorf("bytes = %02X %02X %02X %02X, want little-endian 04 03 02 01", b0, b1, b2, b3)
	}
	word, err := m.ReadWord(0)
	if err != nil {
		t.Fatalf("ReadWord: %v", err)
	}
	if word != 0x01020304 {
		t.Errorf("ReadWord(0) = 0x%X, want 0x01020304", word)
	}
}

func TestMemoryHalfwordRoundTrip(t *testing.T) {
	m := NewMemory(64, nil)
	if err := m.WriteHalfword(8, 0xBEEF); err != nil {
		t.Fatalf("WriteHalfword: %v", err)
	}
	got, err := m.ReadHalfword(8)
	if err != nil {
		t.Fatalf("ReadHalfword: %v", err)
	}
	if got != 0xBEEF {
		t.Errorf("ReadHalfword(8) = 0x%X, want 0xBEEF", got)
	}
}

func TestMemoryUnalignedWordRejected(t *testing.T) {
	m := NewMemory(64, nil)
	if _, err := m.ReadWord(1); err == nil {
		t.Error("expected an alignment error reading a word at address 1")
	}
}

func TestMemoryUnalignedHalfwordRejected(t *testing.T) {
	m := NewMemory(64, nil)
	if err := m.WriteHalfword(1, 5); err == nil {
		t.Error("expected an alignment error writing a halfword at address 1")
	}
}

func TestMemoryOutOfBoundsRejected(t *testing.T) {
	m := NewMemory(16, nil)
	if _, err := m.ReadByte(100); err == nil {
		t.Error("expected an out-of-range error")
	}
}

func TestMemoryLoadSectionMarksInitialized(t *testing.T) {
	m := NewMemory(16, nil)
	if err := m.LoadSection(0, []byte{1, 2, 3}); err != nil {
		t.Fatalf("LoadSection: %v", err)
	}
	if !m.initialized[0] || !m.initialized[2] {
		t.Error("LoadSection should mark its bytes initialized")
	}
}

func TestMemoryLoadSectionOutOfBoundsErrors(t *testing.T) {
	m := NewMemory(4, nil)
	if err := m.LoadSection(0, []byte{1, 2, 3, 4, 5}); err == nil {
		t.Error("expected an error loading a section that overflows memory")
	}
}

func TestMemoryUninitializedReadBreakpoint(t *testing.T) {
	m := NewMemory(16, nil)
	m.SetBreakpoint(0, "u")

	defer func() {
		bp, ok := recover().(*BreakpointHit)
		if !ok {
			t.Fatal("expected a *BreakpointHit panic on uninitialized read")
		}
		if bp.Kind != "memory" {
			t.Errorf("Kind = %q, want memory", bp.Kind)
		}
	}()
	_, _ = m.ReadByte(0)
}

func TestMemoryWriteBreakpoint(t *testing.T) {
	m := NewMemory(16, nil)
	m.SetBreakpoint(5, "w")

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on write breakpoint")
		}
	}()
	_ = m.WriteByte(5, 1)
}

func TestMemoryGetBytesIgnoresBreakpoints(t *testing.T) {
	m := NewMemory(16, nil)
	if err := m.WriteByte(0, 9); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	m.SetBreakpoint(0, "rxu")
	m.SetBreakpoint(0, "r")
	out, err := m.GetBytes(0, 1)
	if err != nil {
		t.Fatalf("GetBytes: %v", err)
	}
	if len(out) != 1 || out[0] != 9 {
		t.Errorf("GetBytes(0,1) = %v, want [9]", out)
	}
}

func TestMemorySize(t *testing.T) {
	m := NewMemory(1024, nil)
	if got := m.Size(); got != 1024 {
		t.Errorf("Size() = %d, want 1024", got)
	}
}
