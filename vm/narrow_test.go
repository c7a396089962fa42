package vm

import "testing"

func TestCheckedUint32(t *testing.T) {
	tests := []struct {
		name  string
		in    int64
		want  uint32
		valid bool
	}{
		{"zero", 0, 0, true},
		{"max", 0xFFFFFFFF, 0xFFFFFFFF, true},
		{"negative", -1, 0, false},
		{"too large", 0x100000000, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckedUint32(tt.in)
			if (err == nil) != tt.valid {
				t.Fatalf("CheckedUint32(%d) err = %v, valid = %v", tt.in, err, tt.valid)
			}
			if err == nil && got != tt.want {
				t.Errorf("CheckedUint32(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCheckedUint16(t *testing.T) {
	if _, err := CheckedUint16(0x10000); err == nil {
		t.Error("CheckedUint16(0x10000) should fail")
	}
	got, err := CheckedUint16(0xFFFF)
	if err != nil || got != 0xFFFF {
		t.Errorf("CheckedUint16(0xFFFF) = (%d, %v), want (65535, nil)", got, err)
	}
}

func TestCheckedByte(t *testing.T) {
	if _, err := CheckedByte(0x100); err == nil {
		t.Error("CheckedByte(0x100) should fail")
	}
	got, err := CheckedByte(0xAB)
	if err != nil || got != 0xAB {
		t.Errorf("CheckedByte(0xAB) = (%d, %v), want (171, nil)", got, err)
	}
}

func TestSigned(t *testing.T) {
	if Signed(0xFFFFFFFF) != -1 {
		t.Errorf("Signed(0xFFFFFFFF) = %d, want -1", Signed(0xFFFFFFFF))
	}
	if Signed(0x7FFFFFFF) != 2147483647 {
		t.Errorf("Signed(0x7FFFFFFF) = %d, want 2147483647", Signed(0x7FFFFFFF))
	}
}
