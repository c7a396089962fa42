package token_test

import (
	"testing"

	"github.com/arm-pedagogical/armsim/token"
)

func TestDecodeString_Standard(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"newline", `\n`, "\n"},
		{"tab", `\t`, "\t"},
		{"carriage return", `\r`, "\r"},
		{"backslash", `\\`, "\\"},
		{"null", `\0`, "\x00"},
		{"double quote", `\"`, "\""},
		{"single quote", `\'`, "'"},
		{"alert", `\a`, "\a"},
		{"backspace", `\b`, "\b"},
		{"form feed", `\f`, "\f"},
		{"vertical tab", `\v`, "\v"},
		{"hex upper", `\x41`, "A"},
		{"hex lower", `\xff`, "\xff"},
		{"embedded", `Hello\nWorld`, "Hello\nWorld"},
		{"plain text", "HELLO", "HELLO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := token.DecodeString(tt.input)
			if err != nil {
				t.Fatalf("DecodeString(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("DecodeString(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDecodeString_UnknownEscape(t *testing.T) {
	if _, err := token.DecodeString(`\q`); err == nil {
		t.Errorf("DecodeString with unknown escape: expected error, got none")
	}
}

func TestParseEscapeChar(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected byte
		consumed int
		wantErr  bool
	}{
		{"newline", `\n`, '\n', 2, false},
		{"hex", `\x0A`, '\n', 4, false},
		{"trailing ignored by caller", `\nX`, '\n', 2, false},
		{"no backslash", "n", 0, 0, true},
		{"unknown escape", `\q`, 0, 0, true},
		{"truncated hex", `\x4`, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, consumed, err := token.ParseEscapeChar(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseEscapeChar(%q) expected error, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEscapeChar(%q) unexpected error: %v", tt.input, err)
			}
			if b != tt.expected {
				t.Errorf("ParseEscapeChar(%q) byte = %d, want %d", tt.input, b, tt.expected)
			}
			if consumed != tt.consumed {
				t.Errorf("ParseEscapeChar(%q) consumed = %d, want %d", tt.input, consumed, tt.consumed)
			}
		})
	}
}
