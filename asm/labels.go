package asm

import "fmt"

// labelEntry records where a label was first (and, for diagnostics, only)
// defined.
type labelEntry struct {
	addr uint32
	line int
}

// LabelTable maps label name to absolute address. First definition wins;
// redefinition is an error.
type LabelTable struct {
	entries map[string]labelEntry
}

func newLabelTable() *LabelTable {
	return &LabelTable{entries: make(map[string]labelEntry)}
}

// Define records a label's address. Returns an error if the label was
// already defined, naming both occurrences.
func (lt *LabelTable) Define(name string, addr uint32, line int) error {
	if existing, ok := lt.entries[name]; ok {
		return fmt.Errorf("label %q redefined at line %d (first defined at line %d)", name, line, existing.line)
	}
	lt.entries[name] = labelEntry{addr: addr, line: line}
	return nil
}

// Lookup returns a label's address and whether it is defined.
func (lt *LabelTable) Lookup(name string) (uint32, bool) {
	e, ok := lt.entries[name]
	return e.addr, ok
}

// Snapshot returns a copy of name -> address, for facade inspection.
func (lt *LabelTable) Snapshot() map[string]uint32 {
	out := make(map[string]uint32, len(lt.entries))
	for k, v := range lt.entries {
		out[k] = v.addr
	}
	return out
}
