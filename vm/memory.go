package vm

import (
	"fmt"

	"github.com/arm-pedagogical/armsim/vm/history"
)

// memBreak is the per-byte breakpoint mask: execute, write, read,
// uninitialized-read.
type memBreak struct {
	exec, write, read, uninit bool
}

// Memory is the simulator's flat 32-bit address space, backed by the
// section layout an Assembler bundle produces (INTVEC/CODE/DATA/SNIPPET),
// plus per-byte initialization tracking and breakpoint masks, sized to the
// configured maxtotalmem ceiling that Load passes.
type Memory struct {
	bytes       []byte
	initialized []bool
	bkpts       map[uint32]memBreak
	bkActive    bool
	maxAddr     uint32

	AccessCount uint64
	ReadCount   uint64
	WriteCount  uint64

	log *history.Log
}

// NewMemory allocates a memory space of size bytes (the configured
// maxtotalmem ceiling).
func NewMemory(size uint32, log *history.Log) *Memory {
	return &Memory{
		bytes:       make([]byte, size),
		initialized: make([]bool, size),
		bkpts:       map[uint32]memBreak{},
		bkActive:    true,
		maxAddr:     size,
		log:         log,
	}
}

// LoadSection copies assembled bytes into memory starting at base,
// marking them initialized. Used once at load time for every section the
// assembler bundle produced.
func (m *Memory) LoadSection(base uint32, data []byte) error {
	if uint64(base)+uint64(len(data)) > uint64(m.maxAddr) {
		return fmt.Errorf("section at 0x%08X (len %d) exceeds configured memory size 0x%08X", base, len(data), m.maxAddr)
	}
	copy(m.bytes[base:], data)
	for i := range data {
		m.initialized[int(base)+i] = true
	}
	return nil
}

func (m *Memory) checkBounds(address uint32, size int) error {
	if uint64(address)+uint64(size) > uint64(len(m.bytes)) {
		return fmt.Errorf("memory access out of range: address 0x%08X (size %d) exceeds 0x%08X", address, size, m.maxAddr)
	}
	return nil
}

func (m *Memory) checkAlignment(address uint32, size int) error {
	switch size {
	case 4:
		if address&0x3 != 0 {
			return fmt.Errorf("unaligned word access at 0x%08X", address)
		}
	case 2:
		if address&0x1 != 0 {
			return fmt.Errorf("unaligned halfword access at 0x%08X", address)
		}
	}
	return nil
}

func (m *Memory) checkBreak(address uint32, kind string) {
	if !m.bkActive {
		return
	}
	b, ok := m.bkpts[address]
	if !ok {
		return
	}
	hit := false
	switch kind {
	case "read":
		hit = b.read
	case "write":
		hit = b.write
	case "exec":
		hit = b.exec
	case "uninit":
		hit = b.uninit
	}
	if hit {
		panic(&BreakpointHit{Kind: "memory", Detail: fmt.Sprintf("0x%08X:%s", address, kind)})
	}
}

// SetBreakpoint installs a byte-addressed mask ("x","w","r","u" combined,
// "" clears).
func (m *Memory) SetBreakpoint(address uint32, modeStr string) {
	m.bkpts[address] = memBreak{
		exec:   containsByte(modeStr, 'x'),
		write:  containsByte(modeStr, 'w'),
		read:   containsByte(modeStr, 'r'),
		uninit: containsByte(modeStr, 'u'),
	}
}

// WithBreakpointsDisabled runs fn with memory breakpoints suppressed, used
// by disassembly/explain paths that peek at bytes without counting as a
// program access.
func (m *Memory) WithBreakpointsDisabled(fn func()) {
	prev := m.bkActive
	m.bkActive = false
	defer func() { m.bkActive = prev }()
	fn()
}

// CheckExecute raises an exec breakpoint for the fetch at address, without
// performing the fetch itself.
func (m *Memory) CheckExecute(address uint32) {
	m.checkBreak(address, "exec")
}

func (m *Memory) ReadByte(address uint32) (byte, error) {
	if err := m.checkBounds(address, 1); err != nil {
		return 0, err
	}
	if !m.initialized[address] {
		m.checkBreak(address, "uninit")
	}
	m.checkBreak(address, "read")
	m.AccessCount++
	m.ReadCount++
	return m.bytes[address], nil
}

func (m *Memory) WriteByte(address uint32, value byte) error {
	if err := m.checkBounds(address, 1); err != nil {
		return err
	}
	m.checkBreak(address, "write")
	old := m.bytes[address]
	m.bytes[address] = value
	m.initialized[address] = true
	m.AccessCount++
	m.WriteCount++
	if m.log != nil && old != value {
		m.log.Record("memory", fmt.Sprintf("0x%08X", address), uint64(old), uint64(value))
	}
	return nil
}

func (m *Memory) ReadHalfword(address uint32) (uint16, error) {
	if err := m.checkAlignment(address, 2); err != nil {
		return 0, err
	}
	lo, err := m.ReadByte(address)
	if err != nil {
		return 0, err
	}
	hi, err := m.ReadByte(address + 1)
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

func (m *Memory) WriteHalfword(address uint32, value uint16) error {
	if err := m.checkAlignment(address, 2); err != nil {
		return err
	}
	if err := m.WriteByte(address, byte(value)); err != nil {
		return err
	}
	return m.WriteByte(address+1, byte(value>>8))
}

func (m *Memory) ReadWord(address uint32) (uint32, error) {
	if err := m.checkAlignment(address, 4); err != nil {
		return 0, err
	}
	var value uint32
	for i := uint32(0); i < 4; i++ {
		b, err := m.ReadByte(address + i)
		if err != nil {
			return 0, err
		}
		value |= uint32(b) << (8 * i)
	}
	return value, nil
}

func (m *Memory) WriteWord(address uint32, value uint32) error {
	if err := m.checkAlignment(address, 4); err != nil {
		return err
	}
	for i := uint32(0); i < 4; i++ {
		if err := m.WriteByte(address+i, byte(value>>(8*i))); err != nil {
			return err
		}
	}
	return nil
}

// GetBytes reads length bytes without tripping read breakpoints, for
// disassembly and UI hex-dump views.
func (m *Memory) GetBytes(address, length uint32) ([]byte, error) {
	var out []byte
	m.WithBreakpointsDisabled(func() {
		out = make([]byte, length)
		for i := uint32(0); i < length; i++ {
			if int(address+i) < len(m.bytes) {
				out[i] = m.bytes[address+i]
			}
		}
	})
	return out, nil
}

func (m *Memory) Size() uint32 { return m.maxAddr }
