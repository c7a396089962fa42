package vm

import (
	"strconv"

	"github.com/arm-pedagogical/armsim/vm/history"
)

// Mode is a processor mode, selecting which physical bank backs R8-R14.
type Mode int

const (
	ModeUser Mode = iota
	ModeFIQ
	ModeIRQ
	ModeSVC
)

func (m Mode) String() string {
	switch m {
	case ModeUser:
		return "USER"
	case ModeFIQ:
		return "FIQ"
	case ModeIRQ:
		return "IRQ"
	case ModeSVC:
		return "SVC"
	default:
		return "?"
	}
}

// modeBits mirrors the ARM CPSR mode field encoding (bits 4-0), used only
// for ToUint32/FromUint32 round-tripping.
var modeBits = map[Mode]uint32{ModeUser: 0x10, ModeFIQ: 0x11, ModeIRQ: 0x12, ModeSVC: 0x13}
var bitsMode = map[uint32]Mode{0x10: ModeUser, 0x11: ModeFIQ, 0x12: ModeIRQ, 0x13: ModeSVC}

const pcReadOffset = 8

// CPSR is the current program status register: condition flags, interrupt
// masks and the current processor mode.
type CPSR struct {
	N, Z, C, V bool
	I, F       bool // interrupt masks: I=IRQ disabled, F=FIQ disabled
	Mode       Mode
}

// ToUint32 packs flags at bits 31-28, masks at 7-6, mode at 4-0.
func (c CPSR) ToUint32() uint32 {
	var v uint32
	if c.N {
		v |= 1 << 31
	}
	if c.Z {
		v |= 1 << 30
	}
	if c.C {
		v |= 1 << 29
	}
	if c.V {
		v |= 1 << 28
	}
	if c.I {
		v |= 1 << 7
	}
	if c.F {
		v |= 1 << 6
	}
	v |= modeBits[c.Mode]
	return v
}

// FromUint32 unpacks a 32-bit value into CPSR fields.
func FromUint32(v uint32) CPSR {
	mode, ok := bitsMode[v&0x1F]
	if !ok {
		mode = ModeUser
	}
	return CPSR{
		N: v&(1<<31) != 0, Z: v&(1<<30) != 0, C: v&(1<<29) != 0, V: v&(1<<28) != 0,
		I: v&(1<<7) != 0, F: v&(1<<6) != 0, Mode: mode,
	}
}

// regBreak is the per-register breakpoint mask (bit0=write, bit1=read).
type regBreak struct{ write, read bool }

// Registers is the banked register file: R0-R7 and R15 are shared across
// every mode, R8-R12 are additionally banked for FIQ, and R13-R14 are
// banked per mode. Mode transitions swap which physical slots are
// visible; they never copy contents.
type Registers struct {
	low      [8]uint32          // R0-R7, shared
	highCom  [5]uint32          // R8-R12 for User/IRQ/SVC
	highFIQ  [5]uint32          // R8-R12 for FIQ
	bankLo   map[Mode][2]uint32 // R13(SP),R14(LR) per mode
	pc       uint32
	cpsr     CPSR
	spsr     map[Mode]CPSR // every non-User mode has its own SPSR
	bkpts    map[string]regBreak
	bkActive bool

	log *history.Log
}

func NewRegisters(log *history.Log) *Registers {
	r := &Registers{
		bankLo: map[Mode][2]uint32{
			ModeUser: {}, ModeFIQ: {}, ModeIRQ: {}, ModeSVC: {},
		},
		spsr:     map[Mode]CPSR{ModeFIQ: {}, ModeIRQ: {}, ModeSVC: {}},
		bkpts:    map[string]regBreak{},
		bkActive: true,
		cpsr:     CPSR{Mode: ModeUser},
		log:      log,
	}
	return r
}

func (r *Registers) Mode() Mode         { return r.cpsr.Mode }
func (r *Registers) CPSR() CPSR         { return r.cpsr }
func (r *Registers) PCPhysical() uint32 { return r.pc }

// Get reads a logical register (0-15) in the current mode. R15 reads as
// PC+8, the pedagogical pipeline model.
func (r *Registers) Get(reg int) uint32 {
	return r.getRaw(reg, r.cpsr.Mode)
}

func (r *Registers) getRaw(reg int, mode Mode) uint32 {
	r.checkBreak(mode, reg, true)
	switch {
	case reg == 15:
		return r.pc + pcReadOffset
	case reg >= 0 && reg <= 7:
		return r.low[reg]
	case reg >= 8 && reg <= 12:
		if mode == ModeFIQ {
			return r.highFIQ[reg-8]
		}
		return r.highCom[reg-8]
	case reg == 13 || reg == 14:
		bank := r.bankLo[mode]
		return bank[reg-13]
	}
	return 0
}

// Set writes a logical register in the current mode, logging the old/new
// value pair for step-back. R15 holds the physical fetch address; the +8
// pipeline view exists only on the read side, so a facade writing PC in
// its as-read form must subtract the offset first (see Debugger.SetRegister).
func (r *Registers) Set(reg int, value uint32) {
	r.setRaw(reg, value, r.cpsr.Mode)
}

func (r *Registers) setRaw(reg int, value uint32, mode Mode) {
	r.checkBreak(mode, reg, false)
	if reg == 15 {
		r.logWrite(regKey(mode, reg), r.pc, value)
		r.pc = value
		return
	}
	switch {
	case reg >= 0 && reg <= 7:
		r.logWrite(regKey(mode, reg), r.low[reg], value)
		r.low[reg] = value
	case reg >= 8 && reg <= 12:
		if mode == ModeFIQ {
			r.logWrite(regKey(mode, reg), r.highFIQ[reg-8], value)
			r.highFIQ[reg-8] = value
		} else {
			r.logWrite(regKey(mode, reg), r.highCom[reg-8], value)
			r.highCom[reg-8] = value
		}
	case reg == 13 || reg == 14:
		bank := r.bankLo[mode]
		old := bank[reg-13]
		bank[reg-13] = value
		r.bankLo[mode] = bank
		r.logWrite(regKey(mode, reg), old, value)
	}
}

func (r *Registers) logWrite(key string, old, new uint32) {
	if r.log != nil {
		r.log.Record("registers", key, uint64(old), uint64(new))
	}
}

func regKey(mode Mode, reg int) string {
	return mode.String() + ":R" + strconv.Itoa(reg)
}

// SetCPSR replaces the flag/mask/mode bits, logging the transition.
func (r *Registers) SetCPSR(c CPSR) {
	if r.log != nil {
		r.log.Record("cpsr", "CPSR", uint64(r.cpsr.ToUint32()), uint64(c.ToUint32()))
	}
	r.cpsr = c
}

// SPSR returns the saved PSR of the given (non-User) mode.
func (r *Registers) SPSR(mode Mode) CPSR { return r.spsr[mode] }

// SetSPSR writes the saved PSR of the given (non-User) mode.
func (r *Registers) SetSPSR(mode Mode, c CPSR) {
	if r.log != nil {
		r.log.Record("spsr", mode.String(), uint64(r.spsr[mode].ToUint32()), uint64(c.ToUint32()))
	}
	r.spsr[mode] = c
}

// EnterMode switches the visible register bank and CPSR mode field without
// touching any bank's contents.
func (r *Registers) EnterMode(mode Mode) {
	c := r.cpsr
	c.Mode = mode
	r.cpsr = c
}

// WithBreakpointsDisabled runs fn with register breakpoints suppressed, for
// internal reads done by disassembly/explain.
func (r *Registers) WithBreakpointsDisabled(fn func()) {
	prev := r.bkActive
	r.bkActive = false
	defer func() { r.bkActive = prev }()
	fn()
}

// SetBreakpoint installs a per-register, per-mode 2-bit mask ("r", "w",
// "rw" or "" to clear).
func (r *Registers) SetBreakpoint(mode Mode, reg int, modeStr string) {
	r.bkpts[regKey(mode, reg)] = regBreak{
		read:  containsByte(modeStr, 'r'),
		write: containsByte(modeStr, 'w'),
	}
}

func (r *Registers) checkBreak(mode Mode, reg int, isRead bool) {
	if !r.bkActive {
		return
	}
	b, ok := r.bkpts[regKey(mode, reg)]
	if !ok {
		return
	}
	if (isRead && b.read) || (!isRead && b.write) {
		panic(&BreakpointHit{Kind: "register", Detail: regKey(mode, reg)})
	}
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

// BreakpointHit is the control-flow signal a breakpoint raises; it unwinds
// the current step but preserves state mutations already applied.
type BreakpointHit struct {
	Kind   string // "memory", "register", "flag", "assertion", "instruction"
	Detail string
	Line   int // source line for assertion hits, 0 otherwise
}

func (b *BreakpointHit) Error() string { return "breakpoint: " + b.Kind + " " + b.Detail }
