package vm

import "math/bits"

// setNZ folds a result into the N and Z condition flags.
func (c *CPSR) setNZ(result uint32) {
	c.N = int32(result) < 0
	c.Z = result == 0
}

// addWithCarry is the ARM adder: result = a + b + carryIn, together with
// the unsigned carry-out and the signed overflow of that addition.
// Subtraction is addition of the complement (a - b == a + ^b + 1), so all
// eight arithmetic opcodes reduce to one call with the right operands.
func addWithCarry(a, b uint32, carryIn bool) (result uint32, carryOut, overflow bool) {
	var cin uint32
	if carryIn {
		cin = 1
	}
	result, cout := bits.Add32(a, b, cin)
	carryOut = cout != 0
	// Signed overflow: both addends share a sign the result does not.
	overflow = (a^b)&(1<<31) == 0 && (a^result)&(1<<31) != 0
	return result, carryOut, overflow
}

// ShiftType selects the barrel-shifter operation applied to operand2.
type ShiftType int

const (
	ShiftLSL ShiftType = iota
	ShiftLSR
	ShiftASR
	ShiftROR
	// ShiftRRX is the one-bit rotate-through-carry ROR #0 encodes; the
	// data-processing decode rewrites it, and the LDR/STR executor does the
	// same for a register offset.
	ShiftRRX
)

// barrelShift applies one shifter operation and reports the carry the
// shifter leaves for CPSR.C. Amounts follow the instruction-encoding
// conventions: LSR #0 and ASR #0 mean a shift by 32, while LSL #0 passes
// the value through with the carry untouched. Register-specified amounts
// of zero must be handled by the caller (they leave both value and carry
// unchanged, which this function only models for LSL and ROR).
func barrelShift(value uint32, amount int, st ShiftType, carryIn bool) (uint32, bool) {
	switch st {
	case ShiftLSL:
		switch {
		case amount == 0:
			return value, carryIn
		case amount < 32:
			return value << amount, value&(1<<(32-amount)) != 0
		case amount == 32:
			return 0, value&1 != 0
		default:
			return 0, false
		}

	case ShiftLSR:
		switch {
		case amount == 0 || amount == 32:
			return 0, value&(1<<31) != 0
		case amount < 32:
			return value >> amount, value&(1<<(amount-1)) != 0
		default:
			return 0, false
		}

	case ShiftASR:
		if amount == 0 || amount >= 32 {
			// Every result bit is a copy of the sign bit, as is the carry.
			sign := value&(1<<31) != 0
			if sign {
				return ^uint32(0), true
			}
			return 0, false
		}
		return uint32(int32(value) >> amount), value&(1<<(amount-1)) != 0

	case ShiftROR:
		n := amount & 31
		if n == 0 {
			if amount == 0 {
				return value, carryIn
			}
			// A rotate by a multiple of 32 leaves the value intact but
			// still shifts bit 31 out into the carry.
			return value, value&(1<<31) != 0
		}
		rotated := bits.RotateLeft32(value, -n)
		return rotated, value&(1<<(n-1)) != 0

	case ShiftRRX:
		out := value >> 1
		if carryIn {
			out |= 1 << 31
		}
		return out, value&1 != 0
	}
	return value, carryIn
}

// ConditionCode is the 4-bit predicate in bits 31-28 of every instruction.
type ConditionCode int

const (
	CondEQ ConditionCode = iota // Z set
	CondNE                      // Z clear
	CondCS                      // C set (aka HS)
	CondCC                      // C clear (aka LO)
	CondMI                      // N set
	CondPL                      // N clear
	CondVS                      // V set
	CondVC                      // V clear
	CondHI                      // C set and Z clear
	CondLS                      // C clear or Z set
	CondGE                      // N == V
	CondLT                      // N != V
	CondGT                      // Z clear and N == V
	CondLE                      // Z set or N != V
	CondAL                      // always
	CondNV                      // reserved, never taken
)

// Holds reports whether the CPSR flags satisfy the condition code.
func (c CPSR) Holds(cond ConditionCode) bool {
	switch cond {
	case CondEQ:
		return c.Z
	case CondNE:
		return !c.Z
	case CondCS:
		return c.C
	case CondCC:
		return !c.C
	case CondMI:
		return c.N
	case CondPL:
		return !c.N
	case CondVS:
		return c.V
	case CondVC:
		return !c.V
	case CondHI:
		return c.C && !c.Z
	case CondLS:
		return !c.C || c.Z
	case CondGE:
		return c.N == c.V
	case CondLT:
		return c.N != c.V
	case CondGT:
		return !c.Z && c.N == c.V
	case CondLE:
		return c.Z || c.N != c.V
	case CondAL:
		return true
	}
	return false // NV and malformed codes never execute
}

func (cc ConditionCode) String() string {
	if cc >= 0 && int(cc) < len(condNames) {
		return condNames[cc]
	}
	return "??"
}

// ParseConditionCode maps a mnemonic suffix (or "" for the implicit AL) to
// its code, accepting the HS/LO aliases for CS/CC.
func ParseConditionCode(s string) (ConditionCode, bool) {
	switch s {
	case "", "AL":
		return CondAL, true
	case "HS":
		return CondCS, true
	case "LO":
		return CondCC, true
	}
	for i, name := range condNames {
		if s == name {
			return ConditionCode(i), true
		}
	}
	return 0, false
}
