package vm

import (
	"fmt"
	"math"
)

// Narrowing helpers for values crossing the CLI boundary: user-typed
// addresses, counts and data arrive as wider integer types and must be
// range-checked before they reach the 32-bit machine.

// CheckedUint32 narrows a signed 64-bit value (the widest type strconv
// hands back) to a uint32 address or word.
func CheckedUint32(v int64) (uint32, error) {
	if v < 0 || v > math.MaxUint32 {
		return 0, fmt.Errorf("value %d outside the 32-bit range", v)
	}
	return uint32(v), nil
}

// CheckedUint16 narrows an already-validated word to a halfword store size.
func CheckedUint16(v uint32) (uint16, error) {
	if v > math.MaxUint16 {
		return 0, fmt.Errorf("value 0x%X does not fit in a halfword", v)
	}
	return uint16(v), nil
}

// CheckedByte narrows an already-validated word to a byte store size.
func CheckedByte(v uint32) (byte, error) {
	if v > math.MaxUint8 {
		return 0, fmt.Errorf("value 0x%X does not fit in a byte", v)
	}
	return byte(v), nil
}

// Signed reinterprets a register word as its two's-complement reading, for
// display alongside the hex form.
func Signed(v uint32) int32 { return int32(v) }
