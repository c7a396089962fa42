package vm

import "math/bits"

// Family identifies which instruction-word layout a fetched word matches,
// mirroring the asm package's encoder-side family switch on the decode
// side.
type Family int

const (
	FamDataProc Family = iota
	FamMemorySingle
	FamMemoryMultiple
	FamBranch
	FamMultiply
	FamSWI
	FamPSR
	FamSwap
	FamMisc
	FamUndefined
)

// Decoded holds every field a family's executor needs, already pulled out
// of the raw 32-bit word.
type Decoded struct {
	Raw    uint32
	Cond   ConditionCode
	Family Family

	// data processing
	Opcode   uint32
	SBit     bool
	Rn, Rd   int
	Operand2 uint32
	ImmOp    bool

	// memory single/multiple
	PBit, UBit, BBit, WBit, LBit bool
	Rm                           int
	ShiftAmount                  int
	ShiftType                    ShiftType
	RegList                      []int

	// branch
	Offset int32
	LBit2  bool // branch-with-link

	// multiply
	ABit bool
	Rs   int

	// PSR
	RBit     bool
	FieldMsk uint32
	IsMSR    bool

	// immediate operand2 rotation amount (data processing / MSR), needed to
	// derive shifter carry-out separately from the already-rotated value
	ImmRotate int

	// misc
	IsHalt bool
}

// Decode classifies a fetched instruction word and extracts its fields,
// the mirror image of the asm package's per-family encoders.
func Decode(word uint32) Decoded {
	d := Decoded{Raw: word, Cond: ConditionCode((word >> 28) & 0xF)}

	switch {
	case word&0x0FFFFFF0 == 0x012FFF10:
		// bits 27-4 = 0001 0010 1111 1111 1111 0001: BX, unsupported in this
		// family set; falls through to undefined.
		d.Family = FamUndefined

	case (word>>24)&0xF == 0xF:
		d.Family = FamSWI
		d.Offset = int32(word & 0x00FFFFFF)

	case (word>>25)&0x7 == 0x5:
		d.Family = FamBranch
		d.LBit2 = (word>>24)&1 != 0
		offset := word & 0x00FFFFFF
		if offset&0x00800000 != 0 {
			offset |= 0xFF000000
		}
		d.Offset = int32(offset) * 4

	case (word>>26)&0x3 == 0x1:
		d.Family = FamMemorySingle
		decodeMemSingleFields(&d, word)

	case (word>>25)&0x7 == 0x4:
		d.Family = FamMemoryMultiple
		decodeMemMultiFields(&d, word)

	case (word>>22)&0x3F == 0x0 && (word>>4)&0xF == 0x9:
		d.Family = FamMultiply
		d.ABit = (word>>21)&1 != 0
		d.SBit = (word>>20)&1 != 0
		d.Rd = int((word >> 16) & 0xF)
		d.Rn = int((word >> 12) & 0xF)
		d.Rs = int((word >> 8) & 0xF)
		d.Rm = int(word & 0xF)

	case (word>>23)&0x1F == 0x2 && (word>>4)&0xFF == 0x09:
		d.Family = FamSwap
		d.BBit = (word>>22)&1 != 0
		d.Rn = int((word >> 16) & 0xF)
		d.Rd = int((word >> 12) & 0xF)
		d.Rm = int(word & 0xF)

	case (word>>23)&0x1F == 0x2 && (word>>20)&0x3 == 0x0 && (word>>16)&0xF == 0xF && word&0xFFF == 0:
		d.Family = FamPSR
		d.RBit = (word>>22)&1 != 0
		d.Rd = int((word >> 12) & 0xF)

	case (word>>26)&0x3 == 0x0 && (word>>23)&0x3 == 0x2 && (word>>20)&0x3 == 0x2 && (word>>12)&0xF == 0xF:
		d.Family = FamPSR
		d.IsMSR = true
		d.RBit = (word>>22)&1 != 0
		d.FieldMsk = (word >> 16) & 0xF
		d.ImmOp = (word>>25)&1 != 0
		if d.ImmOp {
			d.Operand2 = decodeRotatedImmediate(word & 0xFFF)
		} else {
			d.Rm = int(word & 0xF)
		}

	case word&0x0FFEFFFF == 0x03200000:
		// NOP/HALT, distinguished by bit 16.
		d.Family = FamMisc
		d.IsHalt = (word>>16)&1 != 0

	case (word>>26)&0x3 == 0x0:
		d.Family = FamDataProc
		decodeDataProcFields(&d, word)

	default:
		d.Family = FamUndefined
	}
	return d
}

func decodeDataProcFields(d *Decoded, word uint32) {
	d.ImmOp = (word>>25)&1 != 0
	d.Opcode = (word >> 21) & 0xF
	d.SBit = (word>>20)&1 != 0
	d.Rn = int((word >> 16) & 0xF)
	d.Rd = int((word >> 12) & 0xF)
	if d.ImmOp {
		d.Operand2 = decodeRotatedImmediate(word & 0xFFF)
		d.ImmRotate = int((word >> 8) & 0xF)
	} else {
		d.Rm = int(word & 0xF)
		if word&0x10 != 0 {
			d.Rs = int((word >> 8) & 0xF)
			d.ShiftAmount = -1 // sentinel: read from Rs at execute time
		} else {
			d.ShiftAmount = int((word >> 7) & 0x1F)
		}
		d.ShiftType = ShiftType((word >> 5) & 0x3)
		if d.ShiftAmount == 0 && d.ShiftType == ShiftROR && word&0x10 == 0 {
			d.ShiftType = ShiftRRX
		}
	}
}

func decodeRotatedImmediate(operand2 uint32) uint32 {
	imm := operand2 & 0xFF
	rot := int((operand2>>8)&0xF) * 2
	return bits.RotateLeft32(imm, -rot)
}

func decodeMemSingleFields(d *Decoded, word uint32) {
	d.ImmOp = (word>>25)&1 == 0 // I-bit meaning is inverted vs data-proc for LDR/STR
	d.PBit = (word>>24)&1 != 0
	d.UBit = (word>>23)&1 != 0
	d.BBit = (word>>22)&1 != 0
	d.WBit = (word>>21)&1 != 0
	d.LBit = (word>>20)&1 != 0
	d.Rn = int((word >> 16) & 0xF)
	d.Rd = int((word >> 12) & 0xF)
	if d.ImmOp {
		d.Operand2 = word & 0xFFF
	} else {
		d.Rm = int(word & 0xF)
		d.ShiftAmount = int((word >> 7) & 0x1F)
		d.ShiftType = ShiftType((word >> 5) & 0x3)
	}
}

func decodeMemMultiFields(d *Decoded, word uint32) {
	d.PBit = (word>>24)&1 != 0
	d.UBit = (word>>23)&1 != 0
	d.BBit = (word>>22)&1 != 0 // S-bit in LDM/STM, reused as "force user mode"
	d.WBit = (word>>21)&1 != 0
	d.LBit = (word>>20)&1 != 0
	d.Rn = int((word >> 16) & 0xF)
	list := word & 0xFFFF
	d.RegList = nil
	for i := 0; i < 16; i++ {
		if list&(1<<uint(i)) != 0 {
			d.RegList = append(d.RegList, i)
		}
	}
}
