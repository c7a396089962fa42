package asm

// RecordKind distinguishes the four shapes the line parser
// can produce for one source line.
type RecordKind int

const (
	RecSection RecordKind = iota
	RecLabel
	RecAssertion
	RecBytecode
)

// DepKind classifies an unresolved label dependency left behind by an
// instruction whose operand refers to a label.
type DepKind int

const (
	DepNone DepKind = iota
	// DepAddr is a PC-relative load/store of a label's address computed
	// directly into the instruction's 12-bit offset field.
	DepAddr
	// DepAddrPtr is `LDR Rn, =label`: the label's address is materialized
	// as a literal-pool word and the instruction PC-relative-loads that
	// word.
	DepAddrPtr
	// DepAddrBranch is a B/BL whose 24-bit word-offset field encodes the
	// displacement to the label.
	DepAddrBranch
	// DepWord is a plain DCD of a label: the word holds the label's
	// absolute address directly, no PC-relative arithmetic involved.
	DepWord
)

// Dependency is an unresolved reference recorded alongside a bytecode
// record; the assembler driver resolves it once all labels are known.
type Dependency struct {
	Kind  DepKind
	Label string
}

// AssertPosition says whether an assertion runs before or after the
// instruction at its address.
type AssertPosition int

const (
	AssertBefore AssertPosition = iota
	AssertAfter
)

// Record is what the per-line grammar parser yields for one non-empty,
// comment-stripped source line. A
// line carrying both a label and an instruction yields two Records.
type Record struct {
	Kind RecordKind
	Line int // 1-based source line

	Section string // RecSection: the section tag (INTVEC, CODE, DATA, ...)
	Label   string // RecLabel: the label name

	AssertExpr string // RecAssertion: unparsed expression text

	Bytes []byte      // RecBytecode: emitted bytes (4 for instructions, variable for DCB/SPACE)
	Dep   *Dependency // RecBytecode: optional unresolved label reference

	IsInstruction bool // RecBytecode: true for encoded instructions, false for data directives
}
