package asm

import "fmt"

// Settings mirrors the assembler API's settings object: PC
// behavior and the total-memory budget.
type Settings struct {
	PCBehavior  string // only "+8" is implemented; "real" is rejected
	MaxTotalMem uint32
}

// DefaultSettings matches the pedagogical PC+8 model with a generous memory
// ceiling, mirroring config.DefaultConfig's style of an all-fields-set
// constructor.
func DefaultSettings() Settings {
	return Settings{PCBehavior: "+8", MaxTotalMem: 1 << 20}
}

var sectionBase = map[string]uint32{
	"INTVEC": 0x00,
	"CODE":   0x80,
	"DATA":   0x1000,
}

const pcOffset = 8

// Bundle is the assembler's output: bytecode plus everything the simulator
// needs to run it.
type Bundle struct {
	Sections     map[string][]byte
	MemInfoStart map[string]uint32
	MemInfoEnd   map[string]uint32
	AddrToLine   map[uint32][]int
	LineToAddr   map[int]uint32
	Labels       map[string]uint32
	Assertions   []Assertion
	Snippet      bool
}

// Assertion is a compiled ASSERT record keyed by the instruction address it
// guards.
type Assertion struct {
	Addr     uint32
	Position AssertPosition
	Line     int
	Expr     string
}

type pendingDep struct {
	section string
	addr    uint32
	line    int
	dep     Dependency
}

type poolEntry struct {
	key     string
	numeric bool
	value   uint32
	label   string
}

// Assembler is the two-pass driver: orchestrates per-line parsing, address
// assignment, label tracking, literal-pool placement and deferred
// dependency resolution.
type Assembler struct {
	settings Settings
	labels   *LabelTable

	sections map[string][]byte
	cursor   map[string]uint32
	started  map[string]bool

	curSection string
	snippet    bool
	sawSection bool

	addrToLine map[uint32][]int
	lineToAddr map[int]uint32

	deps []pendingDep

	pool       map[string][]poolEntry // per-section pending literal pool entries
	poolAddr   map[string]uint32      // "section|key" -> address once flushed
	poolSeen   map[string]bool        // "section|key" already interned
	poolFlush  map[string]bool        // section already flushed
	lastAddr   uint32
	lastIsInst bool
	havePrev   bool

	assertions []Assertion

	errs []error
}

// NewAssembler constructs a driver ready to Assemble one source program.
func NewAssembler(settings Settings) *Assembler {
	return &Assembler{
		settings:   settings,
		labels:     newLabelTable(),
		sections:   map[string][]byte{},
		cursor:     map[string]uint32{},
		started:    map[string]bool{},
		addrToLine: map[uint32][]int{},
		lineToAddr: map[int]uint32{},
		pool:       map[string][]poolEntry{},
		poolAddr:   map[string]uint32{},
		poolSeen:   map[string]bool{},
		poolFlush:  map[string]bool{},
	}
}

// Assemble runs the full two-pass pipeline over source lines (1-based line
// numbers in diagnostics) and returns the finished bundle, or errors if the
// line parser, the dependency resolver or the memory budget check failed.
func Assemble(lines []string, settings Settings) (*Bundle, []error) {
	if settings.PCBehavior != "" && settings.PCBehavior != "+8" {
		return nil, []error{fatalErr("PC behavior %q is not supported; only \"+8\" is implemented", settings.PCBehavior)}
	}
	a := NewAssembler(settings)
	for i, raw := range lines {
		lineNo := i + 1
		recs, errs := a.parseLine(raw, lineNo)
		a.errs = append(a.errs, errs...)
		for _, rec := range recs {
			a.apply(rec)
		}
	}

	a.flushPool()

	if !a.snippet {
		for _, want := range []string{"INTVEC", "CODE", "DATA"} {
			if !a.started[want] {
				a.errs = append(a.errs, fatalErr("missing required SECTION %s", want))
			}
		}
	}

	a.resolveDeps()

	total := uint32(0)
	for _, buf := range a.sections {
		total += uint32(len(buf))
	}
	if a.settings.MaxTotalMem != 0 && total > a.settings.MaxTotalMem {
		a.errs = append(a.errs, fatalErr("total memory %d exceeds maxtotalmem %d", total, a.settings.MaxTotalMem))
	}

	if len(a.errs) > 0 {
		return nil, a.errs
	}
	return a.bundle(), nil
}

func (a *Assembler) apply(rec Record) {
	switch rec.Kind {
	case RecSection:
		a.enterSection(rec.Section)

	case RecLabel:
		addr := a.cursor[a.curSection]
		if err := a.labels.Define(rec.Label, addr, rec.Line); err != nil {
			a.errs = append(a.errs, err)
		}

	case RecAssertion:
		a.attachAssertion(rec)

	case RecBytecode:
		a.emit(rec)
	}
}

func (a *Assembler) enterSection(tag string) {
	if tag == "" {
		a.errs = append(a.errs, fatalErr("SECTION directive missing a section name"))
		return
	}
	a.flushPoolFor("CODE")
	a.flushPoolFor("SNIPPET")

	a.sawSection = true
	base, known := sectionBase[tag]
	if !known {
		a.errs = append(a.errs, fatalErr("unknown section %s", tag))
		return
	}
	if !a.started[tag] {
		a.started[tag] = true
		a.cursor[tag] = base
		a.sections[tag] = nil
	}
	a.curSection = tag
}

// ensureSection lazily opens the synthetic SNIPPET section the first time a
// label or instruction appears before any SECTION directive.
func (a *Assembler) ensureSection() {
	if a.curSection != "" {
		return
	}
	a.snippet = true
	a.curSection = "SNIPPET"
	a.started["SNIPPET"] = true
	a.cursor["SNIPPET"] = 0
}

func (a *Assembler) emit(rec Record) {
	a.ensureSection()
	sec := a.curSection
	addr := a.cursor[sec]

	// word-align the start of a fresh, still-empty section buffer.
	if len(a.sections[sec]) == 0 && addr%4 != 0 {
		pad := 4 - addr%4
		a.sections[sec] = append(a.sections[sec], make([]byte, pad)...)
		addr += pad
		a.cursor[sec] = addr
	}

	a.sections[sec] = append(a.sections[sec], rec.Bytes...)
	a.cursor[sec] = addr + uint32(len(rec.Bytes))

	a.addrToLine[addr] = append(a.addrToLine[addr], rec.Line)
	if _, ok := a.lineToAddr[rec.Line]; !ok {
		a.lineToAddr[rec.Line] = addr
	}

	if rec.Dep != nil {
		a.deps = append(a.deps, pendingDep{section: sec, addr: addr, line: rec.Line, dep: *rec.Dep})
	}

	a.lastAddr = addr
	a.lastIsInst = rec.IsInstruction
	a.havePrev = true
}

// internLiteral records a pending literal-pool word for `LDR Rd, =expr` and
// returns the key used to resolve its address once the pool is flushed.
func (a *Assembler) internLiteral(section, key string, numeric bool, value uint32, label string) string {
	full := section + "|" + key
	if !a.poolSeen[full] {
		a.poolSeen[full] = true
		a.pool[section] = append(a.pool[section], poolEntry{key: key, numeric: numeric, value: value, label: label})
	}
	return full
}

func (a *Assembler) flushPoolFor(section string) {
	entries := a.pool[section]
	if len(entries) == 0 || a.poolFlush[section] || !a.started[section] {
		return
	}
	a.poolFlush[section] = true
	addr := a.cursor[section]
	if addr%4 != 0 {
		pad := 4 - addr%4
		a.sections[section] = append(a.sections[section], make([]byte, pad)...)
		addr += pad
	}
	for _, e := range entries {
		full := section + "|" + e.key
		a.poolAddr[full] = addr
		word := make([]byte, 4)
		if e.numeric {
			putLE32(word, e.value)
		} else {
			a.deps = append(a.deps, pendingDep{section: section, addr: addr, line: 0, dep: Dependency{Kind: DepWord, Label: e.label}})
		}
		a.sections[section] = append(a.sections[section], word...)
		addr += 4
	}
	a.cursor[section] = addr
}

func (a *Assembler) flushPool() {
	a.flushPoolFor("CODE")
	a.flushPoolFor("SNIPPET")
}

func (a *Assembler) bundle() *Bundle {
	start := map[string]uint32{}
	end := map[string]uint32{}
	for tag, base := range sectionBase {
		if a.started[tag] {
			start[tag] = base
			end[tag] = base + uint32(len(a.sections[tag]))
		}
	}
	if a.snippet {
		start["SNIPPET"] = 0
		end["SNIPPET"] = uint32(len(a.sections["SNIPPET"]))
	}
	return &Bundle{
		Sections:     a.sections,
		MemInfoStart: start,
		MemInfoEnd:   end,
		AddrToLine:   a.addrToLine,
		LineToAddr:   a.lineToAddr,
		Labels:       a.labels.Snapshot(),
		Assertions:   a.assertions,
		Snippet:      a.snippet,
	}
}

// attachAssertion applies the single-lookback rule: if the most recently
// emitted item was an instruction, the check runs AFTER it; otherwise it
// runs BEFORE whatever lands at the current address next.
func (a *Assembler) attachAssertion(rec Record) {
	a.ensureSection()
	if a.havePrev && a.lastIsInst {
		a.assertions = append(a.assertions, Assertion{Addr: a.lastAddr, Position: AssertAfter, Line: rec.Line, Expr: rec.AssertExpr})
		return
	}
	a.assertions = append(a.assertions, Assertion{Addr: a.cursor[a.curSection], Position: AssertBefore, Line: rec.Line, Expr: rec.AssertExpr})
}

func (a *Assembler) resolveDeps() {
	for _, pd := range a.deps {
		buf := a.sections[pd.section]
		off := int(pd.addr - sectionStart(pd.section, a.snippet))
		if off < 0 || off+4 > len(buf) {
			a.errs = append(a.errs, fatalErr("dependency at line %d falls outside section %s", pd.line, pd.section))
			continue
		}
		switch pd.dep.Kind {
		case DepWord:
			target, ok := a.labels.Lookup(pd.dep.Label)
			if !ok {
				a.errs = append(a.errs, lineErr(pd.line, "undefined label %q", pd.dep.Label))
				continue
			}
			putLE32(buf[off:off+4], target)

		case DepAddrPtr:
			poolKey := pd.dep.Label
			full := pd.section + "|" + poolKey
			target, ok := a.poolAddr[full]
			if !ok {
				a.errs = append(a.errs, fatalErr("line %d: literal pool entry %q never flushed", pd.line, poolKey))
				continue
			}
			if err := patchPCRelative12(buf[off:off+4], pd.addr, target); err != nil {
				a.errs = append(a.errs, lineErr(pd.line, "%v", err))
			}

		case DepAddr:
			target, ok := a.labels.Lookup(pd.dep.Label)
			if !ok {
				a.errs = append(a.errs, lineErr(pd.line, "undefined label %q", pd.dep.Label))
				continue
			}
			if err := patchPCRelative12(buf[off:off+4], pd.addr, target); err != nil {
				a.errs = append(a.errs, lineErr(pd.line, "%v", err))
			}

		case DepAddrBranch:
			target, ok := a.labels.Lookup(pd.dep.Label)
			if !ok {
				a.errs = append(a.errs, lineErr(pd.line, "undefined label %q", pd.dep.Label))
				continue
			}
			diff := int64(target) - int64(pd.addr+pcOffset)
			if diff%4 != 0 {
				a.errs = append(a.errs, lineErr(pd.line, "branch target %q is not word-aligned relative to source", pd.dep.Label))
				continue
			}
			word := getLE32(buf[off : off+4])
			word = (word &^ 0x00FFFFFF) | (uint32(diff/4) & 0x00FFFFFF)
			putLE32(buf[off:off+4], word)
		}
	}
}

func sectionStart(section string, snippet bool) uint32 {
	if section == "SNIPPET" {
		return 0
	}
	return sectionBase[section]
}

// patchPCRelative12 writes a 12-bit displacement magnitude into the low
// bits of an LDR/STR word, with the up/down sign recorded in bit 23.
func patchPCRelative12(word []byte, instrAddr, target uint32) error {
	diff := int64(target) - int64(instrAddr+pcOffset)
	mag := diff
	if mag < 0 {
		mag = -mag
	}
	if mag > 0xFFF {
		return fmt.Errorf("PC-relative displacement %d does not fit in 12 bits", diff)
	}
	w := getLE32(word)
	w &^= 0xFFF
	w &^= 1 << 23
	if diff >= 0 {
		w |= 1 << 23
	}
	w |= uint32(mag)
	putLE32(word, w)
	return nil
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getLE32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
