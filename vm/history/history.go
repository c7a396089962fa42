// Package history implements the simulator's reversible state log: an
// append-only vector of (writer, key, old, new, cycle) entries supporting
// checkpoint/diff queries and step-back.
package history

// Entry is one state mutation: a register write, a memory byte write, a
// flag change or a PC update, each identified by the subsystem ("writer")
// that produced it.
type Entry struct {
	Writer string
	Key    string
	Old    uint64
	New    uint64
	Cycle  uint64
}

// Log is a single growable mutation vector: every mutator call appends
// here instead of returning an inverse directly, so StepBack can walk it
// independent of the call site.
type Log struct {
	entries []Entry
	cycle   uint64
	limit   int
	// trimmed counts entries dropped off the front by the size limit, so
	// checkpoints stay valid as absolute positions.
	trimmed int
}

func NewLog() *Log {
	return &Log{}
}

// SetLimit caps the log at roughly n entries; when exceeded, the oldest
// whole instruction cycle is trimmed from the front. Zero keeps the entire
// run. A trimmed log still steps back correctly, just not past the oldest
// retained boundary.
func (l *Log) SetLimit(n int) { l.limit = n }

// SetCycle tells the log which instruction-boundary cycle subsequent
// Record calls belong to; the core advances this once per retired
// instruction.
func (l *Log) SetCycle(cycle uint64) { l.cycle = cycle }

// Record appends one mutation as given; it does not drop old==new writes.
// The register, CPSR and SPSR writers call it on every write, while
// Memory.WriteByte skips bytes whose value does not change.
func (l *Log) Record(writer, key string, old, new uint64) {
	l.entries = append(l.entries, Entry{Writer: writer, Key: key, Old: old, New: new, Cycle: l.cycle})
	for l.limit > 0 && len(l.entries) > l.limit {
		head := l.entries[0].Cycle
		if head == l.entries[len(l.entries)-1].Cycle {
			break // never trim the cycle still being written
		}
		n := 0
		for n < len(l.entries) && l.entries[n].Cycle == head {
			n++
		}
		l.entries = l.entries[n:]
		l.trimmed += n
	}
}

// Len returns the number of recorded entries.
func (l *Log) Len() int { return len(l.entries) }

// Checkpoint is a cursor into the log, used for diff reporting to a UI
// layer.
type Checkpoint int

// SetCheckpoint returns a cursor at the log's current tail.
func (l *Log) SetCheckpoint() Checkpoint { return Checkpoint(l.trimmed + len(l.entries)) }

// Change is one coalesced key mutation since a checkpoint.
type Change struct {
	Writer   string
	Key      string
	Old, New uint64
}

// DiffFromCheckpoint coalesces entries after cp, last `new` wins per
// (writer, key) pair, and `old` is taken from the first entry touching that
// key.
func (l *Log) DiffFromCheckpoint(cp Checkpoint) []Change {
	type acc struct {
		old, new uint64
		seen     bool
	}
	order := []string{}
	byKey := map[string]*acc{}
	start := int(cp) - l.trimmed
	if start < 0 {
		start = 0
	}
	for i := start; i < len(l.entries); i++ {
		e := l.entries[i]
		fullKey := e.Writer + "\x00" + e.Key
		a, ok := byKey[fullKey]
		if !ok {
			a = &acc{old: e.Old}
			byKey[fullKey] = a
			order = append(order, fullKey)
		}
		a.new = e.New
		a.seen = true
	}
	out := make([]Change, 0, len(order))
	for _, fullKey := range order {
		a := byKey[fullKey]
		var writer, key string
		for i := 0; i < len(fullKey); i++ {
			if fullKey[i] == 0 {
				writer, key = fullKey[:i], fullKey[i+1:]
				break
			}
		}
		out = append(out, Change{Writer: writer, Key: key, Old: a.old, New: a.new})
	}
	return out
}

// Applier lets stepBack write an inverse value back into the subsystem
// that originally produced it, without re-triggering history logging or
// breakpoints.
type Applier interface {
	ApplyInverse(writer, key string, value uint64)
}

// StepBack replays the last n instruction boundaries' worth of entries in
// reverse, applying each entry's Old value through applier and trimming the
// log. Returns the number of cycles rewound.
func (l *Log) StepBack(n int, applier Applier) int {
	if n <= 0 || len(l.entries) == 0 {
		return 0
	}
	rewound := 0
	lastCycle := l.entries[len(l.entries)-1].Cycle
	for n > 0 && len(l.entries) > 0 {
		tailCycle := l.entries[len(l.entries)-1].Cycle
		if tailCycle != lastCycle {
			n--
			rewound++
			if n == 0 {
				break
			}
			lastCycle = tailCycle
		}
		e := l.entries[len(l.entries)-1]
		l.entries = l.entries[:len(l.entries)-1]
		applier.ApplyInverse(e.Writer, e.Key, e.Old)
	}
	if len(l.entries) == 0 {
		rewound++
	}
	return rewound
}
