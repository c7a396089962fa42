package debugger

// ChangeRecord is one (key, value) pair in the flat diff stream a UI
// consumes.
type ChangeRecord struct {
	Key   string
	Value uint64
}

// GetChangesFormatted returns every state mutation since the last checkpoint
// as a flat (key, value) list, last value wins per key. When setCheckpoint
// is true, the cursor advances so the next call only reports new changes.
func (d *Debugger) GetChangesFormatted(setCheckpoint bool) []ChangeRecord {
	changes := d.VM.Log.DiffFromCheckpoint(d.checkpoint)
	out := make([]ChangeRecord, 0, len(changes))
	for _, c := range changes {
		out = append(out, ChangeRecord{Key: c.Writer + ":" + c.Key, Value: c.New})
	}
	if setCheckpoint {
		d.checkpoint = d.VM.Log.SetCheckpoint()
	}
	return out
}
