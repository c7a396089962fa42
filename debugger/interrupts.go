package debugger

import "github.com/arm-pedagogical/armsim/vm"

// SetInterrupt arms or clears a periodic interrupt. A period of 0 fires
// once, at base+before. With clear set, the active schedule for that
// interrupt type is disabled: pending one-shot requests and the periodic
// re-arm entry are both dropped.
func (d *Debugger) SetInterrupt(kind string, clear bool, before, period, base uint64) {
	fiq := kind == "FIQ"
	if clear {
		d.VM.ClearInterrupts(fiq)
		kept := d.periodicBy[:0]
		for _, p := range d.periodicBy {
			if p.fiq != fiq {
				kept = append(kept, p)
			}
		}
		d.periodicBy = kept
		return
	}
	at := base + before
	d.VM.ScheduleInterrupt(vm.InterruptRequest{At: at, FIQ: fiq})
	if period > 0 {
		// Pedagogical scheduler: only the next occurrence is armed; Step
		// re-arms the following one once this fires, since vm.VM only
		// tracks one-shot requests.
		d.periodicBy = append(d.periodicBy, periodicInterrupt{fiq: fiq, period: period, next: at})
	}
}

type periodicInterrupt struct {
	fiq    bool
	period uint64
	next   uint64
}

// rearmPeriodic schedules the next occurrence of any periodic interrupt
// whose prior occurrence has now fired.
func (d *Debugger) rearmPeriodic() {
	for i := range d.periodicBy {
		p := &d.periodicBy[i]
		if d.VM.Cycles >= p.next {
			p.next += p.period
			d.VM.ScheduleInterrupt(vm.InterruptRequest{At: p.next, FIQ: p.fiq})
		}
	}
}
