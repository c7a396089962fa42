package vm

import (
	"testing"

	"github.com/arm-pedagogical/armsim/vm/history"
)

func TestRegistersGetSetLow(t *testing.T) {
	r := NewRegisters(nil)
	r.Set(0, 42)
	if got := r.Get(0); got != 42 {
		t.Errorf("Get(0) = %d, want 42", got)
	}
}

func TestRegistersPCReadsPlus8(t *testing.T) {
	r := NewRegisters(nil)
	r.Set(15, 0x100)
	if got := r.Get(15); got != 0x108 {
		t.Errorf("Get(15) = 0x%X, want 0x108", got)
	}
	if got := r.PCPhysical(); got != 0x100 {
		t.Errorf("PCPhysical() = 0x%X, want 0x100", got)
	}
}

func TestRegistersPCNeverReadsBelowOffset(t *testing.T) {
	r := NewRegisters(nil)
	r.Set(15, 0) // snippet programs fetch from address 0
	if got := r.PCPhysical(); got != 0 {
		t.Errorf("PCPhysical() = %d, want 0", got)
	}
	if got := r.Get(15); got != pcReadOffset {
		t.Errorf("Get(15) = %d, want %d", got, pcReadOffset)
	}
}

func TestRegistersBankingR13R14(t *testing.T) {
	r := NewRegisters(nil)
	r.Set(13, 0x1000) // USER SP
	r.EnterMode(ModeSVC)
	r.Set(13, 0x2000) // SVC SP, independent bank
	r.EnterMode(ModeUser)
	if got := r.Get(13); got != 0x1000 {
		t.Errorf("USER SP after bank switch = 0x%X, want 0x1000", got)
	}
	r.EnterMode(ModeSVC)
	if got := r.Get(13); got != 0x2000 {
		t.Errorf("SVC SP after bank switch = 0x%X, want 0x2000", got)
	}
}

func TestRegistersBankingR8ToR12FIQOnly(t *testing.T) {
	r := NewRegisters(nil)
	r.Set(8, 0xAAAA) // common bank (USER)
	r.EnterMode(ModeFIQ)
	r.Set(8, 0xBBBB) // FIQ-private bank
	r.EnterMode(ModeIRQ)
	if got := r.Get(8); got != 0xAAAA {
		t.Errorf("IRQ shares the common R8-R12 bank: Get(8) = 0x%X, want 0xAAAA", got)
	}
	r.EnterMode(ModeFIQ)
	if got := r.Get(8); got != 0xBBBB {
		t.Errorf("FIQ R8-R12 bank = 0x%X, want 0xBBBB", got)
	}
}

func TestRegistersCPSRRoundTrip(t *testing.T) {
	c := CPSR{N: true, Z: false, C: true, V: false, I: true, F: false, Mode: ModeSVC}
	v := c.ToUint32()
	got := FromUint32(v)
	if got != c {
		t.Errorf("FromUint32(ToUint32(%+v)) = %+v", c, got)
	}
}

func TestRegistersSetCPSRLogsHistory(t *testing.T) {
	log := history.NewLog()
	r := NewRegisters(log)
	r.SetCPSR(CPSR{Z: true})
	if log.Len() == 0 {
		t.Fatal("expected a history entry after SetCPSR")
	}
}

func TestRegistersSetLogsHistory(t *testing.T) {
	log := history.NewLog()
	r := NewRegisters(log)
	r.Set(3, 7)
	if log.Len() != 1 {
		t.Fatalf("expected one history entry, got %d", log.Len())
	}
}

func TestRegistersBreakpointOnWrite(t *testing.T) {
	r := NewRegisters(nil)
	r.SetBreakpoint(ModeUser, 5, "w")

	defer func() {
		rec := recover()
		bp, ok := rec.(*BreakpointHit)
		if !ok {
			t.Fatalf("expected a *BreakpointHit panic, got %v", rec)
		}
		if bp.Kind != "register" {
			t.Errorf("Kind = %q, want register", bp.Kind)
		}
	}()
	r.Set(5, 1)
	t.Fatal("expected panic before reaching here")
}

func TestRegistersBreakpointOnReadOnlyFiresOnRead(t *testing.T) {
	r := NewRegisters(nil)
	r.SetBreakpoint(ModeUser, 2, "r")
	r.Set(2, 99) // write is not armed, must not panic

	defer func() {
		if rec := recover(); rec == nil {
			t.Fatal("expected a panic on read")
		}
	}()
	r.Get(2)
}

func TestRegistersWithBreakpointsDisabledSuppressesHit(t *testing.T) {
	r := NewRegisters(nil)
	r.SetBreakpoint(ModeUser, 1, "rw")
	r.WithBreakpointsDisabled(func() {
		r.Set(1, 5)
		_ = r.Get(1)
	})
}

func TestModeString(t *testing.T) {
	tests := map[Mode]string{ModeUser: "USER", ModeFIQ: "FIQ", ModeIRQ: "IRQ", ModeSVC: "SVC", Mode(99): "?"}
	for mode, want := range tests {
		if got := mode.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", mode, got, want)
		}
	}
}
