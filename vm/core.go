package vm

import (
	"fmt"

	"github.com/arm-pedagogical/armsim/asm"
	"github.com/arm-pedagogical/armsim/asm/assert"
	"github.com/arm-pedagogical/armsim/vm/history"
)

// Vector addresses for the exception table.
const (
	VectorReset = 0x00
	VectorSWI   = 0x08
	VectorIRQ   = 0x18
	VectorFIQ   = 0x1C
)

// InterruptRequest is one scheduled interrupt injection: fires once the cycle counter reaches At.
type InterruptRequest struct {
	At  uint64
	FIQ bool // false => IRQ
}

// VM is the simulator core: banked registers, flat memory, the reversible
// history log and the assembled program's symbol/line maps, wired
// together into a single fetch-decode-execute loop.
type VM struct {
	Regs   *Registers
	Mem    *Memory
	Log    *history.Log
	Bundle *asm.Bundle

	Cycles uint64
	// CondFalse counts instructions whose condition evaluated false; they
	// retire without side effects beyond the PC advance.
	CondFalse uint64

	pendingInterrupts []InterruptRequest
	assertsByAddr     map[uint32][]asm.Assertion
	// assertCache holds compiled ASSERT expressions keyed by their raw
	// text, so repeated hits don't re-parse.
	assertCache map[string]assert.Expr
	entry       uint32
}

// Load assembles a program bundle into a fresh VM: allocates memory,
// copies every section to its base address and points PC at CODE's (or the
// synthetic SNIPPET's) first byte.
func Load(bundle *asm.Bundle, settings asm.Settings) (*VM, error) {
	memSize := settings.MaxTotalMem
	if memSize == 0 {
		memSize = 1 << 20
	}
	log := history.NewLog()
	vm := &VM{
		Regs:          NewRegisters(log),
		Mem:           NewMemory(memSize, log),
		Log:           log,
		Bundle:        bundle,
		assertsByAddr: map[uint32][]asm.Assertion{},
		assertCache:   map[string]assert.Expr{},
	}
	for _, a := range bundle.Assertions {
		vm.assertsByAddr[a.Addr] = append(vm.assertsByAddr[a.Addr], a)
	}
	for section, data := range bundle.Sections {
		base := bundle.MemInfoStart[section]
		if err := vm.Mem.LoadSection(base, data); err != nil {
			return nil, fmt.Errorf("loading section %s: %w", section, err)
		}
	}
	entry, ok := bundle.MemInfoStart["CODE"]
	if !ok {
		entry = bundle.MemInfoStart["SNIPPET"]
	}
	vm.entry = entry
	// The reset state is the floor of the history log: the initial PC and
	// CPSR are planted directly so a full StepBack lands here, not at zero.
	// Execution starts in User mode with both interrupt masks clear, so a
	// scheduled IRQ/FIQ can fire without the program unmasking it first.
	vm.Regs.pc = entry
	vm.Regs.cpsr = CPSR{Mode: ModeUser}
	return vm, nil
}

// ScheduleInterrupt arms a one-shot interrupt to fire at the given cycle
// count.
func (vm *VM) ScheduleInterrupt(req InterruptRequest) {
	vm.pendingInterrupts = append(vm.pendingInterrupts, req)
}

// ClearInterrupts drops every pending request of the given type.
func (vm *VM) ClearInterrupts(fiq bool) {
	kept := vm.pendingInterrupts[:0]
	for _, req := range vm.pendingInterrupts {
		if req.FIQ != fiq {
			kept = append(kept, req)
		}
	}
	vm.pendingInterrupts = kept
}

// pc returns the physical (non-pipelined) program counter: the address of
// the instruction about to be fetched.
func (vm *VM) pc() uint32 { return vm.Regs.PCPhysical() }

// StepResult describes one Step call's outcome for the debugger facade.
type StepResult struct {
	InstrAddr uint32
	Assertion *asm.Assertion // set if an AFTER assertion just failed
}

// Step fetches, decodes and executes exactly one instruction, advancing
// PC, firing due interrupts first, and recording one history cycle
// boundary. Breakpoints surface as a panic(*BreakpointHit) the caller
// recovers from the debugger layer.
func (vm *VM) Step() (StepResult, error) {
	vm.checkInterrupts()

	instrAddr := vm.pc()
	vm.Log.SetCycle(vm.Cycles)
	vm.runBeforeAsserts(instrAddr)

	vm.Mem.CheckExecute(instrAddr)
	raw, err := vm.fetchWord(instrAddr)
	if err != nil {
		return StepResult{}, err
	}

	d := Decode(raw)
	if !vm.Regs.CPSR().Holds(d.Cond) {
		vm.CondFalse++
		vm.Regs.Set(15, instrAddr+4)
	} else if err := vm.execute(d, instrAddr); err != nil {
		return StepResult{}, err
	}

	vm.Cycles++
	res := StepResult{InstrAddr: instrAddr}
	vm.runAfterAsserts(instrAddr, &res)
	return res, nil
}

func (vm *VM) fetchWord(addr uint32) (uint32, error) {
	var word uint32
	var err error
	vm.Mem.WithBreakpointsDisabled(func() {
		word, err = vm.Mem.ReadWord(addr)
	})
	return word, err
}

// Run steps until a breakpoint panics, an error occurs, or maxSteps is
// exhausted (0 = unbounded), returning normally only on maxSteps exhaustion.
func (vm *VM) Run(maxSteps int) error {
	steps := 0
	for maxSteps == 0 || steps < maxSteps {
		if _, err := vm.Step(); err != nil {
			return err
		}
		steps++
	}
	return nil
}

// checkInterrupts fires the earliest due pending interrupt, if CPSR masks
// permit it. FIQ wins over IRQ when both are due on the same cycle,
// matching the ARM exception priority order.
func (vm *VM) checkInterrupts() {
	cpsr := vm.Regs.CPSR()
	best := -1
	for i, req := range vm.pendingInterrupts {
		if req.At > vm.Cycles {
			continue
		}
		if req.FIQ && cpsr.F {
			continue
		}
		if !req.FIQ && cpsr.I {
			continue
		}
		if best == -1 || req.At < vm.pendingInterrupts[best].At ||
			(req.At == vm.pendingInterrupts[best].At && req.FIQ && !vm.pendingInterrupts[best].FIQ) {
			best = i
		}
	}
	if best == -1 {
		return
	}
	req := vm.pendingInterrupts[best]
	vm.pendingInterrupts = append(vm.pendingInterrupts[:best], vm.pendingInterrupts[best+1:]...)
	// LR of the taken mode receives the interrupted address + 4, so the
	// handler returns with SUBS PC, LR, #4.
	if req.FIQ {
		vm.enterException(ModeFIQ, VectorFIQ, true, true, vm.pc()+4)
	} else {
		vm.enterException(ModeIRQ, VectorIRQ, true, false, vm.pc()+4)
	}
}

// enterException performs the common exception-entry sequence: save CPSR
// to the target mode's SPSR, switch mode, set interrupt masks, save
// returnPC to the new mode's LR, jump to the vector.
func (vm *VM) enterException(mode Mode, vector uint32, setI, setF bool, returnPC uint32) {
	old := vm.Regs.CPSR()
	vm.Regs.SetSPSR(mode, old)
	next := old
	next.Mode = mode
	next.I = next.I || setI
	next.F = next.F || setF
	vm.Regs.SetCPSR(next)
	vm.Regs.Set(14, returnPC) // resolves in the destination mode's bank
	vm.Regs.Set(15, vector)
}

func (vm *VM) runBeforeAsserts(addr uint32) {
	for _, a := range vm.assertsByAddr[addr] {
		if a.Position == asm.AssertBefore {
			if ok, err := EvalAssertion(vm, a.Expr); err == nil && !ok {
				panic(&BreakpointHit{Kind: "assertion", Detail: fmt.Sprintf("line %d: %s", a.Line, a.Expr), Line: a.Line})
			}
		}
	}
}

func (vm *VM) runAfterAsserts(addr uint32, res *StepResult) {
	for i, a := range vm.assertsByAddr[addr] {
		if a.Position == asm.AssertAfter {
			if ok, err := EvalAssertion(vm, a.Expr); err == nil && !ok {
				res.Assertion = &vm.assertsByAddr[addr][i]
				panic(&BreakpointHit{Kind: "assertion", Detail: fmt.Sprintf("line %d: %s", a.Line, a.Expr), Line: a.Line})
			}
		}
	}
}

// StepBack rewinds n instruction boundaries via the history log,
// decrementing the cycle counter by the boundaries actually crossed.
func (vm *VM) StepBack(n int) int {
	rewound := vm.Log.StepBack(n, vm)
	if uint64(rewound) > vm.Cycles {
		rewound = int(vm.Cycles)
	}
	vm.Cycles -= uint64(rewound)
	return rewound
}

// ApplyInverse implements history.Applier: it writes old values directly
// back into registers/memory without re-triggering breakpoints or logging.
func (vm *VM) ApplyInverse(writer, key string, value uint64) {
	switch writer {
	case "registers":
		vm.applyRegisterInverse(key, uint32(value))
	case "cpsr":
		vm.Regs.cpsr = FromUint32(uint32(value))
	case "spsr":
		mode, ok := modeFromString(key)
		if ok {
			vm.Regs.spsr[mode] = FromUint32(uint32(value))
		}
	case "memory":
		var addr uint32
		fmt.Sscanf(key, "0x%08X", &addr)
		if int(addr) < len(vm.Mem.bytes) {
			vm.Mem.bytes[addr] = byte(value)
		}
	}
}

func (vm *VM) applyRegisterInverse(key string, value uint32) {
	var modeStr string
	var reg int
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			modeStr = key[:i]
			fmt.Sscanf(key[i+2:], "%d", &reg)
			break
		}
	}
	mode, ok := modeFromString(modeStr)
	if !ok {
		return
	}
	if reg == 15 {
		vm.Regs.pc = value
		return
	}
	switch {
	case reg >= 0 && reg <= 7:
		vm.Regs.low[reg] = value
	case reg >= 8 && reg <= 12:
		if mode == ModeFIQ {
			vm.Regs.highFIQ[reg-8] = value
		} else {
			vm.Regs.highCom[reg-8] = value
		}
	case reg == 13 || reg == 14:
		bank := vm.Regs.bankLo[mode]
		bank[reg-13] = value
		vm.Regs.bankLo[mode] = bank
	}
}

func modeFromString(s string) (Mode, bool) {
	switch s {
	case "USER":
		return ModeUser, true
	case "FIQ":
		return ModeFIQ, true
	case "IRQ":
		return ModeIRQ, true
	case "SVC":
		return ModeSVC, true
	}
	return 0, false
}
