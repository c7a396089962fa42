package debugger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arm-pedagogical/armsim/asm"
	"github.com/arm-pedagogical/armsim/vm"
)

func loadDebugger(t *testing.T, source string) *Debugger {
	t.Helper()
	settings := asm.DefaultSettings()
	bundle, errs := asm.Assemble(strings.Split(source, "\n"), settings)
	require.Empty(t, errs, "assembly errors")
	machine, err := vm.Load(bundle, settings)
	require.NoError(t, err)
	return New(machine, bundle)
}

const header = "SECTION INTVEC\nSECTION CODE\n"

func TestDebugger_StepInto(t *testing.T) {
	d := loadDebugger(t, header+"MOV R0, #2\nMOV R1, #3\nSECTION DATA")

	res, err := d.Step(StepInto)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x80), res.InstrAddr)
	assert.Equal(t, uint32(2), d.GetRegisters().General[0])
	assert.Equal(t, uint64(1), d.GetCycleCount())
}

func TestDebugger_StepForwardOverBL(t *testing.T) {
	d := loadDebugger(t, header+
		"BL sub\nMOV R0, #1\nHALT\nsub: MOV R2, #2\nMOV PC, LR\nSECTION DATA")

	// next steps over the whole call: stops at the instruction after BL.
	_, err := d.Step(StepForward)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x84), d.GetCurrentInstructionAddress())
	assert.Equal(t, uint32(2), d.GetRegisters().General[2], "the callee ran")
}

func TestDebugger_RunUntilHalt(t *testing.T) {
	d := loadDebugger(t, header+"MOV R0, #5\nHALT\nSECTION DATA")

	require.NoError(t, d.Run(0))
	assert.Equal(t, uint32(5), d.GetRegisters().General[0])
	assert.Nil(t, d.LastBreak)
}

func TestDebugger_RunHonorsStepLimit(t *testing.T) {
	d := loadDebugger(t, header+
		"loop: ADD R0, R0, #1\nB loop\nSECTION DATA")

	require.NoError(t, d.Run(7))
	assert.Equal(t, uint64(7), d.GetCycleCount())
}

func TestDebugger_StepBackThenForward(t *testing.T) {
	d := loadDebugger(t, header+"MOV R0, #2\nMOV R1, #3\nADD R2, R0, R1\nSECTION DATA")

	for i := 0; i < 3; i++ {
		_, err := d.Step(StepInto)
		require.NoError(t, err)
	}
	d.StepBack(2)
	assert.Equal(t, uint32(0), d.GetRegisters().General[1])
	assert.Equal(t, uint64(1), d.GetCycleCount())

	_, err := d.Step(StepInto)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), d.GetRegisters().General[1])
}

func TestDebugger_GetCurrentInfos(t *testing.T) {
	d := loadDebugger(t, header+"MOV R0, #2\nSECTION DATA")

	info := d.GetCurrentInfos()
	assert.Equal(t, uint32(0x80), info.Address)
	assert.Equal(t, 3, info.Line)
	assert.Equal(t, "MOV R0, #2", info.Disassembly)
	assert.Nil(t, info.BreakpointAt)
}

func TestDebugger_SetRegisterPCWrittenAsRead(t *testing.T) {
	d := loadDebugger(t, header+"MOV R0, #1\nSECTION DATA")

	// PC is exposed and written in its as-read (+8) form.
	require.NoError(t, d.SetRegister("", 15, 0x108))
	assert.Equal(t, uint32(0x100), d.GetCurrentInstructionAddress())
	assert.Equal(t, uint32(0x108), d.GetRegisters().General[15])

	// Values behind the pipeline offset clamp to it.
	require.NoError(t, d.SetRegister("", 15, 2))
	assert.Equal(t, uint32(0), d.GetCurrentInstructionAddress())
}

func TestDebugger_SetMemoryAndFlags(t *testing.T) {
	d := loadDebugger(t, header+"MOV R0, #1\nSECTION DATA\nSPACE 4")

	require.NoError(t, d.SetMemory(0x1000, 0x5A))
	got, err := d.GetMemory(0x1000, 1)
	require.NoError(t, err)
	assert.Equal(t, byte(0x5A), got[0])

	require.NoError(t, d.SetFlag("Z", true))
	assert.True(t, d.GetFlags().Z)
	require.Error(t, d.SetFlag("Q", true), "unknown flag rejected")
}

func TestDebugger_ChangesFormatted(t *testing.T) {
	d := loadDebugger(t, header+"MOV R0, #2\nMOV R1, #3\nSECTION DATA")

	_, err := d.Step(StepInto)
	require.NoError(t, err)

	changes := d.GetChangesFormatted(true)
	keys := map[string]uint64{}
	for _, c := range changes {
		keys[c.Key] = c.Value
	}
	assert.Equal(t, uint64(2), keys["registers:USER:R0"])
	assert.Equal(t, uint64(0x84), keys["registers:USER:R15"])

	// The checkpoint advanced: no new changes until the next step.
	assert.Empty(t, d.GetChangesFormatted(false))
	_, err = d.Step(StepInto)
	require.NoError(t, err)
	assert.NotEmpty(t, d.GetChangesFormatted(false))
}

func TestDebugger_AssertionFailureCaptured(t *testing.T) {
	d := loadDebugger(t, header+"MOV R0, #2\nASSERT R0 == 3\nSECTION DATA")

	_, err := d.Step(StepInto)
	require.NoError(t, err, "assertion failure is a break, not an error")
	require.NotNil(t, d.LastBreak)
	assert.Equal(t, "assertion", d.LastBreak.Kind)
	require.NotNil(t, d.LastAssertion)
	assert.Equal(t, 4, d.LastAssertion.Line)
	assert.Equal(t, "R0 == 3", d.LastAssertion.Expr)

	// State mutations from the instruction are preserved.
	assert.Equal(t, uint32(2), d.GetRegisters().General[0])
}

func TestDebugger_AssertionPassIsSilent(t *testing.T) {
	d := loadDebugger(t, header+"MOV R0, #2\nASSERT R0 == 2\nSECTION DATA")

	_, err := d.Step(StepInto)
	require.NoError(t, err)
	assert.Nil(t, d.LastBreak)
}

func TestDebugger_SetInterruptFiresViaFacade(t *testing.T) {
	d := loadDebugger(t, header+
		"NOP\nNOP\nNOP\nNOP\nNOP\nNOP\nNOP\nSECTION DATA")
	d.SetInterrupt("IRQ", false, 5, 0, 0)

	for i := 0; i < 6; i++ {
		_, err := d.Step(StepInto)
		require.NoError(t, err)
	}
	assert.Equal(t, "IRQ", d.VM.Regs.Mode().String())
	assert.True(t, d.GetFlags().I)
}

func TestDebugger_Reset(t *testing.T) {
	d := loadDebugger(t, header+"MOV R0, #2\nMOV R1, #3\nSECTION DATA")
	d.SetBreakpointInstr([]int{4})

	_, err := d.Step(StepInto)
	require.NoError(t, err)
	require.NoError(t, d.Reset(asm.DefaultSettings()))

	assert.Equal(t, uint32(0x80), d.GetCurrentInstructionAddress())
	assert.Equal(t, uint32(0), d.GetRegisters().General[0])
	assert.Equal(t, uint64(0), d.GetCycleCount())
	assert.True(t, d.InstrBkpts.Has(4), "breakpoints survive reset by default")

	d.AutoSaveBreakpoints = false
	require.NoError(t, d.Reset(asm.DefaultSettings()))
	assert.False(t, d.InstrBkpts.Has(4))
}

func TestDebugger_ErrorsFormatted(t *testing.T) {
	d := loadDebugger(t, header+"MSR CPSR_c, #0xD3\nSECTION DATA")

	_, err := d.Step(StepInto)
	require.Error(t, err)

	errs := d.GetErrorsFormatted()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "privileged")
	assert.Empty(t, d.GetErrorsFormatted(), "drained on read")
}

func TestDebugger_SetInterruptClearDisarms(t *testing.T) {
	d := loadDebugger(t, header+
		"NOP\nNOP\nNOP\nNOP\nNOP\nNOP\nNOP\nSECTION DATA")
	d.SetInterrupt("IRQ", false, 2, 3, 0)
	d.SetInterrupt("IRQ", true, 0, 0, 0)

	for i := 0; i < 7; i++ {
		_, err := d.Step(StepInto)
		require.NoError(t, err)
	}
	assert.Equal(t, "USER", d.VM.Regs.Mode().String(), "cleared IRQ must never fire")
	assert.False(t, d.GetFlags().I)
}

func TestDebugger_SetInterruptClearIsTypeScoped(t *testing.T) {
	d := loadDebugger(t, header+
		"NOP\nNOP\nNOP\nNOP\nSECTION DATA")
	d.SetInterrupt("FIQ", false, 1, 0, 0)
	d.SetInterrupt("IRQ", true, 0, 0, 0)

	for i := 0; i < 2; i++ {
		_, err := d.Step(StepInto)
		require.NoError(t, err)
	}
	assert.Equal(t, "FIQ", d.VM.Regs.Mode().String(), "clearing IRQ leaves the FIQ schedule armed")
}
