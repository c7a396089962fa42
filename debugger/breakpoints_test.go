package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakpoints_InstrStopsBeforeLine(t *testing.T) {
	d := loadDebugger(t, header+"MOV R0, #1\nMOV R1, #2\nHALT\nSECTION DATA")
	d.SetBreakpointInstr([]int{4})

	require.NoError(t, d.Run(0))

	require.NotNil(t, d.LastBreak)
	assert.Equal(t, "instruction", d.LastBreak.Kind)
	assert.Equal(t, uint32(1), d.GetRegisters().General[0], "line 3 executed")
	assert.Equal(t, uint32(0), d.GetRegisters().General[1], "line 4 not yet executed")
	assert.Equal(t, uint32(0x84), d.GetCurrentInstructionAddress())
}

func TestBreakpoints_InstrSetReplaces(t *testing.T) {
	d := loadDebugger(t, header+"MOV R0, #1\nHALT\nSECTION DATA")

	d.SetBreakpointInstr([]int{3, 4})
	assert.ElementsMatch(t, []int{3, 4}, d.InstrBkpts.Lines())
	d.SetBreakpointInstr([]int{4})
	assert.ElementsMatch(t, []int{4}, d.InstrBkpts.Lines())
	d.SetBreakpointInstr(nil)
	assert.Empty(t, d.InstrBkpts.Lines())
}

func TestBreakpoints_MemoryWrite(t *testing.T) {
	d := loadDebugger(t, header+
		"MOV R0, #0xAB\nMOV R1, #0x1000\nSTRB R0, [R1]\nHALT\nSECTION DATA\nSPACE 4")
	d.SetBreakpointMem(0x1000, "w")

	require.NoError(t, d.Run(0))

	require.NotNil(t, d.LastBreak)
	assert.Equal(t, "memory", d.LastBreak.Kind)
	assert.Contains(t, d.LastBreak.Detail, "0x00001000")
}

func TestBreakpoints_MemoryRead(t *testing.T) {
	d := loadDebugger(t, header+
		"MOV R1, #0x1000\nLDR R0, [R1]\nHALT\nSECTION DATA\nDCD 7")
	d.SetBreakpointMem(0x1000, "r")

	require.NoError(t, d.Run(0))

	require.NotNil(t, d.LastBreak)
	assert.Equal(t, "memory", d.LastBreak.Kind)
}

func TestBreakpoints_MemoryMaskIdempotent(t *testing.T) {
	d := loadDebugger(t, header+
		"MOV R1, #0x1000\nLDR R0, [R1]\nHALT\nSECTION DATA\nDCD 7")

	// Installing the same mask twice behaves like installing it once.
	d.SetBreakpointMem(0x1000, "r")
	d.SetBreakpointMem(0x1000, "r")
	require.NoError(t, d.Run(0))
	require.NotNil(t, d.LastBreak)
	assert.Equal(t, "memory", d.LastBreak.Kind)
}

func TestBreakpoints_MemoryClear(t *testing.T) {
	d := loadDebugger(t, header+
		"MOV R1, #0x1000\nLDR R0, [R1]\nHALT\nSECTION DATA\nDCD 7")
	d.SetBreakpointMem(0x1000, "r")
	d.SetBreakpointMem(0x1000, "")

	require.NoError(t, d.Run(0))
	assert.Nil(t, d.LastBreak, "cleared breakpoint must not fire")
	assert.Equal(t, uint32(7), d.GetRegisters().General[0])
}

func TestBreakpoints_MemoryUninitializedRead(t *testing.T) {
	d := loadDebugger(t, header+
		"MOV R1, #0x2000\nLDRB R0, [R1]\nHALT\nSECTION DATA")
	d.SetBreakpointMem(0x2000, "u")

	require.NoError(t, d.Run(0))
	require.NotNil(t, d.LastBreak)
	assert.Equal(t, "memory", d.LastBreak.Kind)
	assert.Contains(t, d.LastBreak.Detail, "uninit")
}

func TestBreakpoints_RegisterWrite(t *testing.T) {
	d := loadDebugger(t, header+"MOV R0, #1\nMOV R5, #2\nHALT\nSECTION DATA")
	d.SetBreakpointRegister("USER", 5, "w")

	require.NoError(t, d.Run(0))

	require.NotNil(t, d.LastBreak)
	assert.Equal(t, "register", d.LastBreak.Kind)
	assert.Contains(t, d.LastBreak.Detail, "R5")
	assert.Equal(t, uint32(1), d.GetRegisters().General[0], "instructions before the hit ran")
}

func TestBreakpoints_RegisterReadSuppressedDuringInspection(t *testing.T) {
	d := loadDebugger(t, header+"MOV R0, #1\nHALT\nSECTION DATA")
	d.SetBreakpointRegister("USER", 3, "r")

	// Facade reads go through WithBreakpointsDisabled and must not trip.
	snap := d.GetRegisters()
	assert.Equal(t, uint32(0), snap.General[3])
	assert.Nil(t, d.LastBreak)
}

func TestBreakpoints_FlagChange(t *testing.T) {
	d := loadDebugger(t, header+
		"MOV R0, #1\nSUBS R0, R0, #1\nHALT\nSECTION DATA")
	d.SetBreakpointFlag("Z", "w")

	require.NoError(t, d.Run(0))

	require.NotNil(t, d.LastBreak)
	assert.Equal(t, "flag", d.LastBreak.Kind)
	assert.Equal(t, "Z", d.LastBreak.Detail)
	assert.True(t, d.GetFlags().Z, "the flag change that fired is preserved")
}

func TestBreakpoints_FlagClearDisarms(t *testing.T) {
	d := loadDebugger(t, header+
		"MOV R0, #1\nSUBS R0, R0, #1\nHALT\nSECTION DATA")
	d.SetBreakpointFlag("Z", "w")
	d.SetBreakpointFlag("Z", "")

	require.NoError(t, d.Run(0))
	assert.Nil(t, d.LastBreak)
}

func TestBreakpoints_StatePreservedAtHit(t *testing.T) {
	d := loadDebugger(t, header+
		"MOV R0, #1\nMOV R1, #2\nMOV R5, #3\nHALT\nSECTION DATA")
	d.SetBreakpointRegister("USER", 5, "w")

	require.NoError(t, d.Run(0))

	// Everything the earlier instructions wrote is still visible, and the
	// run can be resumed past the hit.
	assert.Equal(t, uint32(1), d.GetRegisters().General[0])
	assert.Equal(t, uint32(2), d.GetRegisters().General[1])
	d.SetBreakpointRegister("USER", 5, "")
	d.LastBreak = nil
	require.NoError(t, d.Run(0))
	assert.Equal(t, uint32(3), d.GetRegisters().General[5])
}
