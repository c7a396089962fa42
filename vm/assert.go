package vm

import "github.com/arm-pedagogical/armsim/asm/assert"

// vmState adapts *VM to assert.State without exposing history-logging
// reads/writes to the parser package.
type vmState struct{ vm *VM }

func (s vmState) Reg(n int) uint32 {
	var v uint32
	s.vm.Regs.WithBreakpointsDisabled(func() { v = s.vm.Regs.Get(n) })
	return v
}

func (s vmState) Flag(c byte) bool {
	cpsr := s.vm.Regs.CPSR()
	switch c {
	case 'N':
		return cpsr.N
	case 'Z':
		return cpsr.Z
	case 'C':
		return cpsr.C
	case 'V':
		return cpsr.V
	}
	return false
}

func (s vmState) MemByte(addr uint32) byte {
	var b byte
	s.vm.Mem.WithBreakpointsDisabled(func() { b, _ = s.vm.Mem.ReadByte(addr) })
	return b
}

func (s vmState) MemWord(addr uint32) uint32 {
	var w uint32
	s.vm.Mem.WithBreakpointsDisabled(func() { w, _ = s.vm.Mem.ReadWord(addr) })
	return w
}

// EvalAssertion parses (once, cached on the VM) and evaluates an ASSERT
// expression against vm's current state.
func EvalAssertion(vm *VM, expr string) (bool, error) {
	compiled, ok := vm.assertCache[expr]
	if !ok {
		var err error
		compiled, err = assert.Parse(expr)
		if err != nil {
			return false, err
		}
		vm.assertCache[expr] = compiled
	}
	return compiled.Eval(vmState{vm: vm}), nil
}
