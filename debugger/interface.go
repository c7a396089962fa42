package debugger

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arm-pedagogical/armsim/vm"
)

// RunCLI drives an interactive command-line debugger session against dbg,
// reading commands from in and writing output to out.
func RunCLI(dbg *Debugger, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "armsim debugger. Type 'help' for commands.")

	for {
		fmt.Fprint(out, "(armsim) ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := strings.ToLower(fields[0]), fields[1:]

		switch cmd {
		case "quit", "q", "exit":
			return nil
		case "help", "h", "?":
			printHelp(out)
		case "step", "s":
			runStep(dbg, out, StepInto)
		case "next", "n":
			runStep(dbg, out, StepForward)
		case "finish":
			runStep(dbg, out, StepOut)
		case "continue", "c", "run", "r":
			if err := dbg.Run(0); err != nil {
				fmt.Fprintf(out, "runtime error: %v\n", err)
				continue
			}
			reportStop(dbg, out)
		case "back":
			n := 1
			if len(args) > 0 {
				if v, err := strconv.Atoi(args[0]); err == nil {
					n = v
				}
			}
			dbg.StepBack(n)
			fmt.Fprintf(out, "rewound %d instruction(s)\n", n)
		case "break", "b":
			addBreakLines(dbg, args, out)
		case "membreak":
			addMemBreak(dbg, args, out)
		case "print", "p":
			printRegisters(dbg, out)
		case "dump":
			dumpMemory(dbg, args, out)
		case "poke":
			pokeMemory(dbg, args, out)
		case "poke16":
			pokeHalfword(dbg, args, out)
		case "flags":
			f := dbg.GetFlags()
			fmt.Fprintf(out, "N=%v Z=%v C=%v V=%v I=%v F=%v\n", f.N, f.Z, f.C, f.V, f.I, f.F)
		case "reset":
			fmt.Fprintln(out, "reset requires re-invoking with assembler settings; use the API directly")
		default:
			fmt.Fprintf(out, "unknown command: %s (type 'help')\n", cmd)
		}
	}
	return scanner.Err()
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `commands: step|s, next|n, finish, continue|c, back [n], break <line...>, membreak <addr> [rwxu], print|p, dump <addr> [count], poke <addr> <byte>, poke16 <addr> <halfword>, flags, quit|q`)
}

func runStep(dbg *Debugger, out io.Writer, mode StepMode) {
	res, err := dbg.Step(mode)
	if err != nil {
		if _, ok := err.(*vm.HaltError); ok {
			fmt.Fprintln(out, "halted")
			return
		}
		fmt.Fprintf(out, "runtime error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "stopped at 0x%08X\n", res.InstrAddr)
	reportStop(dbg, out)
}

func reportStop(dbg *Debugger, out io.Writer) {
	if dbg.LastBreak != nil {
		fmt.Fprintf(out, "breakpoint: %s %s\n", dbg.LastBreak.Kind, dbg.LastBreak.Detail)
		dbg.LastBreak = nil
	}
}

// pokeMemory parses "poke <addr> <value>" and writes a single byte, the way
// a CLI must validate a user-supplied value fits the width being written
// rather than silently truncating it.
func pokeMemory(dbg *Debugger, args []string, out io.Writer) {
	if len(args) < 2 {
		fmt.Fprintln(out, "usage: poke <addr> <byte>")
		return
	}
	rawAddr, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil {
		fmt.Fprintf(out, "invalid address: %s\n", args[0])
		return
	}
	addr, err := vm.CheckedUint32(rawAddr)
	if err != nil {
		fmt.Fprintf(out, "invalid address: %v\n", err)
		return
	}
	rawVal, err := strconv.ParseInt(args[1], 0, 64)
	if err != nil {
		fmt.Fprintf(out, "invalid value: %s\n", args[1])
		return
	}
	val32, err := vm.CheckedUint32(rawVal)
	if err != nil {
		fmt.Fprintf(out, "invalid value: %v\n", err)
		return
	}
	b, err := vm.CheckedByte(val32)
	if err != nil {
		fmt.Fprintf(out, "value out of byte range: %v\n", err)
		return
	}
	if err := dbg.SetMemory(addr, b); err != nil {
		fmt.Fprintf(out, "memory error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "wrote 0x%02X to 0x%08X\n", b, addr)
}

// pokeHalfword parses "poke16 <addr> <value>", mirroring pokeMemory but for
// a half-word write, validating the value fits 16 bits before truncating.
func pokeHalfword(dbg *Debugger, args []string, out io.Writer) {
	if len(args) < 2 {
		fmt.Fprintln(out, "usage: poke16 <addr> <halfword>")
		return
	}
	rawAddr, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil {
		fmt.Fprintf(out, "invalid address: %s\n", args[0])
		return
	}
	addr, err := vm.CheckedUint32(rawAddr)
	if err != nil {
		fmt.Fprintf(out, "invalid address: %v\n", err)
		return
	}
	rawVal, err := strconv.ParseInt(args[1], 0, 64)
	if err != nil {
		fmt.Fprintf(out, "invalid value: %s\n", args[1])
		return
	}
	val32, err := vm.CheckedUint32(rawVal)
	if err != nil {
		fmt.Fprintf(out, "invalid value: %v\n", err)
		return
	}
	h, err := vm.CheckedUint16(val32)
	if err != nil {
		fmt.Fprintf(out, "value out of halfword range: %v\n", err)
		return
	}
	if err := dbg.SetMemoryHalfword(addr, h); err != nil {
		fmt.Fprintf(out, "memory error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "wrote 0x%04X to 0x%08X\n", h, addr)
}

func addBreakLines(dbg *Debugger, args []string, out io.Writer) {
	lines := dbg.InstrBkpts.Lines()
	for _, a := range args {
		if n, err := strconv.Atoi(a); err == nil {
			lines = append(lines, n)
		} else {
			fmt.Fprintf(out, "invalid line: %s\n", a)
		}
	}
	dbg.SetBreakpointInstr(lines)
}

// printRegisters renders the register file per dbg.NumberFormat ("hex",
// "dec" or "both", mirroring config.Config.Display.NumberFormat).
func printRegisters(dbg *Debugger, out io.Writer) {
	snap := dbg.GetRegisters()
	for i := 0; i < 16; i++ {
		switch dbg.NumberFormat {
		case "dec":
			fmt.Fprintf(out, "R%-2d=%d  ", i, vm.Signed(snap.General[i]))
		case "hex":
			fmt.Fprintf(out, "R%-2d=0x%08X  ", i, snap.General[i])
		default:
			fmt.Fprintf(out, "R%-2d=0x%08X (%d)  ", i, snap.General[i], vm.Signed(snap.General[i]))
		}
		if i%4 == 3 {
			fmt.Fprintln(out)
		}
	}
}

// dumpMemory parses "dump <addr> [count]" and prints count bytes from addr,
// wrapped at dbg.BytesPerLine per line (config.Config.Display.BytesPerLine).
func dumpMemory(dbg *Debugger, args []string, out io.Writer) {
	if len(args) < 1 {
		fmt.Fprintln(out, "usage: dump <addr> [count]")
		return
	}
	rawAddr, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil {
		fmt.Fprintf(out, "invalid address: %s\n", args[0])
		return
	}
	addr, err := vm.CheckedUint32(rawAddr)
	if err != nil {
		fmt.Fprintf(out, "invalid address: %v\n", err)
		return
	}

	count := 64
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(out, "invalid count: %s\n", args[1])
			return
		}
		uc, err := vm.CheckedUint32(int64(n))
		if err != nil {
			fmt.Fprintf(out, "invalid count: %v\n", err)
			return
		}
		count = int(uc)
	}

	data, err := dbg.GetMemory(addr, uint32(count))
	if err != nil {
		fmt.Fprintf(out, "memory error: %v\n", err)
		return
	}

	perLine := dbg.BytesPerLine
	if perLine <= 0 {
		perLine = 16
	}
	for i := 0; i < len(data); i += perLine {
		end := i + perLine
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(out, "0x%08X: ", addr+uint32(i))
		for _, b := range data[i:end] {
			fmt.Fprintf(out, "%02X ", b)
		}
		fmt.Fprintln(out)
	}
}

// addMemBreak parses "membreak <addr> <rwxu>" from the REPL, validating the
// user-supplied address the way a CLI boundary must.
func addMemBreak(dbg *Debugger, args []string, out io.Writer) {
	if len(args) < 1 {
		fmt.Fprintln(out, "usage: membreak <addr> [rwxu]")
		return
	}
	raw, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil {
		fmt.Fprintf(out, "invalid address: %s\n", args[0])
		return
	}
	addr, err := vm.CheckedUint32(raw)
	if err != nil {
		fmt.Fprintf(out, "invalid address: %v\n", err)
		return
	}
	mode := ""
	if len(args) > 1 {
		mode = args[1]
	}
	dbg.SetBreakpointMem(addr, mode)
	fmt.Fprintf(out, "membreak set at 0x%08X (%q)\n", addr, mode)
}
