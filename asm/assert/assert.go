// Package assert parses the fixed assertion expression grammar used by
// ASSERT directives:
// register/flag/memory comparisons, optionally joined with && / ||. The
// grammar is parsed once at assembly time into a small expression tree;
// evaluation against live simulator state happens at runtime and never
// falls back to a host-language eval.
package assert

import (
	"fmt"
	"strconv"
	"strings"
)

// State is the simulator-side view an Expr evaluates against.
type State interface {
	Reg(n int) uint32
	Flag(c byte) bool
	MemByte(addr uint32) byte
	MemWord(addr uint32) uint32
}

// Expr is a parsed boolean expression.
type Expr interface {
	Eval(s State) bool
}

// Value is a parsed scalar operand.
type Value interface {
	EvalValue(s State) uint32
}

type boolOp struct {
	op   string // "&&" or "||"
	l, r Expr
}

func (b *boolOp) Eval(s State) bool {
	if b.op == "&&" {
		return b.l.Eval(s) && b.r.Eval(s)
	}
	return b.l.Eval(s) || b.r.Eval(s)
}

type compare struct {
	op   string
	l, r Value
}

func (c *compare) Eval(s State) bool {
	lv, rv := int32(c.l.EvalValue(s)), int32(c.r.EvalValue(s))
	switch c.op {
	case "==":
		return lv == rv
	case "!=":
		return lv != rv
	case "<":
		return lv < rv
	case "<=":
		return lv <= rv
	case ">":
		return lv > rv
	case ">=":
		return lv >= rv
	}
	return false
}

type regRef struct{ n int }

func (r regRef) EvalValue(s State) uint32 { return s.Reg(r.n) }

type flagRef struct{ c byte }

func (f flagRef) EvalValue(s State) uint32 {
	if s.Flag(f.c) {
		return 1
	}
	return 0
}

type memRef struct {
	word bool
	addr Value
}

func (m memRef) EvalValue(s State) uint32 {
	addr := m.addr.EvalValue(s)
	if m.word {
		return s.MemWord(addr)
	}
	return uint32(s.MemByte(addr))
}

type constVal struct{ v uint32 }

func (c constVal) EvalValue(s State) uint32 { return c.v }

// Parse compiles one ASSERT expression into an Expr tree.
func Parse(text string) (Expr, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty assertion expression")
	}
	return parseOr(text)
}

func parseOr(s string) (Expr, error) {
	parts := splitTop(s, "||")
	if len(parts) == 1 {
		return parseAnd(parts[0])
	}
	var expr Expr
	for i, p := range parts {
		e, err := parseAnd(p)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			expr = e
		} else {
			expr = &boolOp{op: "||", l: expr, r: e}
		}
	}
	return expr, nil
}

func parseAnd(s string) (Expr, error) {
	parts := splitTop(s, "&&")
	if len(parts) == 1 {
		return parseCompare(parts[0])
	}
	var expr Expr
	for i, p := range parts {
		e, err := parseCompare(p)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			expr = e
		} else {
			expr = &boolOp{op: "&&", l: expr, r: e}
		}
	}
	return expr, nil
}

var compareOps = []string{"==", "!=", "<=", ">=", "<", ">"}

func parseCompare(s string) (Expr, error) {
	s = strings.TrimSpace(s)
	for _, op := range compareOps {
		if idx := strings.Index(s, op); idx >= 0 {
			left, right := s[:idx], s[idx+len(op):]
			lv, err := parseValue(left)
			if err != nil {
				return nil, err
			}
			rv, err := parseValue(right)
			if err != nil {
				return nil, err
			}
			return &compare{op: op, l: lv, r: rv}, nil
		}
	}
	return nil, fmt.Errorf("assertion %q: no comparison operator found", s)
}

func parseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)

	if strings.HasPrefix(upper, "MEM[") && strings.HasSuffix(s, "]") {
		return parseMemRef(s, true)
	}
	if strings.HasPrefix(upper, "MEMB[") && strings.HasSuffix(s, "]") {
		return parseMemRef(s, false)
	}
	if len(upper) >= 2 && upper[0] == 'R' {
		if n, err := strconv.Atoi(upper[1:]); err == nil && n >= 0 && n <= 15 {
			return regRef{n: n}, nil
		}
	}
	switch upper {
	case "N", "Z", "C", "V":
		return flagRef{c: upper[0]}, nil
	}
	v, err := parseIntLiteral(s)
	if err != nil {
		return nil, fmt.Errorf("assertion operand %q: %w", s, err)
	}
	return constVal{v: v}, nil
}

func parseMemRef(s string, word bool) (Value, error) {
	inner := s[strings.Index(s, "[")+1 : len(s)-1]
	addrVal, err := parseValue(inner)
	if err != nil {
		return nil, err
	}
	return memRef{word: word, addr: addrVal}, nil
}

func parseIntLiteral(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var v uint64
	var err error
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		v, err = strconv.ParseUint(s[2:], 16, 64)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		v, err = strconv.ParseUint(s[2:], 2, 64)
	default:
		v, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, err
	}
	if neg {
		return uint32(-int64(v)), nil
	}
	return uint32(v), nil
}

// splitTop splits s on sep occurrences that are not inside [] brackets.
func splitTop(s, sep string) []string {
	var out []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		}
		if depth == 0 && i+len(sep) <= len(s) && s[i:i+len(sep)] == sep {
			out = append(out, s[last:i])
			last = i + len(sep)
			i += len(sep) - 1
		}
	}
	out = append(out, s[last:])
	return out
}
