package asm

import (
	"encoding/binary"
	"strings"

	"github.com/arm-pedagogical/armsim/token"
)

func (a *Assembler) parseDataDirective(directive, rest string, lineNo int) (Record, error) {
	switch directive {
	case "SPACE":
		n, err := parseImmediate(rest)
		if err != nil {
			return Record{}, lineErr(lineNo, "SPACE: %v", err)
		}
		return Record{Kind: RecBytecode, Line: lineNo, Bytes: make([]byte, n)}, nil

	case "DCB":
		return a.parseDCB(rest, lineNo)

	case "DCW":
		return a.parseDCWordlike(rest, lineNo, 2)

	case "DCD":
		return a.parseDCD(rest, lineNo)
	}
	return Record{}, lineErr(lineNo, "unknown directive %s", directive)
}

func (a *Assembler) parseDCB(rest string, lineNo int) (Record, error) {
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "\"") {
		end := strings.LastIndexByte(rest, '"')
		if end <= 0 {
			return Record{}, lineErr(lineNo, "DCB: unterminated string")
		}
		body := rest[1:end]
		decoded, err := token.DecodeString(body)
		if err != nil {
			return Record{}, lineErr(lineNo, "DCB: %v", err)
		}
		return Record{Kind: RecBytecode, Line: lineNo, Bytes: []byte(decoded)}, nil
	}

	var out []byte
	for _, f := range splitTopLevelCommas(rest) {
		v, err := parseImmediate(f)
		if err != nil {
			return Record{}, lineErr(lineNo, "DCB: %v", err)
		}
		out = append(out, byte(v))
	}
	return Record{Kind: RecBytecode, Line: lineNo, Bytes: out}, nil
}

func (a *Assembler) parseDCWordlike(rest string, lineNo int, size int) (Record, error) {
	var out []byte
	for _, f := range splitTopLevelCommas(rest) {
		v, err := parseImmediate(f)
		if err != nil {
			return Record{}, lineErr(lineNo, "DCW: %v", err)
		}
		buf := make([]byte, size)
		if size == 2 {
			binary.LittleEndian.PutUint16(buf, uint16(v))
		}
		out = append(out, buf...)
	}
	return Record{Kind: RecBytecode, Line: lineNo, Bytes: out}, nil
}

func (a *Assembler) parseDCD(rest string, lineNo int) (Record, error) {
	var out []byte
	var dep *Dependency
	fields := splitTopLevelCommas(rest)
	if len(fields) != 1 {
		for _, f := range fields {
			v, err := parseImmediate(f)
			if err != nil {
				return Record{}, lineErr(lineNo, "DCD: %v", err)
			}
			buf := make([]byte, 4)
			binary.LittleEndian.PutUint32(buf, v)
			out = append(out, buf...)
		}
		return Record{Kind: RecBytecode, Line: lineNo, Bytes: out}, nil
	}

	f := fields[0]
	if v, err := parseImmediate(f); err == nil {
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, v)
		return Record{Kind: RecBytecode, Line: lineNo, Bytes: buf}, nil
	}
	// Not a literal: treat as a label whose absolute address fills this word.
	dep = &Dependency{Kind: DepWord, Label: f}
	return Record{Kind: RecBytecode, Line: lineNo, Bytes: make([]byte, 4), Dep: dep}, nil
}
