package asm

import (
	"strings"
)

// splitTopLevelCommas splits on commas that are not nested inside [] or {}
// so that "[R1, #4]" and "{R0,R1}" survive as single operand fields.
func splitTopLevelCommas(s string) []string {
	var fields []string
	depth := 0
	start := 0
	for i, ch := range s {
		switch ch {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		case ',':
			if depth == 0 {
				fields = append(fields, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	fields = append(fields, strings.TrimSpace(s[start:]))
	return fields
}

// stripComment removes a ';' end-of-line comment, respecting that ';' never
// appears inside this dialect's operand syntax.
func stripComment(line string) string {
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// parseLine parses one source line into zero, one or two Records: a label
// definition may be followed on the same line by a directive, assertion or
// instruction.
func (a *Assembler) parseLine(raw string, lineNo int) ([]Record, []error) {
	line := strings.TrimSpace(stripComment(raw))
	if line == "" {
		return nil, nil
	}

	var records []Record
	var errs []error

	// Optional leading "label:"
	if colon := strings.IndexByte(line, ':'); colon > 0 {
		candidate := strings.TrimSpace(line[:colon])
		if isValidLabelName(candidate) {
			records = append(records, Record{Kind: RecLabel, Line: lineNo, Label: candidate})
			line = strings.TrimSpace(line[colon+1:])
		}
	}

	if line == "" {
		return records, errs
	}

	fields := strings.SplitN(line, " ", 2)
	head := strings.ToUpper(fields[0])
	rest := ""
	if len(fields) > 1 {
		rest = strings.TrimSpace(fields[1])
	}

	switch head {
	case "SECTION":
		records = append(records, Record{Kind: RecSection, Line: lineNo, Section: strings.ToUpper(strings.TrimSpace(rest))})
		return records, errs

	case "ASSERT":
		records = append(records, Record{Kind: RecAssertion, Line: lineNo, AssertExpr: rest})
		return records, errs

	case "DCD", "DCW", "DCB", "SPACE":
		rec, err := a.parseDataDirective(head, rest, lineNo)
		if err != nil {
			errs = append(errs, err)
			return records, errs
		}
		records = append(records, rec)
		return records, errs
	}

	rec, err := a.parseInstruction(fields[0], rest, lineNo, raw)
	if err != nil {
		errs = append(errs, err)
		return records, errs
	}
	records = append(records, rec)
	return records, errs
}

func isValidLabelName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !(r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || r == '.') {
			return false
		}
		if !(r == '_' || r == '.' || (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
			return false
		}
	}
	return true
}
