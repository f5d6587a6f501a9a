package rules

import (
	"fmt"

	"archlint/internal/report"
)

// Error is a rules configuration problem: a file that cannot be parsed or
// a rule that cannot be compiled. These surface to users as config issues,
// never as engine crashes.
type Error struct {
	Code    string
	Message string

	File   string
	Line   int
	Column int

	Details map[string]any
}

func (e *Error) Error() string {
	loc := ""
	if e.File != "" {
		loc = e.File
		if e.Line > 0 {
			loc = fmt.Sprintf("%s:%d", loc, e.Line)
			if e.Column > 0 {
				loc = fmt.Sprintf("%s:%d", loc, e.Column)
			}
		}
		loc += ": "
	}
	return loc + e.Message
}

// AsEngineError converts the error into a report diagnostic. Parse-stage
// errors map to parse_error, everything else to rules_error.
func (e *Error) AsEngineError() report.EngineError {
	typ := report.ErrRules
	if e.Code == codeParse {
		typ = report.ErrParse
	}
	var loc *report.Location
	if e.File != "" {
		loc = &report.Location{File: e.File, Line: e.Line, Column: e.Column}
	}
	return report.EngineError{
		Type:     typ,
		Message:  e.Message,
		Location: loc,
		Details:  e.Details,
	}
}

const (
	codeParse   = "rules_parse_error"
	codeCompile = "rules_compile_error"
)

func parseErr(file, format string, args ...any) *Error {
	return &Error{Code: codeParse, Message: fmt.Sprintf(format, args...), File: file}
}

func compileErr(r RuleDef, format string, args ...any) *Error {
	e := &Error{
		Code:    codeCompile,
		Message: fmt.Sprintf(format, args...),
		Details: map[string]any{"rule_id": r.ID, "rule_name": r.Name},
	}
	if r.Span != nil {
		e.File = r.Span.File
		e.Line = r.Span.Line
		e.Column = r.Span.Column
	}
	return e
}
