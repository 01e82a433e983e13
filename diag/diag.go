// Package diag holds the error types produced by each pipeline stage and the
// rules that render and classify them.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"lox/token"
)

// Kind separates failures found before execution from failures found while
// executing, so a front end can pick distinct exit codes.
type Kind int

const (
	Unknown Kind = iota
	CompileTime
	Runtime
)

func (k Kind) String() string {
	switch k {
	case CompileTime:
		return "compile"
	case Runtime:
		return "runtime"
	default:
		return "unknown"
	}
}

// ScanError is a lexical error. Scanning continues after one.
type ScanError struct {
	Line    int
	Message string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

// ParseError is a syntax or static-resolution error anchored at a token.
type ParseError struct {
	Token   token.Token
	Message string
}

func (e *ParseError) Error() string { return at(e.Token, e.Message) }

// RuntimeError aborts the rest of the current run.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string { return at(e.Token, e.Message) }

func NewRuntimeError(tok token.Token, format string, a ...interface{}) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, a...)}
}

func at(tok token.Token, message string) string {
	if tok.Type == token.EOF {
		return fmt.Sprintf("[line %d] Error at end: %s", tok.Line, message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", tok.Line, tok.Lexeme, message)
}

// List collects every error reported by a phase, in source order.
type List []error

func (l List) Error() string {
	lines := make([]string, 0, len(l))
	for _, err := range l {
		lines = append(lines, err.Error())
	}
	return strings.Join(lines, "\n")
}

// Err returns nil for an empty list so callers can use the usual err != nil check.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// KindOf classifies err. A List is compile-time when any member is.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	var rt *RuntimeError
	if errors.As(err, &rt) {
		return Runtime
	}
	var se *ScanError
	var pe *ParseError
	if errors.As(err, &se) || errors.As(err, &pe) {
		return CompileTime
	}
	var l List
	if errors.As(err, &l) {
		for _, e := range l {
			if k := KindOf(e); k != Unknown {
				return k
			}
		}
	}
	return Unknown
}
