// Package errors implements the three-way error model from spec section 7:
// compile errors (surfaced with file/line/lexeme and a panic-mode recovery
// protocol), runtime exceptions (represented as Exception instances at the
// VM layer, not here), and fatal runtime errors (OOM / internal invariant
// violations, wrapped with a captured stack for postmortem diagnostics).
package errors

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// CompileError is one malformed-syntax diagnostic. The compiler keeps
// collecting these in panic-mode recovery rather than stopping at the
// first one (spec section 7, item 1).
type CompileError struct {
	File    string
	Line    int
	Lexeme  string
	Message string
}

func (e *CompileError) Error() string {
	if e.Lexeme != "" {
		return fmt.Sprintf("%s:%d: error at '%s': %s", e.File, e.Line, e.Lexeme, e.Message)
	}
	return fmt.Sprintf("%s:%d: error: %s", e.File, e.Line, e.Message)
}

// CompileErrors aggregates every error surfaced by one compilation attempt.
type CompileErrors struct {
	Errors []*CompileError
}

func (c *CompileErrors) Add(file string, line int, lexeme, message string) {
	c.Errors = append(c.Errors, &CompileError{File: file, Line: line, Lexeme: lexeme, Message: message})
}

func (c *CompileErrors) HasErrors() bool { return len(c.Errors) > 0 }

func (c *CompileErrors) Error() string {
	var sb strings.Builder
	for i, e := range c.Errors {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// StackFrame is one entry of a captured runtime stack trace, attached to an
// Exception instance's `stacktrace` property when `OP_DIE` fires.
type StackFrame struct {
	Module   string
	Function string
	Line     int
}

func (f StackFrame) String() string {
	if f.Function != "" {
		return fmt.Sprintf("  at %s (%s:%d)", f.Function, f.Module, f.Line)
	}
	return fmt.Sprintf("  at %s:%d", f.Module, f.Line)
}

// FormatTrace renders a captured stack trace the way an unhandled exception
// is printed (spec section 4.4, "Exception semantics").
func FormatTrace(className, message string, frames []StackFrame) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", className, message)
	for _, f := range frames {
		sb.WriteString(f.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FatalError represents an unrecoverable internal condition: out of memory
// or an invariant violation the runtime cannot safely continue past (spec
// section 7, item 3). It always exits with code 12 after flushing stdout.
type FatalError struct {
	Message string
	cause   error
}

func NewFatal(message string) *FatalError {
	return &FatalError{Message: message, cause: pkgerrors.New(message)}
}

func WrapFatal(err error, message string) *FatalError {
	return &FatalError{Message: message, cause: pkgerrors.Wrap(err, message)}
}

func (f *FatalError) Error() string { return f.Message }

// Diagnostic renders the internal diagnostic (with a captured stack, via
// pkg/errors' %+v formatting) that is printed to stderr before exit(12).
// This is deliberately more verbose than the user-facing exception
// printer: fatal errors are an operator/maintainer signal, not user text.
func (f *FatalError) Diagnostic() string {
	return fmt.Sprintf("fatal: %+v", f.cause)
}
