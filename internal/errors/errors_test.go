package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileErrorFormatting(t *testing.T) {
	withLexeme := &CompileError{File: "main.sn", Line: 3, Lexeme: "+", Message: "unexpected token"}
	require.Equal(t, "main.sn:3: error at '+': unexpected token", withLexeme.Error())

	noLexeme := &CompileError{File: "main.sn", Line: 7, Message: "unterminated string"}
	require.Equal(t, "main.sn:7: error: unterminated string", noLexeme.Error())
}

func TestCompileErrorsAggregatesInPanicModeRecovery(t *testing.T) {
	var errs CompileErrors
	require.False(t, errs.HasErrors())

	errs.Add("a.sn", 1, "(", "expected expression")
	errs.Add("a.sn", 2, "", "expected ';' after statement")
	require.True(t, errs.HasErrors())
	require.Len(t, errs.Errors, 2)

	want := "a.sn:1: error at '(': expected expression\na.sn:2: error: expected ';' after statement"
	require.Equal(t, want, errs.Error())
}

func TestStackFrameString(t *testing.T) {
	withFunc := StackFrame{Module: "main", Function: "f", Line: 10}
	require.Equal(t, "  at f (main:10)", withFunc.String())

	topLevel := StackFrame{Module: "main", Line: 1}
	require.Equal(t, "  at main:1", topLevel.String())
}

func TestFormatTrace(t *testing.T) {
	frames := []StackFrame{
		{Module: "main", Function: "g", Line: 5},
		{Module: "main", Function: "f", Line: 2},
	}
	got := FormatTrace("Exception", "boom", frames)
	want := "Exception: boom\n  at g (main:5)\n  at f (main:2)\n"
	require.Equal(t, want, got)
}

func TestFatalErrorWrapsCauseForDiagnostic(t *testing.T) {
	cause := errors.New("disk full")
	fatal := WrapFatal(cause, "allocator exhausted")
	require.Equal(t, "allocator exhausted", fatal.Error())
	require.Contains(t, fatal.Diagnostic(), "fatal:")
	require.Contains(t, fatal.Diagnostic(), "allocator exhausted")
}

func TestNewFatalHasNoWrappedCauseMessage(t *testing.T) {
	fatal := NewFatal("out of memory")
	require.Equal(t, "out of memory", fatal.Error())
	require.Contains(t, fatal.Diagnostic(), "out of memory")
}
