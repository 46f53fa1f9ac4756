package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vellum/internal/errors"
	"vellum/internal/gc"
	"vellum/internal/value"
)

func compile(t *testing.T, src string) (*value.ObjFunction, error) {
	t.Helper()
	g := gc.New(1 << 20)
	mod := value.NewModule("", "<test>")
	return Compile(src, "<test>", mod, g)
}

func TestCompileValidSourceProducesFunction(t *testing.T) {
	fn, err := compile(t, `echo 1 + 2`)
	require.NoError(t, err)
	require.NotNil(t, fn)
}

// TestCompileRecoversAndAggregatesMultipleErrors exercises the panic-mode
// recovery protocol (spec section 7, item 1): the compiler must not stop at
// the first malformed statement, and must surface every error it recovered
// past as one aggregated CompileErrors.
func TestCompileRecoversAndAggregatesMultipleErrors(t *testing.T) {
	_, err := compile(t, "var = ;\nvar = ;\n")
	require.Error(t, err)

	var errs *errors.CompileErrors
	require.ErrorAs(t, err, &errs)
	require.True(t, errs.HasErrors())
	require.GreaterOrEqual(t, len(errs.Errors), 2, "panic-mode recovery must keep parsing past the first error")
}

func TestCompileErrorIncludesFileAndLine(t *testing.T) {
	_, err := compile(t, "\n\nvar x = ;\n")
	require.Error(t, err)

	var errs *errors.CompileErrors
	require.ErrorAs(t, err, &errs)
	require.NotEmpty(t, errs.Errors)
	require.Equal(t, "<test>", errs.Errors[0].File)
	require.Equal(t, 3, errs.Errors[0].Line)
}

func TestCompileFunctionFallsThroughReturnsNil(t *testing.T) {
	fn, err := compile(t, `def f() { var x = 1 }`)
	require.NoError(t, err)
	require.NotNil(t, fn)
}
