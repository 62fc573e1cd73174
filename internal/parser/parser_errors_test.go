package parser_test

import (
	"testing"

	"github.com/ozars/specialized-dispatch/internal/diagnostics"
)

func codes(errs []*diagnostics.Error) []diagnostics.Code {
	var out []diagnostics.Code
	for _, err := range errs {
		out = append(out, err.Code)
	}
	return out
}

func hasCode(errs []*diagnostics.Error, code diagnostics.Code) bool {
	for _, err := range errs {
		if err.Code == code {
			return true
		}
	}
	return false
}

func TestParserErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		code  diagnostics.Code
	}{
		{
			"missing_default",
			`arg, Arg -> string, fn (v: uint8) => "u8"`,
			diagnostics.ErrP003,
		},
		{
			"missing_type_arrow",
			`arg, default fn <T>(_: T) => "d"`,
			diagnostics.ErrP001,
		},
		{
			"missing_dispatch_argument",
			`Arg -> string, default fn <T>(_: T) => "d"`,
			diagnostics.ErrP001,
		},
		{
			"arity_mismatch",
			`arg, Arg -> string, default fn <T>(_: T, s: string) => "d", fn (v: uint8) => "u8", s`,
			diagnostics.ErrP004,
		},
		{
			"unbalanced_body",
			`arg, Arg -> string, default fn <T>(_: T) => f(v`,
			diagnostics.ErrP002,
		},
		{
			"stray_closing_paren",
			`arg), Arg -> string, default fn <T>(_: T) => "d"`,
			diagnostics.ErrP002,
		},
		{
			"missing_annotation",
			`arg, Arg -> string, default fn <T>(v) => "d"`,
			diagnostics.ErrP005,
		},
		{
			"missing_arm_body",
			`arg, Arg -> string, default fn <T>(_: T) =>, fn (v: uint8) => "u8"`,
			diagnostics.ErrP001,
		},
		{
			"two_generic_params",
			`arg, Arg -> string, default fn <T, U>(_: T) => "d"`,
			diagnostics.ErrP006,
		},
		{
			"empty_param_list",
			`arg, Arg -> string, default fn <T>() => "d"`,
			diagnostics.ErrP001,
		},
		{
			"bad_expression_span",
			`arg +, Arg -> string, default fn <T>(_: T) => "d"`,
			diagnostics.ErrP007,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := parse(t, tc.input)
			if !hasCode(ctx.Errors, tc.code) {
				t.Errorf("diagnostics = %v, want %s", codes(ctx.Errors), tc.code)
			}
		})
	}
}

func TestArityMismatchDetails(t *testing.T) {
	ctx := parse(t, `arg, Arg -> string, default fn <T>(_: T, s: string) => "d", fn (v: uint8) => "u8", s`)
	var found *diagnostics.Error
	for _, err := range ctx.Errors {
		if err.Code == diagnostics.ErrP004 {
			found = err
		}
	}
	if found == nil {
		t.Fatalf("diagnostics = %v, want %s", codes(ctx.Errors), diagnostics.ErrP004)
	}
	if found.ArmIndex != 1 {
		t.Errorf("ArmIndex = %d, want 1", found.ArmIndex)
	}
}

func TestAllErrorsCollected(t *testing.T) {
	// One invocation, two unrelated mistakes: both must be reported in a
	// single run.
	ctx := parse(t, `arg, Arg -> string, default fn <T>(v) => "d", fn (v: uint8) => "u8", fn (w) => "x"`)
	if !hasCode(ctx.Errors, diagnostics.ErrP005) {
		t.Errorf("missing annotation not reported: %v", codes(ctx.Errors))
	}
	if len(ctx.Errors) < 2 {
		t.Errorf("expected multiple diagnostics, got %v", codes(ctx.Errors))
	}
}
