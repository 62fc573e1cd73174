package parser_test

import (
	"strings"
	"testing"

	"github.com/ozars/specialized-dispatch/internal/lexer"
	"github.com/ozars/specialized-dispatch/internal/parser"
	"github.com/ozars/specialized-dispatch/internal/pipeline"
	"github.com/ozars/specialized-dispatch/internal/prettyprinter"
)

func parse(t *testing.T, input string) *pipeline.PipelineContext {
	t.Helper()
	ctx := &pipeline.PipelineContext{SourceCode: input}
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	return ctx
}

func mustParse(t *testing.T, input string) *pipeline.PipelineContext {
	t.Helper()
	ctx := parse(t, input)
	if len(ctx.Errors) > 0 {
		var msgs []string
		for _, err := range ctx.Errors {
			msgs = append(msgs, err.Error())
		}
		t.Fatalf("parsing failed with errors:\n%s", strings.Join(msgs, "\n"))
	}
	return ctx
}

func printTree(ctx *pipeline.PipelineContext) string {
	printer := prettyprinter.NewTreePrinter()
	ctx.Spec.Accept(printer)
	return printer.String()
}

func TestParser(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"simple_invocation",
			`arg,
			Arg -> string,
			default fn <T>(_: T) => "default value",
			fn (v: uint8) => fmt.Sprintf("u8: %d", v),
			fn (v: uint16) => fmt.Sprintf("u16: %d", v),`,
			`DispatchExpr
  Arg: arg
  Type: Arg -> string
  DefaultArm
    Generic: T
    Param: _: T
    Body: "default value"
  SpecializationArm
    Param: v: uint8
    Body: fmt.Sprintf("u8: %d", v)
  SpecializationArm
    Param: v: uint16
    Body: fmt.Sprintf("u16: %d", v)
`,
		},
		{
			"default_keyword_optional",
			`arg, Arg -> string, fn <T>(_: T) => "d", fn (v: uint8) => "u8"`,
			`DispatchExpr
  Arg: arg
  Type: Arg -> string
  DefaultArm
    Generic: T
    Param: _: T
    Body: "d"
  SpecializationArm
    Param: v: uint8
    Body: "u8"
`,
		},
		{
			"default_arm_last",
			`arg, Arg -> string, fn (v: uint8) => "u8", default fn <T>(_: T) => "other"`,
			`DispatchExpr
  Arg: arg
  Type: Arg -> string
  SpecializationArm
    Param: v: uint8
    Body: "u8"
  DefaultArm
    Generic: T
    Param: _: T
    Body: "other"
`,
		},
		{
			"trailing_arguments",
			`T -> string,
			default fn <T: fmt.Stringer>(v: T, arg: string) => v.String() + arg,
			fn (v: uint8, arg: string) => "u8" + arg,
			expr, name,`,
			`DispatchExpr
  Arg: expr
  Type: T -> string
  DefaultArm
    Generic: T: fmt.Stringer
    Param: v: T
    Param: arg: string
    Body: v.String() + arg
  SpecializationArm
    Param: v: uint8
    Param: arg: string
    Body: "u8" + arg
  Extra: name
`,
		},
		{
			"multiple_bounds",
			`arg, Arg -> string, default fn <T: fmt.Stringer + error>(v: T) => v.String()`,
			`DispatchExpr
  Arg: arg
  Type: Arg -> string
  DefaultArm
    Generic: T: fmt.Stringer + error
    Param: v: T
    Body: v.String()
`,
		},
		{
			"block_body",
			`arg, Arg -> string, default fn <T>(v: T) => { return fmt.Sprint(v) }`,
			`DispatchExpr
  Arg: arg
  Type: Arg -> string
  DefaultArm
    Generic: T
    Param: v: T
    Body: { return fmt.Sprint(v) }
`,
		},
		{
			"composite_key_type",
			`arg, Arg -> int, default fn <T>(_: T) => 0, fn (v: []byte) => len(v), fn (m: map[string]int) => len(m)`,
			`DispatchExpr
  Arg: arg
  Type: Arg -> int
  DefaultArm
    Generic: T
    Param: _: T
    Body: 0
  SpecializationArm
    Param: v: []byte
    Body: len(v)
  SpecializationArm
    Param: m: map[string]int
    Body: len(m)
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := mustParse(t, tc.input)
			if got := printTree(ctx); got != tc.expected {
				t.Errorf("spec tree mismatch\n--- got ---\n%s--- want ---\n%s", got, tc.expected)
			}
		})
	}
}

func TestBodySurvivesVerbatim(t *testing.T) {
	body := `fmt.Sprintf("u8: %d, %s", v, strings.ToUpper(s))`
	ctx := mustParse(t, `arg, Arg -> string, default fn <T>(_: T, s: string) => "d", fn (v: uint8, s: string) => `+body+`, extra`)
	arms := ctx.Spec.Specializations()
	if len(arms) != 1 {
		t.Fatalf("specializations = %d, want 1", len(arms))
	}
	if arms[0].Body.Text != body {
		t.Errorf("body = %q, want %q", arms[0].Body.Text, body)
	}
}
