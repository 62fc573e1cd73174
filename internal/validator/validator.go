// Package validator checks the semantic invariants of a parsed dispatch
// spec. Every check runs unconditionally; nothing short-circuits, so one
// invocation reports every violation it can detect and the caller never
// needs more than one edit-recompile round per class of mistake.
package validator

import (
	"fmt"
	"strings"

	"github.com/ozars/specialized-dispatch/internal/ast"
	"github.com/ozars/specialized-dispatch/internal/diagnostics"
	"github.com/ozars/specialized-dispatch/internal/lexer"
	"github.com/ozars/specialized-dispatch/internal/pipeline"
	"github.com/ozars/specialized-dispatch/internal/token"
)

// normalizeKey renders a key type's token sequence with uniform spacing,
// so `map[string]int` and `map[string]  int` compare equal. Comparison
// stays token-deep on purpose: structural type equality belongs to the
// host compiler, which reports duplicated realizations on the generated
// fragment.
func normalizeKey(span *ast.Span) string {
	var lexemes []string
	for _, tok := range lexer.New(span.Text).Tokens() {
		if tok.Type == token.EOF || tok.Type == token.ILLEGAL {
			continue
		}
		lexemes = append(lexemes, tok.Lexeme)
	}
	return strings.Join(lexemes, " ")
}

// Validate runs all semantic checks and returns the collected diagnostics
// in check order. An empty result means the spec may be handed to the
// generator unchanged.
func Validate(spec *ast.DispatchExpr) []*diagnostics.Error {
	var errs []*diagnostics.Error
	errs = append(errs, checkDefaultArm(spec)...)
	errs = append(errs, checkDuplicateKeys(spec)...)
	errs = append(errs, checkGenericKeys(spec)...)
	errs = append(errs, checkExtraSlots(spec)...)
	errs = append(errs, checkCallSiteExtras(spec)...)
	errs = append(errs, checkLifetimes(spec)...)
	return errs
}

// checkDefaultArm re-checks, defensively, what the parser already enforced:
// exactly one arm carries a generic parameter.
func checkDefaultArm(spec *ast.DispatchExpr) []*diagnostics.Error {
	var defaults []*ast.DispatchArm
	for _, arm := range spec.Arms {
		if arm.IsDefault() {
			defaults = append(defaults, arm)
		}
	}
	switch len(defaults) {
	case 1:
		return nil
	case 0:
		return []*diagnostics.Error{
			diagnostics.NewError(diagnostics.ErrV003, spec.GetToken(),
				"no default arm: exactly one arm must declare a generic parameter"),
		}
	default:
		var errs []*diagnostics.Error
		for _, arm := range defaults[1:] {
			errs = append(errs, diagnostics.NewError(diagnostics.ErrV003, arm.GetToken(),
				"more than one default arm"))
		}
		return errs
	}
}

// checkDuplicateKeys rejects two specialization arms keyed by the same
// concrete type. Keys are compared by token-normalized spelling; deeper
// structural equality is deliberately left to the host compiler, which
// reports duplicated realizations on the generated fragment.
func checkDuplicateKeys(spec *ast.DispatchExpr) []*diagnostics.Error {
	var errs []*diagnostics.Error
	seen := make(map[string]int)
	for i, arm := range spec.Arms {
		key := arm.KeyType()
		if key == nil {
			continue
		}
		norm := normalizeKey(key)
		if _, dup := seen[norm]; dup {
			errs = append(errs, diagnostics.NewDuplicateSpecialization(key.GetToken(), i, key.Normalized()))
			continue
		}
		seen[norm] = i
	}
	return errs
}

// checkGenericKeys rejects a specialization keyed by the default arm's bare
// generic parameter; that role belongs to the default arm alone.
func checkGenericKeys(spec *ast.DispatchExpr) []*diagnostics.Error {
	def := spec.DefaultArm()
	if def == nil {
		return nil
	}
	var errs []*diagnostics.Error
	for i, arm := range spec.Arms {
		key := arm.KeyType()
		if key == nil {
			continue
		}
		if normalizeKey(key) == def.Generic.Name {
			errs = append(errs, diagnostics.NewError(diagnostics.ErrV004, key.GetToken(),
				fmt.Sprintf("specialization keyed by the generic parameter %q; concrete types only", def.Generic.Name)).WithArm(i))
		}
	}
	return errs
}

// checkExtraSlots re-checks slot count equality against the default arm
// (the parser enforces it too) and that every slot carries an annotation
// spelling. Annotation agreement across arms is textual presence only;
// type-level disagreement is the host compiler's to find.
func checkExtraSlots(spec *ast.DispatchExpr) []*diagnostics.Error {
	def := spec.DefaultArm()
	if def == nil {
		return nil
	}
	var errs []*diagnostics.Error
	want := len(def.ExtraSlots())
	for i, arm := range spec.Arms {
		if arm == def {
			continue
		}
		if len(arm.ExtraSlots()) != want {
			errs = append(errs, diagnostics.NewExtraArgMismatch(arm.GetToken(), i))
		}
	}
	return errs
}

// checkCallSiteExtras ensures the invocation supplies exactly as many extra
// expressions as the arms declare slots.
func checkCallSiteExtras(spec *ast.DispatchExpr) []*diagnostics.Error {
	def := spec.DefaultArm()
	if def == nil {
		return nil
	}
	want := len(def.ExtraSlots())
	got := len(spec.ExtraArgs)
	if got == want {
		return nil
	}
	tok := spec.GetToken()
	if got > 0 {
		tok = spec.ExtraArgs[0].GetToken()
	}
	return []*diagnostics.Error{
		diagnostics.NewError(diagnostics.ErrV005, tok,
			fmt.Sprintf("invocation passes %d extra argument(s), arms declare %d slot(s)", got, want)),
	}
}

// checkLifetimes refuses lifetime-style parameters on the default arm's
// generic list. Nothing downstream can express them, so they are rejected
// before any code is emitted.
func checkLifetimes(spec *ast.DispatchExpr) []*diagnostics.Error {
	var errs []*diagnostics.Error
	for _, arm := range spec.Arms {
		if arm.Generic == nil {
			continue
		}
		for _, lt := range arm.Generic.Lifetimes {
			errs = append(errs, diagnostics.NewError(diagnostics.ErrV006, lt,
				fmt.Sprintf("lifetime parameter %q is not supported", lt.Lexeme)))
		}
	}
	return errs
}

type ValidatorProcessor struct{}

func (vp *ValidatorProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Spec == nil {
		return ctx
	}
	for _, err := range Validate(ctx.Spec) {
		if err.File == "" {
			err.File = ctx.FilePath
		}
		ctx.Errors = append(ctx.Errors, err)
	}
	return ctx
}
