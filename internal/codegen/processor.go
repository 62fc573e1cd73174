package codegen

import (
	"github.com/ozars/specialized-dispatch/internal/diagnostics"
	"github.com/ozars/specialized-dispatch/internal/pipeline"
	"github.com/ozars/specialized-dispatch/internal/token"
)

// CodegenProcessor is the terminal pipeline stage. Generation never runs
// when any earlier stage reported a diagnostic.
type CodegenProcessor struct {
	// EmitLineDirectives forwards the config switch; attribution only
	// happens for invocations with a known host file.
	EmitLineDirectives bool
}

func (cp *CodegenProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Spec == nil || ctx.Failed() {
		return ctx
	}

	site := Site{
		File:               ctx.FilePath,
		Line:               ctx.BaseLine,
		Column:             ctx.BaseColumn,
		EmitLineDirectives: cp.EmitLineDirectives,
	}
	fragment, err := NewGenerator(ctx.Spec, site).Generate()
	if err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(
			diagnostics.ErrR002, token.Token{}, err.Error()))
		return ctx
	}

	ctx.GeneratedName = fragment.Name
	ctx.GeneratedDecls = fragment.Decls
	ctx.GeneratedCall = fragment.Call
	return ctx
}
