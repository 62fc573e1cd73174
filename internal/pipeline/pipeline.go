// Package pipeline wires the expansion stages (lex, parse, validate,
// generate) of one dispatch invocation.
package pipeline

import (
	"github.com/ozars/specialized-dispatch/internal/ast"
	"github.com/ozars/specialized-dispatch/internal/diagnostics"
	"github.com/ozars/specialized-dispatch/internal/token"
)

// Processor is one stage of the expansion pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries everything one invocation accumulates while it
// moves through the stages. A context is built once per invocation and
// discarded after the fragment is spliced; no state survives across
// invocations.
type PipelineContext struct {
	// SourceCode is the raw invocation text (the macro argument), not the
	// whole host file.
	SourceCode string

	// FilePath names the host file for diagnostics, empty for ad-hoc
	// expansion.
	FilePath string

	// BaseLine and BaseColumn locate the invocation text inside the host
	// file so diagnostics and //line directives point at the call site.
	// Both are zero for ad-hoc expansion.
	BaseLine   int
	BaseColumn int

	TokenStream *token.Stream
	Spec        *ast.DispatchExpr

	// Generator output. GeneratedName is the hygienic capability name,
	// GeneratedDecls the supporting declarations, GeneratedCall the
	// expression substituted for the invocation.
	GeneratedName  string
	GeneratedDecls string
	GeneratedCall  string

	Errors []*diagnostics.Error
}

// Failed reports whether any stage recorded a diagnostic.
func (ctx *PipelineContext) Failed() bool { return len(ctx.Errors) > 0 }

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors so all stages contribute diagnostics;
		// stages that need earlier results bail out on their own.
	}
	return ctx
}
