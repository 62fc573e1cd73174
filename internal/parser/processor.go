package parser

import (
	"github.com/ozars/specialized-dispatch/internal/diagnostics"
	"github.com/ozars/specialized-dispatch/internal/pipeline"
	"github.com/ozars/specialized-dispatch/internal/token"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		// This case should not be hit if the lexer runs first, but as a
		// safeguard:
		err := diagnostics.NewError(diagnostics.ErrP001, token.Token{}, "parser: token stream is nil")
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}

	parser := New(ctx.TokenStream, ctx)
	ctx.Spec = parser.ParseInvocation()

	// Ensure all errors carry the host file path.
	for _, err := range ctx.Errors {
		if err.File == "" {
			err.File = ctx.FilePath
		}
	}

	return ctx
}
