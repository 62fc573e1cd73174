package lexer

import (
	"github.com/ozars/specialized-dispatch/internal/diagnostics"
	"github.com/ozars/specialized-dispatch/internal/pipeline"
	"github.com/ozars/specialized-dispatch/internal/token"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	toks := New(ctx.SourceCode).Tokens()

	for _, tok := range toks {
		if tok.Type == token.ILLEGAL {
			msg, _ := tok.Literal.(string)
			code := diagnostics.ErrL001
			if msg == "unterminated comment" {
				code = diagnostics.ErrL002
			}
			ctx.Errors = append(ctx.Errors, diagnostics.NewError(code, tok, msg))
		}
	}

	ctx.TokenStream = token.NewStream(toks)
	return ctx
}
