// Package parser turns the token stream of one dispatch invocation into an
// ast.DispatchExpr.
//
// The surface accepted here covers both generations of the invocation
// grammar: the dispatch argument may lead the invocation, or may be the
// first trailing argument after the arms. Arms may appear in any order; the
// arm carrying a generic parameter is the default regardless of position or
// of the optional 'default' keyword.
package parser

import (
	"fmt"

	"github.com/ozars/specialized-dispatch/internal/ast"
	"github.com/ozars/specialized-dispatch/internal/diagnostics"
	"github.com/ozars/specialized-dispatch/internal/pipeline"
	"github.com/ozars/specialized-dispatch/internal/token"
)

type Parser struct {
	ctx    *pipeline.PipelineContext
	stream *token.Stream

	curToken  token.Token
	peekToken token.Token
}

func New(stream *token.Stream, ctx *pipeline.PipelineContext) *Parser {
	p := &Parser{ctx: ctx, stream: stream}
	// Prime curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.stream.Next()
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(diagnostics.NewSyntaxError(p.peekToken, fmt.Sprintf("%q", string(t))))
	return false
}

func (p *Parser) errorf(err *diagnostics.Error) {
	p.ctx.Errors = append(p.ctx.Errors, err)
}

// ParseInvocation parses one complete invocation. It does not stop at the
// first problem: after a malformed element it skips to the next top-level
// comma and keeps going, so a single run reports as much as it can.
//
// Every element parser follows the same protocol: on success it leaves
// curToken on the last token of its element; on failure it reports and
// leaves curToken on the element's terminating comma (or just before EOF).
func (p *Parser) ParseInvocation() *ast.DispatchExpr {
	expr := &ast.DispatchExpr{Token: p.curToken}

	var (
		leadingArgs  []*ast.Span
		trailingArgs []*ast.Span
		sawArrow     bool
		sawArm       bool
	)

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.COMMA) {
			// An element is missing, e.g. a doubled or leading comma.
			// (A trailing comma never lands here; it is swallowed with
			// the previous element's terminator below.)
			p.errorf(diagnostics.NewSyntaxError(p.curToken, "an arm, a type arrow or an expression"))
			p.nextToken()
			continue
		}

		switch {
		case p.curTokenIs(token.FN) || p.curTokenIs(token.DEFAULT):
			if arm := p.parseArm(); arm != nil {
				expr.Arms = append(expr.Arms, arm)
				sawArm = true
			}

		default:
			span, arrow := p.collectElement(!sawArrow)
			switch {
			case span == nil:
				// collectElement reported and recovered already.
			case arrow:
				expr.FromType = span
				expr.ToType = p.collectSecondType()
				sawArrow = true
				if sawArm {
					p.errorf(diagnostics.NewError(diagnostics.ErrP001, span.GetToken(),
						"the type arrow must precede every arm"))
				}
			case sawArrow:
				trailingArgs = append(trailingArgs, span)
			default:
				leadingArgs = append(leadingArgs, span)
			}
		}

		// Consume the element terminator.
		if p.curTokenIs(token.COMMA) {
			// Recovery left us on the boundary itself.
			p.nextToken()
			continue
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken() // onto the comma
			p.nextToken() // past it (EOF after a trailing comma)
			continue
		}
		if p.peekTokenIs(token.EOF) {
			break
		}
		p.errorf(diagnostics.NewSyntaxError(p.peekToken, "','"))
		p.nextToken()
		p.skipToElementBoundary()
	}

	p.resolveArguments(expr, leadingArgs, trailingArgs, sawArrow)
	p.checkArity(expr)
	return expr
}

// resolveArguments assigns the dispatch argument and the extra arguments
// from the expression elements found around the arrow and the arms.
func (p *Parser) resolveArguments(expr *ast.DispatchExpr, leading, trailing []*ast.Span, sawArrow bool) {
	if !sawArrow {
		p.errorf(diagnostics.NewSyntaxError(expr.GetToken(), "'DispatchType -> ReturnType'"))
	}

	switch {
	case len(leading) >= 1:
		expr.Arg = leading[0]
		expr.ExtraArgs = trailing
		if len(leading) > 1 {
			p.errorf(diagnostics.NewError(diagnostics.ErrP001, leading[1].GetToken(),
				"only the dispatch argument may precede the type arrow"))
		}
	case len(trailing) > 0:
		expr.Arg = trailing[0]
		expr.ExtraArgs = trailing[1:]
	default:
		p.errorf(diagnostics.NewSyntaxError(expr.GetToken(), "a dispatch argument expression"))
	}

	if expr.DefaultArm() == nil {
		p.errorf(diagnostics.NewMissingDefault(expr.GetToken()))
	}
}

// checkArity enforces that every arm declares the same number of parameter
// slots. The default arm is the reference; without one the first arm is.
func (p *Parser) checkArity(expr *ast.DispatchExpr) {
	ref := expr.DefaultArm()
	if ref == nil {
		if len(expr.Arms) == 0 {
			return
		}
		ref = expr.Arms[0]
	}
	expected := len(ref.Params)
	for i, arm := range expr.Arms {
		if arm == ref {
			continue
		}
		if len(arm.Params) != expected {
			p.errorf(diagnostics.NewArityMismatch(arm.GetToken(), i, expected, len(arm.Params)))
		}
	}
}

// skipToElementBoundary advances to the next top-level comma so parsing can
// resume after a malformed element.
func (p *Parser) skipToElementBoundary() {
	depth := 0
	for !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			if depth > 0 {
				depth--
			}
		case token.COMMA:
			if depth == 0 {
				return
			}
		}
		if p.peekTokenIs(token.EOF) {
			return
		}
		p.nextToken()
	}
}
