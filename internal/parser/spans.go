package parser

import (
	goparser "go/parser"
	"strings"

	"github.com/ozars/specialized-dispatch/internal/ast"
	"github.com/ozars/specialized-dispatch/internal/diagnostics"
	"github.com/ozars/specialized-dispatch/internal/token"
)

// collectSpan consumes tokens from curToken up to (but not including) the
// first stop token at delimiter depth zero, or EOF. The span text is sliced
// from the original source by byte offset, so payload survives byte for
// byte. On success curToken rests on the span's last token. On a delimiter
// imbalance it reports ErrP002, recovers to the element boundary and
// returns nil.
func (p *Parser) collectSpan(stops ...token.TokenType) *ast.Span {
	if p.curTokenIs(token.EOF) {
		p.errorf(diagnostics.NewSyntaxError(p.curToken, "an expression"))
		return nil
	}

	first := p.curToken
	depth := 0
	for {
		switch p.curToken.Type {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			depth--
			if depth < 0 {
				p.errorf(diagnostics.NewError(diagnostics.ErrP002, p.curToken,
					"unbalanced "+string(p.curToken.Type)))
				p.skipToElementBoundary()
				return nil
			}
		}

		if p.peekTokenIs(token.EOF) {
			if depth > 0 {
				p.errorf(diagnostics.NewError(diagnostics.ErrP002, first,
					"unclosed delimiter in this element"))
				return nil
			}
			break
		}
		if depth == 0 && p.peekIsOneOf(stops) {
			break
		}
		p.nextToken()
	}

	text := strings.TrimSpace(p.ctx.SourceCode[first.Offset:p.curToken.End])
	return &ast.Span{Token: first, Text: text}
}

func (p *Parser) peekIsOneOf(stops []token.TokenType) bool {
	for _, s := range stops {
		if p.peekToken.Type == s {
			return true
		}
	}
	return false
}

// collectElement reads one top-level expression element. When allowArrow is
// set and the element ends at a top-level '->', the element is the left
// side of the type arrow and the second return value is true.
func (p *Parser) collectElement(allowArrow bool) (*ast.Span, bool) {
	stops := []token.TokenType{token.COMMA}
	if allowArrow {
		stops = append(stops, token.ARROW)
	}
	span := p.collectSpan(stops...)
	if span == nil {
		return nil, false
	}
	if p.peekTokenIs(token.ARROW) {
		p.vetType(span)
		return span, true
	}
	p.vetExpr(span)
	return span, false
}

// collectSecondType reads the return type after the arrow. curToken is on
// the last token of the dispatch type, peekToken on the arrow itself.
func (p *Parser) collectSecondType() *ast.Span {
	p.nextToken() // onto the arrow
	if p.peekTokenIs(token.COMMA) || p.peekTokenIs(token.EOF) {
		p.errorf(diagnostics.NewSyntaxError(p.peekToken, "a return type"))
		return nil
	}
	p.nextToken()
	span := p.collectSpan(token.COMMA)
	if span == nil {
		return nil
	}
	p.vetType(span)
	return span
}

// vetExpr and vetType hand a collected span to the host syntax layer for
// well-formedness. The engine itself never interprets span contents; it
// only refuses to forward text the host toolchain cannot parse at all.
// Types are vetted through ParseExpr as well: Go type syntax is a subset
// of its expression syntax.

func (p *Parser) vetExpr(span *ast.Span) {
	if _, err := goparser.ParseExpr(span.Text); err != nil {
		p.errorf(diagnostics.NewError(diagnostics.ErrP007, span.GetToken(),
			"invalid expression "+quoteSpan(span.Text)))
	}
}

func (p *Parser) vetType(span *ast.Span) {
	if _, err := goparser.ParseExpr(span.Text); err != nil {
		p.errorf(diagnostics.NewError(diagnostics.ErrP007, span.GetToken(),
			"invalid type "+quoteSpan(span.Text)))
	}
}

func quoteSpan(text string) string {
	if len(text) > 40 {
		text = text[:37] + "..."
	}
	return "\"" + text + "\""
}
