package parser

import (
	"fmt"

	"github.com/ozars/specialized-dispatch/internal/ast"
	"github.com/ozars/specialized-dispatch/internal/diagnostics"
	"github.com/ozars/specialized-dispatch/internal/token"
)

// parseArm parses one arm element:
//
//	'default'? 'fn' generic_params? '(' param_list ')' '=>' body
//
// On failure it reports, recovers to the element boundary and returns nil.
func (p *Parser) parseArm() *ast.DispatchArm {
	arm := &ast.DispatchArm{Token: p.curToken}

	if p.curTokenIs(token.DEFAULT) {
		arm.DefaultKeyword = true
		if !p.expectPeek(token.FN) {
			p.skipToElementBoundary()
			return nil
		}
	}

	if p.peekTokenIs(token.LT) {
		p.nextToken()
		arm.Generic = p.parseGenericParam()
		if arm.Generic == nil {
			p.skipToElementBoundary()
			return nil
		}
	}

	if !p.expectPeek(token.LPAREN) {
		p.skipToElementBoundary()
		return nil
	}
	if !p.parseArmParams(arm) {
		p.skipToElementBoundary()
		return nil
	}

	if !p.expectPeek(token.FATARROW) {
		p.skipToElementBoundary()
		return nil
	}
	if p.peekTokenIs(token.COMMA) || p.peekTokenIs(token.EOF) {
		p.errorf(diagnostics.NewSyntaxError(p.peekToken, "an arm body"))
		return nil
	}
	p.nextToken()
	arm.Body = p.collectSpan(token.COMMA)
	if arm.Body == nil {
		return nil
	}
	return arm
}

// parseGenericParam parses `<T>` or `<T: Bound + Bound>`. curToken is on
// the '<'. Lifetime-style parameters are collected rather than rejected
// here; the validator owns that diagnostic. On success curToken rests on
// the closing '>'.
func (p *Parser) parseGenericParam() *ast.GenericParam {
	g := &ast.GenericParam{Token: p.curToken}

	for {
		switch {
		case p.peekTokenIs(token.LIFETIME):
			p.nextToken()
			g.Lifetimes = append(g.Lifetimes, p.curToken)

		case p.peekTokenIs(token.IDENT):
			p.nextToken()
			if g.Name != "" {
				p.errorf(diagnostics.NewError(diagnostics.ErrP006, p.curToken,
					"only a single generic parameter is supported"))
				return nil
			}
			g.Token = p.curToken
			g.Name = p.curToken.Lexeme
			if p.peekTokenIs(token.COLON) {
				p.nextToken()
				if !p.parseBounds(g) {
					return nil
				}
			}

		default:
			p.errorf(diagnostics.NewError(diagnostics.ErrP006, p.peekToken,
				fmt.Sprintf("expected a generic parameter, found %q", p.peekToken.Lexeme)))
			return nil
		}

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(token.GT) {
		return nil
	}
	if g.Name == "" {
		p.errorf(diagnostics.NewError(diagnostics.ErrP006, g.Token,
			"generic parameter list declares no type parameter"))
		return nil
	}
	return g
}

// parseBounds parses `Bound (+ Bound)*` after the colon of a generic
// parameter.
func (p *Parser) parseBounds(g *ast.GenericParam) bool {
	for {
		if p.peekTokenIs(token.GT) || p.peekTokenIs(token.COMMA) || p.peekTokenIs(token.EOF) {
			p.errorf(diagnostics.NewSyntaxError(p.peekToken, "a capability bound"))
			return false
		}
		p.nextToken()
		bound := p.collectSpan(token.PLUS, token.GT, token.COMMA)
		if bound == nil {
			return false
		}
		p.vetType(bound)
		g.Bounds = append(g.Bounds, bound)

		if p.peekTokenIs(token.PLUS) {
			p.nextToken()
			continue
		}
		return true
	}
}

// parseArmParams parses the parenthesized parameter list. curToken is on
// the '('. On success curToken rests on the ')'. The first parameter binds
// the dispatch argument; every slot must carry a type annotation.
func (p *Parser) parseArmParams(arm *ast.DispatchArm) bool {
	if p.peekTokenIs(token.RPAREN) {
		p.errorf(diagnostics.NewSyntaxError(p.peekToken, "a parameter binding"))
		return false
	}

	for {
		if !p.peekTokenIs(token.IDENT) && !p.peekTokenIs(token.UNDERSCORE) {
			p.errorf(diagnostics.NewSyntaxError(p.peekToken, "a parameter name or '_'"))
			return false
		}
		p.nextToken()
		param := &ast.ArmParam{
			Token: p.curToken,
			Name:  p.curToken.Lexeme,
			Blank: p.curTokenIs(token.UNDERSCORE),
		}

		if !p.peekTokenIs(token.COLON) {
			p.errorf(diagnostics.NewError(diagnostics.ErrP005, p.peekToken,
				fmt.Sprintf("parameter %q has no type annotation", param.Name)))
			return false
		}
		p.nextToken()

		if p.peekTokenIs(token.COMMA) || p.peekTokenIs(token.RPAREN) || p.peekTokenIs(token.EOF) {
			p.errorf(diagnostics.NewSyntaxError(p.peekToken, "a parameter type"))
			return false
		}
		p.nextToken()
		typ := p.collectSpan(token.COMMA, token.RPAREN)
		if typ == nil {
			return false
		}
		p.vetType(typ)
		param.Type = typ
		arm.Params = append(arm.Params, param)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		return p.expectPeek(token.RPAREN)
	}
}
