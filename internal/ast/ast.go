// Package ast defines the parsed form of one dispatch invocation: the
// DispatchExpr tree the parser builds, the validator checks and the
// generator consumes. A tree is built once per invocation, consumed once,
// then discarded.
package ast

import (
	"strings"

	"github.com/ozars/specialized-dispatch/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its
// primary token. This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	Accept(v Visitor)
}

// Visitor walks a dispatch spec tree.
type Visitor interface {
	VisitDispatchExpr(e *DispatchExpr)
	VisitDispatchArm(a *DispatchArm)
	VisitGenericParam(g *GenericParam)
	VisitArmParam(p *ArmParam)
	VisitSpan(s *Span)
}

// Span is an opaque expression or type payload: the raw source text sliced
// between two byte offsets, forwarded verbatim into generated code. The
// engine never interprets span contents.
type Span struct {
	Token token.Token // first token of the span
	Text  string
}

func (s *Span) Accept(v Visitor)     { v.VisitSpan(s) }
func (s *Span) TokenLiteral() string { return s.Token.Lexeme }
func (s *Span) GetToken() token.Token {
	if s == nil {
		return token.Token{}
	}
	return s.Token
}

// Normalized returns the span text with runs of whitespace collapsed,
// for fingerprints and diagnostics that quote a span on one line.
func (s *Span) Normalized() string {
	return strings.Join(strings.Fields(s.Text), " ")
}

// GenericParam is the default arm's type parameter with its capability
// bounds: <T> or <T: fmt.Stringer + error>.
type GenericParam struct {
	Token  token.Token // the parameter name token
	Name   string
	Bounds []*Span

	// Lifetimes records lifetime-style parameters ('a) found in the
	// generic list. They are carried through parsing so the validator can
	// reject them; nothing downstream consumes them.
	Lifetimes []token.Token
}

func (g *GenericParam) Accept(v Visitor)     { v.VisitGenericParam(g) }
func (g *GenericParam) TokenLiteral() string { return g.Token.Lexeme }
func (g *GenericParam) GetToken() token.Token {
	if g == nil {
		return token.Token{}
	}
	return g.Token
}

// ArmParam is one parameter slot of an arm: `v: uint8` or `_: T`. The
// first slot of every arm binds the dispatch argument; the remaining
// slots are the extra arguments, re-declared by every arm.
type ArmParam struct {
	Token token.Token // the binding token (identifier or underscore)
	Name  string      // "_" for an ignore binding
	Blank bool
	Type  *Span
}

func (p *ArmParam) Accept(v Visitor)     { v.VisitArmParam(p) }
func (p *ArmParam) TokenLiteral() string { return p.Token.Lexeme }
func (p *ArmParam) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// DispatchArm is one behavior realization.
//
// The default arm carries a generic parameter:
//
//	default fn <T: fmt.Stringer>(v: T, width: int) => body
//
// A specialization arm is keyed by its first parameter's concrete type:
//
//	fn (v: uint8, width: int) => body
type DispatchArm struct {
	Token token.Token // the 'fn' or 'default' token

	// DefaultKeyword records the optional leading 'default'. It is surface
	// sugar only: the generic parameter, not the keyword, makes an arm the
	// default.
	DefaultKeyword bool

	Generic *GenericParam // nil for specialization arms
	Params  []*ArmParam
	Body    *Span
}

func (a *DispatchArm) Accept(v Visitor)     { v.VisitDispatchArm(a) }
func (a *DispatchArm) TokenLiteral() string { return a.Token.Lexeme }
func (a *DispatchArm) GetToken() token.Token {
	if a == nil {
		return token.Token{}
	}
	return a.Token
}

// IsDefault reports whether this arm is the generic fallback.
func (a *DispatchArm) IsDefault() bool { return a.Generic != nil }

// KeyType returns the concrete key type of a specialization arm, nil for
// the default arm or an arm with no parameters.
func (a *DispatchArm) KeyType() *Span {
	if a.IsDefault() || len(a.Params) == 0 {
		return nil
	}
	return a.Params[0].Type
}

// ExtraSlots returns the parameter slots after the dispatch binding.
func (a *DispatchArm) ExtraSlots() []*ArmParam {
	if len(a.Params) == 0 {
		return nil
	}
	return a.Params[1:]
}

// DispatchExpr is the root node: one parsed, unvalidated invocation.
type DispatchExpr struct {
	Token token.Token // first token of the invocation

	Arg       *Span // dispatch argument expression
	FromType  *Span // declared type of the dispatch argument
	ToType    *Span // shared return type of every arm
	Arms      []*DispatchArm
	ExtraArgs []*Span // call-site expressions for the extra slots
}

func (e *DispatchExpr) Accept(v Visitor)     { v.VisitDispatchExpr(e) }
func (e *DispatchExpr) TokenLiteral() string { return e.Token.Lexeme }
func (e *DispatchExpr) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// DefaultArm returns the first arm carrying a generic parameter, nil if
// none exists.
func (e *DispatchExpr) DefaultArm() *DispatchArm {
	for _, arm := range e.Arms {
		if arm.IsDefault() {
			return arm
		}
	}
	return nil
}

// Specializations returns the arms keyed by concrete types, in declared
// order.
func (e *DispatchExpr) Specializations() []*DispatchArm {
	var arms []*DispatchArm
	for _, arm := range e.Arms {
		if !arm.IsDefault() {
			arms = append(arms, arm)
		}
	}
	return arms
}
