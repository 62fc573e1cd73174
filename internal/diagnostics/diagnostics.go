// Package diagnostics defines the structured compile-time errors reported
// by the lexer, parser, validator and rewriter. Every stage appends to the
// pipeline context instead of returning early, so one invocation reports
// every violation it can detect.
package diagnostics

import (
	"fmt"

	"github.com/ozars/specialized-dispatch/internal/token"
)

type Code string

const (
	// Lexer
	ErrL001 Code = "L001" // unterminated string or rune literal
	ErrL002 Code = "L002" // unterminated comment

	// Parser
	ErrP001 Code = "P001" // unexpected token
	ErrP002 Code = "P002" // unbalanced delimiters
	ErrP003 Code = "P003" // missing default arm
	ErrP004 Code = "P004" // arm parameter count mismatch
	ErrP005 Code = "P005" // missing type annotation
	ErrP006 Code = "P006" // malformed generic parameter list
	ErrP007 Code = "P007" // span rejected by the host syntax layer

	// Validator
	ErrV001 Code = "V001" // duplicate specialization key
	ErrV002 Code = "V002" // extra-argument slot mismatch
	ErrV003 Code = "V003" // default arm count violation
	ErrV004 Code = "V004" // specialization keyed by a bare generic
	ErrV005 Code = "V005" // call-site extra argument count mismatch
	ErrV006 Code = "V006" // lifetime parameters are unsupported

	// Rewriter
	ErrR001 Code = "R001" // malformed marker call
	ErrR002 Code = "R002" // host file error (read, parse, format)
)

// Error is a single diagnostic attached to the most specific source
// position available. Line and Column are 1-based within the invocation
// text; the rewriter re-bases them onto the host file before display.
type Error struct {
	Code    Code
	Message string
	File    string
	Line    int
	Column  int

	// ArmIndex is the zero-based arm the diagnostic refers to, or -1
	// when it does not concern a particular arm.
	ArmIndex int
}

func NewError(code Code, tok token.Token, msg string) *Error {
	return &Error{
		Code:     code,
		Message:  msg,
		Line:     tok.Line,
		Column:   tok.Column,
		ArmIndex: -1,
	}
}

func (e *Error) Error() string {
	pos := fmt.Sprintf("%d:%d", e.Line, e.Column)
	if e.File != "" {
		pos = e.File + ":" + pos
	}
	return fmt.Sprintf("%s: [%s] %s", pos, e.Code, e.Message)
}

// WithArm tags the diagnostic with the arm it refers to.
func (e *Error) WithArm(index int) *Error {
	e.ArmIndex = index
	return e
}

// NewSyntaxError reports an unexpected token at a position.
func NewSyntaxError(tok token.Token, expected string) *Error {
	found := tok.Lexeme
	if tok.Type == token.EOF {
		found = "end of invocation"
	}
	return NewError(ErrP001, tok, fmt.Sprintf("expected %s, found %q", expected, found))
}

// NewMissingDefault reports an invocation with no generic default arm.
func NewMissingDefault(tok token.Token) *Error {
	return NewError(ErrP003, tok, "no default arm: exactly one arm must declare a generic parameter")
}

// NewArityMismatch reports an arm whose parameter count differs from the
// default arm's.
func NewArityMismatch(tok token.Token, armIndex, expected, found int) *Error {
	return NewError(ErrP004, tok,
		fmt.Sprintf("arm %d declares %d parameter(s), expected %d", armIndex, found, expected),
	).WithArm(armIndex)
}

// NewDuplicateSpecialization reports two arms keyed by the same concrete
// type.
func NewDuplicateSpecialization(tok token.Token, armIndex int, typeText string) *Error {
	return NewError(ErrV001, tok,
		fmt.Sprintf("duplicate specialization for type %s", typeText),
	).WithArm(armIndex)
}

// NewExtraArgMismatch reports an arm whose extra-argument slots disagree
// with the default arm's.
func NewExtraArgMismatch(tok token.Token, armIndex int) *Error {
	return NewError(ErrV002, tok,
		fmt.Sprintf("arm %d declares a different set of extra-argument slots than the default arm", armIndex),
	).WithArm(armIndex)
}
