// Package token defines the lexical tokens of the dispatch invocation
// language and a stream abstraction consumed by the parser.
package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers and literals
	IDENT  = "IDENT"  // example, uint8, fmt
	INT    = "INT"    // 42
	FLOAT  = "FLOAT"  // 1.5
	STRING = "STRING" // "u8: %d" or `raw`
	CHAR   = "CHAR"   // 'x'

	// Structural tokens
	COMMA      = ","
	COLON      = ":"
	PLUS       = "+"
	LPAREN     = "("
	RPAREN     = ")"
	LBRACE     = "{"
	RBRACE     = "}"
	LBRACKET   = "["
	RBRACKET   = "]"
	LT         = "<"
	GT         = ">"
	UNDERSCORE = "_"
	ARROW      = "->"
	FATARROW   = "=>"

	// Anything else that may occur inside opaque expression spans
	// (operators, dots, semicolons, ...). The parser never interprets
	// these; it only tracks delimiter balance around them.
	OP = "OP"

	// A lifetime-style parameter ('a). Recognized so validation can
	// reject it with a dedicated diagnostic instead of a lexer error.
	LIFETIME = "LIFETIME"

	// Keywords
	FN      = "FN"
	DEFAULT = "DEFAULT"
)

type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
	// Offset and End delimit the token's bytes in the source text.
	// Spans are sliced from the original source, never re-rendered
	// from lexemes, so arm bodies survive verbatim.
	Offset int
	End    int
}

var keywords = map[string]TokenType{
	"fn":      FN,
	"default": DEFAULT,
}

// LookupIdent distinguishes keywords from ordinary identifiers.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Stream is a fixed token sequence with lookahead, produced by the lexer
// and consumed exactly once by the parser.
type Stream struct {
	tokens []Token
	pos    int
}

func NewStream(tokens []Token) *Stream {
	return &Stream{tokens: tokens}
}

// Next returns the next token, or the trailing EOF token forever once the
// stream is exhausted.
func (s *Stream) Next() Token {
	tok := s.at(s.pos)
	if s.pos < len(s.tokens) {
		s.pos++
	}
	return tok
}

func (s *Stream) at(i int) Token {
	if i >= len(s.tokens) {
		if len(s.tokens) == 0 {
			return Token{Type: EOF}
		}
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[i]
}
