// Package lexer tokenizes the text of one dispatch invocation.
//
// The lexer is deliberately shallow: arm bodies, types and argument
// expressions are opaque payload for this engine, so everything that is not
// structurally meaningful (delimiters, commas, arrows, the fn/default
// keywords) is emitted as IDENT, literal or OP tokens whose only job is to
// carry accurate byte offsets. String, rune and comment syntax is lexed
// fully so that delimiters inside them never disturb balance tracking.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/ozars/specialized-dispatch/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = r
		l.position = l.readPosition
		l.readPosition += w
		l.column++
		return
	}

	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// Tokens lexes the whole input, ending with a single EOF token. Lexical
// problems surface as ILLEGAL tokens; the processor turns them into
// diagnostics.
func (l *Lexer) Tokens() []token.Token {
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	start := l.position
	line, column := l.line, l.column

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Line: line, Column: column, Offset: len(l.input), End: len(l.input)}
	case ',':
		return l.single(token.COMMA)
	case ':':
		return l.single(token.COLON)
	case '+':
		return l.single(token.PLUS)
	case '(':
		return l.single(token.LPAREN)
	case ')':
		return l.single(token.RPAREN)
	case '{':
		return l.single(token.LBRACE)
	case '}':
		return l.single(token.RBRACE)
	case '[':
		return l.single(token.LBRACKET)
	case ']':
		return l.single(token.RBRACKET)
	case '<':
		return l.single(token.LT)
	case '>':
		return l.single(token.GT)
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			tok := l.span(token.ARROW, start, line, column)
			l.readChar()
			return tok
		}
		return l.single(token.OP)
	case '=':
		if l.peekChar() == '>' {
			l.readChar()
			tok := l.span(token.FATARROW, start, line, column)
			l.readChar()
			return tok
		}
		return l.single(token.OP)
	case '/':
		if l.peekChar() == '/' {
			l.skipLineComment()
			return l.NextToken()
		}
		if l.peekChar() == '*' {
			if !l.skipBlockComment() {
				return token.Token{
					Type: token.ILLEGAL, Lexeme: l.input[start:], Literal: "unterminated comment",
					Line: line, Column: column, Offset: start, End: len(l.input),
				}
			}
			return l.NextToken()
		}
		return l.single(token.OP)
	case '"', '`':
		return l.readString(start, line, column)
	case '\'':
		return l.readRuneOrLifetime(start, line, column)
	}

	if isIdentStart(l.ch) {
		lexeme := l.readIdentifier()
		typ := token.LookupIdent(lexeme)
		if lexeme == "_" {
			typ = token.UNDERSCORE
		}
		return token.Token{
			Type: typ, Lexeme: lexeme, Literal: lexeme,
			Line: line, Column: column, Offset: start, End: l.position,
		}
	}
	if unicode.IsDigit(l.ch) {
		return l.readNumber(start, line, column)
	}

	return l.single(token.OP)
}

func (l *Lexer) single(typ token.TokenType) token.Token {
	tok := token.Token{
		Type: typ, Lexeme: string(l.ch), Literal: string(l.ch),
		Line: l.line, Column: l.column, Offset: l.position, End: l.readPosition,
	}
	l.readChar()
	return tok
}

// span builds a token covering start..readPosition for multi-rune
// operators; the caller consumes the final rune afterwards.
func (l *Lexer) span(typ token.TokenType, start, line, column int) token.Token {
	lexeme := l.input[start:l.readPosition]
	return token.Token{
		Type: typ, Lexeme: lexeme, Literal: lexeme,
		Line: line, Column: column, Offset: start, End: l.readPosition,
	}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) skipBlockComment() bool {
	l.readChar() // consume '/'
	l.readChar() // consume '*'
	for {
		if l.ch == 0 {
			return false
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return true
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentStart(l.ch) || unicode.IsDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber(start, line, column int) token.Token {
	typ := token.TokenType(token.INT)
	for unicode.IsDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	// hex, octal, binary: 0x..., 0o..., 0b...
	if l.position-start == 1 && l.input[start] == '0' && (l.ch == 'x' || l.ch == 'o' || l.ch == 'b') {
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		typ = token.FLOAT
		l.readChar()
		for unicode.IsDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		if unicode.IsDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-' {
			typ = token.FLOAT
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for unicode.IsDigit(l.ch) {
				l.readChar()
			}
		}
	}
	lexeme := l.input[start:l.position]
	return token.Token{
		Type: typ, Lexeme: lexeme, Literal: lexeme,
		Line: line, Column: column, Offset: start, End: l.position,
	}
}

func (l *Lexer) readString(start, line, column int) token.Token {
	quote := l.ch
	l.readChar()
	for l.ch != quote {
		if l.ch == 0 {
			return token.Token{
				Type: token.ILLEGAL, Lexeme: l.input[start:], Literal: "unterminated string literal",
				Line: line, Column: column, Offset: start, End: len(l.input),
			}
		}
		// Backquoted strings have no escapes.
		if quote == '"' && l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	l.readChar() // consume closing quote
	lexeme := l.input[start:l.position]
	return token.Token{
		Type: token.STRING, Lexeme: lexeme, Literal: lexeme,
		Line: line, Column: column, Offset: start, End: l.position,
	}
}

// readRuneOrLifetime distinguishes a rune literal ('x', '\n') from a
// lifetime-style parameter ('a followed by no closing quote). Lifetimes are
// kept as their own token so the validator can reject them with a precise
// diagnostic rather than a generic lexer error.
func (l *Lexer) readRuneOrLifetime(start, line, column int) token.Token {
	l.readChar() // consume opening quote
	if isIdentStart(l.ch) {
		// Look past the identifier: a closing quote means rune literal.
		probe := l.position
		for probe < len(l.input) {
			r, w := utf8.DecodeRuneInString(l.input[probe:])
			if !isIdentStart(r) && !unicode.IsDigit(r) {
				break
			}
			probe += w
		}
		if probe >= len(l.input) || l.input[probe] != '\'' {
			name := l.readIdentifier()
			return token.Token{
				Type: token.LIFETIME, Lexeme: "'" + name, Literal: name,
				Line: line, Column: column, Offset: start, End: l.position,
			}
		}
	}
	for l.ch != '\'' {
		if l.ch == 0 {
			return token.Token{
				Type: token.ILLEGAL, Lexeme: l.input[start:], Literal: "unterminated rune literal",
				Line: line, Column: column, Offset: start, End: len(l.input),
			}
		}
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	l.readChar() // consume closing quote
	lexeme := l.input[start:l.position]
	return token.Token{
		Type: token.CHAR, Lexeme: lexeme, Literal: lexeme,
		Line: line, Column: column, Offset: start, End: l.position,
	}
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isHexDigit(ch rune) bool {
	return unicode.IsDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
