package lexer_test

import (
	"testing"

	"github.com/ozars/specialized-dispatch/internal/lexer"
	"github.com/ozars/specialized-dispatch/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `arg, Arg -> string, default fn <T: fmt.Stringer>(_: T) => "default value"`

	expected := []struct {
		typ    token.TokenType
		lexeme string
	}{
		{token.IDENT, "arg"},
		{token.COMMA, ","},
		{token.IDENT, "Arg"},
		{token.ARROW, "->"},
		{token.IDENT, "string"},
		{token.COMMA, ","},
		{token.DEFAULT, "default"},
		{token.FN, "fn"},
		{token.LT, "<"},
		{token.IDENT, "T"},
		{token.COLON, ":"},
		{token.IDENT, "fmt"},
		{token.OP, "."},
		{token.IDENT, "Stringer"},
		{token.GT, ">"},
		{token.LPAREN, "("},
		{token.UNDERSCORE, "_"},
		{token.COLON, ":"},
		{token.IDENT, "T"},
		{token.RPAREN, ")"},
		{token.FATARROW, "=>"},
		{token.STRING, `"default value"`},
		{token.EOF, ""},
	}

	l := lexer.New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.typ {
			t.Fatalf("token %d: type = %q, want %q (lexeme %q)", i, tok.Type, want.typ, tok.Lexeme)
		}
		if tok.Lexeme != want.lexeme {
			t.Fatalf("token %d: lexeme = %q, want %q", i, tok.Lexeme, want.lexeme)
		}
	}
}

func TestOffsetsSliceSource(t *testing.T) {
	input := "fn (v: uint8) => fmt.Sprintf(\"u8: %d\", v)"
	toks := lexer.New(input).Tokens()
	for _, tok := range toks {
		if tok.Type == token.EOF {
			continue
		}
		if got := input[tok.Offset:tok.End]; got != tok.Lexeme {
			t.Errorf("offsets for %q slice %q", tok.Lexeme, got)
		}
	}
}

func TestNumbersAndStrings(t *testing.T) {
	tests := []struct {
		input string
		typ   token.TokenType
	}{
		{"42", token.INT},
		{"0x1f", token.INT},
		{"1.5", token.FLOAT},
		{"2e10", token.FLOAT},
		{"`raw \"string\"`", token.STRING},
		{`"escaped \" quote"`, token.STRING},
		{`'x'`, token.CHAR},
		{`'\n'`, token.CHAR},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := lexer.New(tt.input).NextToken()
			if tok.Type != tt.typ {
				t.Errorf("type = %q, want %q", tok.Type, tt.typ)
			}
			if tok.Lexeme != tt.input {
				t.Errorf("lexeme = %q, want %q", tok.Lexeme, tt.input)
			}
		})
	}
}

func TestLifetimeToken(t *testing.T) {
	toks := lexer.New("<'a, T>").Tokens()
	var types []token.TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	want := []token.TokenType{token.LT, token.LIFETIME, token.COMMA, token.IDENT, token.GT, token.EOF}
	if len(types) != len(want) {
		t.Fatalf("token types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("token %d = %q, want %q", i, types[i], want[i])
		}
	}
	if toks[1].Lexeme != "'a" {
		t.Errorf("lifetime lexeme = %q, want %q", toks[1].Lexeme, "'a")
	}
}

func TestUnterminatedString(t *testing.T) {
	toks := lexer.New(`fn (v: uint8) => "oops`).Tokens()
	found := false
	for _, tok := range toks {
		if tok.Type == token.ILLEGAL {
			found = true
		}
	}
	if !found {
		t.Error("expected an ILLEGAL token for the unterminated string")
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	input := "arg // trailing\n, /* block */ Arg"
	toks := lexer.New(input).Tokens()
	var lexemes []string
	for _, tok := range toks {
		if tok.Type != token.EOF {
			lexemes = append(lexemes, tok.Lexeme)
		}
	}
	want := []string{"arg", ",", "Arg"}
	if len(lexemes) != len(want) {
		t.Fatalf("lexemes = %v, want %v", lexemes, want)
	}
	for i := range want {
		if lexemes[i] != want[i] {
			t.Fatalf("lexeme %d = %q, want %q", i, lexemes[i], want[i])
		}
	}
}
