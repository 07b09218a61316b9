package lexer

import (
	"testing"

	"github.com/ArturMroz/clox/internal/token"
)

func TestScanTokens(t *testing.T) {
	input := `var answer = 41.5;
// a comment that vanishes
fun add(a, b) { return a + b; }
class Foo < Bar {}
if (a != b and a <= b or !c) { print "hi"; }
while (true) { x = x / 2 * 3 - 1; }
this.super_ish;
`

	expected := []struct {
		typ    token.Type
		lexeme string
	}{
		{token.VAR, "var"},
		{token.IDENTIFIER, "answer"},
		{token.EQUAL, "="},
		{token.NUMBER, "41.5"},
		{token.SEMICOLON, ";"},
		{token.FUN, "fun"},
		{token.IDENTIFIER, "add"},
		{token.LEFT_PAREN, "("},
		{token.IDENTIFIER, "a"},
		{token.COMMA, ","},
		{token.IDENTIFIER, "b"},
		{token.RIGHT_PAREN, ")"},
		{token.LEFT_BRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENTIFIER, "a"},
		{token.PLUS, "+"},
		{token.IDENTIFIER, "b"},
		{token.SEMICOLON, ";"},
		{token.RIGHT_BRACE, "}"},
		{token.CLASS, "class"},
		{token.IDENTIFIER, "Foo"},
		{token.LESS, "<"},
		{token.IDENTIFIER, "Bar"},
		{token.LEFT_BRACE, "{"},
		{token.RIGHT_BRACE, "}"},
		{token.IF, "if"},
		{token.LEFT_PAREN, "("},
		{token.IDENTIFIER, "a"},
		{token.BANG_EQUAL, "!="},
		{token.IDENTIFIER, "b"},
		{token.AND, "and"},
		{token.IDENTIFIER, "a"},
		{token.LESS_EQUAL, "<="},
		{token.IDENTIFIER, "b"},
		{token.OR, "or"},
		{token.BANG, "!"},
		{token.IDENTIFIER, "c"},
		{token.RIGHT_PAREN, ")"},
		{token.LEFT_BRACE, "{"},
		{token.PRINT, "print"},
		{token.STRING, `"hi"`},
		{token.SEMICOLON, ";"},
		{token.RIGHT_BRACE, "}"},
		{token.WHILE, "while"},
		{token.LEFT_PAREN, "("},
		{token.TRUE, "true"},
		{token.RIGHT_PAREN, ")"},
		{token.LEFT_BRACE, "{"},
		{token.IDENTIFIER, "x"},
		{token.EQUAL, "="},
		{token.IDENTIFIER, "x"},
		{token.SLASH, "/"},
		{token.NUMBER, "2"},
		{token.STAR, "*"},
		{token.NUMBER, "3"},
		{token.MINUS, "-"},
		{token.NUMBER, "1"},
		{token.SEMICOLON, ";"},
		{token.RIGHT_BRACE, "}"},
		{token.THIS, "this"},
		{token.DOT, "."},
		{token.IDENTIFIER, "super_ish"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, want := range expected {
		tok := l.ScanToken()
		if tok.Type != want.typ {
			t.Fatalf("token %d: wrong type. got=%s, want=%s (lexeme %q)",
				i, tok.Type, want.typ, tok.Lexeme)
		}
		if tok.Lexeme != want.lexeme {
			t.Fatalf("token %d: wrong lexeme. got=%q, want=%q", i, tok.Lexeme, want.lexeme)
		}
	}
}

func TestLineCounting(t *testing.T) {
	l := New("one\n\"two\nthree\"\nfour")

	tok := l.ScanToken()
	if tok.Line != 1 {
		t.Errorf("identifier line. got=%d, want=1", tok.Line)
	}

	tok = l.ScanToken()
	if tok.Type != token.STRING {
		t.Fatalf("expected STRING, got=%s", tok.Type)
	}
	// a multi-line string ends on the line of its closing quote
	if tok.Line != 3 {
		t.Errorf("string line. got=%d, want=3", tok.Line)
	}

	tok = l.ScanToken()
	if tok.Line != 4 {
		t.Errorf("identifier line. got=%d, want=4", tok.Line)
	}
}

func TestErrorTokens(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"never closed`, "Unterminated string."},
		{"@", "Unexpected character."},
		{"#", "Unexpected character."},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.ScanToken()
		if tok.Type != token.ERROR {
			t.Errorf("input %q: expected ERROR token, got=%s", tt.input, tok.Type)
			continue
		}
		if tok.Lexeme != tt.want {
			t.Errorf("input %q: wrong message. got=%q, want=%q", tt.input, tok.Lexeme, tt.want)
		}
	}
}

func TestNumberForms(t *testing.T) {
	l := New("12 12.5 12.foo")

	for _, want := range []string{"12", "12.5", "12"} {
		tok := l.ScanToken()
		if tok.Type != token.NUMBER || tok.Lexeme != want {
			t.Fatalf("got=%s %q, want NUMBER %q", tok.Type, tok.Lexeme, want)
		}
	}

	// the dot before a non-digit is its own token
	if tok := l.ScanToken(); tok.Type != token.DOT {
		t.Fatalf("expected DOT, got=%s", tok.Type)
	}
}

func TestEOFIsSticky(t *testing.T) {
	l := New("x")
	l.ScanToken()
	for i := 0; i < 3; i++ {
		if tok := l.ScanToken(); tok.Type != token.EOF {
			t.Fatalf("expected EOF, got=%s", tok.Type)
		}
	}
}
