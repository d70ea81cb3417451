package lexer

import (
	"testing"

	loxerrors "github.com/loxlang/loxi/internal/errors"
)

func scan(t *testing.T, source string) ([]Token, *loxerrors.Reporter) {
	t.Helper()
	reporter := loxerrors.NewReporter()
	l := New(source, reporter)
	return l.ScanTokens(), reporter
}

func TestNextToken(t *testing.T) {
	input := `var x = 5;
	x = x + 10;
	`

	tests := []struct {
		expectedLiteral string
		expectedType    TokenType
	}{
		{"var", VAR},
		{"x", IDENTIFIER},
		{"=", EQUAL},
		{"5", NUMBER},
		{";", SEMICOLON},
		{"x", IDENTIFIER},
		{"=", EQUAL},
		{"x", IDENTIFIER},
		{"+", PLUS},
		{"10", NUMBER},
		{";", SEMICOLON},
		{"", EOF},
	}

	tokens, reporter := scan(t, input)
	if reporter.HadError() {
		t.Fatalf("unexpected scan errors: %v", reporter.Errors())
	}
	if len(tokens) != len(tests) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(tests))
	}

	for i, tt := range tests {
		tok := tokens[i]
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Lexeme)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `and class else false for fun if nil or print return super this true var while`

	tests := []TokenType{
		AND, CLASS, ELSE, FALSE, FOR, FUN, IF, NIL, OR, PRINT, RETURN, SUPER, THIS, TRUE, VAR, WHILE, EOF,
	}

	tokens, reporter := scan(t, input)
	if reporter.HadError() {
		t.Fatalf("unexpected scan errors: %v", reporter.Errors())
	}
	if len(tokens) != len(tests) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(tests))
	}
	for i, want := range tests {
		if tokens[i].Type != want {
			t.Fatalf("tests[%d] - expected=%s, got=%s", i, want, tokens[i].Type)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `( ) { } , . - + ; * / ! != = == > >= < <=`
	tests := []TokenType{
		LEFT_PAREN, RIGHT_PAREN, LEFT_BRACE, RIGHT_BRACE, COMMA, DOT, MINUS, PLUS, SEMICOLON, STAR, SLASH,
		BANG, BANG_EQUAL, EQUAL, EQUAL_EQUAL, GREATER, GREATER_EQUAL, LESS, LESS_EQUAL, EOF,
	}
	tokens, reporter := scan(t, input)
	if reporter.HadError() {
		t.Fatalf("unexpected scan errors: %v", reporter.Errors())
	}
	for i, want := range tests {
		if tokens[i].Type != want {
			t.Fatalf("tests[%d] - expected=%s, got=%s", i, want, tokens[i].Type)
		}
	}
}

func TestStringLiteral(t *testing.T) {
	tokens, reporter := scan(t, `"hello world"`)
	if reporter.HadError() {
		t.Fatalf("unexpected scan errors: %v", reporter.Errors())
	}
	if tokens[0].Type != STRING {
		t.Fatalf("expected STRING, got %s", tokens[0].Type)
	}
	if tokens[0].Literal != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", tokens[0].Literal)
	}
}

func TestUnterminatedString(t *testing.T) {
	_, reporter := scan(t, `"unterminated`)
	if !reporter.HadError() {
		t.Fatal("expected a scan error for an unterminated string")
	}
	if reporter.Errors()[0].Message != "Unterminated string." {
		t.Fatalf("got message %q", reporter.Errors()[0].Message)
	}
}

func TestNumberLiteral(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"123", 123},
		{"123.456", 123.456},
		{"0", 0},
	}
	for _, tt := range tests {
		tokens, reporter := scan(t, tt.source)
		if reporter.HadError() {
			t.Fatalf("unexpected scan errors for %q: %v", tt.source, reporter.Errors())
		}
		if tokens[0].Literal != tt.want {
			t.Fatalf("%q: got %v, want %v", tt.source, tokens[0].Literal, tt.want)
		}
	}
}

func TestLineComment(t *testing.T) {
	tokens, reporter := scan(t, "1 // this is a comment\n2")
	if reporter.HadError() {
		t.Fatalf("unexpected scan errors: %v", reporter.Errors())
	}
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3", len(tokens))
	}
	if tokens[1].Line != 2 {
		t.Fatalf("expected second number on line 2, got line %d", tokens[1].Line)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	_, reporter := scan(t, "@")
	if !reporter.HadError() {
		t.Fatal("expected a scan error for an unexpected character")
	}
	if reporter.Errors()[0].Message != "Unexpected character." {
		t.Fatalf("got message %q", reporter.Errors()[0].Message)
	}
}

func TestLineTracking(t *testing.T) {
	tokens, _ := scan(t, "1\n2\n3")
	want := []int{1, 2, 3, 3}
	for i, line := range want {
		if tokens[i].Line != line {
			t.Fatalf("tokens[%d]: got line %d, want %d", i, tokens[i].Line, line)
		}
	}
}
