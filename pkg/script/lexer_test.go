package script

import (
	"reflect"
	"testing"
)

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
		wantErr  bool
	}{
		{
			name:  "Empty",
			input: "",
			expected: []Token{
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Operators",
			input: "+ - * / % & | ^ ~ << >> >>> =",
			expected: []Token{
				{Type: PLUS, Lexeme: "+", Line: 1},
				{Type: MINUS, Lexeme: "-", Line: 1},
				{Type: STAR, Lexeme: "*", Line: 1},
				{Type: SLASH, Lexeme: "/", Line: 1},
				{Type: PERCENT, Lexeme: "%", Line: 1},
				{Type: AND, Lexeme: "&", Line: 1},
				{Type: PIPE, Lexeme: "|", Line: 1},
				{Type: CARET, Lexeme: "^", Line: 1},
				{Type: TILDE, Lexeme: "~", Line: 1},
				{Type: SHL_OP, Lexeme: "<<", Line: 1},
				{Type: SHR_OP, Lexeme: ">>", Line: 1},
				{Type: USHR_OP, Lexeme: ">>>", Line: 1},
				{Type: ASSIGN, Lexeme: "=", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Statement",
			input: "a = max(x, 10)\nreturn a",
			expected: []Token{
				{Type: IDENTIFIER, Lexeme: "a", Line: 1},
				{Type: ASSIGN, Lexeme: "=", Line: 1},
				{Type: IDENTIFIER, Lexeme: "max", Line: 1},
				{Type: LPAREN, Lexeme: "(", Line: 1},
				{Type: IDENTIFIER, Lexeme: "x", Line: 1},
				{Type: COMMA, Lexeme: ",", Line: 1},
				{Type: INTEGER, Lexeme: "10", Line: 1},
				{Type: RPAREN, Lexeme: ")", Line: 1},
				{Type: NEWLINE, Lexeme: "\n", Line: 1},
				{Type: RETURN, Lexeme: "return", Line: 2},
				{Type: IDENTIFIER, Lexeme: "a", Line: 2},
				{Type: EOF, Lexeme: "", Line: 2},
			},
		},
		{
			name:  "Comments",
			input: "# header\nx // trailing\n",
			expected: []Token{
				{Type: NEWLINE, Lexeme: "\n", Line: 1},
				{Type: IDENTIFIER, Lexeme: "x", Line: 2},
				{Type: NEWLINE, Lexeme: "\n", Line: 2},
				{Type: EOF, Lexeme: "", Line: 3},
			},
		},
		{
			name:    "Bang is not a token",
			input:   "!1",
			wantErr: true,
		},
		{
			name:    "Malformed number",
			input:   "12px",
			wantErr: true,
		},
		{
			name:    "Single angle bracket",
			input:   "a < b",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lex(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Lex() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Lex() =\n%v\nwant\n%v", got, tt.expected)
			}
		})
	}
}

func TestLexNormalizesIdentifiers(t *testing.T) {
	// "é" precomposed and as "e" + combining acute accent.
	composed, err := Lex("caf\u00e9")
	if err != nil {
		t.Fatal(err)
	}
	decomposed, err := Lex("cafe\u0301")
	if err != nil {
		t.Fatal(err)
	}
	if composed[0].Lexeme != decomposed[0].Lexeme {
		t.Errorf("lexemes differ: %q vs %q", composed[0].Lexeme, decomposed[0].Lexeme)
	}
}
