package script

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	NEWLINE // statement separator

	// Literals
	IDENTIFIER // variable / function name
	INTEGER    // decimal integer literal

	// Keywords
	RETURN // "return"

	// Paired delimiters
	LBRACE // {
	RBRACE // }
	LPAREN // (
	RPAREN // )

	// Punctuation
	COMMA     // ,
	SEMICOLON // ;

	// Operators
	PLUS    // +
	MINUS   // - (binary subtract or unary negate)
	STAR    // *
	SLASH   // /
	PERCENT // %
	AND     // &
	PIPE    // |
	CARET   // ^
	TILDE   // ~
	SHL_OP  // <<
	SHR_OP  // >>
	USHR_OP // >>>
	ASSIGN  // =
)

var tokenNames = [...]string{
	EOF:        "EOF",
	NEWLINE:    "NEWLINE",
	IDENTIFIER: "IDENTIFIER",
	INTEGER:    "INTEGER",
	RETURN:     "RETURN",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	COMMA:      "COMMA",
	SEMICOLON:  "SEMICOLON",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	SLASH:      "SLASH",
	PERCENT:    "PERCENT",
	AND:        "AND",
	PIPE:       "PIPE",
	CARET:      "CARET",
	TILDE:      "TILDE",
	SHL_OP:     "SHL_OP",
	SHR_OP:     "SHR_OP",
	USHR_OP:    "USHR_OP",
	ASSIGN:     "ASSIGN",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}
