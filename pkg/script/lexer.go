package script

import (
	"fmt"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"return": RETURN,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
}

// newLexer normalizes src to NFC so that canonically equivalent spellings of
// an identifier produce the same lexeme.
func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(norm.NFC.String(src)), pos: 0, line: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peekAt returns the rune offset positions ahead of the current position.
func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

// skipBlanks skips spaces and tabs but stops at newlines, which separate
// statements.
func (l *Lexer) skipBlanks() {
	for l.pos < len(l.src) {
		r := l.peek()
		if r == '\n' || !unicode.IsSpace(r) {
			return
		}
		l.advance()
	}
}

// skipLineComment discards everything up to (not including) the newline.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// scanIdent collects a full identifier or keyword token.
// The first character (letter or '_') must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line}
}

// scanInt collects a decimal integer literal. A literal directly followed by
// a letter (e.g. 12px) is rejected rather than split into two tokens.
func (l *Lexer) scanInt() (Token, error) {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		l.advance()
	}
	if r := l.peek(); unicode.IsLetter(r) || r == '_' {
		return Token{}, &SyntaxError{Line: line, Msg: fmt.Sprintf("malformed number %q", string(l.src[start:l.pos+1]))}
	}
	return Token{Type: INTEGER, Lexeme: string(l.src[start:l.pos]), Line: line}, nil
}

// nextToken skips blanks/comments and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	for {
		l.skipBlanks()
		if l.pos >= len(l.src) {
			return Token{Type: EOF, Lexeme: "", Line: l.line}, nil
		}
		if l.peek() == '#' || (l.peek() == '/' && l.peekAt(1) == '/') {
			l.skipLineComment()
			continue
		}
		break
	}

	ch := l.peek()
	line := l.line

	if unicode.IsLetter(ch) || ch == '_' {
		return l.scanIdent(), nil
	}
	if unicode.IsDigit(ch) {
		return l.scanInt()
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '\n':
		return Token{NEWLINE, "\n", line}, nil
	case '{':
		return Token{LBRACE, "{", line}, nil
	case '}':
		return Token{RBRACE, "}", line}, nil
	case '(':
		return Token{LPAREN, "(", line}, nil
	case ')':
		return Token{RPAREN, ")", line}, nil
	case ',':
		return Token{COMMA, ",", line}, nil
	case ';':
		return Token{SEMICOLON, ";", line}, nil
	case '+':
		return Token{PLUS, "+", line}, nil
	case '-':
		return Token{MINUS, "-", line}, nil
	case '*':
		return Token{STAR, "*", line}, nil
	case '/':
		return Token{SLASH, "/", line}, nil
	case '%':
		return Token{PERCENT, "%", line}, nil
	case '&':
		return Token{AND, "&", line}, nil
	case '|':
		return Token{PIPE, "|", line}, nil
	case '^':
		return Token{CARET, "^", line}, nil
	case '~':
		return Token{TILDE, "~", line}, nil
	case '=':
		return Token{ASSIGN, "=", line}, nil
	case '<':
		if l.peek() == '<' {
			l.advance()
			return Token{SHL_OP, "<<", line}, nil
		}
	case '>':
		if l.peek() == '>' {
			l.advance()
			if l.peek() == '>' {
				l.advance()
				return Token{USHR_OP, ">>>", line}, nil
			}
			return Token{SHR_OP, ">>", line}, nil
		}
	}
	return Token{}, &SyntaxError{Line: line, Msg: fmt.Sprintf("unexpected character %q", ch)}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It returns a non-nil error on the first illegal character.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
