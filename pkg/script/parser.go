package script

import (
	"fmt"
	"strings"
)

// Parser consumes the flat token slice produced by the Lexer and builds a
// parse tree.
//
// Grammar:
//
//	program    = { statement ( NEWLINE | ";" ) } EOF
//	statement  = "return" expression | block | expression [ "=" expression ]
//	block      = "{" { statement ( NEWLINE | ";" ) } "}"
//	expression = bitwise_or
//	bitwise_or = bitwise_xor ("|" bitwise_xor)*
//	bitwise_xor = bitwise_and ("^" bitwise_and)*
//	bitwise_and = shift ("&" shift)*
//	shift      = additive (("<<" | ">>" | ">>>") additive)*
//	additive   = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = unary (("*" | "/" | "%") unary)*
//	unary      = ("-" | "~" | "+") unary | primary
//	primary    = INTEGER | IDENTIFIER [ "(" args ")" ] | "(" expression ")"
//
// Newlines inside parentheses are ignored.
type Parser struct {
	tokens      []Token
	pos         int
	depth       int // open "(" and "{" not yet closed
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// fmtError wraps an error message with the source line where the token appears.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	err := &SyntaxError{
		Line:       tok.Line,
		Msg:        fmt.Sprintf(format, args...),
		Incomplete: tok.Type == EOF && p.depth > 0,
	}
	lineIdx := tok.Line - 1 // Lines are 1-based
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		err.Snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}
	return err
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return p.advance(), nil
}

func (p *Parser) skipNewlines() {
	for p.peek().Type == NEWLINE {
		p.advance()
	}
}

// skipSeparators consumes any run of statement separators.
func (p *Parser) skipSeparators() {
	for p.peek().Type == NEWLINE || p.peek().Type == SEMICOLON {
		p.advance()
	}
}

// parseStatements parses statements until a token of type end.
func (p *Parser) parseStatements(end TokenType) ([]*Node, error) {
	var stmts []*Node
	p.skipSeparators()
	for p.peek().Type != end {
		if p.peek().Type == EOF {
			return nil, p.fmtError(p.peek(), "expected %s, got EOF", end)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)

		switch p.peek().Type {
		case NEWLINE, SEMICOLON:
			p.skipSeparators()
		case end:
		default:
			tok := p.peek()
			return nil, p.fmtError(tok, "expected end of statement, got %s (%q)", tok.Type, tok.Lexeme)
		}
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (*Node, error) {
	tok := p.peek()
	switch tok.Type {
	case RETURN:
		p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: Return, Text: TextReturn, Children: []*Node{value}, Line: tok.Line}, nil

	case LBRACE:
		p.advance()
		p.depth++
		stmts, err := p.parseStatements(RBRACE)
		if err != nil {
			return nil, err
		}
		p.advance() // }
		p.depth--
		return &Node{Kind: Block, Text: TextBlock, Children: stmts, Line: tok.Line}, nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != ASSIGN {
		return expr, nil
	}
	p.advance() // =
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	// The target is not checked here; the compiler rejects non-identifiers.
	return &Node{Kind: Assign, Text: TextAssign, Children: []*Node{expr, value}, Line: tok.Line}, nil
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (*Node, error) {
	return p.parseBitwiseOr()
}

// binaryLevel parses one left-associative precedence level.
func (p *Parser) binaryLevel(next func() (*Node, error), ops ...TokenType) (*Node, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.matches(ops...) {
		op := p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &Node{Kind: Binary, Text: op.Lexeme, Children: []*Node{expr, right}, Line: op.Line}
	}
	return expr, nil
}

func (p *Parser) matches(types ...TokenType) bool {
	tt := p.peek().Type
	for _, t := range types {
		if tt == t {
			return true
		}
	}
	return false
}

// parseBitwiseOr handles | (lowest precedence)
func (p *Parser) parseBitwiseOr() (*Node, error) {
	return p.binaryLevel(p.parseBitwiseXor, PIPE)
}

// parseBitwiseXor handles ^
func (p *Parser) parseBitwiseXor() (*Node, error) {
	return p.binaryLevel(p.parseBitwiseAnd, CARET)
}

// parseBitwiseAnd handles &
func (p *Parser) parseBitwiseAnd() (*Node, error) {
	return p.binaryLevel(p.parseShift, AND)
}

// parseShift handles <<, >> and >>>
func (p *Parser) parseShift() (*Node, error) {
	return p.binaryLevel(p.parseAdditive, SHL_OP, SHR_OP, USHR_OP)
}

// parseAdditive handles binary + and -
func (p *Parser) parseAdditive() (*Node, error) {
	return p.binaryLevel(p.parseMultiplicative, PLUS, MINUS)
}

// parseMultiplicative handles *, / and %
func (p *Parser) parseMultiplicative() (*Node, error) {
	return p.binaryLevel(p.parseUnary, STAR, SLASH, PERCENT)
}

// parseUnary handles prefix -, ~ and +. Unary minus becomes a NEG node so
// it never shares a token with binary subtraction.
func (p *Parser) parseUnary() (*Node, error) {
	switch p.peek().Type {
	case MINUS, TILDE:
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		text := TextNot
		if op.Type == MINUS {
			text = TextNeg
		}
		return &Node{Kind: Unary, Text: text, Children: []*Node{right}, Line: op.Line}, nil
	case PLUS:
		p.advance()
		return p.parseUnary()
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (*Node, error) {
	tok := p.peek()
	switch tok.Type {
	case INTEGER:
		p.advance()
		return &Node{Kind: Number, Text: tok.Lexeme, Line: tok.Line}, nil

	case IDENTIFIER:
		p.advance()
		ident := &Node{Kind: Ident, Text: tok.Lexeme, Line: tok.Line}
		if p.peek().Type != LPAREN {
			return ident, nil
		}
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: Call, Text: TextCall, Children: append([]*Node{ident}, args...), Line: tok.Line}, nil

	case LPAREN:
		p.advance()
		p.depth++
		p.skipNewlines()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		p.skipNewlines()
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		p.depth--
		return expr, nil

	default:
		return nil, p.fmtError(tok, "expected expression, got %s (%q)", tok.Type, tok.Lexeme)
	}
}

// parseArguments parses "(" [ expression { "," expression } ] ")".
func (p *Parser) parseArguments() ([]*Node, error) {
	p.advance() // (
	p.depth++
	p.skipNewlines()
	var args []*Node
	if p.peek().Type != RPAREN {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			p.skipNewlines()
			if p.peek().Type != COMMA {
				break
			}
			p.advance() // ,
			p.skipNewlines()
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	p.depth--
	return args, nil
}

// Parse turns a whole script into a tree whose root is a List node holding
// one child per top-level statement.
func Parse(src string) (*Node, error) {
	src = strings.TrimSpace(src) + "\n"
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := NewParser(tokens, src)
	stmts, err := p.parseStatements(EOF)
	if err != nil {
		return nil, err
	}
	return &Node{Kind: List, Children: stmts, Line: 1}, nil
}
