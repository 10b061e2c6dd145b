package query

import (
	"strings"
)

// Parser parses a token stream into a query tree.
//
// Grammar, with OR at the lowest precedence and AND (explicit or by
// juxtaposition) above it, both left-associative:
//
//	expression : expression OR expression
//	           | expression AND expression
//	           | expression expression        (implicit AND)
//	           | ( expression )
//	           | TEXT COMPARATOR literal
//	           | TEXT
//	literal    : TEXT | STRING
type Parser struct {
	tokens  []*Token
	current int
}

// NewParser creates a parser over the given tokens.
func NewParser(tokens []*Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a raw query string into a contact query without optimizing.
func Parse(text string) (*ContactQuery, error) {
	tokens, err := NewTokenizer(strings.TrimSpace(text)).TokenizeAll()
	if err != nil {
		return nil, err
	}

	root, err := NewParser(tokens).Parse()
	if err != nil {
		return nil, err
	}

	return NewContactQuery(root), nil
}

// currentToken returns the current token without consuming it.
func (p *Parser) currentToken() *Token {
	if p.current >= len(p.tokens) {
		return &Token{Type: TokenEOF}
	}
	return p.tokens[p.current]
}

// advance consumes and returns the current token.
func (p *Parser) advance() *Token {
	token := p.currentToken()
	if p.current < len(p.tokens) {
		p.current++
	}
	return token
}

// Parse parses the whole token stream as one expression.
func (p *Parser) Parse() (QueryNode, error) {
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if token := p.currentToken(); token.Type != TokenEOF {
		return nil, unexpected(token)
	}

	return node, nil
}

// parseOr handles OR expressions (lowest precedence)
func (p *Parser) parseOr() (QueryNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.currentToken().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = NewBoolCombination(BoolOr, left, right)
	}

	return left, nil
}

// parseAnd handles explicit AND expressions and implicit AND by
// juxtaposition, which binds at the same precedence.
func (p *Parser) parseAnd() (QueryNode, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		token := p.currentToken()
		if token.Type == TokenAnd {
			p.advance()
		} else if token.Type != TokenText && token.Type != TokenLParen {
			// only another primary can follow for an implicit AND
			return left, nil
		}

		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = NewBoolCombination(BoolAnd, left, right)
	}
}

// parsePrimary handles parenthesized groups and conditions.
func (p *Parser) parsePrimary() (QueryNode, error) {
	token := p.currentToken()

	switch token.Type {
	case TokenLParen:
		p.advance()
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.currentToken(); closing.Type != TokenRParen {
			return nil, unexpected(closing)
		}
		p.advance()
		return node, nil

	case TokenText:
		p.advance()
		if p.currentToken().Type != TokenComparator {
			// a bare term matches against name or URN
			return NewCondition(ImplicitProp, "=", token.Value), nil
		}
		comparator := p.advance()

		literal := p.currentToken()
		if literal.Type != TokenText && literal.Type != TokenString {
			return nil, unexpected(literal)
		}
		p.advance()

		return NewCondition(token.Value, comparator.Value, literal.Value), nil
	}

	return nil, unexpected(token)
}

// unexpected creates the syntax error for an out-of-place token.
func unexpected(token *Token) error {
	if token.Type == TokenEOF {
		return errorf("syntax error at end of query")
	}
	return errorf("syntax error at '%s'", token.Value)
}
