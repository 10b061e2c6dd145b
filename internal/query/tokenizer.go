package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenAnd
	TokenOr
	TokenComparator
	TokenText
	TokenString
	TokenLParen
	TokenRParen
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	case TokenComparator:
		return "COMPARATOR"
	case TokenText:
		return "TEXT"
	case TokenString:
		return "STRING"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	}
	return "UNKNOWN"
}

// Token represents a single token in a search query
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Reserved words which become their own token types rather than TEXT.
// The comparator aliases keep their text so the parser can normalize them.
var reservedWords = map[string]TokenType{
	"and": TokenAnd,
	"or":  TokenOr,
	"has": TokenComparator,
	"is":  TokenComparator,
}

// Tokenizer tokenizes search query expressions
type Tokenizer struct {
	input string
	pos   int
	ch    rune
	width int
}

// NewTokenizer creates a new tokenizer
func NewTokenizer(input string) *Tokenizer {
	t := &Tokenizer{input: input}
	t.ch, t.width = decodeRune(input, 0)
	return t
}

func decodeRune(s string, pos int) (rune, int) {
	if pos >= len(s) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(s[pos:])
}

// advance moves to the next rune
func (t *Tokenizer) advance() {
	t.pos += t.width
	t.ch, t.width = decodeRune(t.input, t.pos)
}

// peek looks at the rune after the current one without advancing
func (t *Tokenizer) peek() rune {
	r, _ := decodeRune(t.input, t.pos+t.width)
	return r
}

// skipWhitespace skips spaces and tabs between tokens
func (t *Tokenizer) skipWhitespace() {
	for t.ch == ' ' || t.ch == '\t' || t.ch == '\n' || t.ch == '\r' {
		t.advance()
	}
}

// isWordRune reports whether r can appear in a TEXT token. Word characters
// are Unicode-aware so property values and free text may be non-Latin.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' ||
		r == '.' || r == '+' || r == '-' || r == '/'
}

// NextToken returns the next token, or a query error for any character
// that cannot start a token.
func (t *Tokenizer) NextToken() (*Token, error) {
	t.skipWhitespace()

	if t.ch == 0 {
		return &Token{Type: TokenEOF, Pos: t.pos}, nil
	}

	pos := t.pos

	switch t.ch {
	case '(':
		t.advance()
		return &Token{Type: TokenLParen, Value: "(", Pos: pos}, nil
	case ')':
		t.advance()
		return &Token{Type: TokenRParen, Value: ")", Pos: pos}, nil
	case '"':
		return t.readString(pos)
	case '=':
		t.advance()
		return &Token{Type: TokenComparator, Value: "=", Pos: pos}, nil
	case '~':
		t.advance()
		value := "~"
		if t.ch == '~' {
			// ~~ is accepted as an alias of ~
			t.advance()
			value = "~~"
		}
		return &Token{Type: TokenComparator, Value: value, Pos: pos}, nil
	case '<', '>':
		value := string(t.ch)
		t.advance()
		if t.ch == '=' {
			value += "="
			t.advance()
		}
		return &Token{Type: TokenComparator, Value: value, Pos: pos}, nil
	}

	if isWordRune(t.ch) {
		return t.readText(pos), nil
	}

	return nil, errorf("invalid character %s in query", string(t.ch))
}

// readString reads a double-quoted string with the quotes stripped.
// There are no escape sequences; a string simply cannot contain a quote.
func (t *Tokenizer) readString(pos int) (*Token, error) {
	t.advance() // opening quote

	var value strings.Builder
	for t.ch != 0 && t.ch != '"' {
		value.WriteRune(t.ch)
		t.advance()
	}

	if t.ch != '"' {
		return nil, errorf("unterminated string in query")
	}
	t.advance() // closing quote

	return &Token{Type: TokenString, Value: value.String(), Pos: pos}, nil
}

// readText reads a maximal run of word characters and classifies reserved
// words by their lowercase form.
func (t *Tokenizer) readText(pos int) *Token {
	var value strings.Builder
	for isWordRune(t.ch) {
		value.WriteRune(t.ch)
		t.advance()
	}

	text := value.String()
	if reserved, ok := reservedWords[strings.ToLower(text)]; ok {
		return &Token{Type: reserved, Value: text, Pos: pos}
	}
	return &Token{Type: TokenText, Value: text, Pos: pos}
}

// TokenizeAll returns all tokens from the input including the final EOF
func (t *Tokenizer) TokenizeAll() ([]*Token, error) {
	var tokens []*Token

	for {
		token, err := t.NextToken()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, token)

		if token.Type == TokenEOF {
			break
		}
	}

	return tokens, nil
}
