package gridify

import (
	"fmt"
	"unicode"
)

// Lexer turns filter text into tokens, one NextToken call at a time.
//
// Field names and values use different character classes, so the lexer keeps
// a single mode flag: once a field name or an operator has been read, the
// following text is consumed as a value up to the next delimiter.
type Lexer struct {
	text           []rune
	pos            int
	expectingValue bool
	diagnostics    []string
}

// NewLexer creates a lexer over text
func NewLexer(text string) *Lexer {
	return &Lexer{text: []rune(text)}
}

// Diagnostics returns the lexical errors recorded so far
func (l *Lexer) Diagnostics() []string {
	return l.diagnostics
}

func (l *Lexer) current() rune {
	return l.peek(0)
}

func (l *Lexer) peek(offset int) rune {
	i := l.pos + offset
	if i >= len(l.text) {
		return 0
	}
	return l.text[i]
}

func (l *Lexer) emit(kind TokenKind, width int) Token {
	start := l.pos
	l.pos += width
	return Token{Kind: kind, Pos: start, Text: string(l.text[start:l.pos])}
}

func isDelimiter(r rune) bool {
	return r == '(' || r == ')' || r == ',' || r == '|'
}

func isFieldRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.'
}

// NextToken returns the next token. After the input is exhausted it keeps
// returning End.
func (l *Lexer) NextToken() Token {
	if l.pos >= len(l.text) {
		return Token{Kind: End, Pos: l.pos}
	}

	switch l.current() {
	case '(':
		l.expectingValue = false
		return l.emit(OpenParen, 1)
	case ')':
		l.expectingValue = false
		return l.emit(CloseParen, 1)
	case ',':
		l.expectingValue = false
		return l.emit(And, 1)
	case '|':
		l.expectingValue = false
		return l.emit(Or, 1)
	}

	if kind, width, ok := l.operator(); ok {
		l.expectingValue = true
		return l.emit(kind, width)
	}

	if !l.expectingValue && unicode.IsLetter(l.current()) {
		start := l.pos
		for l.pos < len(l.text) && isFieldRune(l.text[l.pos]) {
			l.pos++
		}
		l.expectingValue = true
		return Token{Kind: FieldName, Pos: start, Text: string(l.text[start:l.pos])}
	}

	if unicode.IsSpace(l.current()) {
		start := l.pos
		for l.pos < len(l.text) && unicode.IsSpace(l.text[l.pos]) {
			l.pos++
		}
		return Token{Kind: Whitespace, Pos: start, Text: string(l.text[start:l.pos])}
	}

	if l.expectingValue {
		start := l.pos
		for l.pos < len(l.text) && !isDelimiter(l.text[l.pos]) {
			l.pos++
		}
		l.expectingValue = false
		return Token{Kind: ValueLiteral, Pos: start, Text: string(l.text[start:l.pos])}
	}

	bad := l.emit(BadToken, 1)
	l.diagnostics = append(l.diagnostics, fmt.Sprintf("bad character input: '%s' at %d", bad.Text, bad.Pos))
	return bad
}

// operator matches the relational operators. The order of the checks matters:
// two-rune operators are tried before their single-rune prefixes.
func (l *Lexer) operator() (TokenKind, int, bool) {
	cur, next := l.current(), l.peek(1)
	switch {
	case cur == '=' && next == '=':
		return Equal, 2, true
	case cur == '!' && next == '=':
		return NotEqual, 2, true
	case cur == '=' && next == '*':
		return Like, 2, true
	case cur == '!' && next == '*':
		return NotLike, 2, true
	case cur == '>' && next == '>':
		return GreaterThan, 2, true
	case cur == '<' && next == '<':
		return LessThan, 2, true
	case cur == '>' && next == '=':
		return GreaterOrEqual, 2, true
	case cur == '<' && next == '=':
		return LessOrEqual, 2, true
	case cur == '!' && next == '^':
		return NotStartsWith, 2, true
	case cur == '!' && next == '$':
		return NotEndsWith, 2, true
	case cur == '^':
		return StartsWith, 1, true
	case cur == '$':
		return EndsWith, 1, true
	}
	return End, 0, false
}

// Tokenize drives a lexer to completion, End token included
func Tokenize(text string) ([]Token, []string) {
	l := NewLexer(text)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == End {
			break
		}
	}
	return tokens, l.Diagnostics()
}
