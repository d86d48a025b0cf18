package gridify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Kind)
	}
	return out
}

func TestLexer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenKind
	}{
		{
			name:     "Simple comparison",
			input:    "name==John",
			expected: []TokenKind{FieldName, Equal, ValueLiteral, End},
		},
		{
			name:  "And and Or",
			input: "name==John,age>>30|city=*NY",
			expected: []TokenKind{
				FieldName, Equal, ValueLiteral, And,
				FieldName, GreaterThan, ValueLiteral, Or,
				FieldName, Like, ValueLiteral, End,
			},
		},
		{
			name:  "Parentheses",
			input: "(name=*J|name=*S),(Id<<5)",
			expected: []TokenKind{
				OpenParen, FieldName, Like, ValueLiteral, Or, FieldName, Like, ValueLiteral, CloseParen,
				And,
				OpenParen, FieldName, LessThan, ValueLiteral, CloseParen, End,
			},
		},
		{
			name:     "Whitespace around operator",
			input:    "name == John Smith",
			expected: []TokenKind{FieldName, Whitespace, Equal, Whitespace, ValueLiteral, End},
		},
		{
			name:     "Empty input",
			input:    "",
			expected: []TokenKind{End},
		},
		{
			name:     "Operator chars inside value",
			input:    "name==jessi==ca",
			expected: []TokenKind{FieldName, Equal, ValueLiteral, End},
		},
		{
			name:     "Bad character",
			input:    "=guid",
			expected: []TokenKind{BadToken, FieldName, End},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, _ := Tokenize(tt.input)
			assert.Equal(t, tt.expected, kinds(tokens))
		})
	}
}

func TestLexerOperators(t *testing.T) {
	tests := map[string]TokenKind{
		"==": Equal,
		"!=": NotEqual,
		"=*": Like,
		"!*": NotLike,
		">>": GreaterThan,
		"<<": LessThan,
		">=": GreaterOrEqual,
		"<=": LessOrEqual,
		"^":  StartsWith,
		"!^": NotStartsWith,
		"$":  EndsWith,
		"!$": NotEndsWith,
	}
	for op, kind := range tests {
		t.Run(op, func(t *testing.T) {
			tokens, diags := Tokenize("field" + op + "1")
			assert.Empty(t, diags)
			assert.Equal(t, []TokenKind{FieldName, kind, ValueLiteral, End}, kinds(tokens))
			assert.Equal(t, op, tokens[1].Text)
			assert.Equal(t, "1", tokens[2].Text)
		})
	}
}

func TestLexerTokenText(t *testing.T) {
	tokens, diags := Tokenize("my_field-2 == John Smith ,x$z")
	assert.Empty(t, diags)
	assert.Equal(t, Token{Kind: FieldName, Pos: 0, Text: "my_field-2"}, tokens[0])
	assert.Equal(t, Token{Kind: Equal, Pos: 11, Text: "=="}, tokens[2])
	assert.Equal(t, Token{Kind: ValueLiteral, Pos: 14, Text: "John Smith "}, tokens[4])
	assert.Equal(t, Token{Kind: And, Pos: 25, Text: ","}, tokens[5])
	assert.Equal(t, Token{Kind: EndsWith, Pos: 27, Text: "$"}, tokens[7])
	assert.Equal(t, End, tokens[len(tokens)-1].Kind)
}

func TestLexerDottedField(t *testing.T) {
	tokens, _ := Tokenize("Address.City==NY")
	assert.Equal(t, "Address.City", tokens[0].Text)
	assert.Equal(t, FieldName, tokens[0].Kind)
}

func TestLexerBadCharacter(t *testing.T) {
	l := NewLexer("=guid,d=")
	var tokens []Token
	for tok := l.NextToken(); tok.Kind != End; tok = l.NextToken() {
		tokens = append(tokens, tok)
	}
	assert.Equal(t, []string{"bad character input: '=' at 0"}, l.Diagnostics())
	assert.Equal(t, []TokenKind{BadToken, FieldName, And, FieldName, ValueLiteral}, kinds(tokens))
	assert.Equal(t, "=", tokens[4].Text)
}

func TestLexerEndIsSticky(t *testing.T) {
	l := NewLexer("a")
	assert.Equal(t, FieldName, l.NextToken().Kind)
	assert.Equal(t, End, l.NextToken().Kind)
	assert.Equal(t, End, l.NextToken().Kind)
}

func TestLexerDelimitersResetValueMode(t *testing.T) {
	// after the comma a field is expected again, not a value
	tokens, _ := Tokenize("a==1,b==2")
	assert.Equal(t, FieldName, tokens[4].Kind)
	assert.Equal(t, "b", tokens[4].Text)
}

func TestTokenizeEscaped(t *testing.T) {
	tokens, diags := TokenizeEscaped(`name==a\,b\|c`)
	assert.Empty(t, diags)
	assert.Equal(t, []TokenKind{FieldName, Equal, ValueLiteral, End}, kinds(tokens))
	assert.Equal(t, "a,b|c", tokens[2].Text)
}
