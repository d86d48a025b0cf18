package gridify

// TokenKind identifies the syntactic class of a Token
type TokenKind int

const (
	End TokenKind = iota
	BadToken
	Whitespace
	FieldName
	ValueLiteral
	OpenParen
	CloseParen
	And
	Or
	Equal
	NotEqual
	Like
	NotLike
	LessThan
	GreaterThan
	LessOrEqual
	GreaterOrEqual
	StartsWith
	NotStartsWith
	EndsWith
	NotEndsWith
)

var tokenKindNames = [...]string{
	End:            "End",
	BadToken:       "BadToken",
	Whitespace:     "Whitespace",
	FieldName:      "FieldName",
	ValueLiteral:   "ValueLiteral",
	OpenParen:      "OpenParen",
	CloseParen:     "CloseParen",
	And:            "And",
	Or:             "Or",
	Equal:          "Equal",
	NotEqual:       "NotEqual",
	Like:           "Like",
	NotLike:        "NotLike",
	LessThan:       "LessThan",
	GreaterThan:    "GreaterThan",
	LessOrEqual:    "LessOrEqual",
	GreaterOrEqual: "GreaterOrEqual",
	StartsWith:     "StartsWith",
	NotStartsWith:  "NotStartsWith",
	EndsWith:       "EndsWith",
	NotEndsWith:    "NotEndsWith",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "Unknown"
	}
	return tokenKindNames[k]
}

// IsRelational reports whether k compares a field against a value
func (k TokenKind) IsRelational() bool {
	return k >= Equal && k <= NotEndsWith
}

// IsLogical reports whether k combines two sub-expressions
func (k TokenKind) IsLogical() bool {
	return k == And || k == Or
}

// Token is a single lexeme of a filter. Pos is a rune offset into the input.
type Token struct {
	Kind TokenKind
	Pos  int
	Text string
}
