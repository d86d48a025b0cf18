package gridify

import "fmt"

// Parser is a recursive-descent parser over the token stream of one filter.
//
//	Term    := Factor ( (And|Or) Factor )*
//	Factor  := Primary ( RelOp ValueLiteral )*
//	Primary := '(' Term ')' | FieldName
//
// And and Or share a precedence level and fold strictly left to right.
type Parser struct {
	tokens      []Token
	position    int
	diagnostics []string
}

// NewParser lexes text eagerly. Whitespace and bad tokens are dropped from the
// stream; their diagnostics are kept.
func NewParser(text string) *Parser {
	l := NewLexer(text)
	p := &Parser{}
	for {
		tok := l.NextToken()
		if tok.Kind != Whitespace && tok.Kind != BadToken {
			p.tokens = append(p.tokens, tok)
		}
		if tok.Kind == End {
			break
		}
	}
	p.diagnostics = append(p.diagnostics, l.Diagnostics()...)
	return p
}

// Parse parses text into a syntax tree. It never fails; problems are reported
// as diagnostics on the returned tree.
func Parse(text string) *SyntaxTree {
	return NewParser(text).Parse()
}

// Parse consumes the whole token stream
func (p *Parser) Parse() *SyntaxTree {
	root := p.parseTerm()
	end := p.match(End)
	return &SyntaxTree{Root: root, End: end, Diagnostics: p.diagnostics}
}

func (p *Parser) peek(offset int) Token {
	i := p.position + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) current() Token {
	return p.peek(0)
}

func (p *Parser) next() Token {
	tok := p.current()
	if p.position < len(p.tokens)-1 {
		p.position++
	}
	return tok
}

// match consumes a token of the given kind or records a diagnostic and
// returns a placeholder so parsing can go on.
func (p *Parser) match(kind TokenKind) Token {
	if p.current().Kind == kind {
		return p.next()
	}
	p.diagnostics = append(p.diagnostics, fmt.Sprintf("Unexpected token <%s>, expected <%s>", p.current().Kind, kind))
	return Token{Kind: kind, Pos: p.current().Pos}
}

func (p *Parser) parseTerm() Node {
	left := p.parseFactor()
	for p.current().Kind.IsLogical() {
		op := p.next()
		right := p.parseFactor()
		left = &BinaryExpr{Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) parseFactor() Node {
	left := p.parsePrimary()
	for p.current().Kind.IsRelational() {
		op := p.next()
		value := &ValueExpr{Value: p.match(ValueLiteral)}
		left = &BinaryExpr{Left: left, Operator: op, Right: value}
	}
	return left
}

func (p *Parser) parsePrimary() Node {
	if p.current().Kind == OpenParen {
		open := p.next()
		inner := p.parseTerm()
		closing := p.match(CloseParen)
		return &ParenExpr{Open: open, Inner: inner, Close: closing}
	}
	return &FieldExpr{Field: p.match(FieldName)}
}
