package gridify

import "strings"

// Escaped delimiters are swapped for private-use runes before lexing so the
// lexer never sees them as structure, then swapped back inside values.
var (
	escapeProtector = strings.NewReplacer(
		`\\`, "\uE004",
		`\(`, "\uE000",
		`\)`, "\uE001",
		`\,`, "\uE002",
		`\|`, "\uE003",
	)
	escapeRestorer = strings.NewReplacer(
		"\uE000", "(",
		"\uE001", ")",
		"\uE002", ",",
		"\uE003", "|",
		"\uE004", `\`,
	)
	escapeWriter = strings.NewReplacer(
		`\`, `\\`,
		"(", `\(`,
		")", `\)`,
		",", `\,`,
		"|", `\|`,
	)
)

// EscapeValue escapes the filter delimiters in a literal so it can be placed
// on the right side of a comparison.
func EscapeValue(value string) string {
	return escapeWriter.Replace(value)
}

func protectEscapes(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}
	return escapeProtector.Replace(text)
}

func restoreEscapes(text string) string {
	return escapeRestorer.Replace(text)
}

// ParseEscaped parses text honoring backslash escapes of ( ) , | and \ in
// values.
func ParseEscaped(text string) *SyntaxTree {
	protected := protectEscapes(text)
	tree := Parse(protected)
	if protected != text {
		restoreValues(tree.Root)
	}
	return tree
}

// TokenizeEscaped tokenizes text the way ParseEscaped sees it, with escaped
// delimiters restored in token text.
func TokenizeEscaped(text string) ([]Token, []string) {
	tokens, diags := Tokenize(protectEscapes(text))
	for i := range tokens {
		tokens[i].Text = restoreEscapes(tokens[i].Text)
	}
	return tokens, diags
}

func restoreValues(n Node) {
	switch x := n.(type) {
	case *BinaryExpr:
		restoreValues(x.Left)
		restoreValues(x.Right)
	case *ParenExpr:
		restoreValues(x.Inner)
	case *ValueExpr:
		x.Value = Token{Kind: x.Value.Kind, Pos: x.Value.Pos, Text: restoreEscapes(x.Value.Text)}
	}
}
