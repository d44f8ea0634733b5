package rule

import "strings"

// OptionsVariable is a single argument of a rule option.
//
// Two shapes exist: quote-delimited strings, inside which `\`, `"` and
// `;` are escaped, and bare tokens which run up to the first unescaped
// `;` or `,`. They are distinct variants because the escaping rules
// differ on round-trip.
type OptionsVariable interface {
	isOptionsVariable()
	String() string
}

// StringValue is a quote-delimited option argument. Text holds the
// unescaped content; Text.Span covers the quotes.
type StringValue struct {
	Text Spanned[string]
}

// OtherValue is a bare option argument.
type OtherValue struct {
	Text Spanned[string]
}

func (StringValue) isOptionsVariable() {}
func (OtherValue) isOptionsVariable()  {}

func (v StringValue) String() string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `;`, `\;`).Replace(v.Text.Value)

	return `"` + escaped + `"`
}

func (v OtherValue) String() string {
	return v.Text.Value
}

// RuleOption is one option of a signature: either a keyword with a
// colon-separated argument list (msg: "...") or a bare buffer keyword
// (http.uri).
type RuleOption interface {
	isRuleOption()
	String() string
}

// KeywordPair is a keyword followed by ":" and comma-separated arguments.
type KeywordPair struct {
	Keyword Spanned[string]
	Values  []Spanned[OptionsVariable]
}

// Buffer is a keyword standing alone.
type Buffer struct {
	Keyword Spanned[string]
}

func (KeywordPair) isRuleOption() {}
func (Buffer) isRuleOption()      {}

func (o KeywordPair) String() string {
	parts := make([]string, 0, len(o.Values))
	for _, value := range o.Values {
		parts = append(parts, value.Value.String())
	}

	return o.Keyword.Value + ": " + strings.Join(parts, ", ")
}

func (o Buffer) String() string {
	return o.Keyword.Value
}
