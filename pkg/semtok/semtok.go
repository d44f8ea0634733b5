// Package semtok classifies rule spans for editor syntax highlighting.
//
// Every node of a parsed rule that carries visual meaning maps onto one
// of nine token kinds. The kinds and their numeric order form the legend
// the editor is handed once at startup; tokens then refer to kinds by
// index.
package semtok

import "github.com/Elkozel/Meerkat/pkg/rule"

// Kind is a semantic token type, indexed into Legend.
type Kind int

// Token kinds, in legend order.
const (
	KindString Kind = iota
	KindComment
	KindFunction
	KindVariable
	KindNumber
	KindKeyword
	KindOperator
	KindProperty
	KindStruct
)

// Legend lists the LSP token type names in Kind order.
var Legend = []string{
	"string",
	"comment",
	"function",
	"variable",
	"number",
	"keyword",
	"operator",
	"property",
	"struct",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(Legend) {
		return "unknown"
	}

	return Legend[k]
}

// Token is one classified span. The span is absolute within the
// document when a non-zero base offset was supplied to Collect.
type Token struct {
	Span rule.Span
	Kind Kind
}

// Collect gathers the semantic tokens of one rule, shifting every span
// by base (the offset of the rule's line within the document). Tokens
// come out in ascending span order.
func Collect(spanned rule.Spanned[rule.Rule], base int) []Token {
	var tokens []Token

	r := spanned.Value

	if r.Action != nil {
		tokens = append(tokens, Token{Span: r.Action.Span.Shift(base), Kind: KindFunction})
	}

	tokens = collectHeader(r.Header.Value, base, tokens)

	for _, option := range r.Options {
		tokens = collectOption(option.Value, base, tokens)
	}

	return tokens
}

func collectHeader(h rule.Header, base int, tokens []Token) []Token {
	if h.Protocol != nil {
		tokens = append(tokens, Token{Span: h.Protocol.Span.Shift(base), Kind: KindFunction})
	}

	if h.Source != nil {
		tokens = collectAddress(*h.Source, base, tokens)
	}

	if h.SourcePort != nil {
		tokens = collectPort(*h.SourcePort, base, tokens)
	}

	if h.Direction != nil {
		tokens = append(tokens, Token{Span: h.Direction.Span.Shift(base), Kind: KindStruct})
	}

	if h.Destination != nil {
		tokens = collectAddress(*h.Destination, base, tokens)
	}

	if h.DestinationPort != nil {
		tokens = collectPort(*h.DestinationPort, base, tokens)
	}

	return tokens
}

// collectAddress walks one address tree. Group members are classified
// individually rather than as one blob, so nested variables and
// negations keep their own colors.
func collectAddress(addr rule.Spanned[rule.NetworkAddress], base int, tokens []Token) []Token {
	rule.WalkAddress(addr, func(node rule.Spanned[rule.NetworkAddress]) bool {
		switch value := node.Value.(type) {
		case rule.AnyAddress:
			tokens = append(tokens, Token{Span: node.Span.Shift(base), Kind: KindStruct})
		case rule.IPAddress:
			tokens = append(tokens, Token{Span: node.Span.Shift(base), Kind: KindKeyword})
		case rule.CIDRAddress:
			tokens = append(tokens,
				Token{Span: value.Addr.Span.Shift(base), Kind: KindKeyword},
				Token{Span: value.Mask.Span.Shift(base), Kind: KindNumber},
			)
		case rule.NegatedAddress:
			negation := rule.NewSpan(node.Span.Start, node.Span.Start+1)
			tokens = append(tokens, Token{Span: negation.Shift(base), Kind: KindOperator})
		case rule.AddressVariable:
			tokens = append(tokens, Token{Span: node.Span.Shift(base), Kind: KindVariable})
		}

		return true
	})

	return tokens
}

func collectPort(port rule.Spanned[rule.NetworkPort], base int, tokens []Token) []Token {
	rule.WalkPort(port, func(node rule.Spanned[rule.NetworkPort]) bool {
		switch value := node.Value.(type) {
		case rule.AnyPort:
			tokens = append(tokens, Token{Span: node.Span.Shift(base), Kind: KindKeyword})
		case rule.Port:
			tokens = append(tokens, Token{Span: node.Span.Shift(base), Kind: KindNumber})
		case rule.PortRange:
			tokens = append(tokens,
				Token{Span: value.From.Span.Shift(base), Kind: KindNumber},
				Token{Span: value.To.Span.Shift(base), Kind: KindNumber},
			)
		case rule.PortOpenRange:
			tokens = append(tokens, Token{Span: value.Port.Span.Shift(base), Kind: KindNumber})
		case rule.NegatedPort:
			negation := rule.NewSpan(node.Span.Start, node.Span.Start+1)
			tokens = append(tokens, Token{Span: negation.Shift(base), Kind: KindOperator})
		case rule.PortVariable:
			tokens = append(tokens, Token{Span: node.Span.Shift(base), Kind: KindVariable})
		}

		return true
	})

	return tokens
}

func collectOption(option rule.RuleOption, base int, tokens []Token) []Token {
	switch value := option.(type) {
	case rule.KeywordPair:
		tokens = append(tokens, Token{Span: value.Keyword.Span.Shift(base), Kind: KindKeyword})

		for _, v := range value.Values {
			tokens = append(tokens, collectOptionValue(v, base))
		}
	case rule.Buffer:
		tokens = append(tokens, Token{Span: value.Keyword.Span.Shift(base), Kind: KindKeyword})
	}

	return tokens
}

func collectOptionValue(value rule.Spanned[rule.OptionsVariable], base int) Token {
	if _, ok := value.Value.(rule.StringValue); ok {
		return Token{Span: value.Span.Shift(base), Kind: KindString}
	}

	return Token{Span: value.Span.Shift(base), Kind: KindProperty}
}
