// Package hover answers "what is under the cursor" with markdown.
//
// Two node families produce content: CIDR ranges (expanded into their
// first and last address) and option keywords (looked up in the
// Suricata keyword dictionary). Everything else is a deliberate miss,
// reported as absence rather than an error.
package hover

import (
	"fmt"
	"net/netip"

	"github.com/Elkozel/Meerkat/pkg/rule"
	"github.com/Elkozel/Meerkat/pkg/suricata"
)

// Get resolves hover content for the given document position. The
// returned span tells the editor which text the content belongs to.
func Get(ast *rule.AST, line uint32, col int, keywords map[string]suricata.Keyword) (rule.Spanned[string], bool) {
	spanned, ok := ast.Rule(line)
	if !ok {
		return rule.Spanned[string]{}, false
	}

	r := spanned.Value

	if r.Header.Span.Contains(col) {
		return headerHover(r.Header.Value, col)
	}

	for _, option := range r.Options {
		if option.Span.Contains(col) {
			return optionHover(option.Value, col, keywords)
		}
	}

	return rule.Spanned[string]{}, false
}

func headerHover(h rule.Header, col int) (rule.Spanned[string], bool) {
	for _, addr := range []*rule.Spanned[rule.NetworkAddress]{h.Source, h.Destination} {
		if addr != nil && addr.Span.Contains(col) {
			return addressHover(*addr, col)
		}
	}

	return rule.Spanned[string]{}, false
}

// addressHover descends into groups and negations towards the node
// under the cursor. Only CIDR nodes produce content.
func addressHover(addr rule.Spanned[rule.NetworkAddress], col int) (rule.Spanned[string], bool) {
	switch node := addr.Value.(type) {
	case rule.CIDRAddress:
		return cidrHover(node)
	case rule.IPGroup:
		for _, member := range node.Members {
			if member.Span.Contains(col) {
				return addressHover(member, col)
			}
		}
	case rule.NegatedAddress:
		return addressHover(node.Addr, col)
	}

	return rule.Spanned[string]{}, false
}

// cidrHover renders the network as markdown: the range in bold and the
// first and last covered address underneath.
func cidrHover(node rule.CIDRAddress) (rule.Spanned[string], bool) {
	addr := node.Addr.Value
	bits := int(node.Mask.Value)

	if bits > addr.BitLen() {
		return rule.Spanned[string]{}, false
	}

	prefix := netip.PrefixFrom(addr, bits)
	network := prefix.Masked().Addr()

	content := fmt.Sprintf("**%s**\n\n%s - %s", prefix, network, lastAddr(prefix))
	span := rule.NewSpan(node.Addr.Span.Start, node.Mask.Span.End)

	return rule.NewSpanned(content, span), true
}

// lastAddr computes the highest address covered by the prefix.
func lastAddr(prefix netip.Prefix) netip.Addr {
	addr := prefix.Masked().Addr()
	raw := addr.AsSlice()

	for bit := prefix.Bits(); bit < addr.BitLen(); bit++ {
		raw[bit/8] |= 1 << (7 - bit%8)
	}

	last, _ := netip.AddrFromSlice(raw)

	return last
}

// optionHover looks the option keyword up in the dictionary. Hover over
// option values stays silent; the keyword name is the documented part.
func optionHover(option rule.RuleOption, col int, keywords map[string]suricata.Keyword) (rule.Spanned[string], bool) {
	var keyword rule.Spanned[string]

	switch node := option.(type) {
	case rule.KeywordPair:
		keyword = node.Keyword
	case rule.Buffer:
		keyword = node.Keyword
	default:
		return rule.Spanned[string]{}, false
	}

	if !keyword.Span.Contains(col) {
		return rule.Spanned[string]{}, false
	}

	entry, ok := keywords[keyword.Value]
	if !ok {
		return rule.Spanned[string]{}, false
	}

	content := fmt.Sprintf(
		"**%s**\n\n%s\n\n*Documentation: %s*",
		entry.Record.Name,
		entry.Record.Description,
		entry.Record.Documentation,
	)

	return rule.NewSpanned(content, keyword.Span), true
}
