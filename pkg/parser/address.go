package parser

import (
	"net/netip"
	"strconv"
	"strings"

	"github.com/Elkozel/Meerkat/pkg/rule"
)

const maxOctet = 255

// tryAddress attempts to parse a network address, restoring the cursor
// on failure.
func (p *parser) tryAddress() *rule.Spanned[rule.NetworkAddress] {
	save := p.pos

	p.skipSpace()

	addr, ok := p.parseAddress()
	if !ok {
		p.pos = save

		return nil
	}

	return &addr
}

// parseAddress parses one address node. Alternatives are attempted in a
// fixed order: variable, negation, group, CIDR, bare IP, "any".
func (p *parser) parseAddress() (rule.Spanned[rule.NetworkAddress], bool) {
	if addr, ok := p.parseAddressVariable(); ok {
		return addr, true
	}

	if addr, ok := p.parseNegatedAddress(); ok {
		return addr, true
	}

	if addr, ok := p.parseIPGroup(); ok {
		return addr, true
	}

	if addr, ok := p.parseCIDR(); ok {
		return addr, true
	}

	if addr, ok := p.parseIPAddress(); ok {
		return addr, true
	}

	return p.parseAnyAddress()
}

func (p *parser) parseAddressVariable() (rule.Spanned[rule.NetworkAddress], bool) {
	if p.peek() != '$' {
		return rule.Spanned[rule.NetworkAddress]{}, false
	}

	start := p.pos
	p.advance()

	name, ok := p.ident()
	if !ok {
		p.pos = start

		return rule.Spanned[rule.NetworkAddress]{}, false
	}

	// The variable span covers the sigil; the name does not include it.
	span := rule.NewSpan(start, p.pos)
	variable := rule.AddressVariable{Name: rule.NewSpanned(name.Value, span)}

	return rule.NewSpanned[rule.NetworkAddress](variable, span), true
}

// parseNegatedAddress parses "!" followed by exactly one child from the
// disjoint set variable | group | CIDR | IP. A negation cannot directly
// wrap another negation or "any".
func (p *parser) parseNegatedAddress() (rule.Spanned[rule.NetworkAddress], bool) {
	if p.peek() != '!' {
		return rule.Spanned[rule.NetworkAddress]{}, false
	}

	start := p.pos
	p.advance()

	child, ok := p.parseAddressVariable()
	if !ok {
		child, ok = p.parseIPGroup()
	}

	if !ok {
		child, ok = p.parseCIDR()
	}

	if !ok {
		child, ok = p.parseIPAddress()
	}

	if !ok {
		p.pos = start

		return rule.Spanned[rule.NetworkAddress]{}, false
	}

	span := rule.NewSpan(start, p.pos)
	negated := rule.NegatedAddress{Addr: child}

	return rule.NewSpanned[rule.NetworkAddress](negated, span), true
}

func (p *parser) parseIPGroup() (rule.Spanned[rule.NetworkAddress], bool) {
	if p.peek() != '[' {
		return rule.Spanned[rule.NetworkAddress]{}, false
	}

	start := p.pos
	p.advance()

	var members []rule.Spanned[rule.NetworkAddress]

	for {
		p.skipSpace()

		if p.peek() == ']' {
			p.advance()

			break
		}

		member, ok := p.parseAddress()
		if !ok {
			p.pos = start

			return rule.Spanned[rule.NetworkAddress]{}, false
		}

		members = append(members, member)

		p.skipSpace()

		switch p.peek() {
		case ',':
			p.advance()
		case ']':
			p.advance()
		default:
			p.pos = start

			return rule.Spanned[rule.NetworkAddress]{}, false
		}

		if p.src[p.pos-1] == ']' {
			break
		}
	}

	span := rule.NewSpan(start, p.pos)

	return rule.NewSpanned[rule.NetworkAddress](rule.IPGroup{Members: members}, span), true
}

// parseCIDR parses an IP literal followed by "/" and a prefix length.
// The left operand must be a bare literal address; variables and groups
// never take a mask.
func (p *parser) parseCIDR() (rule.Spanned[rule.NetworkAddress], bool) {
	save := p.pos

	addr, ok := p.parseBareIP()
	if !ok {
		return rule.Spanned[rule.NetworkAddress]{}, false
	}

	if p.peek() != '/' {
		p.pos = save

		return rule.Spanned[rule.NetworkAddress]{}, false
	}

	p.advance()

	digits, ok := p.digits()
	if !ok {
		p.pos = save

		return rule.Spanned[rule.NetworkAddress]{}, false
	}

	mask, err := strconv.Atoi(digits.Value)
	if err != nil || mask > maxOctet {
		p.diag("CIDR mask must be at most 255", digits.Span)

		mask = maxOctet
	}

	span := rule.NewSpan(save, p.pos)
	cidr := rule.CIDRAddress{
		Addr: addr,
		Mask: rule.NewSpanned(uint8(mask), digits.Span),
	}

	return rule.NewSpanned[rule.NetworkAddress](cidr, span), true
}

func (p *parser) parseIPAddress() (rule.Spanned[rule.NetworkAddress], bool) {
	addr, ok := p.parseBareIP()
	if !ok {
		return rule.Spanned[rule.NetworkAddress]{}, false
	}

	return rule.NewSpanned[rule.NetworkAddress](rule.IPAddress{Addr: addr}, addr.Span), true
}

// parseBareIP parses a literal IPv6 or IPv4 address. IPv6 is attempted
// first over a run of hex digits and colons; a run with a single colon
// is left alone so port ranges elsewhere on the line do not produce
// spurious address diagnostics.
func (p *parser) parseBareIP() (rule.Spanned[netip.Addr], bool) {
	save := p.pos

	start := p.pos
	for !p.eof() && strings.ContainsRune("0123456789abcdefABCDEF:", p.peek()) {
		p.advance()
	}

	run := string(p.src[start:p.pos])

	if colons := strings.Count(run, ":"); colons >= 2 {
		addr, err := netip.ParseAddr(run)
		if err == nil {
			return rule.NewSpanned(addr, rule.NewSpan(start, p.pos)), true
		}

		p.diag("invalid IPv6 address", rule.NewSpan(start, p.pos))
		p.pos = save

		return rule.Spanned[netip.Addr]{}, false
	}

	p.pos = save

	return p.parseIPv4()
}

func (p *parser) parseIPv4() (rule.Spanned[netip.Addr], bool) {
	save := p.pos

	var octets [4]byte

	for i := range 4 {
		if i > 0 {
			if p.peek() != '.' {
				p.pos = save

				return rule.Spanned[netip.Addr]{}, false
			}

			p.advance()
		}

		digits, ok := p.digits()
		if !ok {
			p.pos = save

			return rule.Spanned[netip.Addr]{}, false
		}

		value, err := strconv.Atoi(digits.Value)
		if err != nil || value > maxOctet {
			p.diag("every octet of an IP address must be at most 255", digits.Span)

			value = maxOctet
		}

		octets[i] = byte(value)
	}

	addr := netip.AddrFrom4(octets)

	return rule.NewSpanned(addr, rule.NewSpan(save, p.pos)), true
}

// parseAnyAddress parses the "any" wildcard. The word must end at an
// identifier boundary.
func (p *parser) parseAnyAddress() (rule.Spanned[rule.NetworkAddress], bool) {
	save := p.pos

	ident, ok := p.ident()
	if !ok || ident.Value != "any" {
		p.pos = save

		return rule.Spanned[rule.NetworkAddress]{}, false
	}

	return rule.NewSpanned[rule.NetworkAddress](rule.AnyAddress{Span: ident.Span}, ident.Span), true
}
