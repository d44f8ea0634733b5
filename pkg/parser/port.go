package parser

import (
	"strconv"

	"github.com/Elkozel/Meerkat/pkg/rule"
)

const maxPort = 65535

// tryPort attempts to parse a network port, restoring the cursor on
// failure.
func (p *parser) tryPort() *rule.Spanned[rule.NetworkPort] {
	save := p.pos

	p.skipSpace()

	port, ok := p.parsePort()
	if !ok {
		p.pos = save

		return nil
	}

	return &port
}

// parsePort parses one port node. Alternatives are attempted in a fixed
// order: negation, variable, group, range, number, "any".
func (p *parser) parsePort() (rule.Spanned[rule.NetworkPort], bool) {
	if port, ok := p.parseNegatedPort(); ok {
		return port, true
	}

	if port, ok := p.parsePortVariable(); ok {
		return port, true
	}

	if port, ok := p.parsePortGroup(); ok {
		return port, true
	}

	if port, ok := p.parsePortRange(); ok {
		return port, true
	}

	if port, ok := p.parsePortNumber(); ok {
		return port, true
	}

	return p.parseAnyPort()
}

func (p *parser) parsePortVariable() (rule.Spanned[rule.NetworkPort], bool) {
	if p.peek() != '$' {
		return rule.Spanned[rule.NetworkPort]{}, false
	}

	start := p.pos
	p.advance()

	name, ok := p.ident()
	if !ok {
		p.pos = start

		return rule.Spanned[rule.NetworkPort]{}, false
	}

	span := rule.NewSpan(start, p.pos)
	variable := rule.PortVariable{Name: rule.NewSpanned(name.Value, span)}

	return rule.NewSpanned[rule.NetworkPort](variable, span), true
}

// parseNegatedPort parses "!" followed by exactly one child from the
// disjoint set variable | group | range | number.
func (p *parser) parseNegatedPort() (rule.Spanned[rule.NetworkPort], bool) {
	if p.peek() != '!' {
		return rule.Spanned[rule.NetworkPort]{}, false
	}

	start := p.pos
	p.advance()

	child, ok := p.parsePortVariable()
	if !ok {
		child, ok = p.parsePortGroup()
	}

	if !ok {
		child, ok = p.parsePortRange()
	}

	if !ok {
		child, ok = p.parsePortNumber()
	}

	if !ok {
		p.pos = start

		return rule.Spanned[rule.NetworkPort]{}, false
	}

	span := rule.NewSpan(start, p.pos)
	negated := rule.NegatedPort{Port: child}

	return rule.NewSpanned[rule.NetworkPort](negated, span), true
}

func (p *parser) parsePortGroup() (rule.Spanned[rule.NetworkPort], bool) {
	if p.peek() != '[' {
		return rule.Spanned[rule.NetworkPort]{}, false
	}

	start := p.pos
	p.advance()

	var members []rule.Spanned[rule.NetworkPort]

	for {
		p.skipSpace()

		if p.peek() == ']' {
			p.advance()

			break
		}

		member, ok := p.parsePort()
		if !ok {
			p.pos = start

			return rule.Spanned[rule.NetworkPort]{}, false
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

			return rule.Spanned[rule.NetworkPort]{}, false
		}

		if p.src[p.pos-1] == ']' {
			break
		}
	}

	span := rule.NewSpan(start, p.pos)

	return rule.NewSpanned[rule.NetworkPort](rule.PortGroup{Members: members}, span), true
}

// parsePortRange parses "from:to" where either bound may be absent but
// not both. A bare ":" is a hard error: a range must name at least one
// bound, and is never silently read as "any".
func (p *parser) parsePortRange() (rule.Spanned[rule.NetworkPort], bool) {
	save := p.pos

	from, hasFrom := p.parsePortLiteral()

	if p.peek() != ':' {
		p.pos = save

		return rule.Spanned[rule.NetworkPort]{}, false
	}

	colon := p.pos
	p.advance()

	to, hasTo := p.parsePortLiteral()

	switch {
	case !hasFrom && !hasTo:
		p.diag(`port range cannot be ":"`, rule.NewSpan(colon, colon+1))
		p.pos = save

		return rule.Spanned[rule.NetworkPort]{}, false
	case hasFrom && hasTo:
		span := rule.NewSpan(save, p.pos)

		return rule.NewSpanned[rule.NetworkPort](rule.PortRange{From: from, To: to}, span), true
	case hasFrom:
		span := rule.NewSpan(save, p.pos)
		open := rule.PortOpenRange{Port: from, Upward: true}

		return rule.NewSpanned[rule.NetworkPort](open, span), true
	default:
		span := rule.NewSpan(save, p.pos)
		open := rule.PortOpenRange{Port: to, Upward: false}

		return rule.NewSpanned[rule.NetworkPort](open, span), true
	}
}

func (p *parser) parsePortNumber() (rule.Spanned[rule.NetworkPort], bool) {
	number, ok := p.parsePortLiteral()
	if !ok {
		return rule.Spanned[rule.NetworkPort]{}, false
	}

	return rule.NewSpanned[rule.NetworkPort](rule.Port{Number: number}, number.Span), true
}

// parsePortLiteral parses a decimal port number, clamping out-of-range
// values with a diagnostic on the literal's span so that parsing of the
// surrounding rule continues.
func (p *parser) parsePortLiteral() (rule.Spanned[uint16], bool) {
	digits, ok := p.digits()
	if !ok {
		return rule.Spanned[uint16]{}, false
	}

	value, err := strconv.Atoi(digits.Value)
	if err != nil || value > maxPort {
		p.diag("port numbers must be at most 65535", digits.Span)

		value = maxPort
	}

	return rule.NewSpanned(uint16(value), digits.Span), true
}

func (p *parser) parseAnyPort() (rule.Spanned[rule.NetworkPort], bool) {
	save := p.pos

	ident, ok := p.ident()
	if !ok || ident.Value != "any" {
		p.pos = save

		return rule.Spanned[rule.NetworkPort]{}, false
	}

	return rule.NewSpanned[rule.NetworkPort](rule.AnyPort{Span: ident.Span}, ident.Span), true
}
