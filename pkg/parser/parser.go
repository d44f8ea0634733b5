// Package parser turns a single line of Suricata rule text into a
// spanned syntax tree.
//
// The parser is a hand-written recursive descent over the line's runes.
// It is built for live editing: a line that is mid-keystroke fails
// softly, numeric range violations surface as diagnostics on the
// offending literal instead of aborting the line, and every produced
// node carries the exact character range it was read from.
//
// Parsing commits strictly left to right at the top level: once the
// header has started, a failure inside it never retries the line as a
// different shape. Alternatives inside a production backtrack locally.
package parser

import (
	"strings"
	"unicode"

	"github.com/Elkozel/Meerkat/pkg/rule"
)

// Diagnostic is a recoverable parse problem tied to a span of the line.
type Diagnostic struct {
	Message string
	Span    rule.Span
}

// ParseRule parses one line of rule text. It returns the parsed rule, or
// nil when the line does not form a rule, together with any diagnostics
// collected along the way. Diagnostics may accompany a successful parse.
func ParseRule(text string) (*rule.Spanned[rule.Rule], []Diagnostic) {
	p := &parser{src: []rune(text)}

	parsed := p.parseRule()

	return parsed, p.diags
}

// IsComment reports whether the line is a comment (leading '#').
// Comment lines bypass the grammar entirely.
func IsComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

// IsBlank reports whether the line holds only whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

type parser struct {
	src   []rune
	pos   int
	diags []Diagnostic
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	return p.src[p.pos]
}

// lookahead returns the rune n positions past the cursor, or 0 past the
// end of the line.
func (p *parser) lookahead(n int) rune {
	if p.pos+n >= len(p.src) {
		return 0
	}

	return p.src[p.pos+n]
}

func (p *parser) advance() {
	p.pos++
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

// diag records a diagnostic. Alternatives that backtrack may revisit the
// same literal, so exact duplicates are dropped.
func (p *parser) diag(message string, span rule.Span) {
	for _, existing := range p.diags {
		if existing.Message == message && existing.Span == span {
			return
		}
	}

	p.diags = append(p.diags, Diagnostic{Message: message, Span: span})
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ident consumes an identifier ([A-Za-z_][A-Za-z0-9_]*).
func (p *parser) ident() (rule.Spanned[string], bool) {
	if !isIdentStart(p.peek()) {
		return rule.Spanned[string]{}, false
	}

	start := p.pos
	for !p.eof() && isIdentPart(p.peek()) {
		p.advance()
	}

	text := string(p.src[start:p.pos])

	return rule.NewSpanned(text, rule.NewSpan(start, p.pos)), true
}

// digits consumes a run of decimal digits.
func (p *parser) digits() (rule.Spanned[string], bool) {
	if !unicode.IsDigit(p.peek()) {
		return rule.Spanned[string]{}, false
	}

	start := p.pos
	for !p.eof() && unicode.IsDigit(p.peek()) {
		p.advance()
	}

	text := string(p.src[start:p.pos])

	return rule.NewSpanned(text, rule.NewSpan(start, p.pos)), true
}

func (p *parser) parseRule() *rule.Spanned[rule.Rule] {
	p.skipSpace()

	ruleStart := p.pos
	end := p.pos

	var action *rule.Spanned[rule.Action]

	if ident, ok := p.ident(); ok {
		spanned := rule.NewSpanned(rule.ParseAction(ident.Value), ident.Span)
		action = &spanned
		end = p.pos
	}

	header := p.parseHeader()
	if header.Span.Len() > 0 {
		end = header.Span.End
	}

	var options []rule.Spanned[rule.RuleOption]

	p.skipSpace()

	if p.peek() == '(' {
		parsed, ok := p.parseOptions()
		if !ok {
			return nil
		}

		options = parsed
		end = p.pos
	}

	p.skipSpace()

	if !p.eof() {
		p.diag("unexpected trailing characters", rule.NewSpan(p.pos, len(p.src)))

		return nil
	}

	parsed := rule.NewSpanned(rule.Rule{
		Action:  action,
		Header:  header,
		Options: options,
	}, rule.NewSpan(ruleStart, end))

	return &parsed
}

// parseHeader parses the protocol, addresses, ports and direction. Every
// field is optional; the header of a blank tail is empty, not an error.
func (p *parser) parseHeader() rule.Spanned[rule.Header] {
	p.skipSpace()

	start := p.pos
	end := p.pos

	var header rule.Header

	if isIdentStart(p.peek()) {
		save := p.pos

		if ident, ok := p.ident(); ok {
			header.Protocol = &ident
			end = p.pos
		} else {
			p.pos = save
		}
	}

	if addr := p.tryAddress(); addr != nil {
		header.Source = addr
		end = p.pos
	}

	if port := p.tryPort(); port != nil {
		header.SourcePort = port
		end = p.pos
	}

	if direction := p.tryDirection(); direction != nil {
		header.Direction = direction
		end = p.pos
	}

	if addr := p.tryAddress(); addr != nil {
		header.Destination = addr
		end = p.pos
	}

	if port := p.tryPort(); port != nil {
		header.DestinationPort = port
		end = p.pos
	}

	return rule.NewSpanned(header, rule.NewSpan(start, end))
}

// tryDirection consumes a run of '<', '-' and '>' characters. Any
// combination parses; unrecognized runs are preserved verbatim so that
// an invalid direction does not fail the whole rule.
func (p *parser) tryDirection() *rule.Spanned[rule.NetworkDirection] {
	save := p.pos

	p.skipSpace()

	start := p.pos
	for !p.eof() && strings.ContainsRune("<->", p.peek()) {
		p.advance()
	}

	if p.pos == start {
		p.pos = save

		return nil
	}

	raw := string(p.src[start:p.pos])
	spanned := rule.NewSpanned(rule.ParseDirection(raw), rule.NewSpan(start, p.pos))

	return &spanned
}
