package parser

import (
	"strings"

	"github.com/Elkozel/Meerkat/pkg/rule"
)

// parseOptions parses "(" (Option (";" Option)*)? ";"? ")". The cursor
// sits on the opening parenthesis. A malformed option list fails the
// whole line: options are the last committed top-level production.
func (p *parser) parseOptions() ([]rule.Spanned[rule.RuleOption], bool) {
	p.advance() // consume '('

	options := []rule.Spanned[rule.RuleOption]{}

	for {
		p.skipSpace()

		if p.peek() == ')' {
			p.advance()

			return options, true
		}

		if p.eof() {
			p.diag("unterminated option list", rule.NewSpan(p.pos, p.pos))

			return nil, false
		}

		option, ok := p.parseOption()
		if !ok {
			return nil, false
		}

		options = append(options, option)

		p.skipSpace()

		switch p.peek() {
		case ';':
			p.advance()
		case ')':
			p.advance()

			return options, true
		default:
			p.diag("expected ';' or ')' after option", rule.NewSpan(p.pos, p.pos))

			return nil, false
		}
	}
}

// parseOption parses a single option: a keyword alone (buffer) or a
// keyword followed by ":" and comma-separated values.
func (p *parser) parseOption() (rule.Spanned[rule.RuleOption], bool) {
	p.skipSpace()

	start := p.pos

	keyword, ok := p.parseOptionKeyword()
	if !ok {
		return rule.Spanned[rule.RuleOption]{}, false
	}

	if p.peek() != ':' {
		buffer := rule.Buffer{Keyword: keyword}

		return rule.NewSpanned[rule.RuleOption](buffer, keyword.Span), true
	}

	p.advance() // consume ':'

	var values []rule.Spanned[rule.OptionsVariable]

	end := p.pos

	for {
		value, ok := p.parseOptionValue()
		if !ok {
			return rule.Spanned[rule.RuleOption]{}, false
		}

		values = append(values, value)
		end = value.Span.End

		p.skipSpace()

		if p.peek() != ',' {
			break
		}

		p.advance()
	}

	pair := rule.KeywordPair{Keyword: keyword, Values: values}

	return rule.NewSpanned[rule.RuleOption](pair, rule.NewSpan(start, end)), true
}

// parseOptionKeyword consumes keyword text up to ':', ';' or ')'. The
// span covers the keyword with surrounding whitespace trimmed.
func (p *parser) parseOptionKeyword() (rule.Spanned[string], bool) {
	start := p.pos

	for !p.eof() && !strings.ContainsRune(":;)", p.peek()) {
		p.advance()
	}

	if p.eof() {
		p.diag("unterminated option keyword", rule.NewSpan(start, p.pos))

		return rule.Spanned[string]{}, false
	}

	raw := string(p.src[start:p.pos])
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		p.diag("empty option keyword", rule.NewSpan(start, p.pos))

		return rule.Spanned[string]{}, false
	}

	offset := strings.Index(raw, trimmed)
	span := rule.NewSpan(start+len([]rune(raw[:offset])), start+len([]rune(raw[:offset]))+len([]rune(trimmed)))

	return rule.NewSpanned(trimmed, span), true
}

// parseOptionValue parses one option argument: a quote-delimited string
// with `\"`, `\;` and `\\` escapes, or a bare token running to the first
// unescaped ';' or ','.
func (p *parser) parseOptionValue() (rule.Spanned[rule.OptionsVariable], bool) {
	p.skipSpace()

	if p.peek() == '"' {
		return p.parseStringValue()
	}

	return p.parseOtherValue()
}

func (p *parser) parseStringValue() (rule.Spanned[rule.OptionsVariable], bool) {
	start := p.pos
	p.advance() // consume opening quote

	var sb strings.Builder

	for {
		if p.eof() {
			p.diag("unterminated string value", rule.NewSpan(start, p.pos))

			return rule.Spanned[rule.OptionsVariable]{}, false
		}

		if p.peek() == '\\' && isEscapable(p.lookahead(1)) {
			p.advance()
			sb.WriteRune(p.peek())
			p.advance()

			continue
		}

		if p.peek() == '"' {
			p.advance()

			break
		}

		sb.WriteRune(p.peek())
		p.advance()
	}

	span := rule.NewSpan(start, p.pos)
	value := rule.StringValue{Text: rule.NewSpanned(sb.String(), span)}

	return rule.NewSpanned[rule.OptionsVariable](value, span), true
}

// parseOtherValue consumes a bare value. Escapes are honored, but the
// value otherwise runs to the first unescaped ';' or ','; an empty value
// is valid (e.g. "nocase:;").
func (p *parser) parseOtherValue() (rule.Spanned[rule.OptionsVariable], bool) {
	start := p.pos

	var sb strings.Builder

	for !p.eof() {
		if p.peek() == '\\' && isEscapable(p.lookahead(1)) {
			p.advance()
			sb.WriteRune(p.peek())
			p.advance()

			continue
		}

		if p.peek() == ';' || p.peek() == ',' {
			break
		}

		sb.WriteRune(p.peek())
		p.advance()
	}

	span := rule.NewSpan(start, p.pos)
	value := rule.OtherValue{Text: rule.NewSpanned(sb.String(), span)}

	return rule.NewSpanned[rule.OptionsVariable](value, span), true
}

// isEscapable reports whether r may follow a backslash inside an option
// value.
func isEscapable(r rune) bool {
	return r == '"' || r == ';' || r == '\\'
}
