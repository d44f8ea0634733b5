package rule

import (
	"sort"
	"strings"
)

// Rule is a single signature. One rule occupies exactly one physical
// line; the parser never sees more than one line at a time.
type Rule struct {
	Action  *Spanned[Action]
	Header  Spanned[Header]
	Options []Spanned[RuleOption]
}

// HasOptions reports whether the rule carries an option list, including
// an empty "()" one.
func (r Rule) HasOptions() bool {
	return r.Options != nil
}

// Protocol returns the protocol field of the header, if present.
func (r Rule) Protocol() *Spanned[string] {
	return r.Header.Value.Protocol
}

// Source returns the source address of the header, if present.
func (r Rule) Source() *Spanned[NetworkAddress] {
	return r.Header.Value.Source
}

// SourcePort returns the source port of the header, if present.
func (r Rule) SourcePort() *Spanned[NetworkPort] {
	return r.Header.Value.SourcePort
}

// Direction returns the direction of the header, if present.
func (r Rule) Direction() *Spanned[NetworkDirection] {
	return r.Header.Value.Direction
}

// Destination returns the destination address of the header, if present.
func (r Rule) Destination() *Spanned[NetworkAddress] {
	return r.Header.Value.Destination
}

// DestinationPort returns the destination port of the header, if present.
func (r Rule) DestinationPort() *Spanned[NetworkPort] {
	return r.Header.Value.DestinationPort
}

// Addresses returns the source and destination addresses that are
// present, in that order.
func (r Rule) Addresses() []*Spanned[NetworkAddress] {
	var addrs []*Spanned[NetworkAddress]

	if r.Header.Value.Source != nil {
		addrs = append(addrs, r.Header.Value.Source)
	}

	if r.Header.Value.Destination != nil {
		addrs = append(addrs, r.Header.Value.Destination)
	}

	return addrs
}

// Ports returns the source and destination ports that are present, in
// that order.
func (r Rule) Ports() []*Spanned[NetworkPort] {
	var ports []*Spanned[NetworkPort]

	if r.Header.Value.SourcePort != nil {
		ports = append(ports, r.Header.Value.SourcePort)
	}

	if r.Header.Value.DestinationPort != nil {
		ports = append(ports, r.Header.Value.DestinationPort)
	}

	return ports
}

// String renders the rule back to canonical text. Re-parsing the result
// yields a structurally equal rule; the text itself is normalized, not
// byte-identical to the input.
func (r Rule) String() string {
	var sb strings.Builder

	if r.Action != nil {
		sb.WriteString(r.Action.Value.String())
		sb.WriteByte(' ')
	}

	sb.WriteString(r.Header.Value.String())

	if r.Options != nil {
		if len(r.Options) == 0 {
			sb.WriteString("()")

			return sb.String()
		}

		parts := make([]string, 0, len(r.Options))
		for _, option := range r.Options {
			parts = append(parts, option.Value.String())
		}

		sb.WriteString("(" + strings.Join(parts, "; ") + ";)")
	}

	return sb.String()
}

// Equal reports structural equality between two rules. Spans are
// ignored, so a rule compares equal to its reparsed canonical rendering.
// Option order is not semantically meaningful and is ignored as well,
// while remaining preserved in storage for faithful round-trips.
func (r Rule) Equal(other Rule) bool {
	if (r.Action == nil) != (other.Action == nil) {
		return false
	}

	if r.Action != nil && r.Action.Value != other.Action.Value {
		return false
	}

	if !headerEqual(r.Header.Value, other.Header.Value) {
		return false
	}

	if (r.Options == nil) != (other.Options == nil) {
		return false
	}

	if r.Options == nil {
		return true
	}

	return optionSetEqual(r.Options, other.Options)
}

func headerEqual(a, b Header) bool {
	return renderOptional(a.Protocol) == renderOptional(b.Protocol) &&
		renderOptionalStringer(a.Source) == renderOptionalStringer(b.Source) &&
		renderOptionalStringer(a.SourcePort) == renderOptionalStringer(b.SourcePort) &&
		renderOptionalStringer(a.Direction) == renderOptionalStringer(b.Direction) &&
		renderOptionalStringer(a.Destination) == renderOptionalStringer(b.Destination) &&
		renderOptionalStringer(a.DestinationPort) == renderOptionalStringer(b.DestinationPort)
}

func optionSetEqual(a, b []Spanned[RuleOption]) bool {
	if len(a) != len(b) {
		return false
	}

	left := make([]string, 0, len(a))
	right := make([]string, 0, len(b))

	for i := range a {
		left = append(left, a[i].Value.String())
		right = append(right, b[i].Value.String())
	}

	sort.Strings(left)
	sort.Strings(right)

	for i := range left {
		if left[i] != right[i] {
			return false
		}
	}

	return true
}

func renderOptional(v *Spanned[string]) string {
	if v == nil {
		return ""
	}

	return v.Value
}

func renderOptionalStringer[T interface{ String() string }](v *Spanned[T]) string {
	if v == nil {
		return ""
	}

	return v.Value.String()
}

// AST holds every parsed rule of one document, keyed by its 0-based line
// number. One rule per line is a structural invariant of the language,
// so the flat map is the whole tree. The AST is rebuilt wholesale on
// every document change and never mutated in place.
type AST struct {
	Rules map[uint32]Spanned[Rule]
}

// NewAST creates an empty AST.
func NewAST() *AST {
	return &AST{Rules: make(map[uint32]Spanned[Rule])}
}

// Rule returns the rule parsed from the given line, if any.
func (a *AST) Rule(line uint32) (Spanned[Rule], bool) {
	spanned, ok := a.Rules[line]

	return spanned, ok
}

// Lines returns the line numbers that hold rules, in ascending order.
func (a *AST) Lines() []uint32 {
	lines := make([]uint32, 0, len(a.Rules))
	for line := range a.Rules {
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i] < lines[j] })

	return lines
}
