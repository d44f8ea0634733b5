package rule

import (
	"net/netip"
	"strconv"
	"strings"
)

// NetworkAddress is one node of the address grammar. The recursive
// variants (IPGroup, NegatedAddress) own their children exclusively; the
// structure is always a tree, never a graph.
type NetworkAddress interface {
	isNetworkAddress()
	String() string
}

// AnyAddress is the "any" wildcard.
type AnyAddress struct {
	Span Span
}

// IPAddress is a literal IPv4 or IPv6 address.
type IPAddress struct {
	Addr Spanned[netip.Addr]
}

// CIDRAddress is a literal address with a prefix length, e.g. 192.168.0.0/16.
// The left operand is always a bare literal address; the grammar rejects
// masks over variables or groups.
type CIDRAddress struct {
	Addr Spanned[netip.Addr]
	Mask Spanned[uint8]
}

// IPGroup is a bracketed, comma-separated list of addresses. Members may
// themselves be groups or negations; nesting depth is unbounded.
type IPGroup struct {
	Members []Spanned[NetworkAddress]
}

// NegatedAddress wraps exactly one child address. The grammar does not
// permit negating a negation directly.
type NegatedAddress struct {
	Addr Spanned[NetworkAddress]
}

// AddressVariable is a named placeholder such as $HOME_NET. The span
// includes the leading sigil; the stored name does not.
type AddressVariable struct {
	Name Spanned[string]
}

func (AnyAddress) isNetworkAddress()      {}
func (IPAddress) isNetworkAddress()       {}
func (CIDRAddress) isNetworkAddress()     {}
func (IPGroup) isNetworkAddress()         {}
func (NegatedAddress) isNetworkAddress()  {}
func (AddressVariable) isNetworkAddress() {}

func (AnyAddress) String() string {
	return "any"
}

func (a IPAddress) String() string {
	return a.Addr.Value.String()
}

func (c CIDRAddress) String() string {
	return c.Addr.Value.String() + "/" + strconv.Itoa(int(c.Mask.Value))
}

func (g IPGroup) String() string {
	parts := make([]string, 0, len(g.Members))
	for _, member := range g.Members {
		parts = append(parts, member.Value.String())
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

func (n NegatedAddress) String() string {
	return "!" + n.Addr.Value.String()
}

func (v AddressVariable) String() string {
	return "$" + v.Name.Value
}

// NetworkPort is one node of the port grammar, mirroring the shape of
// NetworkAddress.
type NetworkPort interface {
	isNetworkPort()
	String() string
}

// AnyPort is the "any" wildcard.
type AnyPort struct {
	Span Span
}

// Port is a single literal port number.
type Port struct {
	Number Spanned[uint16]
}

// PortGroup is a bracketed, comma-separated list of ports.
type PortGroup struct {
	Members []Spanned[NetworkPort]
}

// PortRange is a closed range with both bounds present, e.g. 1024:2048.
type PortRange struct {
	From Spanned[uint16]
	To   Spanned[uint16]
}

// PortOpenRange is a range with exactly one bound. Upward is true for
// "1024:" (open towards higher ports) and false for ":1024".
type PortOpenRange struct {
	Port   Spanned[uint16]
	Upward bool
}

// NegatedPort wraps exactly one child port.
type NegatedPort struct {
	Port Spanned[NetworkPort]
}

// PortVariable is a named placeholder such as $HTTP_PORTS. The span
// includes the leading sigil; the stored name does not.
type PortVariable struct {
	Name Spanned[string]
}

func (AnyPort) isNetworkPort()       {}
func (Port) isNetworkPort()          {}
func (PortGroup) isNetworkPort()     {}
func (PortRange) isNetworkPort()     {}
func (PortOpenRange) isNetworkPort() {}
func (NegatedPort) isNetworkPort()   {}
func (PortVariable) isNetworkPort()  {}

func (AnyPort) String() string {
	return "any"
}

func (p Port) String() string {
	return strconv.Itoa(int(p.Number.Value))
}

func (g PortGroup) String() string {
	parts := make([]string, 0, len(g.Members))
	for _, member := range g.Members {
		parts = append(parts, member.Value.String())
	}

	return "[" + strings.Join(parts, ",") + "]"
}

func (r PortRange) String() string {
	return strconv.Itoa(int(r.From.Value)) + ":" + strconv.Itoa(int(r.To.Value))
}

func (r PortOpenRange) String() string {
	if r.Upward {
		return strconv.Itoa(int(r.Port.Value)) + ":"
	}

	return ":" + strconv.Itoa(int(r.Port.Value))
}

func (n NegatedPort) String() string {
	return "!" + n.Port.Value.String()
}

func (v PortVariable) String() string {
	return "$" + v.Name.Value
}

// DirectionKind enumerates the recognized traffic directions.
type DirectionKind int

// Direction kinds.
const (
	DirectionSrcToDst DirectionKind = iota
	DirectionBoth
	DirectionDstToSrc
	DirectionUnrecognized
)

// NetworkDirection is the traffic direction of a header. Invalid but
// parseable direction text is preserved in Raw instead of failing the
// whole rule.
type NetworkDirection struct {
	Kind DirectionKind
	Raw  string
}

// ParseDirection maps raw direction text onto a direction value.
func ParseDirection(raw string) NetworkDirection {
	switch raw {
	case "->":
		return NetworkDirection{Kind: DirectionSrcToDst}
	case "<>":
		return NetworkDirection{Kind: DirectionBoth}
	case "<-":
		return NetworkDirection{Kind: DirectionDstToSrc}
	default:
		return NetworkDirection{Kind: DirectionUnrecognized, Raw: raw}
	}
}

func (d NetworkDirection) String() string {
	switch d.Kind {
	case DirectionSrcToDst:
		return "->"
	case DirectionBoth:
		return "<>"
	case DirectionDstToSrc:
		return "<-"
	default:
		return d.Raw
	}
}

// Header is the protocol/address/port/direction portion of a rule. Every
// field is optional so a partially typed line still produces a header;
// absence is query-visible.
type Header struct {
	Protocol        *Spanned[string]
	Source          *Spanned[NetworkAddress]
	SourcePort      *Spanned[NetworkPort]
	Direction       *Spanned[NetworkDirection]
	Destination     *Spanned[NetworkAddress]
	DestinationPort *Spanned[NetworkPort]
}

func (h Header) String() string {
	var sb strings.Builder

	if h.Protocol != nil {
		sb.WriteString(h.Protocol.Value)
		sb.WriteByte(' ')
	}

	if h.Source != nil {
		sb.WriteString(h.Source.Value.String())
		sb.WriteByte(' ')
	}

	if h.SourcePort != nil {
		sb.WriteString(h.SourcePort.Value.String())
		sb.WriteByte(' ')
	}

	if h.Direction != nil {
		sb.WriteString(h.Direction.Value.String())
		sb.WriteByte(' ')
	}

	if h.Destination != nil {
		sb.WriteString(h.Destination.Value.String())
		sb.WriteByte(' ')
	}

	if h.DestinationPort != nil {
		sb.WriteString(h.DestinationPort.Value.String())
		sb.WriteByte(' ')
	}

	return sb.String()
}
