package rule

// This file implements the span-indexed traversal shared by every query
// provider. The walk is written once per recursive type; hover,
// completion, rename and semantic tokens all build on the same two
// walkers so their recursion and edge-case handling cannot diverge.

// WalkAddress visits addr and then every nested address, depth-first and
// in declaration order. The walk stops early when visit returns false.
// It returns false if the walk was stopped.
func WalkAddress(addr Spanned[NetworkAddress], visit func(Spanned[NetworkAddress]) bool) bool {
	if !visit(addr) {
		return false
	}

	switch node := addr.Value.(type) {
	case IPGroup:
		for _, member := range node.Members {
			if !WalkAddress(member, visit) {
				return false
			}
		}
	case NegatedAddress:
		return WalkAddress(node.Addr, visit)
	}

	return true
}

// WalkPort visits port and then every nested port, depth-first and in
// declaration order. The walk stops early when visit returns false.
// It returns false if the walk was stopped.
func WalkPort(port Spanned[NetworkPort], visit func(Spanned[NetworkPort]) bool) bool {
	if !visit(port) {
		return false
	}

	switch node := port.Value.(type) {
	case PortGroup:
		for _, member := range node.Members {
			if !WalkPort(member, visit) {
				return false
			}
		}
	case NegatedPort:
		return WalkPort(node.Port, visit)
	}

	return true
}

// AddressVariables appends every variable leaf under addr to out, in
// declaration order. When name is non-empty only variables with that
// exact name are collected.
func AddressVariables(addr Spanned[NetworkAddress], name string, out []Spanned[string]) []Spanned[string] {
	WalkAddress(addr, func(node Spanned[NetworkAddress]) bool {
		if variable, ok := node.Value.(AddressVariable); ok {
			if name == "" || name == variable.Name.Value {
				out = append(out, variable.Name)
			}
		}

		return true
	})

	return out
}

// PortVariables appends every variable leaf under port to out, in
// declaration order. When name is non-empty only variables with that
// exact name are collected.
func PortVariables(port Spanned[NetworkPort], name string, out []Spanned[string]) []Spanned[string] {
	WalkPort(port, func(node Spanned[NetworkPort]) bool {
		if variable, ok := node.Value.(PortVariable); ok {
			if name == "" || name == variable.Name.Value {
				out = append(out, variable.Name)
			}
		}

		return true
	})

	return out
}

// AddressVariablesIn collects variables from the source and destination
// addresses of the header, filtered by name when non-empty.
func (h Header) AddressVariablesIn(name string, out []Spanned[string]) []Spanned[string] {
	if h.Source != nil {
		out = AddressVariables(*h.Source, name, out)
	}

	if h.Destination != nil {
		out = AddressVariables(*h.Destination, name, out)
	}

	return out
}

// PortVariablesIn collects variables from the source and destination
// ports of the header, filtered by name when non-empty.
func (h Header) PortVariablesIn(name string, out []Spanned[string]) []Spanned[string] {
	if h.SourcePort != nil {
		out = PortVariables(*h.SourcePort, name, out)
	}

	if h.DestinationPort != nil {
		out = PortVariables(*h.DestinationPort, name, out)
	}

	return out
}

// Variables returns every variable occurrence in the header, addresses
// first, each in declaration order.
func (h Header) Variables() []Spanned[string] {
	out := h.AddressVariablesIn("", nil)

	return h.PortVariablesIn("", out)
}

// VariableAt returns the variable whose span contains offset. The search
// is pre-order and first-match-wins; it reports false when the offset
// lands on a literal, wildcard or direction instead of a variable.
func (h Header) VariableAt(offset int) (Spanned[string], bool) {
	for _, variable := range h.Variables() {
		if variable.Span.Contains(offset) {
			return variable, true
		}
	}

	return Spanned[string]{}, false
}

// Variables aggregates the distinct variable names used across every
// rule of the AST, split into address variables and port variables.
// Spans are discarded at this level; they are re-derived per rule when a
// query needs exact positions.
func (a *AST) Variables() (addresses, ports map[string]struct{}) {
	addresses = make(map[string]struct{})
	ports = make(map[string]struct{})

	for _, spanned := range a.Rules {
		header := spanned.Value.Header.Value

		for _, variable := range header.AddressVariablesIn("", nil) {
			addresses[variable.Value] = struct{}{}
		}

		for _, variable := range header.PortVariablesIn("", nil) {
			ports[variable.Value] = struct{}{}
		}
	}

	return addresses, ports
}
