// Package reference finds every occurrence of the variable under the
// cursor across the whole document. The editor drives both
// find-references and rename from the same result; for rename it pairs
// each returned span with "$" plus the new name, since variable spans
// cover their sigil while stored names do not.
package reference

import (
	"sort"

	"github.com/Elkozel/Meerkat/pkg/rule"
)

// Occurrence is one use of a variable: the line it sits on and the
// spanned name, whose span covers the '$' sigil.
type Occurrence struct {
	Line uint32
	Name rule.Spanned[string]
}

// Find resolves the variable at the given position and collects its
// occurrences across every rule, ordered by line and then by span. It
// reports false when the position does not sit on a variable.
//
// With includeSelf false the originating occurrence itself is left out,
// which is what rename wants: the editor already owns the edit under
// the cursor.
func Find(ast *rule.AST, line uint32, col int, includeSelf bool) ([]Occurrence, bool) {
	spanned, ok := ast.Rule(line)
	if !ok {
		return nil, false
	}

	origin, ok := spanned.Value.Header.Value.VariableAt(col)
	if !ok {
		return nil, false
	}

	var occurrences []Occurrence

	for ruleLine, ruleSpanned := range ast.Rules {
		header := ruleSpanned.Value.Header.Value

		names := header.AddressVariablesIn(origin.Value, nil)
		names = header.PortVariablesIn(origin.Value, names)

		for _, name := range names {
			if !includeSelf && ruleLine == line && name.Span == origin.Span {
				continue
			}

			occurrences = append(occurrences, Occurrence{Line: ruleLine, Name: name})
		}
	}

	sort.Slice(occurrences, func(i, j int) bool {
		if occurrences[i].Line != occurrences[j].Line {
			return occurrences[i].Line < occurrences[j].Line
		}

		return occurrences[i].Name.Span.Start < occurrences[j].Name.Span.Start
	})

	return occurrences, true
}
