// Package completion proposes insertable tokens for the cursor
// position.
//
// Two contexts produce proposals. A freshly typed '$' completes to the
// variable names already used anywhere in the document, and the start
// of an option list or the end of a previous option completes to the
// keyword dictionary. Every other position deliberately proposes
// nothing; mid-header completion is out of scope.
package completion

import (
	"sort"

	"github.com/Elkozel/Meerkat/pkg/rule"
	"github.com/Elkozel/Meerkat/pkg/suricata"
)

// ItemKind tags what a proposal completes to.
type ItemKind int

// Item kinds.
const (
	KindVariable ItemKind = iota
	KindKeyword
)

// Item is one completion proposal.
type Item struct {
	Label      string
	InsertText string
	Kind       ItemKind
	Detail     string
}

// Query builds the proposals for a cursor sitting right after col
// characters of the given line text. Proposals come out sorted by label
// so the result is stable across the map-backed inputs.
func Query(ast *rule.AST, line string, col int, keywords map[string]suricata.Keyword) []Item {
	runes := []rune(line)
	if col > len(runes) {
		col = len(runes)
	}

	if col > 0 && runes[col-1] == '$' {
		return variableItems(ast)
	}

	if optionContext(runes, col) {
		return keywordItems(keywords)
	}

	return nil
}

// optionContext reports whether the cursor sits where a new option
// keyword may start: '(' or ';' within the two characters before the
// cursor. The one character of slack keeps the context alive across a
// separating space or the first typed rune of the keyword itself, which
// the editor uses to filter the proposals.
func optionContext(runes []rune, col int) bool {
	for i := col - 1; i >= 0 && i >= col-2; i-- {
		switch runes[i] {
		case '(', ';':
			return true
		}
	}

	return false
}

// variableItems proposes every variable name used in the document. The
// inserted text omits the sigil; the typed '$' that triggered the
// completion already provides it.
func variableItems(ast *rule.AST) []Item {
	addresses, ports := ast.Variables()

	items := make([]Item, 0, len(addresses)+len(ports))

	for name := range addresses {
		items = append(items, Item{Label: name, InsertText: name, Kind: KindVariable, Detail: name})
	}

	for name := range ports {
		items = append(items, Item{Label: name, InsertText: name, Kind: KindVariable, Detail: name})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })

	return items
}

// keywordItems proposes the option keywords. Keywords that take no
// value insert fully terminated; the rest leave the cursor behind a
// colon, ready for the argument.
func keywordItems(keywords map[string]suricata.Keyword) []Item {
	items := make([]Item, 0, len(keywords))

	for _, keyword := range keywords {
		insert := keyword.Record.Name + ": "
		if keyword.NoOption {
			insert = keyword.Record.Name + "; "
		}

		items = append(items, Item{
			Label:      keyword.Record.Name,
			InsertText: insert,
			Kind:       KindKeyword,
			Detail:     keyword.Record.Description,
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })

	return items
}
