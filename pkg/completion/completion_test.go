package completion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elkozel/Meerkat/pkg/parser"
	"github.com/Elkozel/Meerkat/pkg/rule"
	"github.com/Elkozel/Meerkat/pkg/suricata"
)

func buildAST(t *testing.T, lines ...string) *rule.AST {
	t.Helper()

	ast := rule.NewAST()

	for i, line := range lines {
		parsed, _ := parser.ParseRule(line)
		require.NotNil(t, parsed, "line %d: %q", i, line)

		ast.Rules[uint32(i)] = *parsed
	}

	return ast
}

func testKeywords() map[string]suricata.Keyword {
	return map[string]suricata.Keyword{
		"nocase": {
			Record:   suricata.KeywordRecord{Name: "nocase", Description: "case insensitive match"},
			NoOption: true,
		},
		"content": {
			Record: suricata.KeywordRecord{Name: "content", Description: "match on payload content"},
		},
	}
}

func TestQuery_VariablesAfterSigil(t *testing.T) {
	t.Parallel()

	ast := buildAST(t,
		"alert tcp $HOME_NET $HTTP_PORTS -> $EXTERNAL_NET any",
		"drop udp [$DNS_SERVERS, 10.0.0.1] any -> any any",
	)

	line := "alert tcp $"

	items := Query(ast, line, len(line), nil)
	require.Len(t, items, 4)

	labels := make([]string, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Label)
	}

	assert.Equal(t, []string{"DNS_SERVERS", "EXTERNAL_NET", "HOME_NET", "HTTP_PORTS"}, labels)

	for _, item := range items {
		assert.Equal(t, KindVariable, item.Kind)
		assert.Equal(t, item.Label, item.InsertText)
		assert.False(t, strings.HasPrefix(item.InsertText, "$"))
	}
}

func TestQuery_KeywordsInsideOptions(t *testing.T) {
	t.Parallel()

	ast := buildAST(t, "alert tcp any any -> any any")

	for _, line := range []string{
		"alert tcp any any -> any any (",
		"alert tcp any any -> any any ( ",
		`alert tcp any any -> any any (msg: "x";`,
		`alert tcp any any -> any any (msg: "x"; `,
	} {
		items := Query(ast, line, len(line), testKeywords())
		require.Len(t, items, 2, "line %q", line)

		assert.Equal(t, "content", items[0].Label)
		assert.Equal(t, "content: ", items[0].InsertText)
		assert.Equal(t, KindKeyword, items[0].Kind)

		assert.Equal(t, "nocase", items[1].Label)
		assert.Equal(t, "nocase; ", items[1].InsertText)
	}
}

func TestQuery_KeywordContextSurvivesTypedPrefix(t *testing.T) {
	t.Parallel()

	ast := buildAST(t, "alert tcp any any -> any any")

	// One typed rune after '(' or ';' keeps the context; the editor
	// filters the proposals by the prefix. Two runes end it.
	line := "alert tcp any any -> any any (n"
	assert.Len(t, Query(ast, line, len(line), testKeywords()), 2)

	line = "alert tcp any any -> any any (no"
	assert.Empty(t, Query(ast, line, len(line), testKeywords()))
}

func TestQuery_NoContextNoItems(t *testing.T) {
	t.Parallel()

	ast := buildAST(t, "alert tcp $HOME_NET any -> any any")

	for _, line := range []string{
		"alert tc",
		"alert tcp any any -> ",
		`alert tcp any any -> any any (msg: "x`,
	} {
		assert.Empty(t, Query(ast, line, len(line), testKeywords()), "line %q", line)
	}
}

func TestQuery_ColumnClamped(t *testing.T) {
	t.Parallel()

	ast := buildAST(t, "alert tcp $A any -> any any")

	items := Query(ast, "alert tcp $", 500, nil)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].Label)
}
