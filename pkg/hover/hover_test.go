package hover

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
		"msg": {
			Record: suricata.KeywordRecord{
				Name:          "msg",
				Description:   "information about the rule",
				Documentation: "https://docs.example/msg",
			},
			NoOption: true,
		},
		"http.uri": {
			Record: suricata.KeywordRecord{
				Name:          "http.uri",
				Description:   "match on the HTTP uri buffer",
				Documentation: "https://docs.example/http.uri",
			},
		},
	}
}

func TestGet_CIDR(t *testing.T) {
	t.Parallel()

	text := "alert tcp 192.168.0.0/16 any -> any any"
	ast := buildAST(t, text)

	// Offset of the "192..." literal.
	col := strings.Index(text, "192")

	content, ok := Get(ast, 0, col, nil)
	require.True(t, ok)
	assert.Contains(t, content.Value, "**192.168.0.0/16**")
	assert.Contains(t, content.Value, "192.168.0.0 - 192.168.255.255")
	assert.Equal(t, rule.NewSpan(col, col+len("192.168.0.0/16")), content.Span)
}

func TestGet_CIDRInsideGroup(t *testing.T) {
	t.Parallel()

	text := "alert tcp [$HOME_NET, !10.0.0.0/8] any -> any any"
	ast := buildAST(t, text)

	col := strings.Index(text, "10.0.0.0")

	content, ok := Get(ast, 0, col, nil)
	require.True(t, ok)
	assert.Contains(t, content.Value, "10.0.0.0 - 10.255.255.255")
}

func TestGet_Keyword(t *testing.T) {
	t.Parallel()

	text := `alert tcp any any -> any any (msg: "probe"; http.uri;)`
	ast := buildAST(t, text)

	content, ok := Get(ast, 0, strings.Index(text, "msg"), testKeywords())
	require.True(t, ok)
	assert.Contains(t, content.Value, "**msg**")
	assert.Contains(t, content.Value, "information about the rule")
	assert.Contains(t, content.Value, "*Documentation: https://docs.example/msg*")

	content, ok = Get(ast, 0, strings.Index(text, "http.uri"), testKeywords())
	require.True(t, ok)
	assert.Contains(t, content.Value, "**http.uri**")
}

func TestGet_Misses(t *testing.T) {
	t.Parallel()

	text := `alert tcp $HOME_NET any -> 1.2.3.4 any (msg: "x"; unknown_kw: 1;)`
	ast := buildAST(t, text)
	keywords := testKeywords()

	// Wildcard, plain literal, variable and option value are all silent.
	for _, target := range []string{"$HOME_NET", "1.2.3.4", "unknown_kw"} {
		_, ok := Get(ast, 0, strings.Index(text, target), keywords)
		assert.False(t, ok, "hover on %q", target)
	}

	// Missing line.
	_, ok := Get(ast, 7, 0, keywords)
	assert.False(t, ok)
}

func TestGet_IPv6CIDR(t *testing.T) {
	t.Parallel()

	text := "alert tcp 2001:db8::/32 any -> any any"
	ast := buildAST(t, text)

	content, ok := Get(ast, 0, strings.Index(text, "2001"), nil)
	require.True(t, ok)
	assert.Contains(t, content.Value, "**2001:db8::/32**")
	assert.Contains(t, content.Value, "2001:db8:ffff:ffff:ffff:ffff:ffff:ffff")
}

func TestGet_InvalidMaskStaysSilent(t *testing.T) {
	t.Parallel()

	text := "alert tcp 10.0.0.0/99 any -> any any"
	ast := buildAST(t, text)

	_, ok := Get(ast, 0, strings.Index(text, "10.0"), nil)
	assert.False(t, ok)
}
