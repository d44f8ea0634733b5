package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elkozel/Meerkat/pkg/rule"
)

func TestParseRule_Full(t *testing.T) {
	t.Parallel()

	text := `alert tcp $HOME_NET any -> $EXTERNAL_NET [80,443] (msg: "test rule"; sid: 1; rev: 2;)`

	parsed, diags := ParseRule(text)
	require.NotNil(t, parsed)
	assert.Empty(t, diags)

	r := parsed.Value

	require.NotNil(t, r.Action)
	assert.Equal(t, rule.ActionAlert, r.Action.Value)

	require.NotNil(t, r.Protocol())
	assert.Equal(t, "tcp", r.Protocol().Value)

	require.NotNil(t, r.Source())
	source, ok := r.Source().Value.(rule.AddressVariable)
	require.True(t, ok)
	assert.Equal(t, "HOME_NET", source.Name.Value)

	require.NotNil(t, r.Direction())
	assert.Equal(t, rule.DirectionSrcToDst, r.Direction().Value.Kind)

	require.NotNil(t, r.DestinationPort())
	group, ok := r.DestinationPort().Value.(rule.PortGroup)
	require.True(t, ok)
	assert.Len(t, group.Members, 2)

	require.Len(t, r.Options, 3)

	msg, ok := r.Options[0].Value.(rule.KeywordPair)
	require.True(t, ok)
	assert.Equal(t, "msg", msg.Keyword.Value)
	require.Len(t, msg.Values, 1)

	value, ok := msg.Values[0].Value.(rule.StringValue)
	require.True(t, ok)
	assert.Equal(t, "test rule", value.Text.Value)
}

func TestParseRule_RoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`alert tcp $HOME_NET any -> $EXTERNAL_NET any (msg: "probe"; sid: 1;)`,
		`drop udp 10.0.0.0/8 !53 <> any 1024: ()`,
		`pass ip [1.1.1.1, ![10.0.0.1, $DNS_SERVERS], 192.168.0.0/16] any -> any :1024`,
		`alert http any any -> any [80, 8080, !8081] (http.uri; content: "/admin"; nocase;)`,
		`reject tls 2001:db8::1 any <- $HOME_NET any (msg: "say \"hi\"\; done"; sid: 3;)`,
		`alert tcp`,
		`alert tcp any any -> any any`,
	}

	for _, input := range inputs {
		parsed, _ := ParseRule(input)
		require.NotNil(t, parsed, "input %q", input)

		rendered := parsed.Value.String()

		reparsed, _ := ParseRule(rendered)
		require.NotNil(t, reparsed, "rendered %q", rendered)

		assert.True(t, parsed.Value.Equal(reparsed.Value), "round-trip of %q via %q", input, rendered)
		assert.Equal(t, rendered, reparsed.Value.String())
	}
}

func TestParseRule_PartialLine(t *testing.T) {
	t.Parallel()

	parsed, diags := ParseRule("alert tcp $HOME_NET")
	require.NotNil(t, parsed)
	assert.Empty(t, diags)

	r := parsed.Value

	require.NotNil(t, r.Action)
	require.NotNil(t, r.Protocol())
	require.NotNil(t, r.Source())
	assert.Nil(t, r.SourcePort())
	assert.Nil(t, r.Direction())
	assert.False(t, r.HasOptions())
}

func TestParseRule_UnknownAction(t *testing.T) {
	t.Parallel()

	parsed, _ := ParseRule("alort tcp any any -> any any")
	require.NotNil(t, parsed)

	require.NotNil(t, parsed.Value.Action)
	assert.False(t, parsed.Value.Action.Value.Known())
	assert.Equal(t, "alort", parsed.Value.Action.Value.String())
}

func TestParseRule_TrailingGarbage(t *testing.T) {
	t.Parallel()

	parsed, diags := ParseRule("alert tcp any any -> any any ???")
	assert.Nil(t, parsed)
	require.NotEmpty(t, diags)
	assert.Equal(t, "unexpected trailing characters", diags[0].Message)
}

func TestParseRule_BarePortColon(t *testing.T) {
	t.Parallel()

	parsed, diags := ParseRule("alert tcp any : -> any any")
	assert.Nil(t, parsed)

	var found bool

	for _, d := range diags {
		if d.Message == `port range cannot be ":"` {
			found = true
		}
	}

	assert.True(t, found)
}

func TestParseRule_ClampsOutOfRangeNumbers(t *testing.T) {
	t.Parallel()

	parsed, diags := ParseRule("alert tcp 300.0.0.1 70000 -> any any")
	require.NotNil(t, parsed)
	require.Len(t, diags, 2)

	assert.Equal(t, "every octet of an IP address must be at most 255", diags[0].Message)
	assert.Equal(t, rule.NewSpan(10, 13), diags[0].Span)
	assert.Equal(t, "port numbers must be at most 65535", diags[1].Message)

	source, ok := parsed.Value.Source().Value.(rule.IPAddress)
	require.True(t, ok)
	assert.Equal(t, "255.0.0.1", source.Addr.Value.String())

	port, ok := parsed.Value.SourcePort().Value.(rule.Port)
	require.True(t, ok)
	assert.Equal(t, uint16(65535), port.Number.Value)
}

func TestParseRule_CIDRMaskClamped(t *testing.T) {
	t.Parallel()

	parsed, diags := ParseRule("alert tcp 10.0.0.0/999 any -> any any")
	require.NotNil(t, parsed)
	require.NotEmpty(t, diags)
	assert.Equal(t, "CIDR mask must be at most 255", diags[0].Message)

	cidr, ok := parsed.Value.Source().Value.(rule.CIDRAddress)
	require.True(t, ok)
	assert.Equal(t, uint8(255), cidr.Mask.Value)
}

func TestParseRule_VariableSpansIncludeSigil(t *testing.T) {
	t.Parallel()

	text := "alert tcp $HOME_NET any -> any any"

	parsed, _ := ParseRule(text)
	require.NotNil(t, parsed)

	variable, ok := parsed.Value.Header.Value.VariableAt(10)
	require.True(t, ok)
	assert.Equal(t, "HOME_NET", variable.Value)
	assert.Equal(t, rule.NewSpan(10, 19), variable.Span)

	// The span end is exclusive: the character after the variable misses.
	_, ok = parsed.Value.Header.Value.VariableAt(19)
	assert.False(t, ok)
}

func TestParseRule_NestedGroupVariables(t *testing.T) {
	t.Parallel()

	text := "alert tcp [$A, ![1.1.1.1, $B], 10.0.0.0/8] any -> $C any"

	parsed, _ := ParseRule(text)
	require.NotNil(t, parsed)

	variables := parsed.Value.Header.Value.AddressVariablesIn("", nil)
	require.Len(t, variables, 3)
	assert.Equal(t, "A", variables[0].Value)
	assert.Equal(t, "B", variables[1].Value)
	assert.Equal(t, "C", variables[2].Value)
}

func TestParseRule_UnrecognizedDirectionPreserved(t *testing.T) {
	t.Parallel()

	parsed, _ := ParseRule("alert tcp any any <<-> any any")
	require.NotNil(t, parsed)

	require.NotNil(t, parsed.Value.Direction())
	direction := parsed.Value.Direction().Value
	assert.Equal(t, rule.DirectionUnrecognized, direction.Kind)
	assert.Equal(t, "<<->", direction.String())
}

func TestParseRule_OptionWithoutTerminatorFails(t *testing.T) {
	t.Parallel()

	// A bare value runs through ')', so the list never closes.
	parsed, _ := ParseRule("alert tcp any any -> any any (sid:1)")
	assert.Nil(t, parsed)
}

func TestParseRule_EmptyOptionList(t *testing.T) {
	t.Parallel()

	parsed, diags := ParseRule("alert tcp any any -> any any ()")
	require.NotNil(t, parsed)
	assert.Empty(t, diags)
	assert.True(t, parsed.Value.HasOptions())
	assert.Empty(t, parsed.Value.Options)
}

func TestParseRule_BufferOption(t *testing.T) {
	t.Parallel()

	parsed, _ := ParseRule(`alert http any any -> any any (http.uri; content: "/x";)`)
	require.NotNil(t, parsed)
	require.Len(t, parsed.Value.Options, 2)

	buffer, ok := parsed.Value.Options[0].Value.(rule.Buffer)
	require.True(t, ok)
	assert.Equal(t, "http.uri", buffer.Keyword.Value)
}

func TestParseRule_EmptyOptionValue(t *testing.T) {
	t.Parallel()

	parsed, _ := ParseRule("alert tcp any any -> any any (msg:;)")
	require.NotNil(t, parsed)
	require.Len(t, parsed.Value.Options, 1)

	pair, ok := parsed.Value.Options[0].Value.(rule.KeywordPair)
	require.True(t, ok)
	require.Len(t, pair.Values, 1)
	assert.Equal(t, "", pair.Values[0].Value.String())
}

func TestParseRule_StringEscapes(t *testing.T) {
	t.Parallel()

	parsed, _ := ParseRule(`alert tcp any any -> any any (msg: "a \"b\"\; c\\d";)`)
	require.NotNil(t, parsed)

	pair, ok := parsed.Value.Options[0].Value.(rule.KeywordPair)
	require.True(t, ok)

	value, ok := pair.Values[0].Value.(rule.StringValue)
	require.True(t, ok)
	assert.Equal(t, `a "b"; c\d`, value.Text.Value)
	assert.Equal(t, `"a \"b\"\; c\\d"`, value.String())
}

func TestParseRule_PaddedValueSeparators(t *testing.T) {
	t.Parallel()

	parsed, diags := ParseRule(`alert tcp any any -> any any (content: "a" , "b" ;)`)
	require.NotNil(t, parsed)
	assert.Empty(t, diags)

	pair, ok := parsed.Value.Options[0].Value.(rule.KeywordPair)
	require.True(t, ok)
	require.Len(t, pair.Values, 2)
	assert.Equal(t, `"a"`, pair.Values[0].Value.String())
	assert.Equal(t, `"b"`, pair.Values[1].Value.String())

	// The option span ends at the last value, not at the skipped space.
	assert.Equal(t, len(`alert tcp any any -> any any (content: "a" , "b"`), parsed.Value.Options[0].Span.End)
}

func TestParseRule_UnterminatedString(t *testing.T) {
	t.Parallel()

	parsed, diags := ParseRule(`alert tcp any any -> any any (msg: "broken`)
	assert.Nil(t, parsed)
	require.NotEmpty(t, diags)
	assert.Equal(t, "unterminated string value", diags[0].Message)
}

func TestParseRule_SpanCoverage(t *testing.T) {
	t.Parallel()

	text := `alert tcp $HOME_NET any -> any any (sid: 1;)`

	parsed, _ := ParseRule(text)
	require.NotNil(t, parsed)

	assert.Equal(t, rule.NewSpan(0, len(text)), parsed.Span)

	header := parsed.Value.Header
	assert.GreaterOrEqual(t, header.Span.Start, parsed.Span.Start)
	assert.LessOrEqual(t, header.Span.End, parsed.Span.End)

	for _, option := range parsed.Value.Options {
		assert.True(t, option.Span.Start >= header.Span.End)
		assert.True(t, option.Span.End <= parsed.Span.End)
	}
}

func TestIsComment(t *testing.T) {
	t.Parallel()

	assert.True(t, IsComment("# a comment"))
	assert.True(t, IsComment("   # indented"))
	assert.False(t, IsComment("alert tcp any any -> any any"))
}

func TestIsBlank(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank("   \t"))
	assert.False(t, IsBlank(" x "))
}
