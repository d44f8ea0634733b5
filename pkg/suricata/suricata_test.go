package suricata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const keywordListing = `This is Suricata version 6.0.0 RELEASE
=====Supported keywords=====
name;description;app layer;features;documentation
sid;set rule ID;;No option;https://suricata.readthedocs.io/en/latest/rules/meta.html#sid-signature-id;
msg;information about the rule and the possible alert;;No option;https://suricata.readthedocs.io/en/latest/rules/meta.html#msg-message;
content;match on payload content;;compatible with decoder;https://suricata.readthedocs.io/en/latest/rules/payload-keywords.html#content;
http.uri;match on the HTTP uri buffer;HTTP;sticky buffer;https://suricata.readthedocs.io/en/latest/rules/http-keywords.html#http-uri;
`

func TestParseKeywordCSV(t *testing.T) {
	t.Parallel()

	keywords, err := ParseKeywordCSV(keywordListing)
	require.NoError(t, err)
	require.Len(t, keywords, 4)

	sid, ok := keywords["sid"]
	require.True(t, ok)
	assert.True(t, sid.NoOption)
	assert.Equal(t, "set rule ID", sid.Record.Description)

	content, ok := keywords["content"]
	require.True(t, ok)
	assert.False(t, content.NoOption)
	assert.Equal(t, "match on payload content", content.Record.Description)

	uri, ok := keywords["http.uri"]
	require.True(t, ok)
	assert.Equal(t, "HTTP", uri.Record.AppLayer)
	assert.Contains(t, uri.Record.Documentation, "http-keywords")
}

func TestParseKeywordCSV_MissingHeader(t *testing.T) {
	t.Parallel()

	_, err := ParseKeywordCSV("no csv in here")
	require.ErrorIs(t, err, ErrNoKeywordHeader)
}

const engineLog = `19/10/2022 -- 20:05:58 - <Info> - Running suricata under test mode
19/10/2022 -- 20:05:58 - <Error> - [ERRCODE: SC_ERR_RULE_KEYWORD_UNKNOWN(102)] - unknown rule keyword 'mgs'.
19/10/2022 -- 20:05:58 - <Error> - [ERRCODE: SC_ERR_INVALID_SIGNATURE(39)] - error parsing signature "alert tcp any any -> any any (mgs: "x";)" at line 3 from file /tmp/check.rules
19/10/2022 -- 20:05:59 - <Error> - [ERRCODE: SC_ERR_INVALID_SIGNATURE(39)] - rule reload complete
`

func TestParseEngineLog(t *testing.T) {
	t.Parallel()

	messages := parseEngineLog(engineLog)
	require.Len(t, messages, 4)

	assert.Equal(t, "Info", messages[0].Level)
	assert.False(t, messages[0].HasCode)

	assert.Equal(t, "Error", messages[1].Level)
	assert.True(t, messages[1].HasCode)
	assert.Equal(t, uint32(102), messages[1].Code)
	assert.Equal(t, "SC_ERR_RULE_KEYWORD_UNKNOWN", messages[1].CodeName)
	assert.Equal(t, "unknown rule keyword 'mgs'.", messages[1].Message)
}

func TestFindingsFromLog(t *testing.T) {
	t.Parallel()

	findings := findingsFromLog(engineLog)
	require.Len(t, findings, 1)

	finding := findings[0]
	assert.Equal(t, uint32(2), finding.Line)
	assert.Equal(t, uint32(102), finding.Code)
	assert.Equal(t, "SC_ERR_RULE_KEYWORD_UNKNOWN", finding.CodeName)
	assert.Equal(t, "unknown rule keyword 'mgs'.", finding.Message)
}

func TestFindingsFromLog_NoLineMarker(t *testing.T) {
	t.Parallel()

	log := `19/10/2022 -- 20:05:58 - <Error> - [ERRCODE: SC_ERR_INVALID_SIGNATURE(39)] - something went wrong
`
	assert.Empty(t, findingsFromLog(log))
}

func TestLineMarker(t *testing.T) {
	t.Parallel()

	line, ok := lineMarker(`error parsing signature "x" at line 12 from file /tmp/a.rules`)
	require.True(t, ok)
	assert.Equal(t, uint32(12), line)

	_, ok = lineMarker("no marker here")
	assert.False(t, ok)
}
