package suricata

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// logLinePattern matches one engine log line, e.g.
//
//	19/10/2022 -- 20:05:58 - <Error> - [ERRCODE: SC_ERR_INVALID_SIGNATURE(39)] - error parsing signature ...
//
// The error code block is optional; informational lines omit it.
var logLinePattern = regexp.MustCompile(
	`^(\d{1,2}/\d{1,2}/\d{4} -- \d{1,2}:\d{1,2}:\d{1,2}) - <(\w+)>( - \[ERRCODE: (\w+)\((\d+)\)\])?( - )?(.*)$`,
)

const logTimeLayout = "2/1/2006 -- 15:04:05"

type logMessage struct {
	Timestamp time.Time
	Level     string
	CodeName  string
	Code      uint32
	HasCode   bool
	Message   string
}

// parseEngineLog splits raw engine output into structured log messages.
// Lines that do not look like log lines are dropped; the engine mixes
// banners and progress output into the same stream.
func parseEngineLog(out string) []logMessage {
	var messages []logMessage

	for _, line := range strings.Split(out, "\n") {
		match := logLinePattern.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if match == nil {
			continue
		}

		message := logMessage{
			Level:   match[2],
			Message: match[7],
		}

		if ts, err := time.ParseInLocation(logTimeLayout, match[1], time.Local); err == nil {
			message.Timestamp = ts
		}

		if match[3] != "" {
			code, err := strconv.ParseUint(match[5], 10, 32)
			if err == nil {
				message.HasCode = true
				message.CodeName = match[4]
				message.Code = uint32(code)
			}
		}

		messages = append(messages, message)
	}

	return messages
}
