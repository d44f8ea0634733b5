package suricata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Finding is one verification problem reported by the engine, tied to a
// 0-based line of the checked rule text.
type Finding struct {
	Line     uint32
	Code     uint32
	CodeName string
	Message  string
}

// VerifyRules writes the rule text to a scratch file and asks the
// engine to analyze it exclusively. The engine's stderr log is mined
// for error codes and the "at line N from file" markers that tie them
// back to source lines.
func VerifyRules(ctx context.Context, bin, text string) ([]Finding, error) {
	dir, err := os.MkdirTemp("", "meerkat-verify-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}

	defer os.RemoveAll(dir)

	ruleFile := filepath.Join(dir, "check.rules")
	if err := os.WriteFile(ruleFile, []byte(text), 0o600); err != nil {
		return nil, fmt.Errorf("writing rule file: %w", err)
	}

	cmd := exec.CommandContext(ctx, bin, "-S", ruleFile, "-l", dir, "--engine-analysis")

	var stderr strings.Builder

	cmd.Stderr = &stderr

	// The engine exits non-zero when rules fail to load. That is the
	// expected outcome here, so the exit code is ignored and only a
	// failure to start the process is an error.
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running %q: %w", bin, err)
		}
	}

	return findingsFromLog(stderr.String()), nil
}

// findingsFromLog turns engine stderr into findings. The engine logs
// each broken signature's errors first and names the offending line
// afterwards, so the log is walked backwards: a line marker sets the
// context for the error messages above it.
func findingsFromLog(out string) []Finding {
	// The engine occasionally wraps quoted signatures onto a fresh
	// line; rejoining keeps the marker and the message together.
	out = strings.ReplaceAll(out, "\n\"", "\"")

	messages := parseEngineLog(out)

	var findings []Finding

	currentLine := uint32(0)
	haveLine := false

	for i := len(messages) - 1; i >= 0; i-- {
		message := messages[i]
		if !message.HasCode {
			continue
		}

		if line, ok := lineMarker(message.Message); ok {
			currentLine = line
			haveLine = true

			continue
		}

		if !haveLine || currentLine == 0 {
			continue
		}

		findings = append(findings, Finding{
			Line:     currentLine - 1, // engine lines are 1-based
			Code:     message.Code,
			CodeName: message.CodeName,
			Message:  message.Message,
		})
	}

	return findings
}

// lineMarker extracts the line number from messages of the shape
// "... at line N from file ...".
func lineMarker(message string) (uint32, bool) {
	if !strings.Contains(message, "at line ") || !strings.Contains(message, "from file ") {
		return 0, false
	}

	rest := message[strings.LastIndex(message, "at line ")+len("at line "):]

	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}

	line, err := strconv.ParseUint(rest[:end], 10, 32)
	if err != nil {
		return 0, false
	}

	return uint32(line), true
}
