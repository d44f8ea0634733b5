// Package suricata shells out to a local Suricata binary for the two
// capabilities the language core cannot provide itself: the keyword
// dictionary and full-engine rule verification.
//
// Both entry points degrade gracefully. A missing binary or a garbled
// output surfaces as an error to the caller, never as a crash, so the
// language features that do not need Suricata keep working without it.
package suricata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoKeywordHeader is returned when the keyword listing does not
// contain the expected CSV header.
var ErrNoKeywordHeader = errors.New("keyword listing misses the csv header")

// keywordHeader is the first line of the CSV block inside the keyword
// listing. Everything before it is engine log noise.
const keywordHeader = "name;description;app layer;features;documentation"

// KeywordRecord is one row of Suricata's keyword listing.
type KeywordRecord struct {
	Name          string
	Description   string
	AppLayer      string
	Features      string
	Documentation string
}

// Keyword wraps a record with the one distinction the editor cares
// about: keywords marked "No option" complete without a value slot.
type Keyword struct {
	Record   KeywordRecord
	NoOption bool
}

// ListKeywords runs the binary with --list-keywords=csv and parses the
// resulting dictionary, keyed by keyword name.
func ListKeywords(ctx context.Context, bin string) (map[string]Keyword, error) {
	out, err := exec.CommandContext(ctx, bin, "--list-keywords=csv").Output()
	if err != nil {
		return nil, fmt.Errorf("listing keywords with %q: %w", bin, err)
	}

	return ParseKeywordCSV(string(out))
}

// ParseKeywordCSV extracts the keyword dictionary from raw keyword
// listing output. The engine prints log lines before the CSV block and
// terminates every record, but not the header, with a stray ';'; both
// quirks are repaired here.
func ParseKeywordCSV(out string) (map[string]Keyword, error) {
	start := strings.Index(out, keywordHeader)
	if start < 0 {
		return nil, ErrNoKeywordHeader
	}

	reader := csv.NewReader(strings.NewReader(out[start:]))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading keyword csv: %w", err)
	}

	keywords := make(map[string]Keyword, len(records))

	for i, fields := range records {
		if i == 0 || len(fields) < 5 {
			continue
		}

		record := KeywordRecord{
			Name:          fields[0],
			Description:   fields[1],
			AppLayer:      fields[2],
			Features:      fields[3],
			Documentation: fields[4],
		}

		keywords[record.Name] = Keyword{
			Record:   record,
			NoOption: strings.HasPrefix(record.Features, "No option"),
		}
	}

	return keywords, nil
}
