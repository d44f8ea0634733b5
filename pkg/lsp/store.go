package lsp

import (
	"strings"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Elkozel/Meerkat/pkg/parser"
	"github.com/Elkozel/Meerkat/pkg/rule"
)

// document is the per-URI state: the raw text, its line split, the AST
// rebuilt wholesale on every change, and the two diagnostic sets that
// feed publishDiagnostics.
type document struct {
	text  string
	lines []string
	ast   *rule.AST

	// parseDiags come from the grammar, engineDiags from the external
	// checker. They refresh on different events, so they live apart.
	parseDiags  []protocol.Diagnostic
	engineDiags []protocol.Diagnostic
}

// DocumentStore is a thread-safe store of open documents keyed by URI.
type DocumentStore struct {
	documents map[protocol.DocumentUri]*document
	mu        sync.RWMutex
}

// NewDocumentStore creates a new empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[protocol.DocumentUri]*document),
	}
}

// Set parses text and stores the resulting document state for the URI.
func (ds *DocumentStore) Set(uri protocol.DocumentUri, text string) *document {
	doc := analyze(text)

	ds.mu.Lock()
	defer ds.mu.Unlock()

	if previous, ok := ds.documents[uri]; ok {
		// Engine findings age until the next checker run.
		doc.engineDiags = previous.engineDiags
	}

	ds.documents[uri] = doc

	return doc
}

// Get retrieves document state by URI.
func (ds *DocumentStore) Get(uri protocol.DocumentUri) (*document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	doc, ok := ds.documents[uri]

	return doc, ok
}

// SetEngineDiagnostics replaces the checker findings for the URI.
func (ds *DocumentStore) SetEngineDiagnostics(uri protocol.DocumentUri, diags []protocol.Diagnostic) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if doc, ok := ds.documents[uri]; ok {
		doc.engineDiags = diags
	}
}

// Delete removes document state by URI.
func (ds *DocumentStore) Delete(uri protocol.DocumentUri) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// analyze runs the parser over every line of text and assembles the
// document state. Comment and blank lines bypass the grammar; lines
// that fail to produce a rule contribute diagnostics but no AST entry.
func analyze(text string) *document {
	lines := strings.Split(text, "\n")
	ast := rule.NewAST()

	var diags []protocol.Diagnostic

	for i, line := range lines {
		if parser.IsComment(line) || parser.IsBlank(line) {
			continue
		}

		parsed, lineDiags := parser.ParseRule(line)

		for _, diag := range lineDiags {
			diags = append(diags, parseDiagnostic(uint32(i), line, diag))
		}

		if parsed != nil {
			ast.Rules[uint32(i)] = *parsed
		}
	}

	return &document{
		text:       text,
		lines:      lines,
		ast:        ast,
		parseDiags: diags,
	}
}

// parseDiagnostic maps a parser diagnostic onto the wire type.
func parseDiagnostic(line uint32, lineText string, diag parser.Diagnostic) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := diagnosticSourceParser

	return protocol.Diagnostic{
		Range:    spanRange(line, lineText, diag.Span),
		Severity: &severity,
		Source:   &source,
		Message:  diag.Message,
	}
}

// spanRange converts a rune span within the given line into a wire
// range. Offsets are clamped to the line; a keystroke may have moved
// the text under a stale span.
func spanRange(line uint32, lineText string, span rule.Span) protocol.Range {
	length := len([]rune(lineText))

	start := span.Start
	if start > length {
		start = length
	}

	end := span.End
	if end > length {
		end = length
	}

	return protocol.Range{
		Start: protocol.Position{Line: line, Character: uint32(start)},
		End:   protocol.Position{Line: line, Character: uint32(end)},
	}
}
