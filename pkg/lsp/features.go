package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Elkozel/Meerkat/pkg/completion"
	"github.com/Elkozel/Meerkat/pkg/hover"
	"github.com/Elkozel/Meerkat/pkg/parser"
	"github.com/Elkozel/Meerkat/pkg/reference"
	"github.com/Elkozel/Meerkat/pkg/semtok"
)

func (srv *Server) hover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, ok := srv.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	line := params.Position.Line
	col := int(params.Position.Character)

	content, ok := hover.Get(doc.ast, line, col, srv.keywordDict())
	if !ok {
		return nil, nil
	}

	contentRange := spanRange(line, doc.line(line), content.Span)

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content.Value,
		},
		Range: &contentRange,
	}, nil
}

func (srv *Server) completion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc, ok := srv.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	lineText := doc.line(params.Position.Line)

	items := completion.Query(doc.ast, lineText, int(params.Position.Character), srv.keywordDict())
	if len(items) == 0 {
		return nil, nil
	}

	wireItems := make([]protocol.CompletionItem, 0, len(items))
	for _, item := range items {
		wireItems = append(wireItems, completionItem(item))
	}

	return protocol.CompletionList{IsIncomplete: false, Items: wireItems}, nil
}

func completionItem(item completion.Item) protocol.CompletionItem {
	kind := protocol.CompletionItemKindVariable
	if item.Kind == completion.KindKeyword {
		kind = protocol.CompletionItemKindKeyword
	}

	insertText := item.InsertText
	detail := item.Detail

	return protocol.CompletionItem{
		Label:      item.Label,
		Kind:       &kind,
		Detail:     &detail,
		InsertText: &insertText,
	}
}

func (srv *Server) references(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	doc, ok := srv.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	occurrences, ok := reference.Find(doc.ast, params.Position.Line, int(params.Position.Character), params.Context.IncludeDeclaration)
	if !ok {
		return nil, nil
	}

	locations := make([]protocol.Location, 0, len(occurrences))
	for _, occurrence := range occurrences {
		locations = append(locations, protocol.Location{
			URI:   params.TextDocument.URI,
			Range: spanRange(occurrence.Line, doc.line(occurrence.Line), occurrence.Name.Span),
		})
	}

	return locations, nil
}

// rename rewrites every occurrence of the variable under the cursor.
// Variable spans cover their '$' sigil, so the replacement text has to
// reintroduce it.
func (srv *Server) rename(_ *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	doc, ok := srv.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	occurrences, ok := reference.Find(doc.ast, params.Position.Line, int(params.Position.Character), true)
	if !ok {
		return nil, nil
	}

	edits := make([]protocol.TextEdit, 0, len(occurrences))
	for _, occurrence := range occurrences {
		edits = append(edits, protocol.TextEdit{
			Range:   spanRange(occurrence.Line, doc.line(occurrence.Line), occurrence.Name.Span),
			NewText: "$" + params.NewName,
		})
	}

	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{
			params.TextDocument.URI: edits,
		},
	}, nil
}

func (srv *Server) formatting(_ *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc, ok := srv.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	return formatLines(doc, 0, uint32(len(doc.lines))), nil
}

func (srv *Server) rangeFormatting(_ *glsp.Context, params *protocol.DocumentRangeFormattingParams) ([]protocol.TextEdit, error) {
	doc, ok := srv.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	return formatLines(doc, params.Range.Start.Line, params.Range.End.Line+1), nil
}

// formatLines renders every parsed rule in [from, to) back to canonical
// text and emits an edit for each line whose current text differs.
// Comment lines and unparsable lines are left untouched.
func formatLines(doc *document, from, to uint32) []protocol.TextEdit {
	var edits []protocol.TextEdit

	for _, line := range doc.ast.Lines() {
		if line < from || line >= to {
			continue
		}

		spanned, _ := doc.ast.Rule(line)

		current := doc.line(line)
		formatted := spanned.Value.String()

		if current == formatted {
			continue
		}

		edits = append(edits, protocol.TextEdit{
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: 0},
				End:   protocol.Position{Line: line, Character: uint32(len([]rune(current)))},
			},
			NewText: formatted,
		})
	}

	return edits
}

func (srv *Server) semanticTokensFull(_ *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	doc, ok := srv.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	return &protocol.SemanticTokens{
		Data: encodeTokens(collectDocumentTokens(doc, 0, uint32(len(doc.lines)))),
	}, nil
}

func (srv *Server) semanticTokensRange(_ *glsp.Context, params *protocol.SemanticTokensRangeParams) (any, error) {
	doc, ok := srv.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	return &protocol.SemanticTokens{
		Data: encodeTokens(collectDocumentTokens(doc, params.Range.Start.Line, params.Range.End.Line+1)),
	}, nil
}

// lineToken is a semantic token pinned to its document line. Spans stay
// line-relative; the wire encoding is line-delta based anyway.
type lineToken struct {
	line  uint32
	token semtok.Token
}

func collectDocumentTokens(doc *document, from, to uint32) []lineToken {
	var tokens []lineToken

	for _, line := range doc.ast.Lines() {
		if line < from || line >= to {
			continue
		}

		spanned, _ := doc.ast.Rule(line)

		for _, token := range semtok.Collect(spanned, 0) {
			tokens = append(tokens, lineToken{line: line, token: token})
		}
	}

	return tokens
}

// encodeTokens performs the LSP delta encoding: five integers per
// token, with line and start column relative to the previous token.
func encodeTokens(tokens []lineToken) []protocol.UInteger {
	data := make([]protocol.UInteger, 0, len(tokens)*5)

	prevLine := uint32(0)
	prevStart := uint32(0)

	for _, entry := range tokens {
		start := uint32(entry.token.Span.Start)

		deltaLine := entry.line - prevLine
		deltaStart := start
		if deltaLine == 0 {
			deltaStart = start - prevStart
		}

		data = append(data,
			protocol.UInteger(deltaLine),
			protocol.UInteger(deltaStart),
			protocol.UInteger(entry.token.Span.Len()),
			protocol.UInteger(entry.token.Kind),
			0,
		)

		prevLine = entry.line
		prevStart = start
	}

	return data
}

// line returns the text of the given 0-based line, or "" when the line
// does not exist.
func (d *document) line(number uint32) string {
	if int(number) >= len(d.lines) {
		return ""
	}

	return d.lines[number]
}

// Formattable reports whether the line would change under formatting.
// The CLI uses it to show which lines a format pass would rewrite.
func Formattable(line string) (string, bool) {
	if parser.IsComment(line) || parser.IsBlank(line) {
		return "", false
	}

	parsed, _ := parser.ParseRule(line)
	if parsed == nil {
		return "", false
	}

	formatted := parsed.Value.String()

	return formatted, formatted != line
}
