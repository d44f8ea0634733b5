// Package lsp hosts the Meerkat language server over the Language
// Server Protocol.
//
// The package is a thin translation layer: it keeps the open documents,
// converts wire positions to rune offsets and hands every query to the
// pure providers (hover, completion, reference, semtok). The one piece
// of real logic it owns is the document lifecycle, including the
// asynchronous Suricata verification pass on save.
package lsp

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
	"go.opentelemetry.io/otel/trace"

	"github.com/Elkozel/Meerkat/pkg/config"
	"github.com/Elkozel/Meerkat/pkg/semtok"
	"github.com/Elkozel/Meerkat/pkg/suricata"
	"github.com/Elkozel/Meerkat/pkg/version"
)

const serverName = "meerkat"

const (
	diagnosticSourceParser = "meerkat"
	diagnosticSourceEngine = "suricata"
)

// Server implements the Meerkat language server.
type Server struct {
	store   *DocumentStore
	handler protocol.Handler
	cfg     *config.Config
	logger  *slog.Logger
	tracer  trace.Tracer

	keywordsMu sync.RWMutex
	keywords   map[string]suricata.Keyword
}

// NewServer creates the language server with default handlers.
func NewServer(cfg *config.Config, logger *slog.Logger, tracer trace.Tracer) *Server {
	srv := &Server{
		store:    NewDocumentStore(),
		cfg:      cfg,
		logger:   logger,
		tracer:   tracer,
		keywords: make(map[string]suricata.Keyword),
	}

	srv.handler = protocol.Handler{
		Initialize:                      srv.initialize,
		Initialized:                     srv.initialized,
		Shutdown:                        srv.shutdown,
		SetTrace:                        srv.setTrace,
		TextDocumentDidOpen:             srv.didOpen,
		TextDocumentDidChange:           srv.didChange,
		TextDocumentDidSave:             srv.didSave,
		TextDocumentDidClose:            srv.didClose,
		TextDocumentCompletion:          srv.completion,
		TextDocumentHover:               srv.hover,
		TextDocumentReferences:          srv.references,
		TextDocumentRename:              srv.rename,
		TextDocumentFormatting:          srv.formatting,
		TextDocumentRangeFormatting:     srv.rangeFormatting,
		TextDocumentSemanticTokensFull:  srv.semanticTokensFull,
		TextDocumentSemanticTokensRange: srv.semanticTokensRange,
	}

	return srv
}

// Run starts the LSP server on stdio. Logs go to stderr; stdout is the
// protocol channel.
func (srv *Server) Run() error {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	return lspServer.RunStdio()
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &syncKind

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"$", "(", ";"},
	}

	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: protocol.SemanticTokensLegend{
			TokenTypes:     semtok.Legend,
			TokenModifiers: []string{},
		},
		Full:  true,
		Range: true,
	}

	serverVersion := version.Version

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &serverVersion,
		},
	}, nil
}

// initialized kicks off the keyword dictionary load. Hover and
// completion work with an empty dictionary until it lands, so a
// missing Suricata costs features, never the server.
func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	if !srv.cfg.Suricata.Enabled {
		return nil
	}

	go srv.loadKeywords()

	return nil
}

func (srv *Server) loadKeywords() {
	ctx, cancel := context.WithTimeout(context.Background(), srv.cfg.Suricata.Timeout)
	defer cancel()

	ctx, span := srv.tracer.Start(ctx, "suricata.list_keywords")
	defer span.End()

	keywords, err := suricata.ListKeywords(ctx, srv.cfg.Suricata.Binary)
	if err != nil {
		srv.logger.WarnContext(ctx, "keyword dictionary unavailable", "error", err)

		return
	}

	srv.keywordsMu.Lock()
	srv.keywords = keywords
	srv.keywordsMu.Unlock()

	srv.logger.InfoContext(ctx, "keyword dictionary loaded", "keywords", len(keywords))
}

func (srv *Server) keywordDict() map[string]suricata.Keyword {
	srv.keywordsMu.RLock()
	defer srv.keywordsMu.RUnlock()

	return srv.keywords
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv.store.Set(params.TextDocument.URI, params.TextDocument.Text)
	srv.publishDiagnostics(ctx, params.TextDocument.URI)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	for _, change := range params.ContentChanges {
		switch event := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			srv.store.Set(uri, event.Text)
		case protocol.TextDocumentContentChangeEvent:
			// Sync is negotiated as full, so the event carries the
			// whole document regardless of the range field.
			srv.store.Set(uri, event.Text)
		}
	}

	srv.publishDiagnostics(ctx, uri)

	return nil
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI

	doc, ok := srv.store.Get(uri)
	if !ok {
		return nil
	}

	if srv.cfg.Suricata.Enabled {
		go srv.verify(ctx, uri, doc.text)
	}

	srv.publishDiagnostics(ctx, uri)

	return nil
}

func (srv *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv.store.Delete(params.TextDocument.URI)

	return nil
}

// verify runs the external checker over the saved text and republishes
// diagnostics with the findings merged in.
func (srv *Server) verify(glspCtx *glsp.Context, uri protocol.DocumentUri, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), srv.cfg.Suricata.Timeout)
	defer cancel()

	ctx, span := srv.tracer.Start(ctx, "suricata.verify_rules")
	defer span.End()

	findings, err := suricata.VerifyRules(ctx, srv.cfg.Suricata.Binary, text)
	if err != nil {
		srv.logger.WarnContext(ctx, "rule verification failed", "error", err)

		return
	}

	doc, ok := srv.store.Get(uri)
	if !ok {
		return
	}

	diags := make([]protocol.Diagnostic, 0, len(findings))
	for _, finding := range findings {
		diags = append(diags, engineDiagnostic(doc, finding))
	}

	srv.store.SetEngineDiagnostics(uri, diags)
	srv.publishDiagnostics(glspCtx, uri)
}

// engineDiagnostic maps a checker finding onto the wire type. The
// engine only names a line, so the squiggle covers all of it.
func engineDiagnostic(doc *document, finding suricata.Finding) protocol.Diagnostic {
	length := uint32(0)
	if int(finding.Line) < len(doc.lines) {
		length = uint32(len([]rune(doc.lines[finding.Line])))
	}

	severity := protocol.DiagnosticSeverityError
	source := diagnosticSourceEngine
	message := finding.Message

	if finding.CodeName != "" {
		message = finding.CodeName + ": " + message
	}

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: finding.Line, Character: 0},
			End:   protocol.Position{Line: finding.Line, Character: length},
		},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

func (srv *Server) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri) {
	doc, ok := srv.store.Get(uri)
	if !ok {
		return
	}

	diagnostics := make([]protocol.Diagnostic, 0, len(doc.parseDiags)+len(doc.engineDiags))
	diagnostics = append(diagnostics, doc.parseDiags...)
	diagnostics = append(diagnostics, doc.engineDiags...)

	ctx.Notify("textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}
