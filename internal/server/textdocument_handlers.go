package server

import (
	"fmt"
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/sgryjp/journalint/internal/config"
)

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	s.lintAndPublish(context, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	// Full document sync is advertised, so each change event carries a
	// whole snapshot; only the last one matters.
	text := ""
	found := false
	for _, raw := range params.ContentChanges {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text, found = change.Text, true
		case protocol.TextDocumentContentChangeEvent:
			if change.Range != nil {
				return fmt.Errorf("unexpected incremental change event for %s", params.TextDocument.URI)
			}
			text, found = change.Text, true
		default:
			return fmt.Errorf("unexpected change event type %T", raw)
		}
	}
	if !found {
		return nil
	}
	s.lintAndPublish(context, params.TextDocument.URI, text)
	return nil
}

func (s *Server) textDocumentDidSave(
	context *glsp.Context,
	params *protocol.DidSaveTextDocumentParams,
) error {
	if params.Text == nil {
		return nil
	}
	s.lintAndPublish(context, params.TextDocument.URI, *params.Text)
	return nil
}

func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	s.session.Close(params.TextDocument.URI)
	publishDiagnostics(context, params.TextDocument.URI, nil)
	return nil
}

// lintAndPublish refreshes the session cache for uri from a full text
// snapshot and pushes the resulting diagnostics to the client.
func (s *Server) lintAndPublish(context *glsp.Context, uri string, text string) {
	cfg, err := config.Resolve(uriToPath(uri), s.configPath, s.overlay)
	if err != nil {
		// A broken configuration file must not take diagnostics away.
		log.Printf("Config error for %s: %v", uri, err)
		cfg = config.Default()
	}

	diags := s.session.Update(uri, text, cfg.LintOptions())
	index, err := s.session.LineIndex(uri)
	if err != nil {
		return
	}
	publishDiagnostics(context, uri, toProtocolDiagnostics(index, diags))
}

// publishDiagnostics always notifies, the empty list included, so stale
// squiggles disappear after a fix or a close.
func publishDiagnostics(
	context *glsp.Context,
	uri string,
	diagnostics []protocol.Diagnostic,
) {
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	context.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}
