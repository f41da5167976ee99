// Package server exposes the linter over the Language Server Protocol.
// One Server serves one editor session on stdio. Every document is linted
// in isolation; the session cache keeps its line index and diagnostics
// between requests so code actions and commands can be answered without
// re-reading the file.
package server

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/sgryjp/journalint/internal/session"
)

const serverName = "journalint"

type Server struct {
	handler    *protocol.Handler
	session    *session.Manager
	version    string
	configPath string
	overlay    any
}

// NewServer wires the protocol handler and returns a server ready to run
// on stdio. configPath, when not empty, pins the configuration file to use
// instead of discovering one upward from each document.
func NewServer(version string, configPath string) (*glspserver.Server, error) {
	ls := &Server{
		session:    session.NewManager(),
		version:    version,
		configPath: configPath,
	}
	ls.handler = &protocol.Handler{
		Initialize:              ls.initialize,
		Initialized:             ls.initialized,
		Shutdown:                ls.shutdown,
		SetTrace:                ls.setTrace,
		TextDocumentDidOpen:     ls.textDocumentDidOpen,
		TextDocumentDidChange:   ls.textDocumentDidChange,
		TextDocumentDidSave:     ls.textDocumentDidSave,
		TextDocumentDidClose:    ls.textDocumentDidClose,
		TextDocumentCodeAction:  ls.textDocumentCodeAction,
		WorkspaceExecuteCommand: ls.workspaceExecuteCommand,
	}

	return glspserver.NewServer(ls.handler, serverName, false), nil
}
