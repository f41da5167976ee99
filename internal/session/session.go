// Package session caches, per open document, the data derived from its
// last lint: the line index and the diagnostics. The text and the AST
// are not retained; a fix request is answered from this cache alone.
package session

import (
	"errors"
	"sync"

	"github.com/sgryjp/journalint/internal/journal"
	"github.com/sgryjp/journalint/internal/linemap"
	"github.com/sgryjp/journalint/internal/lint"
	"github.com/sgryjp/journalint/internal/textedit"
)

// ErrNotFound is returned when a document is not in the cache or a
// diagnostic identity no longer resolves in it, typically because the
// document changed since the client obtained the identity.
var ErrNotFound = errors.New("not found in session cache")

// FixCommand names one applicable fix by the identity of its
// diagnostic. The edits themselves stay in the cache until executed.
type FixCommand struct {
	Title string
	Code  string
	Span  journal.Span
}

type document struct {
	index *linemap.LineIndex
	diags []lint.Diagnostic
}

// Manager holds the per-document session state.
type Manager struct {
	mu   sync.RWMutex
	docs map[string]*document
}

func NewManager() *Manager {
	return &Manager{docs: make(map[string]*document)}
}

// Update lints a full snapshot of the document at uri, replaces its
// cached state and returns the diagnostics for publishing.
func (m *Manager) Update(uri, text string, opts *lint.Options) []lint.Diagnostic {
	_, diags := lint.Lint(uri, text, opts)
	doc := &document{index: linemap.NewLineIndex(text), diags: diags}

	m.mu.Lock()
	m.docs[uri] = doc
	m.mu.Unlock()

	out := make([]lint.Diagnostic, len(diags))
	copy(out, diags)
	return out
}

// Close drops the cached state of the document at uri.
func (m *Manager) Close(uri string) {
	m.mu.Lock()
	delete(m.docs, uri)
	m.mu.Unlock()
}

// AvailableFixes returns a command descriptor for every cached
// diagnostic that owns a fix and intersects span. When codes is not
// empty, only diagnostics with one of the given rule codes qualify.
func (m *Manager) AvailableFixes(uri string, span journal.Span, codes []string) ([]FixCommand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, exists := m.docs[uri]
	if !exists {
		return nil, ErrNotFound
	}

	wanted := make(map[string]bool, len(codes))
	for _, code := range codes {
		wanted[code] = true
	}

	var commands []FixCommand
	for _, d := range doc.diags {
		if d.Fix == nil || !d.Span.Overlaps(span) {
			continue
		}
		if len(wanted) > 0 && !wanted[d.Rule] {
			continue
		}
		commands = append(commands, FixCommand{
			Title: d.Fix.Title,
			Code:  d.Rule,
			Span:  d.Span,
		})
	}
	return commands, nil
}

// ExecuteFix re-resolves a diagnostic by its identity and returns a
// copy of its fix together with the line index the fix's spans refer
// to. The client-supplied identity is never trusted to carry edits;
// only a diagnostic still present in the cache can be executed.
func (m *Manager) ExecuteFix(uri, code string, span journal.Span) (*textedit.Fix, *linemap.LineIndex, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, exists := m.docs[uri]
	if !exists {
		return nil, nil, ErrNotFound
	}

	for _, d := range doc.diags {
		if d.Rule != code || d.Span != span || d.Fix == nil {
			continue
		}
		fix := *d.Fix
		fix.Edits = append([]textedit.TextEdit(nil), d.Fix.Edits...)
		return &fix, doc.index, nil
	}
	return nil, nil, ErrNotFound
}

// LineIndex returns the line index of the last linted snapshot of the
// document at uri.
func (m *Manager) LineIndex(uri string) (*linemap.LineIndex, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, exists := m.docs[uri]
	if !exists {
		return nil, ErrNotFound
	}
	return doc.index, nil
}
