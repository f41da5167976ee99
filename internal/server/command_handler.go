package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/sgryjp/journalint/internal/lint"
	"github.com/sgryjp/journalint/internal/session"
)

// Commands the server executes on behalf of the client. Each one applies
// the precomputed fix of a single rule; the code action offered for a
// diagnostic carries the command matching its rule.
const (
	cmdRecalculateDuration        = "journalint.recalculateDuration"
	cmdReplaceWithPreviousEndTime = "journalint.replaceWithPreviousEndTime"
	cmdUseFirstEntryStartTime     = "journalint.useFirstEntryStartTime"
	cmdUseLastEntryEndTime        = "journalint.useLastEntryEndTime"
)

var commandRules = map[string]string{
	cmdRecalculateDuration:        lint.IncorrectDuration,
	cmdReplaceWithPreviousEndTime: lint.TimeJumped,
	cmdUseFirstEntryStartTime:     lint.StartTimeMismatch,
	cmdUseLastEntryEndTime:        lint.EndTimeMismatch,
}

var ruleCommands = func() map[string]string {
	m := make(map[string]string, len(commandRules))
	for command, rule := range commandRules {
		m[rule] = command
	}
	return m
}()

func commandIDs() []string {
	ids := make([]string, 0, len(commandRules))
	for id := range commandRules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Server) textDocumentCodeAction(
	context *glsp.Context,
	params *protocol.CodeActionParams,
) (any, error) {
	uri := params.TextDocument.URI
	index, err := s.session.LineIndex(uri)
	if err != nil {
		// The document is not open in this session; nothing to offer.
		return nil, nil
	}
	span := spanFromRange(index, params.Range)

	// Editors narrow the request to the diagnostics shown at the cursor.
	var codes []string
	for _, d := range params.Context.Diagnostics {
		if d.Code == nil {
			continue
		}
		if code, ok := d.Code.Value.(string); ok {
			codes = append(codes, code)
		}
	}

	fixes, err := s.session.AvailableFixes(uri, span, codes)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	commands := make([]protocol.Command, 0, len(fixes))
	for _, fix := range fixes {
		command, ok := ruleCommands[fix.Code]
		if !ok {
			continue
		}
		commands = append(commands, protocol.Command{
			Title:     fix.Title,
			Command:   command,
			Arguments: []any{uri, rangeFromSpan(index, fix.Span), fix.Code},
		})
	}
	return commands, nil
}

func (s *Server) workspaceExecuteCommand(
	context *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	rule, ok := commandRules[params.Command]
	if !ok {
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}
	uri, rng, code, err := decodeFixArguments(params.Arguments)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", params.Command, err)
	}
	if code != rule {
		return nil, fmt.Errorf("command %s does not apply fixes for %q", params.Command, code)
	}

	index, err := s.session.LineIndex(uri)
	if err != nil {
		return nil, err
	}
	span := spanFromRange(index, rng)

	fix, index, err := s.session.ExecuteFix(uri, code, span)
	if err != nil {
		return nil, err
	}

	edits := make([]protocol.TextEdit, len(fix.Edits))
	for i, e := range fix.Edits {
		edits[i] = protocol.TextEdit{
			Range:   rangeFromSpan(index, e.Span),
			NewText: e.NewText,
		}
	}

	var result struct {
		Applied       bool    `json:"applied"`
		FailureReason *string `json:"failureReason,omitempty"`
	}
	context.Call("workspace/applyEdit", protocol.ApplyWorkspaceEditParams{
		Label: &fix.Title,
		Edit: protocol.WorkspaceEdit{
			Changes: map[protocol.DocumentUri][]protocol.TextEdit{uri: edits},
		},
	}, &result)
	if !result.Applied {
		reason := "no reason given"
		if result.FailureReason != nil {
			reason = *result.FailureReason
		}
		return nil, fmt.Errorf("client did not apply %q: %s", fix.Title, reason)
	}
	return nil, nil
}

// decodeFixArguments unpacks the [uri, range, code] triple attached to a
// code action. Arguments arrive as plain decoded JSON, so the range takes
// a marshal/unmarshal round-trip.
func decodeFixArguments(arguments []any) (string, protocol.Range, string, error) {
	var rng protocol.Range
	if len(arguments) != 3 {
		return "", rng, "", fmt.Errorf("expected 3 arguments, got %d", len(arguments))
	}
	uri, ok := arguments[0].(string)
	if !ok {
		return "", rng, "", fmt.Errorf("argument 0: expected a document uri, got %T", arguments[0])
	}
	raw, err := json.Marshal(arguments[1])
	if err != nil {
		return "", rng, "", err
	}
	if err := json.Unmarshal(raw, &rng); err != nil {
		return "", rng, "", fmt.Errorf("argument 1: %w", err)
	}
	code, ok := arguments[2].(string)
	if !ok {
		return "", rng, "", fmt.Errorf("argument 2: expected a rule code, got %T", arguments[2])
	}
	return uri, rng, code, nil
}
