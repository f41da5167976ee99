package server

import (
	"net/url"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/sgryjp/journalint/internal/journal"
	"github.com/sgryjp/journalint/internal/linemap"
	"github.com/sgryjp/journalint/internal/lint"
)

// uriToPath converts a file URI to a filesystem path. Values that do not
// look like file URIs pass through unchanged, so configuration discovery
// can still walk upward from a plain path.
func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return u.Path
}

func rangeFromSpan(index *linemap.LineIndex, span journal.Span) protocol.Range {
	start := index.PositionFromOffset(span.Start)
	end := index.PositionFromOffset(span.End)
	return protocol.Range{
		Start: protocol.Position{
			Line:      protocol.UInteger(start.Line),
			Character: protocol.UInteger(start.Character),
		},
		End: protocol.Position{
			Line:      protocol.UInteger(end.Line),
			Character: protocol.UInteger(end.Character),
		},
	}
}

func spanFromRange(index *linemap.LineIndex, rng protocol.Range) journal.Span {
	return journal.Span{
		Start: index.OffsetFromPosition(linemap.Position{
			Line:      int(rng.Start.Line),
			Character: int(rng.Start.Character),
		}),
		End: index.OffsetFromPosition(linemap.Position{
			Line:      int(rng.End.Line),
			Character: int(rng.End.Character),
		}),
	}
}

func toProtocolDiagnostics(index *linemap.LineIndex, diags []lint.Diagnostic) []protocol.Diagnostic {
	converted := make([]protocol.Diagnostic, len(diags))
	for i, d := range diags {
		converted[i] = toProtocolDiagnostic(index, d)
	}
	return converted
}

func toProtocolDiagnostic(index *linemap.LineIndex, d lint.Diagnostic) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverity(d.Severity)
	code := protocol.IntegerOrString{Value: d.Rule}
	source := serverName

	diagnostic := protocol.Diagnostic{
		Range:    rangeFromSpan(index, d.Span),
		Severity: &severity,
		Code:     &code,
		Source:   &source,
		Message:  d.Message,
	}
	for _, related := range d.Related {
		diagnostic.RelatedInformation = append(diagnostic.RelatedInformation,
			protocol.DiagnosticRelatedInformation{
				Location: protocol.Location{
					URI:   related.URI,
					Range: rangeFromSpan(index, related.Span),
				},
				Message: related.Message,
			})
	}
	return diagnostic
}
