package lint

import (
	"fmt"

	"github.com/sgryjp/journalint/internal/journal"
	"github.com/sgryjp/journalint/internal/textedit"
)

// Rule codes. Every diagnostic carries exactly one of these so that
// editors and configuration files can refer to a finding by a stable name.
const (
	ParseError        = "parse-error"
	DateMismatch      = "date-mismatch"
	InvalidStartTime  = "invalid-start-time"
	InvalidEndTime    = "invalid-end-time"
	MissingDate       = "missing-date"
	MissingStartTime  = "missing-start-time"
	MissingEndTime    = "missing-end-time"
	StartTimeMismatch = "starttime-mismatch"
	EndTimeMismatch   = "endtime-mismatch"
	TimeJumped        = "time-jumped"
	NegativeTimeRange = "negative-time-range"
	IncorrectDuration = "incorrect-duration"
)

// Severity of a diagnostic. The numeric values are the ones the
// language server protocol uses.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityHint:
		return "hint"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity converts a configuration value such as "error" into a
// Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "error":
		return SeverityError, nil
	case "warning":
		return SeverityWarning, nil
	case "information":
		return SeverityInformation, nil
	case "hint":
		return SeverityHint, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}

// RelatedInformation points at another location in the same document
// which explains why a diagnostic was reported.
type RelatedInformation struct {
	URI     string
	Span    journal.Span
	Message string
}

// Diagnostic is a single finding reported by a rule.
//
// Fix is non-nil only for rules whose violation can be repaired
// mechanically. The edits are computed against the same text the
// diagnostic was computed from and become stale as soon as that text
// changes.
type Diagnostic struct {
	Span     journal.Span
	Rule     string
	Severity Severity
	Message  string
	Related  []RelatedInformation
	Fix      *textedit.Fix
}
