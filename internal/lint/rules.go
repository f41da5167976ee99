package lint

import (
	"fmt"
	"math"

	"github.com/sgryjp/journalint/internal/journal"
	"github.com/sgryjp/journalint/internal/textedit"
)

// durationTolerance is how far, in hours, a written duration may drift
// from the start-end interval before incorrect-duration reports it.
// 0.005 h rounds away differences smaller than the two decimal places
// the duration syntax can express.
const durationTolerance = 0.005

// rule is one catalog entry: a stable code, the node kinds the rule
// examines and the check run at each of them.
type rule struct {
	code  string
	kinds []journal.NodeKind
	check func(*linter, journal.Node)
}

// catalog lists every rule. Checks registered for a container kind run
// on both enter and leave and pick the side they need via Node.Leave.
var catalog = []rule{
	{ParseError, []journal.NodeKind{journal.KindDocument}, (*linter).checkParseErrors},
	{DateMismatch, []journal.NodeKind{journal.KindFrontMatterDate}, (*linter).checkDateMismatch},
	{InvalidStartTime, []journal.NodeKind{journal.KindFrontMatterStartTime, journal.KindEntryStartTime}, (*linter).checkInvalidStartTime},
	{InvalidEndTime, []journal.NodeKind{journal.KindFrontMatterEndTime, journal.KindEntryEndTime}, (*linter).checkInvalidEndTime},
	{MissingDate, []journal.NodeKind{journal.KindFrontMatter, journal.KindDocument}, (*linter).checkMissingDate},
	{MissingStartTime, []journal.NodeKind{journal.KindFrontMatter, journal.KindDocument}, (*linter).checkMissingStartTime},
	{MissingEndTime, []journal.NodeKind{journal.KindFrontMatter, journal.KindDocument}, (*linter).checkMissingEndTime},
	{StartTimeMismatch, []journal.NodeKind{journal.KindEntryStartTime}, (*linter).checkStartTimeMismatch},
	{EndTimeMismatch, []journal.NodeKind{journal.KindDocument}, (*linter).checkEndTimeMismatch},
	{TimeJumped, []journal.NodeKind{journal.KindEntryStartTime}, (*linter).checkTimeJumped},
	{NegativeTimeRange, []journal.NodeKind{journal.KindEntryEndTime}, (*linter).checkNegativeTimeRange},
	{IncorrectDuration, []journal.NodeKind{journal.KindEntryDuration}, (*linter).checkIncorrectDuration},
}

func (l *linter) checkParseErrors(n journal.Node) {
	if n.Leave {
		return
	}
	for _, inv := range l.doc.Invalids {
		l.report(Diagnostic{
			Span:    inv.Span,
			Rule:    ParseError,
			Message: "Parse error: " + inv.Reason,
		})
	}
}

func (l *linter) checkDateMismatch(n journal.Node) {
	if !n.Date.Valid() || !l.hasNameDate {
		return
	}
	if n.Date.Value == l.nameDate {
		return
	}
	l.report(Diagnostic{
		Span: n.Span,
		Rule: DateMismatch,
		Message: fmt.Sprintf(
			"Date is different from the one in the filename: expected to be %s",
			l.nameDate),
	})
}

func (l *linter) checkInvalidStartTime(n journal.Node) {
	if _, err := n.Time.Time.Minutes(); err != nil {
		l.report(Diagnostic{
			Span:    n.Span,
			Rule:    InvalidStartTime,
			Message: fmt.Sprintf("Invalid start time: %v", err),
		})
	}
}

func (l *linter) checkInvalidEndTime(n journal.Node) {
	if _, err := n.Time.Time.Minutes(); err != nil {
		l.report(Diagnostic{
			Span:    n.Span,
			Rule:    InvalidEndTime,
			Message: fmt.Sprintf("Invalid end time: %v", err),
		})
	}
}

func (l *linter) checkMissingDate(n journal.Node) {
	l.checkMissingField(n, l.doc.FrontMatter == nil || l.doc.FrontMatter.Date == nil,
		MissingDate, "Field 'date' is missing")
}

func (l *linter) checkMissingStartTime(n journal.Node) {
	l.checkMissingField(n, l.doc.FrontMatter == nil || l.doc.FrontMatter.Start == nil,
		MissingStartTime, "Field 'start' is missing")
}

func (l *linter) checkMissingEndTime(n journal.Node) {
	l.checkMissingField(n, l.doc.FrontMatter == nil || l.doc.FrontMatter.End == nil,
		MissingEndTime, "Field 'end' is missing")
}

// checkMissingField reports a missing front matter field once per
// document: at the block span when a block exists, at the document
// start when there is no block at all.
func (l *linter) checkMissingField(n journal.Node, missing bool, code, message string) {
	if !n.Leave || !missing {
		return
	}
	span := journal.Span{}
	switch n.Kind {
	case journal.KindFrontMatter:
		span = n.Span
	case journal.KindDocument:
		if l.doc.FrontMatter != nil {
			return
		}
	default:
		return
	}
	l.report(Diagnostic{Span: span, Rule: code, Message: message})
}

func (l *linter) checkStartTimeMismatch(n journal.Node) {
	if l.entryIndex != 0 || l.entryStart == nil {
		return
	}
	fm := l.doc.FrontMatter
	if fm == nil || fm.Start == nil {
		return
	}
	declared, err := fm.Start.Time.Minutes()
	if err != nil || declared == l.entryStart.minutes {
		return
	}
	l.report(Diagnostic{
		Span: fm.Start.Span,
		Rule: StartTimeMismatch,
		Message: fmt.Sprintf(
			"Start time is different from the one of the first entry: expected to be %s.",
			l.entryStart.raw),
		Fix: &textedit.Fix{
			Title: "Replace with the first entry's start time",
			Edits: []textedit.TextEdit{{Span: fm.Start.Span, NewText: l.entryStart.raw}},
		},
	})
}

func (l *linter) checkEndTimeMismatch(n journal.Node) {
	if !n.Leave {
		return
	}
	fm := l.doc.FrontMatter
	if fm == nil || fm.End == nil || l.prevEnd == nil {
		return
	}
	declared, err := fm.End.Time.Minutes()
	if err != nil || declared == l.prevEnd.minutes {
		return
	}
	last := journal.FormatMinutes(l.prevEnd.minutes)
	l.report(Diagnostic{
		Span: fm.End.Span,
		Rule: EndTimeMismatch,
		Message: fmt.Sprintf(
			"End time in the front-matter is different from the one of the last entry: expected to be %s.",
			last),
		Related: []RelatedInformation{{
			URI:     l.source,
			Span:    l.prevEnd.span,
			Message: fmt.Sprintf("The last entry ends with %s.", last),
		}},
		Fix: &textedit.Fix{
			Title: "Replace with the last entry's end time",
			Edits: []textedit.TextEdit{{Span: fm.End.Span, NewText: l.prevEnd.raw}},
		},
	})
}

func (l *linter) checkTimeJumped(n journal.Node) {
	if l.entryIndex == 0 || l.entryStart == nil || l.prevEnd == nil {
		return
	}
	if l.entryStart.minutes == l.prevEnd.minutes {
		return
	}
	prev := journal.FormatMinutes(l.prevEnd.minutes)
	l.report(Diagnostic{
		Span: n.Span,
		Rule: TimeJumped,
		Message: fmt.Sprintf(
			"The start time does not match the previous entry's end time, which is %s",
			prev),
		Related: []RelatedInformation{{
			URI:     l.source,
			Span:    l.prevEnd.span,
			Message: fmt.Sprintf("Previous entry's end time is %s", prev),
		}},
		Fix: &textedit.Fix{
			Title: "Replace with the previous entry's end time",
			Edits: []textedit.TextEdit{{Span: n.Span, NewText: l.prevEnd.raw}},
		},
	})
}

func (l *linter) checkNegativeTimeRange(n journal.Node) {
	if !l.entryNegative {
		return
	}
	l.report(Diagnostic{
		Span: n.Span,
		Rule: NegativeTimeRange,
		Message: fmt.Sprintf(
			"End time is not ahead of start time (%s)",
			journal.FormatMinutes(l.entryStart.minutes)),
	})
}

func (l *linter) checkIncorrectDuration(n journal.Node) {
	if l.entryStart == nil || l.entryEnd == nil || l.entryNegative {
		return
	}
	if n.Duration.Err != nil {
		return
	}
	expected := float64(l.entryEnd.minutes-l.entryStart.minutes) / 60.0
	if math.Abs(n.Duration.Hours-expected) <= durationTolerance {
		return
	}
	text := fmt.Sprintf("%1.2f", expected)
	l.report(Diagnostic{
		Span:    n.Span,
		Rule:    IncorrectDuration,
		Message: "Incorrect duration: expected " + text,
		Fix: &textedit.Fix{
			Title: "Recalculate duration by the interval between start and end time",
			Edits: []textedit.TextEdit{{Span: n.Span, NewText: text}},
		},
	})
}
