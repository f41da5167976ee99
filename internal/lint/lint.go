// Package lint checks parsed journal documents against a catalog of
// rules and reports violations as diagnostics, some of which carry a
// mechanical fix.
package lint

import (
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sgryjp/journalint/internal/journal"
)

// Options select and adjust the rules to run. The zero value enables
// every rule at its default severity.
type Options struct {
	// Disabled lists rule codes that must not report anything.
	Disabled []string

	// Severities overrides the default severity per rule code.
	Severities map[string]Severity
}

// Codes returns every rule code known to the catalog, sorted.
func Codes() []string {
	codes := make([]string, 0, len(catalog))
	for _, r := range catalog {
		codes = append(codes, r.code)
	}
	sort.Strings(codes)
	return codes
}

// KnownRule reports whether code names a rule in the catalog.
func KnownRule(code string) bool {
	for _, r := range catalog {
		if r.code == code {
			return true
		}
	}
	return false
}

// Lint parses text and runs every enabled rule over the result. source
// is the URI or file path the text was read from; it is used to derive
// the expected date from the file name and is echoed in related
// information locations. The returned document is the parsed AST the
// diagnostics were computed from.
func Lint(source, text string, opts *Options) (*journal.Document, []Diagnostic) {
	doc := journal.Parse(text)
	return doc, LintDocument(source, doc, opts)
}

// LintDocument runs every enabled rule over an already parsed document.
// The diagnostics are ordered by span start, then span end, then rule
// code, so two runs over the same input yield the same slice.
func LintDocument(source string, doc *journal.Document, opts *Options) []Diagnostic {
	l := newLinter(source, doc, opts)
	journal.Walk(doc, l.visit)
	sort.SliceStable(l.diags, func(i, j int) bool {
		a, b := l.diags[i], l.diags[j]
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		if a.Span.End != b.Span.End {
			return a.Span.End < b.Span.End
		}
		return a.Rule < b.Rule
	})
	return l.diags
}

// clockTime is a successfully validated time value together with the
// text it was written as and where.
type clockTime struct {
	minutes int
	raw     string
	span    journal.Span
}

// linter carries the traversal state shared by the rule checks.
type linter struct {
	source     string
	doc        *journal.Document
	dispatch   map[journal.NodeKind][]func(*linter, journal.Node)
	severities map[string]Severity
	diags      []Diagnostic

	// Date found in the file name stem, if any.
	nameDate   journal.Date
	hasNameDate bool

	// Index of the entry being visited, -1 before the first one.
	entryIndex int

	// Validated times of the entry being visited. A nil value means
	// the time was missing or not a valid clock time, in which case
	// the rules comparing times keep quiet about this entry.
	entryStart *clockTime
	entryEnd   *clockTime

	// Whether the current entry ends before it starts.
	entryNegative bool

	// End time of the most recently completed entry.
	prevEnd *clockTime
}

func newLinter(source string, doc *journal.Document, opts *Options) *linter {
	l := &linter{
		source:     source,
		doc:        doc,
		dispatch:   make(map[journal.NodeKind][]func(*linter, journal.Node)),
		severities: make(map[string]Severity),
		entryIndex: -1,
	}
	l.nameDate, l.hasNameDate = dateInName(source)

	disabled := make(map[string]bool)
	if opts != nil {
		for _, code := range opts.Disabled {
			disabled[code] = true
		}
	}
	for _, r := range catalog {
		l.severities[r.code] = SeverityWarning
		if disabled[r.code] {
			continue
		}
		for _, kind := range r.kinds {
			l.dispatch[kind] = append(l.dispatch[kind], r.check)
		}
	}
	if opts != nil {
		for code, severity := range opts.Severities {
			if _, ok := l.severities[code]; ok {
				l.severities[code] = severity
			}
		}
	}
	return l
}

// visit updates the traversal state and then runs the checks
// registered for the node kind. State is maintained unconditionally so
// that disabling one rule does not change what the others see.
func (l *linter) visit(n journal.Node) {
	l.observe(n)
	for _, check := range l.dispatch[n.Kind] {
		check(l, n)
	}
}

func (l *linter) observe(n journal.Node) {
	if n.Kind != journal.KindEntry {
		return
	}
	if !n.Leave {
		l.entryIndex++
		l.entryStart = validTime(&n.Entry.Start)
		l.entryEnd = validTime(&n.Entry.End)
		l.entryNegative = l.entryStart != nil && l.entryEnd != nil &&
			l.entryEnd.minutes < l.entryStart.minutes
		return
	}
	// An entry with a broken end time breaks the chain: the next
	// entry's start is not checked against it.
	l.prevEnd = l.entryEnd
	l.entryStart = nil
	l.entryEnd = nil
	l.entryNegative = false
}

func (l *linter) report(d Diagnostic) {
	d.Severity = l.severities[d.Rule]
	l.diags = append(l.diags, d)
}

// validTime returns the parsed time of f, or nil when the field is
// missing or does not denote a valid clock time.
func validTime(f *journal.TimeField) *clockTime {
	if f == nil {
		return nil
	}
	minutes, err := f.Time.Minutes()
	if err != nil {
		return nil
	}
	return &clockTime{minutes: minutes, raw: f.Time.Raw(), span: f.Span}
}

// dateInName extracts a date written as the stem of the file name in
// source, which may be a URI or a plain file path.
func dateInName(source string) (journal.Date, bool) {
	path := source
	if u, err := url.Parse(source); err == nil && u.Scheme != "" {
		path = u.Path
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	d, err := journal.ParseDate(stem)
	if err != nil {
		return journal.Date{}, false
	}
	return d, true
}
