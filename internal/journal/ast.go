// Package journal defines the AST of a journal document and a recovery
// parser producing it. Parsing is total: malformed input degrades into
// Invalid markers or ignored lines, never into a failed parse.
package journal

// Span is a half-open byte range [Start, End) into the source text.
// A zero-length span is valid and denotes an insertion point.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int { return s.End - s.Start }

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool { return s.Start == s.End }

// Contains reports whether the byte at offset lies within the span.
func (s Span) Contains(offset int) bool { return s.Start <= offset && offset < s.End }

// Overlaps reports whether two spans share at least one byte. Empty spans
// overlap a span that contains or touches their position, so an insertion
// point at a cursor still matches a selection placed on it.
func (s Span) Overlaps(o Span) bool {
	if s.Empty() {
		return o.Start <= s.Start && s.Start <= o.End
	}
	if o.Empty() {
		return s.Start <= o.Start && o.Start <= s.End
	}
	return s.Start < o.End && o.Start < s.End
}

// Invalid marks a region the parser recognized but could not turn into a
// value. The lint layer surfaces each marker as a parse-error diagnostic.
type Invalid struct {
	Reason string
	Span   Span
}

// DateField is the front matter date field. Err is set when the written
// text is not a calendar date; Value is meaningful only when Err is nil.
type DateField struct {
	Raw   string
	Value Date
	Span  Span
	Err   error
}

// Valid reports whether the field holds a usable date.
func (f *DateField) Valid() bool { return f != nil && f.Err == nil }

// TimeField is a clock time written in the document, either in the front
// matter or in an entry. Validity of the value is decided by LooseTime.
type TimeField struct {
	Time LooseTime
	Span Span
}

// CodeField is one whitespace-free code token of an entry.
type CodeField struct {
	Value string
	Span  Span
}

// DurationField is the decimal duration literal of an entry, in hours.
// Err is set when the token is missing or not parsable as a float.
type DurationField struct {
	Raw   string
	Hours float64
	Span  Span
	Err   error
}

// Valid reports whether the field holds a usable duration.
func (f *DurationField) Valid() bool { return f.Err == nil }

// ActivityField is the free-text description of an entry. When the first
// whitespace-delimited token ends in ':' it is split out as Prefix
// (without the colon).
type ActivityField struct {
	Value  string
	Prefix string
	Span   Span
}

// FrontMatter is the metadata block delimited by "---" lines. Each field
// is independently absent (nil) or present; present time fields may still
// fail value validation at lint time.
type FrontMatter struct {
	Date  *DateField
	Start *TimeField
	End   *TimeField
	Span  Span
}

// Entry is one time-tracked work record. The start and end fields are
// always present since a line is only classified as an entry when its
// time pair matched structurally; their values may still be invalid.
type Entry struct {
	Start    TimeField
	End      TimeField
	Codes    []CodeField
	Duration DurationField
	Activity ActivityField
	Span     Span
}

// Valid reports whether every field of the entry parsed and validated.
// Entries failing this are partial: they are kept in the AST with the
// broken fields marked.
func (e *Entry) Valid() bool {
	if _, err := e.Start.Time.Minutes(); err != nil {
		return false
	}
	if _, err := e.End.Time.Minutes(); err != nil {
		return false
	}
	return e.Duration.Err == nil
}

// Document is a parsed journal file.
type Document struct {
	FrontMatter  *FrontMatter
	Entries      []*Entry
	IgnoredLines int
	Invalids     []Invalid
	Span         Span
}

// NodeKind identifies what a traversal step points at. Rules register for
// the kinds they examine.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindFrontMatter
	KindFrontMatterDate
	KindFrontMatterStartTime
	KindFrontMatterEndTime
	KindEntry
	KindEntryStartTime
	KindEntryEndTime
	KindEntryCode
	KindEntryDuration
	KindEntryActivity
)

// Node is one step of a document traversal. Exactly the fields matching
// Kind are set; Entry is also set for every Entry* leaf as the owner, and
// FrontMatter for every FrontMatter* leaf.
type Node struct {
	Kind NodeKind
	// Leave marks the closing visit of a container node (Document,
	// FrontMatter, Entry). Leaf nodes are visited once with Leave false.
	Leave bool
	Span  Span

	Document    *Document
	FrontMatter *FrontMatter
	Entry       *Entry
	Date        *DateField
	Time        *TimeField
	Code        *CodeField
	Duration    *DurationField
	Activity    *ActivityField
}

// Walk traverses doc in source order, parents before children. Container
// nodes are visited on enter and again on leave. Front matter fields are
// visited in date, start, end order regardless of their order in source.
func Walk(doc *Document, visit func(Node)) {
	visit(Node{Kind: KindDocument, Span: doc.Span, Document: doc})

	if fm := doc.FrontMatter; fm != nil {
		visit(Node{Kind: KindFrontMatter, Span: fm.Span, FrontMatter: fm})
		if fm.Date != nil {
			visit(Node{Kind: KindFrontMatterDate, Span: fm.Date.Span, FrontMatter: fm, Date: fm.Date})
		}
		if fm.Start != nil {
			visit(Node{Kind: KindFrontMatterStartTime, Span: fm.Start.Span, FrontMatter: fm, Time: fm.Start})
		}
		if fm.End != nil {
			visit(Node{Kind: KindFrontMatterEndTime, Span: fm.End.Span, FrontMatter: fm, Time: fm.End})
		}
		visit(Node{Kind: KindFrontMatter, Leave: true, Span: fm.Span, FrontMatter: fm})
	}

	for _, e := range doc.Entries {
		visit(Node{Kind: KindEntry, Span: e.Span, Entry: e})
		visit(Node{Kind: KindEntryStartTime, Span: e.Start.Span, Entry: e, Time: &e.Start})
		visit(Node{Kind: KindEntryEndTime, Span: e.End.Span, Entry: e, Time: &e.End})
		for i := range e.Codes {
			visit(Node{Kind: KindEntryCode, Span: e.Codes[i].Span, Entry: e, Code: &e.Codes[i]})
		}
		visit(Node{Kind: KindEntryDuration, Span: e.Duration.Span, Entry: e, Duration: &e.Duration})
		visit(Node{Kind: KindEntryActivity, Span: e.Activity.Span, Entry: e, Activity: &e.Activity})
		visit(Node{Kind: KindEntry, Leave: true, Span: e.Span, Entry: e})
	}

	visit(Node{Kind: KindDocument, Leave: true, Span: doc.Span, Document: doc})
}
