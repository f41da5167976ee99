package journal

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse turns text into a Document. It never fails: body lines that do
// not look like entries are ignored, malformed regions become Invalid
// markers, and entries with broken fields are kept as partial entries.
func Parse(text string) *Document {
	p := &parser{
		text: text,
		doc:  &Document{Span: Span{Start: 0, End: len(text)}},
	}
	p.parseFrontMatter()
	for {
		ln, ok := p.nextLine()
		if !ok {
			break
		}
		if e := p.parseEntry(ln); e != nil {
			p.doc.Entries = append(p.doc.Entries, e)
		} else {
			p.doc.IgnoredLines++
		}
	}
	return p.doc
}

type parser struct {
	text string
	doc  *Document
	off  int
}

// line is one physical line. content excludes the trailing CR/LF; full
// includes the newline when present.
type line struct {
	content Span
	full    Span
}

func (p *parser) nextLine() (line, bool) {
	if p.off >= len(p.text) {
		return line{}, false
	}
	start := p.off
	contentEnd := len(p.text)
	fullEnd := len(p.text)
	if i := strings.IndexByte(p.text[start:], '\n'); i >= 0 {
		contentEnd = start + i
		fullEnd = start + i + 1
	}
	if contentEnd > start && p.text[contentEnd-1] == '\r' {
		contentEnd--
	}
	p.off = fullEnd
	return line{content: Span{Start: start, End: contentEnd}, full: Span{Start: start, End: fullEnd}}, true
}

func (p *parser) lineText(ln line) string {
	return p.text[ln.content.Start:ln.content.End]
}

func (p *parser) invalid(reason string, span Span) {
	p.doc.Invalids = append(p.doc.Invalids, Invalid{Reason: reason, Span: span})
}

// isDelimiter reports whether a line consists of three or more dashes and
// nothing else.
func isDelimiter(text string) bool {
	if len(text) < 3 {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] != '-' {
			return false
		}
	}
	return true
}

// parseFrontMatter consumes the front matter block when the document
// starts with a delimiter line. A block without a closing delimiter
// extends to the end of the text and records an Invalid marker on the
// opening delimiter.
func (p *parser) parseFrontMatter() {
	save := p.off
	open, ok := p.nextLine()
	if !ok || !isDelimiter(p.lineText(open)) {
		p.off = save
		return
	}

	fm := &FrontMatter{}
	end := open.full.End
	closed := false
	for {
		ln, ok := p.nextLine()
		if !ok {
			break
		}
		end = ln.full.End
		text := p.lineText(ln)
		if isDelimiter(text) {
			closed = true
			break
		}
		p.parseField(fm, ln, text)
	}
	fm.Span = Span{Start: open.full.Start, End: end}
	p.doc.FrontMatter = fm
	if !closed {
		p.invalid("front matter block is never closed", open.content)
	}
}

// fieldValue matches `key [ws] ':' [ws] value` and returns the value text
// with its offset within the line.
func fieldValue(text, key string) (string, int, bool) {
	if !strings.HasPrefix(text, key) {
		return "", 0, false
	}
	i := len(key)
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	if i >= len(text) || text[i] != ':' {
		return "", 0, false
	}
	i++
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	return strings.TrimRight(text[i:], " \t"), i, true
}

// parseField recognizes one front matter line. Blank lines are allowed;
// anything else that is not a known field becomes a stray marker. When a
// field occurs twice the later one wins.
func (p *parser) parseField(fm *FrontMatter, ln line, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	for _, key := range []string{"date", "start", "end"} {
		value, vo, ok := fieldValue(text, key)
		if !ok {
			continue
		}
		span := Span{Start: ln.content.Start + vo, End: ln.content.Start + vo + len(value)}
		switch key {
		case "date":
			f := &DateField{Raw: value, Span: span}
			f.Value, f.Err = ParseDate(value)
			if f.Err != nil {
				p.invalid(fmt.Sprintf("unrecognizable date: %v: %s", f.Err, value), span)
			}
			fm.Date = f
		case "start":
			fm.Start = &TimeField{Time: NewLooseTime(value), Span: span}
		case "end":
			fm.End = &TimeField{Time: NewLooseTime(value), Span: span}
		}
		return
	}
	p.invalid("unrecognizable front matter line", ln.content)
}

// timePair holds the offsets, within a line, of a structurally matched
// `H+:M+-H+:M+` token after the bullet.
type timePair struct {
	startLo, startHi int
	endLo, endHi     int
	after            int
}

// matchTimePair is the structural gate deciding whether a body line is an
// entry: a dash bullet, optional blanks, the time pair with no blanks
// around its inner dash, then a blank or the end of the line. Values are
// not range-checked here.
func matchTimePair(text string) (timePair, bool) {
	var g timePair
	i := 0
	if i >= len(text) || text[i] != '-' {
		return g, false
	}
	i++
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	digits := func() bool {
		n := 0
		for i < len(text) && '0' <= text[i] && text[i] <= '9' {
			i++
			n++
		}
		return n > 0
	}
	g.startLo = i
	if !digits() {
		return g, false
	}
	if i >= len(text) || text[i] != ':' {
		return g, false
	}
	i++
	if !digits() {
		return g, false
	}
	g.startHi = i
	if i >= len(text) || text[i] != '-' {
		return g, false
	}
	i++
	g.endLo = i
	if !digits() {
		return g, false
	}
	if i >= len(text) || text[i] != ':' {
		return g, false
	}
	i++
	if !digits() {
		return g, false
	}
	g.endHi = i
	if i < len(text) && text[i] != ' ' && text[i] != '\t' {
		return g, false
	}
	g.after = i
	return g, true
}

// parseEntry classifies one body line. It returns nil for lines that do
// not pass the structural gate; a line that passes always yields an
// entry, possibly partial.
func (p *parser) parseEntry(ln line) *Entry {
	text := p.lineText(ln)
	base := ln.content.Start

	g, ok := matchTimePair(text)
	if !ok {
		return nil
	}
	e := &Entry{
		Span: ln.content,
		Start: TimeField{
			Time: NewLooseTime(text[g.startLo:g.startHi]),
			Span: Span{Start: base + g.startLo, End: base + g.startHi},
		},
		End: TimeField{
			Time: NewLooseTime(text[g.endLo:g.endHi]),
			Span: Span{Start: base + g.endLo, End: base + g.endHi},
		},
	}

	i := g.after
	skipBlanks := func() {
		for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
			i++
		}
	}
	token := func() (int, int) {
		lo := i
		for i < len(text) && text[i] != ' ' && text[i] != '\t' {
			i++
		}
		return lo, i
	}

	skipBlanks()
	for n := 0; n < 2 && i < len(text); n++ {
		lo, hi := token()
		e.Codes = append(e.Codes, CodeField{
			Value: text[lo:hi],
			Span:  Span{Start: base + lo, End: base + hi},
		})
		skipBlanks()
	}

	dlo, dhi := token()
	e.Duration = DurationField{Raw: text[dlo:dhi], Span: Span{Start: base + dlo, End: base + dhi}}
	if v, err := strconv.ParseFloat(e.Duration.Raw, 64); err == nil {
		e.Duration.Hours = v
	} else {
		e.Duration.Err = err
		p.invalid(fmt.Sprintf("unrecognizable duration: %v", err), e.Duration.Span)
	}
	skipBlanks()

	e.Activity = ActivityField{Value: text[i:], Span: Span{Start: base + i, End: base + len(text)}}
	tok := e.Activity.Value
	if j := strings.IndexAny(tok, " \t"); j >= 0 {
		tok = tok[:j]
	}
	if strings.HasSuffix(tok, ":") && len(tok) > 1 {
		e.Activity.Prefix = strings.TrimSuffix(tok, ":")
	}
	return e
}
