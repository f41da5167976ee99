// Package report renders diagnostics for terminal output, either as
// one-line messages or as annotated source excerpts.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/sgryjp/journalint/internal/linemap"
	"github.com/sgryjp/journalint/internal/lint"
)

// Format selects how diagnostics are rendered.
type Format string

const (
	// Fancy renders an annotated source excerpt per diagnostic.
	Fancy Format = "fancy"
	// Oneline renders one "file:line:col: code message" line each.
	Oneline Format = "oneline"
)

// ParseFormat converts a command line value into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case Fancy, Oneline:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown report format %q (expected oneline or fancy)", s)
	}
}

var (
	fileColor   = color.New(color.FgWhite, color.Bold)
	colonColor  = color.New(color.FgCyan)
	codeColor   = color.New(color.FgRed)
	caretColor  = color.New(color.FgRed, color.Bold)
	gutterColor = color.New(color.FgBlue)
)

func severityColor(s lint.Severity) *color.Color {
	switch s {
	case lint.SeverityError:
		return color.New(color.FgRed, color.Bold)
	case lint.SeverityWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan, color.Bold)
	}
}

// Write renders one diagnostic. src must be the snapshot the diagnostic
// was computed from.
func Write(w io.Writer, format Format, filename string, src *linemap.SourceText, d lint.Diagnostic) error {
	if format == Oneline {
		return oneline(w, filename, src.Index(), d)
	}
	return fancy(w, filename, src, d)
}

func oneline(w io.Writer, filename string, index *linemap.LineIndex, d lint.Diagnostic) error {
	pos := index.PositionFromOffset(d.Span.Start)
	colon := colonColor.Sprint(":")
	_, err := fmt.Fprintf(w, "%s%s%d%s%d%s %s %s\n",
		fileColor.Sprint(filename), colon,
		pos.Line+1, colon,
		pos.Character+1, colon,
		codeColor.Sprint(d.Rule),
		d.Message)
	return err
}

func fancy(w io.Writer, filename string, src *linemap.SourceText, d lint.Diagnostic) error {
	index := src.Index()
	pos := index.PositionFromOffset(d.Span.Start)
	text := lineAt(src, pos.Line)

	// A span reaching past its first line is underlined on that line
	// only.
	carets := d.Span.Len()
	if rest := len(text) - pos.Character; carets > rest {
		carets = rest
	}
	if carets < 1 {
		carets = 1
	}

	num := fmt.Sprintf("%d", pos.Line+1)
	pad := strings.Repeat(" ", len(num))
	bar := gutterColor.Sprint("|")

	heading := severityColor(d.Severity).Sprintf("%s[%s]", d.Severity, d.Rule)
	if _, err := fmt.Fprintf(w, "%s: %s\n", heading, d.Message); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%s %s:%d:%d\n",
		pad, gutterColor.Sprint("-->"), filename, pos.Line+1, pos.Character+1); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s %s\n", pad, bar); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s %s %s\n", gutterColor.Sprint(num), bar, text); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s %s %s%s %s\n",
		pad, bar,
		strings.Repeat(" ", pos.Character),
		caretColor.Sprint(strings.Repeat("^", carets)),
		d.Message); err != nil {
		return err
	}
	for _, rel := range d.Related {
		relPos := index.PositionFromOffset(rel.Span.Start)
		if _, err := fmt.Fprintf(w, "%s %s note: %s (%s:%d:%d)\n",
			pad, gutterColor.Sprint("="),
			rel.Message, filename, relPos.Line+1, relPos.Character+1); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// lineAt returns the text of the given line without its line break.
func lineAt(src *linemap.SourceText, line int) string {
	content := src.Text()
	start := src.Index().OffsetFromPosition(linemap.Position{Line: line})
	end := src.Index().OffsetFromPosition(linemap.Position{Line: line, Character: len(content)})
	return strings.TrimSuffix(content[start:end], "\r")
}
