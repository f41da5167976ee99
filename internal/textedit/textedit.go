// Package textedit provides span-based text edits and the fix model
// shared by the lint rules, the LSP command handlers and the CLI.
package textedit

import (
	"fmt"
	"os"
	"sort"

	"github.com/sgryjp/journalint/internal/journal"
)

// TextEdit replaces the bytes of Span with NewText. A zero-length span
// inserts at its position.
type TextEdit struct {
	Span    journal.Span
	NewText string
}

// Fix is a machine-applicable correction: a human-readable title and an
// ordered list of pairwise non-overlapping edits.
type Fix struct {
	Title string
	Edits []TextEdit
}

// Apply returns text with all edits applied. Edits are applied in
// descending span-start order so offsets of the remaining edits stay
// valid. Overlapping edits and spans outside the text are rejected.
func Apply(text string, edits []TextEdit) (string, error) {
	for _, e := range edits {
		if e.Span.Start < 0 || e.Span.End < e.Span.Start || len(text) < e.Span.End {
			return "", fmt.Errorf("edit span [%d,%d) is out of bounds", e.Span.Start, e.Span.End)
		}
	}
	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start != sorted[j].Span.Start {
			return sorted[i].Span.Start > sorted[j].Span.Start
		}
		return sorted[i].Span.End > sorted[j].Span.End
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Span.Overlaps(sorted[i-1].Span) {
			return "", fmt.Errorf("overlapping edits at [%d,%d) and [%d,%d)",
				sorted[i].Span.Start, sorted[i].Span.End,
				sorted[i-1].Span.Start, sorted[i-1].Span.End)
		}
	}
	for _, e := range sorted {
		text = text[:e.Span.Start] + e.NewText + text[e.Span.End:]
	}
	return text, nil
}

// ApplyToFile reads the file at path, applies the edits and writes the
// result back.
func ApplyToFile(path string, edits []TextEdit) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	fixed, err := Apply(string(data), edits)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(fixed), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ApplyFixes applies a batch of fixes to text in one pass and reports how
// many of them were applied. Fixes are applied in descending span-start
// order; a fix whose region was touched by an already applied fix is
// skipped rather than applied to shifted offsets.
func ApplyFixes(text string, fixes []Fix) (string, int) {
	ordered := make([]Fix, 0, len(fixes))
	for _, f := range fixes {
		if len(f.Edits) > 0 {
			ordered = append(ordered, f)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return minStart(ordered[i]) > minStart(ordered[j])
	})

	applied := 0
	limit := len(text) + 1 // lowest start applied so far
	for _, f := range ordered {
		if maxEnd(f) > limit {
			continue
		}
		fixed, err := Apply(text, f.Edits)
		if err != nil {
			continue
		}
		text = fixed
		limit = minStart(f)
		applied++
	}
	return text, applied
}

func minStart(f Fix) int {
	m := f.Edits[0].Span.Start
	for _, e := range f.Edits[1:] {
		if e.Span.Start < m {
			m = e.Span.Start
		}
	}
	return m
}

func maxEnd(f Fix) int {
	m := f.Edits[0].Span.End
	for _, e := range f.Edits[1:] {
		if e.Span.End > m {
			m = e.Span.End
		}
	}
	return m
}
