package textedit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sgryjp/journalint/internal/journal"
	"github.com/sgryjp/journalint/internal/textedit"
)

func TestApply(t *testing.T) {
	t.Run("Replace", func(t *testing.T) {
		got, err := textedit.Apply("abc def", []textedit.TextEdit{
			{Span: journal.Span{Start: 4, End: 7}, NewText: "xyz"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "abc xyz" {
			t.Errorf("expected %q, got %q", "abc xyz", got)
		}
	})

	t.Run("InsertAtEmptySpan", func(t *testing.T) {
		got, err := textedit.Apply("abc def", []textedit.TextEdit{
			{Span: journal.Span{Start: 3, End: 3}, NewText: "X"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "abcX def" {
			t.Errorf("expected %q, got %q", "abcX def", got)
		}
	})

	t.Run("MultipleEditsKeepOffsetsValid", func(t *testing.T) {
		// The first edit grows the text; the second must still land on
		// its original region.
		got, err := textedit.Apply("aa bb cc", []textedit.TextEdit{
			{Span: journal.Span{Start: 0, End: 2}, NewText: "AAAA"},
			{Span: journal.Span{Start: 6, End: 8}, NewText: "C"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "AAAA bb C" {
			t.Errorf("expected %q, got %q", "AAAA bb C", got)
		}
	})

	t.Run("OverlappingEditsRejected", func(t *testing.T) {
		_, err := textedit.Apply("0123456789", []textedit.TextEdit{
			{Span: journal.Span{Start: 0, End: 3}, NewText: "a"},
			{Span: journal.Span{Start: 2, End: 5}, NewText: "b"},
		})
		if err == nil {
			t.Fatal("expected an error for overlapping edits")
		}
	})

	t.Run("OutOfBoundsRejected", func(t *testing.T) {
		_, err := textedit.Apply("short", []textedit.TextEdit{
			{Span: journal.Span{Start: 3, End: 99}, NewText: "x"},
		})
		if err == nil {
			t.Fatal("expected an error for an out of bounds span")
		}
	})
}

func TestApplyOrdering(t *testing.T) {
	// Two fixes on one document: the earlier edit grows the text, so the
	// later edit's offsets stay valid only while the later edit is
	// applied first.
	text := "start: 9:00\nduration 0.5\n"
	early := textedit.TextEdit{Span: journal.Span{Start: 7, End: 11}, NewText: "09:15"}
	late := textedit.TextEdit{Span: journal.Span{Start: 21, End: 24}, NewText: "1.00"}

	t.Run("DescendingKeepsBothRegionsIntact", func(t *testing.T) {
		got, err := textedit.Apply(text, []textedit.TextEdit{early, late})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "start: 09:15\nduration 1.00\n" {
			t.Errorf("expected %q, got %q", "start: 09:15\nduration 1.00\n", got)
		}
	})

	t.Run("AscendingStaleOffsetsCorrupt", func(t *testing.T) {
		// An applier walking edits from the top of the file without
		// shifting the offsets of the edits still to come writes the
		// second edit into the middle of the wrong token.
		grown, err := textedit.Apply(text, []textedit.TextEdit{early})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := textedit.Apply(grown, []textedit.TextEdit{late})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "start: 09:15\nduration1.005\n" {
			t.Errorf("expected the stale edit to land mid-token, got %q", got)
		}
	})
}

func TestApplyToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.md")
	if err := os.WriteFile(path, []byte("- 09:00-10:00 A B 0.75 x\n"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	err := textedit.ApplyToFile(path, []textedit.TextEdit{
		{Span: journal.Span{Start: 18, End: 22}, NewText: "1.00"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read back: %v", err)
	}
	if string(data) != "- 09:00-10:00 A B 1.00 x\n" {
		t.Errorf("unexpected content: %q", string(data))
	}
}

func TestApplyFixes(t *testing.T) {
	t.Run("DisjointFixesAllApply", func(t *testing.T) {
		got, n := textedit.ApplyFixes("0123456789", []textedit.Fix{
			{Title: "a", Edits: []textedit.TextEdit{{Span: journal.Span{Start: 1, End: 3}, NewText: "X"}}},
			{Title: "b", Edits: []textedit.TextEdit{{Span: journal.Span{Start: 6, End: 8}, NewText: "Y"}}},
		})
		if n != 2 {
			t.Errorf("expected 2 applied fixes, got %d", n)
		}
		if got != "0X345Y89" {
			t.Errorf("expected %q, got %q", "0X345Y89", got)
		}
	})

	t.Run("ConflictingFixSkipped", func(t *testing.T) {
		got, n := textedit.ApplyFixes("0123456789", []textedit.Fix{
			{Title: "a", Edits: []textedit.TextEdit{{Span: journal.Span{Start: 2, End: 5}, NewText: "X"}}},
			{Title: "b", Edits: []textedit.TextEdit{{Span: journal.Span{Start: 4, End: 8}, NewText: "Y"}}},
		})
		if n != 1 {
			t.Errorf("expected 1 applied fix, got %d", n)
		}
		if got != "0123Y89" {
			t.Errorf("expected %q, got %q", "0123Y89", got)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		got, n := textedit.ApplyFixes("unchanged", nil)
		if n != 0 || got != "unchanged" {
			t.Errorf("expected no change, got %q (%d applied)", got, n)
		}
	})
}
