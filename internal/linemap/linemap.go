// Package linemap converts between byte offsets and line/character
// positions of a source text snapshot.
package linemap

import (
	"errors"
	"sort"
)

// ErrOutOfBounds is returned by the strict conversion variants when the
// input does not denote a valid location in the text.
var ErrOutOfBounds = errors.New("out of bounds")

// Position is a zero-based line/character pair. Character counts bytes
// within the line, not runes.
type Position struct {
	Line      int
	Character int
}

// SourceText is an immutable snapshot of a document together with its
// line index.
type SourceText struct {
	text  string
	index *LineIndex
}

// New takes a snapshot of text and builds its line index in one pass.
func New(text string) *SourceText {
	return &SourceText{text: text, index: NewLineIndex(text)}
}

// Text returns the snapshot content.
func (s *SourceText) Text() string { return s.text }

// Index returns the line index of the snapshot.
func (s *SourceText) Index() *LineIndex { return s.index }

// LineIndex is a table of line-start byte offsets. Lines are split on
// '\n' only; a '\r' preceding the '\n' belongs to the line content.
type LineIndex struct {
	lineStarts []int
	length     int
}

// NewLineIndex scans text once and records the start offset of every line.
// An empty text has exactly one line; a text ending in '\n' has a final
// empty line.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{lineStarts: starts, length: len(text)}
}

// LineCount returns the number of lines in the indexed text.
func (ix *LineIndex) LineCount() int { return len(ix.lineStarts) }

// Len returns the indexed text length in bytes.
func (ix *LineIndex) Len() int { return ix.length }

// lineEnd returns the largest offset a position on the given line may map
// to. For all but the final line that is the line's '\n'; for the final
// line it is the end of the text.
func (ix *LineIndex) lineEnd(line int) int {
	if line+1 < len(ix.lineStarts) {
		return ix.lineStarts[line+1] - 1
	}
	return ix.length
}

// PositionFromOffset converts a byte offset into a Position. Offsets past
// the end of the text clamp to the final position.
func (ix *LineIndex) PositionFromOffset(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > ix.length {
		offset = ix.length
	}
	// First line start greater than offset; the offset belongs to the
	// line before it.
	i := sort.Search(len(ix.lineStarts), func(i int) bool {
		return ix.lineStarts[i] > offset
	})
	line := i - 1
	return Position{Line: line, Character: offset - ix.lineStarts[line]}
}

// PositionFromOffsetStrict is PositionFromOffset except that offsets
// outside [0, len] yield ErrOutOfBounds. The offset equal to the text
// length is valid and denotes the end of the text.
func (ix *LineIndex) PositionFromOffsetStrict(offset int) (Position, error) {
	if offset < 0 || offset > ix.length {
		return Position{}, ErrOutOfBounds
	}
	return ix.PositionFromOffset(offset), nil
}

// OffsetFromPosition converts a Position into a byte offset. Characters
// past the line end clamp to the line end; lines past the last line clamp
// to the end of the text.
func (ix *LineIndex) OffsetFromPosition(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(ix.lineStarts) {
		return ix.length
	}
	offset := ix.lineStarts[pos.Line]
	if pos.Character > 0 {
		offset += pos.Character
	}
	if end := ix.lineEnd(pos.Line); offset > end {
		offset = end
	}
	return offset
}

// OffsetFromPositionStrict is OffsetFromPosition except that positions not
// denoting a valid location yield ErrOutOfBounds.
func (ix *LineIndex) OffsetFromPositionStrict(pos Position) (int, error) {
	if pos.Line < 0 || pos.Line >= len(ix.lineStarts) || pos.Character < 0 {
		return 0, ErrOutOfBounds
	}
	offset := ix.lineStarts[pos.Line] + pos.Character
	if offset > ix.lineEnd(pos.Line) {
		return 0, ErrOutOfBounds
	}
	return offset, nil
}
