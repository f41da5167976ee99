// Package export extracts finished entries from a journal document as
// flat records and serializes them as JSON Lines, CSV or a SQLite
// table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sgryjp/journalint/internal/journal"
)

// Record is one exported entry. Codes holds the entry's code tokens
// plus, when prefix splitting is on, the prefixes cut off the
// activity.
type Record struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  int // seconds
	Codes     []string
	Activity  string
}

// Records collects the exportable entries of doc. Entries are skipped
// silently when the document carries no valid front matter date or
// when their own start, end or duration is invalid or the activity is
// empty.
//
// splitPrefixes splits the activity on ": "; the last segment stays
// the activity and the preceding segments extend the code list.
func Records(doc *journal.Document, splitPrefixes bool) []Record {
	fm := doc.FrontMatter
	if fm == nil || !fm.Date.Valid() {
		return nil
	}
	date := fm.Date.Value

	var records []Record
	for _, e := range doc.Entries {
		start, err := e.Start.Time.Minutes()
		if err != nil {
			continue
		}
		end, err := e.End.Time.Minutes()
		if err != nil {
			continue
		}
		if e.Duration.Err != nil {
			continue
		}
		activity := e.Activity.Value
		if activity == "" {
			continue
		}

		codes := make([]string, 0, len(e.Codes)+1)
		for _, c := range e.Codes {
			codes = append(codes, c.Value)
		}
		if splitPrefixes {
			parts := strings.Split(activity, ": ")
			codes = append(codes, parts[:len(parts)-1]...)
			activity = parts[len(parts)-1]
		}

		records = append(records, Record{
			StartTime: date.At(start),
			EndTime:   date.At(end),
			Duration:  int(e.Duration.Hours * 3600),
			Codes:     codes,
			Activity:  activity,
		})
	}
	return records
}

// flatten renders the record as the flat string map shared by the
// serialization formats.
func (r Record) flatten() map[string]string {
	m := map[string]string{
		"start_time": r.StartTime.Format(time.RFC3339),
		"end_time":   r.EndTime.Format(time.RFC3339),
		"duration":   strconv.Itoa(r.Duration),
		"activity":   r.Activity,
	}
	for i, code := range r.Codes {
		m[fmt.Sprintf("code%d", i+1)] = code
	}
	return m
}

// WriteJSON writes the records as JSON Lines: one flat object per
// record, keys sorted.
func WriteJSON(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r.flatten()); err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}
	return nil
}

// WriteCSV writes the records as CSV with a header line. The number of
// code columns matches the widest code list among the records.
func WriteCSV(w io.Writer, records []Record) error {
	maxCodes := 0
	for _, r := range records {
		if len(r.Codes) > maxCodes {
			maxCodes = len(r.Codes)
		}
	}

	header := []string{"start_time", "end_time", "duration"}
	for i := 0; i < maxCodes; i++ {
		header = append(header, fmt.Sprintf("code%d", i+1))
	}
	header = append(header, "activity")

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		row := make([]string, 0, len(header))
		row = append(row,
			r.StartTime.Format(time.RFC3339),
			r.EndTime.Format(time.RFC3339),
			strconv.Itoa(r.Duration))
		for i := 0; i < maxCodes; i++ {
			if i < len(r.Codes) {
				row = append(row, r.Codes[i])
			} else {
				row = append(row, "")
			}
		}
		row = append(row, r.Activity)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
