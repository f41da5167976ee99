package export_test

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgryjp/journalint/internal/export"
	"github.com/sgryjp/journalint/internal/journal"
)

const exportSource = "---\n" +
	"date: 2006-01-02\n" +
	"start: 09:00\n" +
	"end: 11:00\n" +
	"---\n" +
	"- 09:00-10:15 A1 X2 1.25 foo\n" +
	"- 10:15-11:00 B3 Y4 0.75 proj: task\n"

func TestRecords(t *testing.T) {
	doc := journal.Parse(exportSource)

	t.Run("PlainActivity", func(t *testing.T) {
		records := export.Records(doc, false)
		require.Len(t, records, 2)

		r := records[0]
		assert.Equal(t, time.Date(2006, 1, 2, 9, 0, 0, 0, time.UTC), r.StartTime)
		assert.Equal(t, time.Date(2006, 1, 2, 10, 15, 0, 0, time.UTC), r.EndTime)
		assert.Equal(t, 4500, r.Duration)
		assert.Equal(t, []string{"A1", "X2"}, r.Codes)
		assert.Equal(t, "foo", r.Activity)

		assert.Equal(t, "proj: task", records[1].Activity)
		assert.Equal(t, []string{"B3", "Y4"}, records[1].Codes)
	})

	t.Run("SplitPrefixes", func(t *testing.T) {
		records := export.Records(doc, true)
		require.Len(t, records, 2)
		assert.Equal(t, []string{"B3", "Y4", "proj"}, records[1].Codes)
		assert.Equal(t, "task", records[1].Activity)

		// An activity without a prefix stays whole.
		assert.Equal(t, "foo", records[0].Activity)
	})

	t.Run("SplitEveryPrefix", func(t *testing.T) {
		doc := journal.Parse("---\n" +
			"date: 2006-01-02\n" +
			"---\n" +
			"- 09:00-10:00 A1 X2 1.00 proj: sub: task\n")
		records := export.Records(doc, true)
		require.Len(t, records, 1)
		assert.Equal(t, []string{"A1", "X2", "proj", "sub"}, records[0].Codes)
		assert.Equal(t, "task", records[0].Activity)
	})
}

func TestRecordsSkipsUnfinishedEntries(t *testing.T) {
	t.Run("NoFrontMatterDate", func(t *testing.T) {
		doc := journal.Parse("- 09:00-10:00 A1 X2 1.00 foo\n")
		assert.Empty(t, export.Records(doc, false))
	})

	t.Run("BrokenFields", func(t *testing.T) {
		src := "---\n" +
			"date: 2006-01-02\n" +
			"---\n" +
			"- 09:00-25:00 A1 X2 1.00 invalid end\n" +
			"- 09:00-10:00 A1 X2 1.00\n" +
			"- 09:00-10:00 A1\n" +
			"- 09:00-10:00 A1 X2 1.00 kept\n"

		records := export.Records(journal.Parse(src), false)
		require.Len(t, records, 1)
		assert.Equal(t, "kept", records[0].Activity)
	})
}

func TestWriteJSON(t *testing.T) {
	records := export.Records(journal.Parse(exportSource), false)

	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(&buf, records))

	want := `{"activity":"foo","code1":"A1","code2":"X2","duration":"4500",` +
		`"end_time":"2006-01-02T10:15:00Z","start_time":"2006-01-02T09:00:00Z"}` + "\n" +
		`{"activity":"proj: task","code1":"B3","code2":"Y4","duration":"2700",` +
		`"end_time":"2006-01-02T11:00:00Z","start_time":"2006-01-02T10:15:00Z"}` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV(t *testing.T) {
	records := export.Records(journal.Parse(exportSource), true)

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, records))

	want := "start_time,end_time,duration,code1,code2,code3,activity\n" +
		"2006-01-02T09:00:00Z,2006-01-02T10:15:00Z,4500,A1,X2,,foo\n" +
		"2006-01-02T10:15:00Z,2006-01-02T11:00:00Z,2700,B3,Y4,proj,task\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSQLite(t *testing.T) {
	records := export.Records(journal.Parse(exportSource), true)
	path := filepath.Join(t.TempDir(), "entries.db")

	// Writing twice must replace, not append.
	require.NoError(t, export.WriteSQLite(path, records))
	require.NoError(t, export.WriteSQLite(path, records))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(
		"SELECT start_time, duration, code1, code2, code3, activity FROM entries ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	type row struct {
		start      string
		duration   int
		c1, c2, c3 sql.NullString
		activity   string
	}
	var got []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.start, &r.duration, &r.c1, &r.c2, &r.c3, &r.activity))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 2)

	assert.Equal(t, "2006-01-02T09:00:00Z", got[0].start)
	assert.Equal(t, 4500, got[0].duration)
	assert.Equal(t, "A1", got[0].c1.String)
	assert.Equal(t, "X2", got[0].c2.String)
	assert.False(t, got[0].c3.Valid)
	assert.Equal(t, "foo", got[0].activity)

	assert.Equal(t, 2700, got[1].duration)
	assert.Equal(t, "proj", got[1].c3.String)
	assert.Equal(t, "task", got[1].activity)
}
