package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgryjp/journalint/internal/report"
)

// writeJournal drops a journal file into a fresh directory so config
// discovery cannot pick up a stray .journalint.yaml.
func writeJournal(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLintFileClean(t *testing.T) {
	path := writeJournal(t, "2006-01-02.md",
		"---\ndate: 2006-01-02\nstart: 09:00\nend: 10:00\n---\n- 09:00-10:00 A1 X2 1.00 foo\n")

	res := lintFile(path, report.Oneline)
	require.Nil(t, res.err)
	assert.Zero(t, res.count)
	assert.Empty(t, res.out.String())
}

func TestLintFileReportsDiagnostics(t *testing.T) {
	path := writeJournal(t, "2006-01-02.md",
		"---\ndate: 2006-01-02\nstart: 09:00\nend: 10:00\n---\n- 09:00-10:00 A1 X2 0.75 foo\n")

	res := lintFile(path, report.Oneline)
	require.Nil(t, res.err)
	assert.Equal(t, 1, res.count)
	assert.Contains(t, res.out.String(), "incorrect-duration")
	assert.Contains(t, res.out.String(), "Incorrect duration: expected 1.00")
	assert.Contains(t, res.out.String(), ":6:21:")
}

func TestLintFileFixesInPlace(t *testing.T) {
	path := writeJournal(t, "2006-01-02.md",
		"---\ndate: 2006-01-02\nstart: 09:30\nend: 10:00\n---\n- 09:00-10:00 A1 X2 2.00 foo\n")

	fixInPlace = true
	defer func() { fixInPlace = false }()

	res := lintFile(path, report.Oneline)
	require.Nil(t, res.err)
	assert.Zero(t, res.count, "all defects were fixable")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"---\ndate: 2006-01-02\nstart: 09:00\nend: 10:00\n---\n- 09:00-10:00 A1 X2 1.00 foo\n",
		string(data))
}

func TestLintFileMissing(t *testing.T) {
	res := lintFile(filepath.Join(t.TempDir(), "absent.md"), report.Oneline)
	require.NotNil(t, res.err)
	assert.Equal(t, exitIOErr, res.err.code)
}

func TestLintFileBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".journalint.yaml"),
		[]byte("disabled_rules: [no-such-rule]\n"), 0o644))
	path := filepath.Join(dir, "2006-01-02.md")
	require.NoError(t, os.WriteFile(path, []byte("- 09:00-10:00 A1 X2 1.00 foo\n"), 0o644))

	res := lintFile(path, report.Oneline)
	require.NotNil(t, res.err)
	assert.Equal(t, exitUsage, res.err.code)
}

func TestCollectRecords(t *testing.T) {
	path := writeJournal(t, "2006-01-02.md",
		"---\ndate: 2006-01-02\nstart: 09:00\nend: 10:00\n---\n"+
			"- 09:00-10:00 A1 X2 0.75 dev: foo\n")

	var stderr bytes.Buffer
	records, err := collectRecords(&stderr, path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"A1", "X2"}, records[0].Codes)
	assert.Equal(t, "dev: foo", records[0].Activity)

	// The duration defect does not block the export but is reported.
	assert.Contains(t, stderr.String(), "incorrect-duration")
}

func TestWorseStatus(t *testing.T) {
	tests := []struct {
		cur, next, want int
	}{
		{0, 0, 0},
		{0, exitDiagnostics, exitDiagnostics},
		{exitDiagnostics, 0, exitDiagnostics},
		{exitDiagnostics, exitIOErr, exitIOErr},
		{exitIOErr, exitDiagnostics, exitIOErr},
		{exitUsage, exitIOErr, exitUsage},
		{exitIOErr, exitUsage, exitIOErr},
	}
	for _, tt := range tests {
		if got := worseStatus(tt.cur, tt.next); got != tt.want {
			t.Errorf("worseStatus(%d, %d) = %d, want %d", tt.cur, tt.next, got, tt.want)
		}
	}
}
