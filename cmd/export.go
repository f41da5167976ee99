package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sgryjp/journalint/internal/config"
	"github.com/sgryjp/journalint/internal/export"
	"github.com/sgryjp/journalint/internal/linemap"
	"github.com/sgryjp/journalint/internal/lint"
	"github.com/sgryjp/journalint/internal/report"
)

var (
	exportFormat  string
	exportOutput  string
	splitPrefixes bool
)

var exportCmd = &cobra.Command{
	Use:   "export [flags] FILE...",
	Short: "Export parsed journal entries",
	Long: `Parses the given journal files and exports every complete entry as a
flat record. Diagnostics found on the way go to stderr in one-line
format; the data goes to stdout or, with --output, to a file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json",
		"output format: json, csv or sqlite")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"write to this file instead of stdout (required for sqlite)")
	exportCmd.Flags().BoolVar(&splitPrefixes, "split-prefixes", false,
		`split "prefix: activity" prefixes off into extra code columns`)
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	switch exportFormat {
	case "json", "csv":
	case "sqlite":
		if exportOutput == "" {
			return errors.New("--format sqlite requires --output")
		}
	default:
		return fmt.Errorf("unknown export format %q (expected json, csv or sqlite)", exportFormat)
	}

	var records []export.Record
	for _, path := range args {
		recs, err := collectRecords(cmd.ErrOrStderr(), path)
		if err != nil {
			return err
		}
		records = append(records, recs...)
	}

	if exportFormat == "sqlite" {
		if err := export.WriteSQLite(exportOutput, records); err != nil {
			return &exitError{code: exitIOErr, err: err}
		}
		return nil
	}

	var w io.Writer = cmd.OutOrStdout()
	var f *os.File
	if exportOutput != "" {
		var err error
		if f, err = os.Create(exportOutput); err != nil {
			return &exitError{code: exitIOErr, err: err}
		}
		w = f
	}

	var err error
	switch exportFormat {
	case "json":
		err = export.WriteJSON(w, records)
	case "csv":
		err = export.WriteCSV(w, records)
	}
	if f != nil {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return &exitError{code: exitIOErr, err: err}
	}
	return nil
}

// collectRecords lints one file, writes its diagnostics to stderr and
// returns its exportable records.
func collectRecords(stderr io.Writer, path string) ([]export.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &exitError{code: exitIOErr, err: err}
	}
	text := string(data)

	cfg, err := config.Resolve(path, configFile, nil)
	if err != nil {
		return nil, err
	}

	doc, diags := lint.Lint(path, text, cfg.LintOptions())
	src := linemap.New(text)
	for _, d := range diags {
		if err := report.Write(stderr, report.Oneline, path, src, d); err != nil {
			return nil, &exitError{code: exitIOErr, err: err}
		}
	}

	return export.Records(doc, splitPrefixes || cfg.SplitActivityPrefixes), nil
}
