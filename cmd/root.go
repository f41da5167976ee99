// Package cmd implements the journalint command line interface.
package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sgryjp/journalint/internal/config"
	"github.com/sgryjp/journalint/internal/linemap"
	"github.com/sgryjp/journalint/internal/lint"
	"github.com/sgryjp/journalint/internal/report"
	"github.com/sgryjp/journalint/internal/textedit"
)

// Version will be set during the build process using ldflags.
var Version = "(dev) v0.0.0"

// Exit statuses. Usage problems and I/O failures are distinguished from
// "the journal has defects" so scripts can tell them apart.
const (
	exitDiagnostics = 1
	exitUsage       = 2
	exitIOErr       = 74 // EX_IOERR
)

var (
	reportFormat string
	fixInPlace   bool
	stdioMode    bool
	configFile   string
	logFile      string
)

var rootCmd = &cobra.Command{
	Use:   "journalint [flags] FILE...",
	Short: "Lint per-day journal files",
	Long: `journalint checks journal files holding a front matter (date, start,
end) followed by time-tracked work entry lines such as

    - 09:00-10:15 AAA1234 001 1.25 development: some activity

It reports defects like unchained or negative time ranges and wrong
durations, and can rewrite the deterministic ones in place. With
--stdio (or the serve subcommand) it runs as a language server so
editors show the same diagnostics while typing.`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"configuration file (default: the nearest "+config.FileName+")")
	rootCmd.Flags().StringVar(&reportFormat, "report", string(report.Fancy),
		"report format: fancy or oneline")
	rootCmd.Flags().BoolVar(&fixInPlace, "fix", false,
		"apply every available fix to the files in place")
	rootCmd.Flags().BoolVar(&stdioMode, "stdio", false,
		"run the language server on stdio (same as 'journalint serve')")
	rootCmd.Flags().StringVar(&logFile, "logfile", "",
		"with --stdio, append language server logs to this file")
}

// Execute runs the command line and returns the process exit status.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(os.Stderr, "Error:", ee.err)
		}
		return ee.code
	}
	// Flag and argument mistakes end up here.
	fmt.Fprintln(os.Stderr, "Error:", err)
	return exitUsage
}

// exitError carries the exit status of a failed run. A nil inner error
// means the failure was already reported and only the status remains.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitError) Unwrap() error { return e.err }

func runRoot(cmd *cobra.Command, args []string) error {
	if stdioMode {
		return runServe(cmd, nil)
	}
	if len(args) == 0 {
		return errors.New("FILE must be specified (or --stdio to run the language server)")
	}
	format, err := report.ParseFormat(reportFormat)
	if err != nil {
		return err
	}

	// Files lint independently and concurrently. Output is buffered per
	// file and flushed in argument order so runs stay deterministic.
	results := make([]lintResult, len(args))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			results[i] = lintFile(path, format)
			return nil
		})
	}
	_ = g.Wait()

	status := 0
	for i := range results {
		r := &results[i]
		if r.err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", r.err)
			status = worseStatus(status, r.err.code)
			continue
		}
		if _, err := io.Copy(cmd.OutOrStdout(), &r.out); err != nil {
			return &exitError{code: exitIOErr, err: err}
		}
		if r.count > 0 {
			status = worseStatus(status, exitDiagnostics)
		}
	}
	if status != 0 {
		return &exitError{code: status}
	}
	return nil
}

type lintResult struct {
	out   bytes.Buffer
	count int
	err   *exitError
}

// lintFile lints one file and renders its diagnostics into a buffer.
// With --fix it first rewrites the file and reports what remains.
func lintFile(path string, format report.Format) lintResult {
	var res lintResult

	data, err := os.ReadFile(path)
	if err != nil {
		res.err = &exitError{code: exitIOErr, err: err}
		return res
	}
	text := string(data)

	cfg, err := config.Resolve(path, configFile, nil)
	if err != nil {
		res.err = &exitError{code: exitUsage, err: err}
		return res
	}
	opts := cfg.LintOptions()

	_, diags := lint.Lint(path, text, opts)

	if fixInPlace {
		var fixes []textedit.Fix
		for _, d := range diags {
			if d.Fix != nil {
				fixes = append(fixes, *d.Fix)
			}
		}
		if fixed, n := textedit.ApplyFixes(text, fixes); n > 0 {
			if err := os.WriteFile(path, []byte(fixed), 0o644); err != nil {
				res.err = &exitError{code: exitIOErr, err: err}
				return res
			}
			text = fixed
			_, diags = lint.Lint(path, text, opts)
		}
	}

	src := linemap.New(text)
	for _, d := range diags {
		if err := report.Write(&res.out, format, path, src, d); err != nil {
			res.err = &exitError{code: exitIOErr, err: err}
			return res
		}
	}
	res.count = len(diags)
	return res
}

// worseStatus merges the exit status of one file into the overall one.
// Hard failures outrank reported diagnostics; among hard failures the
// first one encountered wins.
func worseStatus(cur, next int) int {
	switch {
	case next == 0:
		return cur
	case cur == 0 || cur == exitDiagnostics:
		return next
	case next == exitDiagnostics:
		return cur
	default:
		return cur
	}
}
