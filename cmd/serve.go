package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/sgryjp/journalint/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the language server on stdio",
	Long: `Runs journalint as a language server. The client communicates over
stdin/stdout; diagnostics are published on open, change and save, and
quick fixes are offered as code actions.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&logFile, "logfile", "",
		"append language server logs to this file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Stdout belongs to the protocol, so logs either go to a file or
	// nowhere at all.
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		log.Println("Starting journalint language server...")
		commonlog.Configure(1, &logFile) // Logger used by glsp
	} else {
		log.SetOutput(io.Discard)
		commonlog.Configure(0, nil)
	}

	srv, err := server.NewServer(Version, configFile)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if err := srv.RunStdio(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
