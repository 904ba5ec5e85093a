// Package main is the studytime command line: reconcile LMS exports, write CSVs and
// certificates, and browse results in the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aura-webinar/studytime/config"
	"github.com/aura-webinar/studytime/internal/app"
	"github.com/aura-webinar/studytime/internal/export"
	"github.com/aura-webinar/studytime/internal/ingest"
	"github.com/aura-webinar/studytime/internal/reconcile"
	"github.com/aura-webinar/studytime/pkg/utils"
)

var (
	verbose   bool
	parserBin string
	tablesDir string

	recordsPath   string
	standardTimes string
	person        string
	mark          string
	jsonOut       bool
	exportOut     string
	certOut       string
	allPersons    bool
	outDir        string

	logger *zap.Logger
	cfg    *config.Config

	// stdout is where tables, JSON and "-" exports go.
	stdout io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "studytime",
	Short: "Reconcile LMS study time against standard times",
	Long: `studytime reads an LMS completion export and a standard-time table, totals each
person's study time per content, marks it pass or fail, and writes the result as a
CSV summary or a PDF completion certificate.

Standard-time tables are looked up by name in STANDARD_TIMES_DIR, or given as a path.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = app.NewLogger(verbose)
		c, err := config.Load()
		if err != nil {
			return err
		}
		if parserBin != "" {
			c.Ingest.ParserBin = parserBin
		}
		if tablesDir != "" {
			c.Ingest.StandardTimesDir = tablesDir
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Print per-person, per-content study time with pass/fail marks",
	RunE:  runReconcile,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the summary CSV to a file, stdout (-) or s3://bucket/key",
	RunE:  runExport,
}

var certificateCmd = &cobra.Command{
	Use:   "certificate",
	Short: "Render completion certificates as PDF",
	Long: `Renders the completion certificate for --person into --out, or with --all one
certificate per person into --out-dir/<person>_certificate.pdf.`,
	RunE: runCertificate,
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse results interactively",
	RunE:  runBrowse,
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List named standard-time tables",
	RunE:  runTables,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&parserBin, "parser-bin", "", "External batch parser executable (default: built-in parser)")
	rootCmd.PersistentFlags().StringVar(&tablesDir, "standard-times-dir", "", "Directory of named standard-time tables (default: STANDARD_TIMES_DIR)")

	for _, c := range []*cobra.Command{reconcileCmd, exportCmd, certificateCmd, browseCmd} {
		c.Flags().StringVarP(&recordsPath, "records", "r", "", "LMS completion export (CSV)")
		c.Flags().StringVarP(&standardTimes, "standard-times", "s", "", "Standard-time table name or path")
		_ = c.MarkFlagRequired("records")
		_ = c.MarkFlagRequired("standard-times")
	}
	for _, c := range []*cobra.Command{reconcileCmd, exportCmd} {
		c.Flags().StringVarP(&person, "person", "p", "", "Only this person")
		c.Flags().StringVarP(&mark, "mark", "m", "", "Only pass or fail rows")
	}

	reconcileCmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON instead of a table")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", export.Stdout, "Output path, - for stdout, or s3://bucket/key")

	certificateCmd.Flags().StringVarP(&person, "person", "p", "", "Person to certify")
	certificateCmd.Flags().StringVarP(&certOut, "out", "o", "", "Output path (default <person>_certificate.pdf)")
	certificateCmd.Flags().BoolVar(&allPersons, "all", false, "Render one certificate per person")
	certificateCmd.Flags().StringVar(&outDir, "out-dir", ".", "Output directory for --all")

	rootCmd.AddCommand(reconcileCmd, exportCmd, certificateCmd, browseCmd, tablesCmd)
}

// exitCode maps a failure to the process exit status.
func exitCode(err error) int {
	var (
		parseErr    *ingest.ParseError
		columnsErr  *ingest.MissingColumnsError
		filterErr   *reconcile.FilterError
		missingErr  *reconcile.MissingStandardTimeError
		groupErr    *reconcile.GroupError
		durationErr *utils.MalformedDurationError
		processErr  *ingest.ExternalProcessError
	)
	switch {
	case err == nil, errors.Is(err, export.ErrCancelled):
		return 0
	case errors.As(err, &processErr):
		return 3
	case errors.As(err, &parseErr), errors.As(err, &columnsErr), errors.As(err, &filterErr),
		errors.As(err, &missingErr), errors.As(err, &groupErr), errors.As(err, &durationErr):
		return 2
	}
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if errors.Is(err, export.ErrCancelled) {
		fmt.Fprintln(os.Stderr, "cancelled, nothing written")
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
