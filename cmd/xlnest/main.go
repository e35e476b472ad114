// Command xlnest exports JSON or YAML records to xlsx under a nested header
// schema, and inspects schemas.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/javajack/xlnest"
)

type rootFlags struct {
	verbose bool
	sheet   string
	origin  string
	workers int
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "xlnest",
		Short: "Export nested records to spreadsheets",
		Long: `Lay out a nested header schema as a merged header grid and write
records below it.

Commands:
  export    Write records from a JSON or YAML file to an xlsx workbook.
  describe  Print the header grid a schema produces.
  validate  Check a schema for errors and likely mistakes.

Defaults for --sheet, --origin and --workers may be set with XLNEST_SHEET,
XLNEST_ORIGIN and XLNEST_WORKERS, also read from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Log export steps to stderr")
	pf.StringVar(&flags.sheet, "sheet", os.Getenv("XLNEST_SHEET"), "Sheet to write (defaults to the schema sheet)")
	pf.StringVar(&flags.origin, "origin", envOr("XLNEST_ORIGIN", "A1"), "Top-left cell of the header grid")
	pf.IntVar(&flags.workers, "workers", envInt("XLNEST_WORKERS", 1), "Records expanded in parallel")

	root.AddCommand(newExportCmd(flags), newDescribeCmd(flags), newValidateCmd())
	return root
}

// options turns the shared flags into exporter options.
func (f *rootFlags) options(stderr io.Writer) ([]xlnest.Option, error) {
	origin, err := xlnest.ParseCellRef(f.origin)
	if err != nil {
		return nil, fmt.Errorf("--origin: %w", err)
	}
	opts := []xlnest.Option{
		xlnest.WithOrigin(origin),
		xlnest.WithConcurrency(f.workers),
		xlnest.WithLogger(newLogger(stderr, f.verbose)),
	}
	if f.sheet != "" {
		opts = append(opts, xlnest.WithSheet(f.sheet))
	}
	return opts, nil
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().
		Logger()
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return n
}
