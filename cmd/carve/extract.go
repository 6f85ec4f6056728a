package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/arloliu/carve/errs"
	"github.com/arloliu/carve/sink"
	"github.com/arloliu/carve/source"
	"github.com/spf13/cobra"
)

type extractOptions struct {
	noProgress bool
	quiet      bool
}

func (a *app) newExtractCmd() *cobra.Command {
	var opts extractOptions
	cmd := &cobra.Command{
		Use:   "extract [inputs...]",
		Short: "Extract history records into CSV, JSONL, a table or SQLite",
		Long: `Extract every record of the given session documents. Inputs may be glob
patterns ("**" crosses directories); "-" or no input reads standard input.
Compressed inputs (.jsonlz4, .baklz4, .gz, .zst) are detected automatically.

With an existing directory as output, each input is written to its own
file in that directory, several at a time. Otherwise all rows go to the
single output.

Examples:
  carve extract sessionstore.js
  carve extract recovery.jsonlz4 -f jsonl -o rows.jsonl.gz
  carve extract "profiles/**/sessionstore*" -o out/ --jobs 4
  carve extract "profiles/**/*.jsonlz4" -f sqlite -o history.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtract(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringP("output", "o", sink.Stdout, `output file or directory; "-" writes standard output`)
	f.StringP("format", "f", "csv", "output format: csv, jsonl, table, sqlite")
	f.Bool("append", false, "append to an existing output file")
	f.IntP("jobs", "j", 0, "inputs extracted in parallel into a directory (0: one per CPU)")
	f.Bool("dedup", false, "drop rows identical to an earlier row")
	f.Bool("strict", false, "fail on the first unterminated record instead of skipping it")
	f.Bool("bound-to-next-marker", false, "end each record's search at the next marker")
	f.StringSlice("columns", nil, "output columns, in order")
	f.String("timezone", "", `time zone of the lastUpdated column ("Local", "UTC", or an IANA name)`)
	f.BoolVar(&opts.noProgress, "no-progress", false, "do not draw a progress bar")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the summary")

	bindKey(f, "output", "output.path")
	bindKey(f, "format", "output.format")
	bindKey(f, "append", "output.append")
	bindKey(f, "jobs", "output.jobs")
	bindKey(f, "dedup", "extract.dedup")
	bindKey(f, "strict", "extract.strict")
	bindKey(f, "bound-to-next-marker", "extract.bound_to_next_marker")
	bindKey(f, "columns", "extract.columns")
	bindKey(f, "timezone", "extract.timezone")

	return cmd
}

func (a *app) runExtract(cmd *cobra.Command, args []string, opts extractOptions) error {
	ctx := cmd.Context()
	out := a.cfg.Output

	patterns := args
	if len(patterns) == 0 {
		patterns = []string{source.Stdin}
	}
	inputs, err := source.Expand(patterns)
	if err != nil {
		return err
	}

	r, err := a.newRunner(cmd, out.Progress && !opts.noProgress)
	if err != nil {
		return err
	}

	a.logger.Info("extract",
		slog.Int("inputs", len(inputs)),
		slog.String("output", out.Path),
		slog.String("format", r.format.String()))

	var results []result
	if out.Path != sink.Stdout && isDir(out.Path) {
		if out.Append {
			return fmt.Errorf("%w: --append needs a single output file", errs.ErrUnsupportedFormat)
		}
		results, err = r.parallel(ctx, inputs, out.Path, out.Jobs)
	} else {
		results, err = r.sequential(ctx, inputs, out.Path, out.Append)
	}

	if !opts.quiet {
		printSummary(cmd.ErrOrStderr(), completed(results))
	}
	if err != nil {
		if errors.Is(err, errs.ErrUnterminatedRecord) {
			return fmt.Errorf("%w (run without --strict to skip damaged records)", err)
		}

		return err
	}

	return nil
}

// completed drops results of inputs that never started.
func completed(results []result) []result {
	out := results[:0:0]
	for _, r := range results {
		if r.input != "" {
			out = append(out, r)
		}
	}

	return out
}
