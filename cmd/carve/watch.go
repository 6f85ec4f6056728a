package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/arloliu/carve/errs"
	"github.com/arloliu/carve/sink"
	"github.com/arloliu/carve/source"
	"github.com/spf13/cobra"
)

func (a *app) newWatchCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "watch <input>",
		Short: "Re-extract a session document whenever Firefox rewrites it",
		Long: `Watch one session document and extract it again each time it is written
or atomically replaced. The output is rewritten on every change. Stop with
Ctrl-C.

Examples:
  carve watch ~/.mozilla/firefox/abcd.default/sessionstore-backups/recovery.jsonlz4 -o tabs.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd, args[0], quiet)
		},
	}

	f := cmd.Flags()
	f.StringP("output", "o", sink.Stdout, `output file or directory; "-" writes standard output`)
	f.StringP("format", "f", "csv", "output format: csv, jsonl, table, sqlite")
	f.Bool("dedup", false, "drop rows identical to an earlier row")
	f.Bool("strict", false, "fail on the first unterminated record instead of skipping it")
	f.Duration("debounce", 0, "quiet period after a change before extracting")
	f.BoolVarP(&quiet, "quiet", "q", false, "do not print a summary per run")

	bindKey(f, "output", "output.path")
	bindKey(f, "format", "output.format")
	bindKey(f, "dedup", "extract.dedup")
	bindKey(f, "strict", "extract.strict")
	bindKey(f, "debounce", "watch.debounce")

	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, input string, quiet bool) error {
	ctx := cmd.Context()

	r, err := a.newRunner(cmd, false)
	if err != nil {
		return err
	}

	output := a.cfg.Output.Path
	if output != sink.Stdout && isDir(output) {
		output = outputNames([]string{input}, output, r.format)[0]
	}

	w, err := source.NewWatcher(input, a.cfg.Watch.Debounce, a.logger)
	if err != nil {
		return err
	}
	go w.Start(ctx)

	a.logger.Info("watching", slog.String("path", w.Path()), slog.Duration("debounce", a.cfg.Watch.Debounce))

	once := func() error {
		results, err := r.sequential(ctx, []string{input}, output, false)
		if !quiet {
			printSummary(cmd.ErrOrStderr(), completed(results))
		}

		switch {
		case err == nil, ctx.Err() != nil:
			return nil
		case errors.Is(err, errs.ErrSourceUnavailable), errors.Is(err, errs.ErrUnterminatedRecord):
			// The document may be mid-rewrite; the next event retries.
			a.logger.Warn("extraction failed", slog.Any("error", err))
			return nil
		default:
			return err
		}
	}

	if err := once(); err != nil {
		return err
	}
	for range w.Events {
		if err := once(); err != nil {
			return err
		}
	}

	return ignoreCanceled(ctx)
}

func ignoreCanceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
