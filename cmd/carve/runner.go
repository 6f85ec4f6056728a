package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/arloliu/carve/compress"
	"github.com/arloliu/carve/extract"
	"github.com/arloliu/carve/format"
	"github.com/arloliu/carve/internal/logging"
	"github.com/arloliu/carve/internal/progress"
	"github.com/arloliu/carve/sink"
	"github.com/arloliu/carve/source"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// result describes one extracted input.
type result struct {
	input       string
	output      string
	rawSize     int
	compression format.CompressionType
	truncated   bool
	stamp       string
	stats       extract.Stats
	elapsed     time.Duration
}

// runner carries everything one extraction command needs.
type runner struct {
	cfg      extract.Config
	format   format.OutputFormat
	logger   *slog.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	progress bool
}

func (a *app) newRunner(cmd *cobra.Command, showProgress bool) (*runner, error) {
	ec, err := a.cfg.Extract.ToExtract()
	if err != nil {
		return nil, err
	}
	f, err := format.ParseOutputFormat(a.cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	stderr := cmd.ErrOrStderr()
	file, _ := stderr.(*os.File)

	return &runner{
		cfg:      ec,
		format:   f,
		logger:   a.logger,
		stdin:    cmd.InOrStdin(),
		stdout:   cmd.OutOrStdout(),
		stderr:   stderr,
		progress: progress.Enabled(file, logging.Level(), showProgress),
	}, nil
}

// open creates the writer for output path.
func (r *runner) open(ctx context.Context, path, src string, appendMode bool) (sink.Writer, error) {
	if path == sink.Stdout {
		return sink.New(r.stdout, r.format, r.cfg.Columns, true)
	}

	return sink.NewFile(ctx, path, r.format, r.cfg.Columns, sink.WithAppend(appendMode), sink.WithSource(src))
}

func (r *runner) read(ctx context.Context, input string) (source.Document, error) {
	if input == source.Stdin {
		return source.ReadFrom(ctx, input, r.stdin)
	}

	return source.Read(ctx, input)
}

// one extracts input into w.
func (r *runner) one(ctx context.Context, input string, w sink.Writer, showBar bool) (result, error) {
	res := result{input: input}

	doc, err := r.read(ctx, input)
	if err != nil {
		return res, err
	}
	res.rawSize = doc.RawSize
	res.compression = doc.Compression
	res.truncated = doc.Truncated
	if doc.Truncated {
		r.logger.Warn("compressed input is cut off, extracting the readable part",
			slog.String("input", input), slog.Int("decoded_bytes", len(doc.Data)))
	}

	bar := progress.New(r.stderr, filepath.Base(input), showBar)
	ex, err := extract.New(
		extract.WithConfig(r.cfg),
		extract.WithLogger(r.logger.With(slog.String("input", input))),
		extract.WithProgress(r.cfg.ProgressEvery, bar.Update),
	)
	if err != nil {
		return res, err
	}
	res.stamp = ex.FormattedTimestamp(doc.Data)

	start := time.Now()
	res.stats, err = ex.Run(ctx, doc.Data, w)
	res.elapsed = time.Since(start)
	bar.Done()

	if err != nil {
		return res, fmt.Errorf("%s: %w", input, err)
	}

	return res, nil
}

// sequential extracts inputs one after another into a single output.
func (r *runner) sequential(ctx context.Context, inputs []string, out string, appendMode bool) ([]result, error) {
	w, err := r.open(ctx, out, inputs[0], appendMode)
	if err != nil {
		return nil, err
	}

	results := make([]result, 0, len(inputs))
	for _, input := range inputs {
		if s, ok := w.(interface{ SetSource(string) }); ok {
			s.SetSource(input)
		}

		res, runErr := r.one(ctx, input, w, r.progress)
		res.output = out
		if runErr != nil {
			return results, errors.Join(runErr, w.Close())
		}
		results = append(results, res)
	}

	return results, w.Close()
}

// parallel extracts every input into its own file under dir, at most jobs at
// a time. Progress bars are only drawn when jobs is one.
func (r *runner) parallel(ctx context.Context, inputs []string, dir string, jobs int) ([]result, error) {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	outputs := outputNames(inputs, dir, r.format)
	results := make([]result, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, input := range inputs {
		g.Go(func() error {
			w, err := r.open(gctx, outputs[i], input, false)
			if err != nil {
				return err
			}

			res, err := r.one(gctx, input, w, r.progress && jobs == 1)
			res.output = outputs[i]
			results[i] = res

			return errors.Join(err, w.Close())
		})
	}
	err := g.Wait()

	return results, err
}

// outputNames maps inputs to distinct output files in dir: the input base
// name without compression and document extensions, plus the format
// extension.
func outputNames(inputs []string, dir string, f format.OutputFormat) []string {
	names := make([]string, len(inputs))
	used := make(map[string]int, len(inputs))

	for i, input := range inputs {
		base := "stdin"
		if input != source.Stdin {
			base, _ = compress.StripExtension(filepath.Base(input))
			base = strings.TrimSuffix(base, filepath.Ext(base))
		}

		n := used[base]
		used[base]++
		if n > 0 {
			base = fmt.Sprintf("%s-%d", base, n+1)
		}
		names[i] = filepath.Join(dir, base+f.Extension())
	}

	return names
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
