package extract

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/arloliu/carve/errs"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t testing.TB) []byte {
	t.Helper()
	blob, err := os.ReadFile("testdata/sessionstore.js")
	require.NoError(t, err)

	return blob
}

func newExtractor(t testing.TB, opts ...Option) *Extractor {
	t.Helper()
	base := []Option{WithTimeFormat(DefaultTimeLayout, time.UTC)}
	ex, err := New(append(base, opts...)...)
	require.NoError(t, err)

	return ex
}

// memorySink collects rows in order.
type memorySink struct {
	rows []map[string]string
}

func (m *memorySink) WriteRow(row map[string]string) error {
	m.rows = append(m.rows, row)
	return nil
}

func fixtureRows() []map[string]string {
	const stamp = "17-Jan-2014 10:11:12"
	return []map[string]string{
		{
			"lastUpdated": stamp,
			"url":         "https://www.mozilla.org/en-US/",
			"title":       "Mozilla, the non-profit",
			"ID":          "101",
			"scroll":      "0,240",
			"Path":        "windows/tabs/entries/",
		},
		{
			"lastUpdated": stamp,
			"url":         "https://ads.example.net/frame",
			"ID":          "102",
			"subframe":    "true",
			"Path":        "windows/tabs/entries/children/",
		},
		{
			"lastUpdated": stamp,
			"url":         "https://example.com/search?q=a%2Cb",
			"title":       `Search: "a,b"`,
			"ID":          "103",
			"referrer":    "https://www.mozilla.org/en-US/",
			"Path":        "windows/tabs/entries/",
		},
	}
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_Defaults(t *testing.T) {
	ex, err := New()
	require.NoError(t, err)

	cfg := ex.Config()
	assert.Equal(t, `{"url":`, cfg.Marker)
	assert.Equal(t, DefaultColumns, ex.Columns())
	assert.Equal(t, SkipUnterminated, cfg.Policy)
	assert.False(t, cfg.Dedup)
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want error
	}{
		{"column not recognized", []Option{WithColumns("url", "charset")}, errs.ErrInvalidColumns},
		{"duplicate column", []Option{WithColumns("url", "url")}, errs.ErrInvalidColumns},
		{"no columns", []Option{WithColumns()}, errs.ErrInvalidColumns},
		{"marker without brace", []Option{WithMarker(`"url":`)}, errs.ErrInvalidMarker},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			require.ErrorIs(t, err, tt.want)
		})
	}

	_, err := New(WithMarker(""))
	require.Error(t, err)
	_, err = New(WithPolicy(Policy(9)))
	require.Error(t, err)
	_, err = New(WithProgress(-1, nil))
	require.Error(t, err)
}

// =============================================================================
// Run
// =============================================================================

func TestExtractor_Run_Fixture(t *testing.T) {
	blob := loadFixture(t)
	ex := newExtractor(t)
	sink := &memorySink{}

	stats, err := ex.Run(context.Background(), blob, sink)
	require.NoError(t, err)

	if diff := cmp.Diff(fixtureRows(), sink.rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Stats{Markers: 3, Rows: 3}, stats)
}

func TestExtractor_Run_Truncated(t *testing.T) {
	blob := loadFixture(t)
	blob = blob[:bytes.Index(blob, []byte(`"charset"`))]

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ex := newExtractor(t, WithLogger(logger))
	sink := &memorySink{}

	stats, err := ex.Run(context.Background(), blob, sink)
	require.NoError(t, err)

	assert.Equal(t, Stats{Markers: 3, Rows: 2, Skipped: 1}, stats)
	require.Len(t, sink.rows, 2)
	assert.Equal(t, "https://www.mozilla.org/en-US/", sink.rows[0]["url"])
	assert.Equal(t, "https://ads.example.net/frame", sink.rows[1]["url"])
	// The timestamp followed the cut.
	assert.Empty(t, sink.rows[0]["lastUpdated"])
	assert.Contains(t, logs.String(), "skipping unterminated record")
}

func TestExtractor_Run_Strict(t *testing.T) {
	blob := []byte(`[{"url":"a"},{"url":"b","title":"cut`)
	ex := newExtractor(t, WithPolicy(AbortOnUnterminated))
	sink := &memorySink{}

	stats, err := ex.Run(context.Background(), blob, sink)
	require.ErrorIs(t, err, errs.ErrUnterminatedRecord)
	assert.Equal(t, 1, stats.Rows)
	assert.Len(t, sink.rows, 1)
}

func TestExtractor_Run_NoRecords(t *testing.T) {
	ex := newExtractor(t)
	sink := &memorySink{}

	stats, err := ex.Run(context.Background(), []byte(`{"windows":[]}`), sink)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
	assert.Empty(t, sink.rows)

	stats, err = ex.Run(context.Background(), nil, sink)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestExtractor_Run_Dedup(t *testing.T) {
	blob := []byte(`{"a":[{"url":"x","title":"X"},{"url":"x","title":"X"},{"url":"y"}],` +
		`"b":[{"url":"x","title":"X"}]}`)

	t.Run("disabled", func(t *testing.T) {
		sink := &memorySink{}
		stats, err := newExtractor(t).Run(context.Background(), blob, sink)
		require.NoError(t, err)
		assert.Equal(t, 4, stats.Rows)
		assert.Zero(t, stats.Duplicates)
	})

	t.Run("enabled", func(t *testing.T) {
		sink := &memorySink{}
		stats, err := newExtractor(t, WithDedup(true)).Run(context.Background(), blob, sink)
		require.NoError(t, err)
		// The copy under "b" has a different path and is kept.
		assert.Equal(t, 3, stats.Rows)
		assert.Equal(t, 1, stats.Duplicates)
		assert.Equal(t, "a/", sink.rows[0]["Path"])
		assert.Equal(t, "a/", sink.rows[1]["Path"])
		assert.Equal(t, "b/", sink.rows[2]["Path"])
	})
}

func TestExtractor_Run_MalformedFields(t *testing.T) {
	blob := []byte(`[{"url":"a",junk,:"x","title":"t"}]`)
	sink := &memorySink{}

	stats, err := newExtractor(t).Run(context.Background(), blob, sink)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.MalformedFields)
	require.Len(t, sink.rows, 1)
	assert.Equal(t, "t", sink.rows[0]["title"])
}

func TestExtractor_Run_SinkError(t *testing.T) {
	errFull := errors.New("disk full")
	sink := SinkFunc(func(map[string]string) error { return errFull })

	_, err := newExtractor(t).Run(context.Background(), loadFixture(t), sink)
	require.ErrorIs(t, err, errFull)
	assert.Contains(t, err.Error(), "record at offset")
}

func TestExtractor_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := newExtractor(t).Run(ctx, loadFixture(t), &memorySink{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Rows)
}

func TestExtractor_Run_Progress(t *testing.T) {
	blob := []byte(strings.Repeat(`{"url":"x"},`, 25))

	var calls [][2]int
	ex := newExtractor(t, WithProgress(10, func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}))

	_, err := ex.Run(context.Background(), blob, &memorySink{})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{10, 25}, {20, 25}, {25, 25}}, calls)
}

func TestExtractor_Run_Idempotent(t *testing.T) {
	blob := loadFixture(t)
	ex := newExtractor(t, WithDedup(true))

	first, second := &memorySink{}, &memorySink{}
	s1, err := ex.Run(context.Background(), blob, first)
	require.NoError(t, err)
	s2, err := ex.Run(context.Background(), blob, second)
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Equal(t, first.rows, second.rows)
}

func TestExtractor_Run_SinkSeesOnlyConfiguredColumns(t *testing.T) {
	ex := newExtractor(t, WithColumns("ID", ColumnPath))
	sink := &memorySink{}

	_, err := ex.Run(context.Background(), loadFixture(t), sink)
	require.NoError(t, err)

	want := []map[string]string{
		{"ID": "101", "Path": "windows/tabs/entries/"},
		{"ID": "102", "Path": "windows/tabs/entries/children/"},
		{"ID": "103", "Path": "windows/tabs/entries/"},
	}
	if diff := cmp.Diff(want, sink.rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractor_Run_AnonymousContainerDepth(t *testing.T) {
	sink := &memorySink{}
	ex := newExtractor(t, WithColumns("url", ColumnPath))

	_, err := ex.Run(context.Background(), []byte(`{"url":"root"}`), sink)
	require.NoError(t, err)
	_, err = ex.Run(context.Background(), []byte(`[{"url":"listed"}]`), sink)
	require.NoError(t, err)
	_, err = ex.Run(context.Background(), []byte(`{"a":[[{"url":"nested"}]]}`), sink)
	require.NoError(t, err)

	assert.Equal(t, []map[string]string{
		{"url": "root", "Path": ""},
		{"url": "listed", "Path": "/"},
		{"url": "nested", "Path": "a//"},
	}, sink.rows)
}

func TestExtractor_Run_CustomSeparatorAndColumns(t *testing.T) {
	ex := newExtractor(t,
		WithFields("url", "charset"),
		WithColumns("url", "charset", ColumnPath),
		WithPathSeparator("."),
	)
	sink := &memorySink{}

	_, err := ex.Run(context.Background(), loadFixture(t), sink)
	require.NoError(t, err)
	require.Len(t, sink.rows, 3)
	assert.Equal(t, "UTF-8", sink.rows[2]["charset"])
	assert.Equal(t, "windows.tabs.entries.children.", sink.rows[1]["Path"])
	assert.NotContains(t, sink.rows[0], "title")
}

func TestExtractor_Run_BoundToNextMarker(t *testing.T) {
	// With the next-marker bound, a record with nested children cannot close.
	ex := newExtractor(t, WithBoundToNextMarker(true))
	stats, err := ex.Run(context.Background(), loadFixture(t), &memorySink{})
	require.NoError(t, err)
	assert.Equal(t, Stats{Markers: 3, Rows: 2, Skipped: 1}, stats)
}

// =============================================================================
// All
// =============================================================================

func TestExtractor_All(t *testing.T) {
	blob := loadFixture(t)
	ex := newExtractor(t)

	var rows []Row
	for row, err := range ex.All(blob) {
		require.NoError(t, err)
		rows = append(rows, row)
	}

	require.Len(t, rows, 3)
	want := fixtureRows()
	for i, row := range rows {
		assert.Equal(t, want[i], row.Map(DefaultColumns, DefaultPathSeparator))
		assert.Equal(t, byte('{'), blob[row.Offset])
	}
}

func TestExtractor_All_ErrorsAndEarlyStop(t *testing.T) {
	blob := []byte(`[{"url":"a"},{"url":"b","title":"cut`)
	ex := newExtractor(t)

	var got []error
	for _, err := range ex.All(blob) {
		got = append(got, err)
	}
	require.Len(t, got, 2)
	require.NoError(t, got[0])
	require.ErrorIs(t, got[1], errs.ErrUnterminatedRecord)

	n := 0
	for range ex.All(loadFixture(t)) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkExtractor_Run(b *testing.B) {
	entry := `{"url":"http://example.com/page","title":"Example, page","ID":42,"docshellID":0,"scroll":"0,120"},`
	blob := []byte(`{"windows":[{"tabs":[{"entries":[` + strings.Repeat(entry, 2000) +
		`{"url":"x"}]}]}],"session":{"lastUpdate":1389953472000}}`)
	ex := newExtractor(b)
	sink := SinkFunc(func(map[string]string) error { return nil })

	b.ReportAllocs()
	b.SetBytes(int64(len(blob)))
	b.ResetTimer()
	for b.Loop() {
		_, _ = ex.Run(context.Background(), blob, sink)
	}
}
