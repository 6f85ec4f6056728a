package source

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arloliu/carve/compress"
	"github.com/arloliu/carve/errs"
	"github.com/arloliu/carve/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{"windows":[{"tabs":[{"entries":[{"url":"https://example.com","title":"Example"}]}]}]}`

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

// =============================================================================
// Read
// =============================================================================

func TestRead_Formats(t *testing.T) {
	dir := t.TempDir()
	doc := []byte(sampleDoc)

	moz, err := compress.NewMozLZ4Compressor().Compress(doc)
	require.NoError(t, err)
	gz, err := compress.NewGzipCompressor().Compress(doc)
	require.NoError(t, err)
	zst, err := compress.NewZstdCompressor().Compress(doc)
	require.NoError(t, err)
	s2, err := compress.NewS2Compressor().Compress(doc)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
		want format.CompressionType
	}{
		{"sessionstore.js", doc, format.CompressionNone},
		{"recovery.jsonlz4", moz, format.CompressionMozLZ4},
		{"sessionstore.jsonlz4-20240101", moz, format.CompressionMozLZ4},
		{"backup.js.gz", gz, format.CompressionGzip},
		{"archived.bin", zst, format.CompressionZstd},
		{"dump.s2", s2, format.CompressionS2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name, tt.data)

			got, err := Read(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, sampleDoc, string(got.Data))
			assert.Equal(t, tt.want, got.Compression)
			assert.Equal(t, len(tt.data), got.RawSize)
			assert.Equal(t, path, got.Name)
		})
	}
}

func TestRead_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Read(context.Background(), filepath.Join(dir, "missing.js"))
	require.ErrorIs(t, err, errs.ErrSourceUnavailable)

	bad := writeFile(t, dir, "broken.jsonlz4", []byte("mozLz40\x00\xff\xff\x00\x00\x00\x01\x00"))
	_, err = Read(context.Background(), bad)
	require.ErrorIs(t, err, errs.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "broken.jsonlz4")
}

func TestRead_CutContainers(t *testing.T) {
	dir := t.TempDir()
	doc := []byte(`{"windows":[{"tabs":[{"entries":[` +
		strings.Repeat(`{"url":"https://example.com/page","title":"Example, page","ID":7},`, 2000) +
		`{"url":"x"}]}]}]}`)

	moz, err := compress.NewMozLZ4Compressor().Compress(doc)
	require.NoError(t, err)
	gz, err := compress.NewGzipCompressor().Compress(doc)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"recovery.jsonlz4", moz[:len(moz)/2]},
		{"sessionstore.js.gz", gz[:len(gz)*2/3]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(context.Background(), writeFile(t, dir, tt.name, tt.data))
			require.NoError(t, err)
			assert.True(t, got.Truncated)
			assert.NotEmpty(t, got.Data)
			assert.Less(t, len(got.Data), len(doc))
			assert.True(t, bytes.HasPrefix(doc, got.Data))
		})
	}

	full, err := Decode("recovery.jsonlz4", moz)
	require.NoError(t, err)
	assert.False(t, full.Truncated)
}

func TestReadFrom_Stdin(t *testing.T) {
	got, err := ReadFrom(context.Background(), Stdin, strings.NewReader(sampleDoc))
	require.NoError(t, err)
	assert.Equal(t, sampleDoc, string(got.Data))
	assert.Equal(t, format.CompressionNone, got.Compression)
}

func TestReadFrom_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadFrom(ctx, "x", bytes.NewReader([]byte(sampleDoc)))
	require.ErrorIs(t, err, errs.ErrSourceUnavailable)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecode_Empty(t *testing.T) {
	got, err := Decode("empty.js", nil)
	require.NoError(t, err)
	assert.Empty(t, got.Data)
}

// =============================================================================
// Expand
// =============================================================================

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "p1/sessionstore.js", nil)
	b := writeFile(t, dir, "p2/sessionstore-backups/recovery.jsonlz4", nil)
	c := writeFile(t, dir, "p2/sessionstore-backups/previous.jsonlz4", nil)
	writeFile(t, dir, "p2/prefs.js", nil)

	got, err := Expand([]string{
		filepath.Join(dir, "**", "*.jsonlz4"),
		filepath.Join(dir, "**", "sessionstore*"),
		Stdin,
		c,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{c, b, a, Stdin}, got)
}

func TestExpand_NoMatch(t *testing.T) {
	_, err := Expand([]string{filepath.Join(t.TempDir(), "*.jsonlz4")})
	require.ErrorIs(t, err, errs.ErrSourceUnavailable)

	_, err = Expand([]string{"[invalid"})
	require.ErrorIs(t, err, errs.ErrSourceUnavailable)
}

// =============================================================================
// Watcher
// =============================================================================

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev, ok := <-w.Events:
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return Event{}
	}
}

func TestWatcher_WriteAndReplace(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "sessionstore.jsonlz4", []byte("v1"))

	w, err := NewWatcher(target, 20*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Unrelated files in the same directory are ignored.
	writeFile(t, dir, "other.js", []byte("x"))

	require.NoError(t, os.WriteFile(target, []byte("v2"), 0o600))
	ev := waitEvent(t, w)
	assert.Equal(t, w.Path(), ev.Path)

	// Atomic replace through rename, as Firefox does.
	tmp := writeFile(t, dir, "sessionstore.jsonlz4.tmp", []byte("v3"))
	require.NoError(t, os.Rename(tmp, target))
	ev = waitEvent(t, w)
	assert.Equal(t, w.Path(), ev.Path)

	cancel()
	for range w.Events {
	}
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope", "sessionstore.js"), 0, nil)
	require.ErrorIs(t, err, errs.ErrSourceUnavailable)
}
