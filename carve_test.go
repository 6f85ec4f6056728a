package carve

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arloliu/carve/compress"
	"github.com/arloliu/carve/errs"
	"github.com/arloliu/carve/extract"
	"github.com/arloliu/carve/internal/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `{"windows":[{"tabs":[{"entries":[` +
	`{"url":"https://www.mozilla.org/","title":"Mozilla","ID":1},` +
	`{"url":"https://example.com/","title":"Example","ID":2}` +
	`]}]}],"session":{"lastUpdate":1389953472000}}`

type rowCollector struct {
	rows []map[string]string
}

func (c *rowCollector) WriteRow(row map[string]string) error {
	c.rows = append(c.rows, row)
	return nil
}

func TestNewExtractor(t *testing.T) {
	ex, err := NewExtractor()
	require.NoError(t, err)
	assert.Equal(t, extract.DefaultColumns, ex.Columns())

	_, err = NewExtractor(extract.WithColumns("charset"))
	require.ErrorIs(t, err, errs.ErrInvalidColumns)
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recovery.jsonlz4")
	data, err := compress.NewMozLZ4Compressor().Compress([]byte(testDocument))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	var c rowCollector
	stats, err := ExtractFile(context.Background(), path, &c, extract.WithTimeFormat(extract.DefaultTimeLayout, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, extract.Stats{Markers: 2, Rows: 2}, stats)
	require.Len(t, c.rows, 2)
	assert.Equal(t, "https://www.mozilla.org/", c.rows[0]["url"])
	assert.Equal(t, "windows/tabs/entries/", c.rows[1]["Path"])
	assert.Equal(t, "17-Jan-2014 10:11:12", c.rows[1]["lastUpdated"])
}

func TestExtractBytes_CutContainer(t *testing.T) {
	doc := `{"windows":[{"tabs":[{"entries":[` +
		strings.Repeat(`{"url":"https://www.mozilla.org/","title":"Mozilla","ID":1},`, 1000) +
		`{"url":"https://example.com/"}]}]}]}`
	moz, err := compress.NewMozLZ4Compressor().Compress([]byte(doc))
	require.NoError(t, err)

	var c rowCollector
	stats, err := ExtractBytes(context.Background(), moz[:len(moz)/2], &c)
	require.NoError(t, err)
	assert.Positive(t, stats.Rows)
	assert.Less(t, stats.Rows, 1001)
	assert.Equal(t, "https://www.mozilla.org/", c.rows[0]["url"])
}

func TestExtractFile_Missing(t *testing.T) {
	_, err := ExtractFile(context.Background(), filepath.Join(t.TempDir(), "nope.js"), &rowCollector{})
	require.ErrorIs(t, err, errs.ErrSourceUnavailable)
}

func TestExtractBytes(t *testing.T) {
	gz, err := compress.NewGzipCompressor().Compress([]byte(testDocument))
	require.NoError(t, err)

	var c rowCollector
	stats, err := ExtractBytes(context.Background(), gz, &c, extract.WithColumns("ID"))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, []map[string]string{{"ID": "1"}, {"ID": "2"}}, c.rows)
}

func TestRows(t *testing.T) {
	truncated := testDocument[:len(testDocument)-60]

	rows, err := Rows([]byte(truncated))
	require.NoError(t, err)

	var urls []string
	var failures int
	for row, err := range rows {
		if err != nil {
			require.ErrorIs(t, err, errs.ErrUnterminatedRecord)
			failures++
			continue
		}
		urls = append(urls, row.Fields.Get("url"))
	}

	assert.Equal(t, []string{"https://www.mozilla.org/"}, urls)
	assert.Equal(t, 1, failures)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, hash.Values([]string{"a", "b"}), Fingerprint("a", "b"))
	assert.NotEqual(t, Fingerprint("ab", "c"), Fingerprint("a", "bc"))
}
