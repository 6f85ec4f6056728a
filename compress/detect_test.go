package compress

import (
	"testing"

	"github.com/arloliu/carve/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	gz, err := NewGzipCompressor().Compress([]byte(`{"url":"a"}`))
	require.NoError(t, err)
	zst, err := NewZstdCompressor().Compress([]byte(`{"url":"a"}`))
	require.NoError(t, err)

	tests := []struct {
		name     string
		data     []byte
		fileName string
		want     format.CompressionType
	}{
		{"mozlz4 magic", helloMozLZ4, "", format.CompressionMozLZ4},
		{"mozlz4 upgrade backup", helloMozLZ4, "sessionstore.jsonlz4-20240101", format.CompressionMozLZ4},
		{"zstd magic", zst, "session.bin", format.CompressionZstd},
		{"gzip magic beats extension", gz, "sessionstore.js", format.CompressionGzip},
		{"plain json", []byte(`{"windows":[]}`), "sessionstore.js", format.CompressionNone},
		{"jsonlz4 extension", []byte("garbage"), "recovery.jsonlz4", format.CompressionMozLZ4},
		{"baklz4 extension", nil, "recovery.baklz4", format.CompressionMozLZ4},
		{"s2 extension", []byte{0x01}, "dump.s2", format.CompressionS2},
		{"lz4 extension", []byte{0x01}, "dump.LZ4", format.CompressionLZ4},
		{"stdin", []byte(`{}`), "-", format.CompressionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.data, tt.fileName))
		})
	}
}

func TestFromExtension(t *testing.T) {
	assert.Equal(t, format.CompressionZstd, FromExtension("rows.csv.zst"))
	assert.Equal(t, format.CompressionGzip, FromExtension("rows.jsonl.gz"))
	assert.Equal(t, format.CompressionNone, FromExtension("rows.csv"))
	assert.Equal(t, format.CompressionNone, FromExtension(""))
}

func TestStripExtension(t *testing.T) {
	name, typ := StripExtension("rows.csv.zst")
	assert.Equal(t, "rows.csv", name)
	assert.Equal(t, format.CompressionZstd, typ)

	name, typ = StripExtension("rows.csv")
	assert.Equal(t, "rows.csv", name)
	assert.Equal(t, format.CompressionNone, typ)
}
