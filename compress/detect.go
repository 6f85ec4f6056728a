package compress

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/arloliu/carve/format"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

var extensions = map[string]format.CompressionType{
	".jsonlz4": format.CompressionMozLZ4,
	".baklz4":  format.CompressionMozLZ4,
	".mozlz4":  format.CompressionMozLZ4,
	".zst":     format.CompressionZstd,
	".zstd":    format.CompressionZstd,
	".s2":      format.CompressionS2,
	".lz4":     format.CompressionLZ4,
	".gz":      format.CompressionGzip,
	".gzip":    format.CompressionGzip,
}

// Detect determines how an input is compressed.
//
// Magic bytes win over the file name, so renamed files and Firefox upgrade
// backups such as "sessionstore.jsonlz4-20240101" are recognized. Formats
// without magic bytes (S2 and raw LZ4 blocks) are recognized by extension
// only.
//
// Parameters:
//   - data: Leading bytes of the input, or all of it
//   - name: File name, may be empty
//
// Returns:
//   - format.CompressionType: CompressionNone when nothing matches
func Detect(data []byte, name string) format.CompressionType {
	switch {
	case bytes.HasPrefix(data, []byte(MozLZ4Magic)):
		return format.CompressionMozLZ4
	case bytes.HasPrefix(data, zstdMagic):
		return format.CompressionZstd
	case bytes.HasPrefix(data, gzipMagic):
		return format.CompressionGzip
	}

	return FromExtension(name)
}

// FromExtension maps a file name's extension to a compression type.
// Names without a known extension map to CompressionNone.
func FromExtension(name string) format.CompressionType {
	if c, ok := extensions[strings.ToLower(filepath.Ext(name))]; ok {
		return c
	}

	return format.CompressionNone
}

// StripExtension removes a compression extension from name.
//
// Example:
//
//	StripExtension("rows.csv.zst") // "rows.csv", format.CompressionZstd
func StripExtension(name string) (string, format.CompressionType) {
	ext := filepath.Ext(name)
	c, ok := extensions[strings.ToLower(ext)]
	if !ok {
		return name, format.CompressionNone
	}

	return strings.TrimSuffix(name, ext), c
}
