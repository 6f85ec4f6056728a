package format

import (
	"fmt"
	"strings"

	"github.com/arloliu/carve/errs"
)

type (
	CompressionType uint8
	OutputFormat    uint8
)

const (
	CompressionNone   CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd   CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2     CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4    CompressionType = 0x4 // CompressionLZ4 represents a raw LZ4 block.
	CompressionMozLZ4 CompressionType = 0x5 // CompressionMozLZ4 represents Firefox's mozLz4 container.
	CompressionGzip   CompressionType = 0x6 // CompressionGzip represents gzip compression.

	OutputCSV    OutputFormat = 0x1 // OutputCSV writes comma-separated rows with a header.
	OutputJSONL  OutputFormat = 0x2 // OutputJSONL writes one JSON object per line.
	OutputTable  OutputFormat = 0x3 // OutputTable renders a terminal table.
	OutputSQLite OutputFormat = 0x4 // OutputSQLite inserts rows into a SQLite database.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionMozLZ4:
		return "MozLZ4"
	case CompressionGzip:
		return "Gzip"
	default:
		return "Unknown"
	}
}

func (f OutputFormat) String() string {
	switch f {
	case OutputCSV:
		return "csv"
	case OutputJSONL:
		return "jsonl"
	case OutputTable:
		return "table"
	case OutputSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// Extension returns the conventional file extension for the output format.
func (f OutputFormat) Extension() string {
	switch f {
	case OutputJSONL:
		return ".jsonl"
	case OutputTable:
		return ".txt"
	case OutputSQLite:
		return ".db"
	default:
		return ".csv"
	}
}

// ParseOutputFormat parses a case-insensitive output format name.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return OutputCSV, nil
	case "jsonl", "ndjson", "json":
		return OutputJSONL, nil
	case "table", "text":
		return OutputTable, nil
	case "sqlite", "sqlite3", "db":
		return OutputSQLite, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, s)
	}
}
