package extract

import (
	"testing"

	"github.com/arloliu/carve/errs"
	"github.com/arloliu/carve/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_Values(t *testing.T) {
	row := Row{
		LastUpdated: "17-Jan-2014 10:11:12",
		Fields:      record.Fields{"url": "http://a", "ID": "7"},
		Path:        record.Path{"windows", "", "entries"},
	}

	got := row.Values(DefaultColumns, "/")
	assert.Equal(t, []string{"17-Jan-2014 10:11:12", "http://a", "", "7", "", "", "", "windows//entries/"}, got)
	assert.Equal(t, "", row.Value("unknown", "/"))
}

func TestRow_Map(t *testing.T) {
	row := Row{Fields: record.Fields{"title": "T"}}

	m := row.Map(DefaultColumns, "/")
	assert.Equal(t, map[string]string{"title": "T", "lastUpdated": "", "Path": ""}, m)

	// The map is a copy.
	m["title"] = "changed"
	assert.Equal(t, "T", row.Fields["title"])
}

func TestRow_Map_OnlyRequestedColumns(t *testing.T) {
	row := Row{
		LastUpdated: "17-Jan-2014 10:11:12",
		Fields:      record.Fields{"url": "http://a", "title": "T", "ID": "7"},
		Path:        record.Path{"windows", "tabs", "entries"},
	}

	assert.Equal(t, map[string]string{"ID": "7"}, row.Map([]string{"ID"}, "/"))
	assert.Equal(t, map[string]string{"url": "http://a", "Path": "windows/tabs/entries/"},
		row.Map([]string{"url", "referrer", ColumnPath}, "/"))
}

func TestStats_Add(t *testing.T) {
	s := Stats{Markers: 1, Rows: 1}
	s.Add(Stats{Markers: 2, Rows: 1, Skipped: 1, Duplicates: 3, MalformedFields: 4})

	assert.Equal(t, Stats{Markers: 3, Rows: 2, Skipped: 1, Duplicates: 3, MalformedFields: 4}, s)
	assert.Equal(t, "rows", s.LogValue().Group()[1].Key)
}

func TestPolicy_String(t *testing.T) {
	assert.Equal(t, "skip", SkipUnterminated.String())
	assert.Equal(t, "abort", AbortOnUnterminated.String())
	assert.Equal(t, "unknown", Policy(42).String())
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.ProgressEvery = -1
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Columns = append(cfg.Columns, "docshellID")
	require.ErrorIs(t, cfg.Validate(), errs.ErrInvalidColumns)

	cfg.Fields = append(cfg.Fields, "docshellID")
	require.NoError(t, cfg.Validate())
}
