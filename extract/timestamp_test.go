package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFindTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		blob   string
		want   int64
		wantOK bool
	}{
		{"single", `{"session":{"lastUpdate":1389953472000}}`, 1389953472000, true},
		{"last occurrence wins", `{"lastUpdate":1,"x":{"lastUpdate":2}}`, 2, true},
		{"whitespace after marker", "{\"lastUpdate\": \n 42}", 42, true},
		{"trailing non-digit occurrence ignored", `{"lastUpdate":7,"y":{"lastUpdate":null}}`, 7, true},
		{"absent", `{"url":"a"}`, 0, false},
		{"marker at end", `{"lastUpdate":`, 0, false},
		{"overflow", `{"lastUpdate":99999999999999999999999}`, 0, false},
		{"empty", ``, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindTimestamp([]byte(tt.blob), DefaultTimestampMarker)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindTimestamp_EmptyMarker(t *testing.T) {
	_, ok := FindTimestamp([]byte(`{"lastUpdate":1}`), "")
	assert.False(t, ok)
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "17-Jan-2014 10:11:12", FormatTimestamp(1389953472000, DefaultTimeLayout, time.UTC))
	assert.Equal(t, "2014-01-17T10:11:12Z", FormatTimestamp(1389953472000, time.RFC3339, time.UTC))

	tokyo := time.FixedZone("JST", 9*60*60)
	assert.Equal(t, "17-Jan-2014 19:11:12", FormatTimestamp(1389953472000, DefaultTimeLayout, tokyo))
	assert.NotEmpty(t, FormatTimestamp(0, DefaultTimeLayout, nil))
}

func TestExtractor_DocumentTimestamp(t *testing.T) {
	ex := newExtractor(t)
	blob := loadFixture(t)

	ms, ok := ex.DocumentTimestamp(blob)
	assert.True(t, ok)
	assert.Equal(t, int64(1389953472000), ms)
	assert.Equal(t, "17-Jan-2014 10:11:12", ex.FormattedTimestamp(blob))
	assert.Empty(t, ex.FormattedTimestamp([]byte(`{"url":"a"}`)))

	disabled := newExtractor(t, WithTimestampMarker(""))
	assert.Empty(t, disabled.FormattedTimestamp(blob))
}
