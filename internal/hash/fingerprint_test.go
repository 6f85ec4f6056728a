package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		data string
		want uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"long string", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, String(tt.data))
		})
	}
}

func TestValues_MatchesKey(t *testing.T) {
	rows := [][]string{
		nil,
		{""},
		{"http://example.com", "Example", "42"},
		{"", "", "windows/tabs/entries"},
	}
	for _, row := range rows {
		assert.Equal(t, String(Key(row)), Values(row), "%q", row)
	}
}

func TestValues_BoundarySensitive(t *testing.T) {
	assert.NotEqual(t, Values([]string{"ab", "c"}), Values([]string{"a", "bc"}))
	assert.NotEqual(t, Values([]string{"a", ""}), Values([]string{"a"}))
	assert.NotEqual(t, Values([]string{"a", "b"}), Values([]string{"b", "a"}))
}

func BenchmarkValues(b *testing.B) {
	row := []string{"17-Jan-2014 10:11:12", "http://example.com/page", "Example page", "42", "", "0,120", "true", "windows/tabs/entries"}

	b.ReportAllocs()
	for b.Loop() {
		Values(row)
	}
}
