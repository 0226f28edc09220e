package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAbbreviateName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"popcorn", "popcorn"},
		{"Samuel Huang", "Samuel H"},
		{"First Second Third", "First T"},
		{"  Alice  ", "Alice"},
		{"John   Doe", "John D"},
		{"J. R. R. Tolkien", "J T"},
		{"[John Smith]", "John S"},
		{"dependabot[bot]", "dependabot[bot]"},
		{"Hans Müller", "Hans M"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AbbreviateName(tt.name))
		})
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "feat: add thing", FirstLine("feat: add thing\n\nlong body", 100))
	assert.Equal(t, "fix", FirstLine("fix\r\nbody", 100))
	assert.Equal(t, "abc", FirstLine("abcdef", 3))
	assert.Equal(t, "héé", FirstLine("hééllo", 3), "truncation counts runes")
	assert.Equal(t, "", FirstLine("", 10))
}

func TestShortSHA(t *testing.T) {
	assert.Equal(t, "abcdef1", ShortSHA("abcdef1234567890"))
	assert.Equal(t, "abc", ShortSHA("abc"))
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2024, 3, 5, 12, 30, 0, 0, loc)
	assert.Equal(t, "2024-03-05T10:30:00Z", FormatTimestamp(ts))
}
