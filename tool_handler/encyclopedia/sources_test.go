package encyclopedia

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSources(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "trailing list",
			text: "Paris is the capital... Sources: x, y",
			want: []string{"x", "y"},
		},
		{
			name: "no marker",
			text: "Paris is the capital of France.",
			want: nil,
		},
		{
			name: "marker without space is not a marker",
			text: "Sources:x, y",
			want: nil,
		},
		{
			name: "single source",
			text: "text\n\nSources: https://ru.wikipedia.org/wiki/ИТМО",
			want: []string{"https://ru.wikipedia.org/wiki/ИТМО"},
		},
		{
			name: "comma without space is kept",
			text: "Sources: a,b, c",
			want: []string{"a,b", "c"},
		},
		{
			name: "second marker cuts the list",
			text: "Sources: a, b Sources: c",
			want: []string{"a", "b "},
		},
		{
			name: "empty tail",
			text: "Sources: ",
			want: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSources(tt.text))
		})
	}
}

func TestFormatSourcesRoundTrip(t *testing.T) {
	urls := []string{"https://a", "https://b"}

	text := FormatSources("Page: A\nSummary: a", urls)

	assert.Equal(t, "Page: A\nSummary: a\n\nSources: https://a, https://b", text)
	assert.Equal(t, urls, ParseSources(text))
	assert.Equal(t, "body", FormatSources("body", nil))
}
