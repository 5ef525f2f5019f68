package encyclopedia

import "strings"

const (
	SourcesMarker    = "Sources: "
	SourcesDelimiter = ", "
)

// FormatSources appends the trailing sources line that ParseSources reads
// back.
func FormatSources(text string, urls []string) string {
	if len(urls) == 0 {
		return text
	}
	return text + "\n\n" + SourcesMarker + strings.Join(urls, SourcesDelimiter)
}

// ParseSources returns the pieces after the first SourcesMarker, split on
// SourcesDelimiter. Text without the marker yields nil. Only the segment
// between the first and a second marker is read, if a second one exists.
func ParseSources(text string) []string {
	if !strings.Contains(text, SourcesMarker) {
		return nil
	}
	tail := strings.Split(text, SourcesMarker)[1]
	return strings.Split(tail, SourcesDelimiter)
}
