package domain

import (
	"fmt"
	"strings"
)

// SearchSource is the provider-side search used for free-text queries.
type SearchSource string

const (
	SourceYouTube      SearchSource = "ytsearch"
	SourceYouTubeMusic SearchSource = "ytmsearch"
	SourceSoundCloud   SearchSource = "scsearch"
)

// ParseSearchSource validates a configured search source.
func ParseSearchSource(s string) (SearchSource, error) {
	switch source := SearchSource(strings.ToLower(strings.TrimSpace(s))); source {
	case SourceYouTube, SourceYouTubeMusic, SourceSoundCloud:
		return source, nil
	default:
		return "", fmt.Errorf("unknown search source %q", s)
	}
}

// SearchQuery is a user query, either a direct resource locator or free text.
type SearchQuery struct {
	Text  string
	IsURL bool
}

// ParseSearchQuery normalizes user input into a SearchQuery.
func ParseSearchQuery(input string) (SearchQuery, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return SearchQuery{}, ErrEmptyQuery
	}
	return SearchQuery{Text: input, IsURL: isURL(input)}, nil
}

// LavalinkIdentifier returns the identifier to pass to Lavalink's loadtracks.
// Free text is prefixed with the search source, e.g. "ytsearch:never gonna".
func (q SearchQuery) LavalinkIdentifier(source SearchSource) string {
	if q.IsURL {
		return q.Text
	}
	return string(source) + ":" + q.Text
}

// YtdlpTarget returns the yt-dlp target selecting only the first search result.
func (q SearchQuery) YtdlpTarget(source SearchSource) string {
	if q.IsURL {
		return q.Text
	}
	// yt-dlp has no ytmsearch extractor; fall back to regular YouTube search.
	if source == SourceYouTubeMusic {
		source = SourceYouTube
	}
	return string(source) + "1:" + q.Text
}

// String returns the query text.
func (q SearchQuery) String() string {
	return q.Text
}

// isURL checks if the input starts with an http(s) scheme. Anything else,
// including a bare "www." host, is searched for.
func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://")
}
