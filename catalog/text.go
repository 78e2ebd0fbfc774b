package catalog

import "strings"

// LiveFeedText builds the embedding input for TMDB feed records.
func LiveFeedText(title, overview string) string {
	return title + ": " + overview
}

// DatasetText builds the embedding input for MovieLens records from the raw
// pipe-separated genre column.
func DatasetText(title, rawGenres string) string {
	return title + " " + strings.ReplaceAll(rawGenres, "|", " ")
}
