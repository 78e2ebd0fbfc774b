package catalog

import "strings"

// Movie is one normalized catalog entry.
type Movie struct {
	// ID is the source catalog id: the TMDB id for the live feed, the
	// MovieLens movieId for the static dataset.
	ID int64 `json:"id"`

	// ExternalID is the TMDB id when known. Nil means unknown, which keeps
	// unmapped dataset rows from colliding on a shared zero id.
	ExternalID *int64 `json:"external_id,omitempty"`

	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	ReleaseDate string   `json:"release_date"`
	VoteAverage float64  `json:"vote_average"`
	VoteCount   int64    `json:"vote_count"`
	Popularity  float64  `json:"popularity"`
	Genres      []string `json:"genres"`
	PosterPath  string   `json:"poster_path"`

	// TextContent is the embedding input. It is never used for scoring.
	TextContent string `json:"-"`
}

// GenresString joins genres with ", ".
func (m *Movie) GenresString() string {
	return strings.Join(m.Genres, ", ")
}

// Year returns the first four characters of ReleaseDate, or "".
func (m *Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

// HasText reports whether the movie may enter the index.
func (m *Movie) HasText() bool {
	return strings.TrimSpace(m.TextContent) != ""
}
