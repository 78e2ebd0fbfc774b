package tmdb

// DiscoverPage is one page of /discover/movie.
type DiscoverPage struct {
	Page         int             `json:"page"`
	TotalPages   int             `json:"total_pages"`
	TotalResults int             `json:"total_results"`
	Results      []DiscoverMovie `json:"results"`
}

// DiscoverMovie is a single discover result. Nullable fields are pointers.
type DiscoverMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    *string `json:"overview"`
	ReleaseDate *string `json:"release_date"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int64   `json:"vote_count"`
	PosterPath  *string `json:"poster_path"`
	GenreIDs    []int   `json:"genre_ids"`
	Adult       bool    `json:"adult"`
	Language    string  `json:"original_language"`
}
