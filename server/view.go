package server

import (
	"github.com/viant/cinematch/recommend"
	"github.com/viant/cinematch/summary"
)

const (
	posterBaseURL     = "https://image.tmdb.org/t/p/w154"
	posterPlaceholder = "https://via.placeholder.com/150x225?text=No+Poster"
)

// PosterURL returns the TMDB thumbnail URL for path, or a placeholder.
func PosterURL(path string) string {
	if path == "" || path == "nan" {
		return posterPlaceholder
	}
	return posterBaseURL + path
}

type breakdown struct {
	Distance   float64 `json:"distance"`
	Semantic   float64 `json:"semantic"`
	Quality    float64 `json:"quality"`
	Popularity float64 `json:"popularity"`
}

type movieView struct {
	ID          int64     `json:"id"`
	ExternalID  *int64    `json:"external_id,omitempty"`
	Title       string    `json:"title"`
	Overview    string    `json:"overview"`
	ReleaseDate string    `json:"release_date"`
	Score       float64   `json:"score"`
	Rating      float64   `json:"rating"`
	VoteCount   int64     `json:"vote_count"`
	Genres      string    `json:"genres"`
	PosterPath  string    `json:"poster_path"`
	PosterURL   string    `json:"poster_url"`
	Breakdown   breakdown `json:"breakdown"`
}

type recommendResponse struct {
	Query   string          `json:"query"`
	Results []movieView     `json:"results"`
	Summary summary.Summary `json:"summary"`
}

type similarResponse struct {
	MovieID int64       `json:"movie_id"`
	Title   string      `json:"title"`
	Results []movieView `json:"results"`
}

type healthResponse struct {
	Status    string `json:"status"`
	BuildID   string `json:"build_id"`
	Model     string `json:"model"`
	Source    string `json:"source"`
	IndexKind string `json:"index_kind"`
	Count     int    `json:"count"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toViews(recs []recommend.Recommendation) []movieView {
	out := make([]movieView, len(recs))
	for i := range recs {
		r := &recs[i]
		out[i] = movieView{
			ID:          r.Movie.ID,
			ExternalID:  r.Movie.ExternalID,
			Title:       r.Movie.Title,
			Overview:    r.Movie.Overview,
			ReleaseDate: r.Movie.ReleaseDate,
			Score:       r.Score,
			Rating:      r.Movie.VoteAverage,
			VoteCount:   r.Movie.VoteCount,
			Genres:      r.Movie.GenresString(),
			PosterPath:  r.Movie.PosterPath,
			PosterURL:   PosterURL(r.Movie.PosterPath),
			Breakdown: breakdown{
				Distance:   r.Distance,
				Semantic:   r.SemanticScore,
				Quality:    r.QualityScore,
				Popularity: r.PopularityScore,
			},
		}
	}
	return out
}
