package catalog

// GenreMap resolves TMDB movie genre ids.
var GenreMap = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// ResolveGenres maps ids to names in order, dropping unknown ids.
func ResolveGenres(ids []int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name := GenreMap[id]; name != "" {
			out = append(out, name)
		}
	}
	return out
}
