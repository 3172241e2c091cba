package models

// MovieSummary is the subset of a catalog list entry the client works with.
type MovieSummary struct {
	ID          MovieID `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	BackdropURL string  `json:"backdrop_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	GenreIDs    []int   `json:"genre_ids,omitempty"`
}

// MoviePage is one page of a catalog listing or search.
type MoviePage struct {
	Page         int            `json:"page"`
	Results      []MovieSummary `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
}

// MovieDetails is a single catalog entry with credits appended.
type MovieDetails struct {
	MovieSummary
	Runtime  int     `json:"runtime"`
	Tagline  string  `json:"tagline"`
	Genres   []Genre `json:"genres"`
	ImdbID   string  `json:"imdb_id"`
	Homepage string  `json:"homepage"`
	Credits  Credits `json:"credits"`
}
