package entities

type Genre string

const (
	GenreFiction        Genre = "Fiction"
	GenreNonFiction     Genre = "Non-Fiction"
	GenreScience        Genre = "Science"
	GenreFantasy        Genre = "Fantasy"
	GenreBiography      Genre = "Biography"
	GenreMystery        Genre = "Mystery"
	GenreThriller       Genre = "Thriller"
	GenreRomance        Genre = "Romance"
	GenreHistorical     Genre = "Historical"
	GenreAdventure      Genre = "Adventure"
	GenreHorror         Genre = "Horror"
	GenreScienceFiction Genre = "Science Fiction"
	GenreDystopian      Genre = "Dystopian"
	GenreMemoir         Genre = "Memoir"
	GenreSelfHelp       Genre = "Self-Help"
)

// AllGenres lists the genre vocabulary in its canonical order.
var AllGenres = []Genre{
	GenreFiction,
	GenreNonFiction,
	GenreScience,
	GenreFantasy,
	GenreBiography,
	GenreMystery,
	GenreThriller,
	GenreRomance,
	GenreHistorical,
	GenreAdventure,
	GenreHorror,
	GenreScienceFiction,
	GenreDystopian,
	GenreMemoir,
	GenreSelfHelp,
}

var genreSet = func() map[string]bool {
	m := make(map[string]bool, len(AllGenres))
	for _, g := range AllGenres {
		m[string(g)] = true
	}
	return m
}()

// IsValidGenre reports whether name is part of the vocabulary (exact match).
func IsValidGenre(name string) bool {
	return genreSet[name]
}
