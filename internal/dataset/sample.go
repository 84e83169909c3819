// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package dataset

import (
	"github.com/tomtom215/cinematch/internal/models"
)

// Sample returns the built-in demo dataset: 20 movies and 30 ratings by 10
// users. It is used when no data files are configured and by tests.
func Sample() *Dataset {
	return &Dataset{
		Movies:  SampleMovies(),
		Ratings: SampleRatings(),
		Source:  SourceSample,
	}
}

// SampleMovies returns the demo catalog. Each call returns a fresh copy.
func SampleMovies() []models.Movie {
	rows := []struct {
		id, title, genres, director, cast, tags string
	}{
		{"m1", "Inception", "Sci-Fi, Thriller", "Christopher Nolan", "Leonardo DiCaprio, Marion Cotillard", "mind-bending, dreams"},
		{"m2", "Interstellar", "Sci-Fi, Drama", "Christopher Nolan", "Matthew McConaughey, Anne Hathaway", "space, time, emotion"},
		{"m3", "The Matrix", "Sci-Fi, Action", "The Wachowskis", "Keanu Reeves, Laurence Fishburne", "reality, simulation"},
		{"m4", "Blade Runner 2049", "Sci-Fi, Thriller", "Denis Villeneuve", "Ryan Gosling, Harrison Ford", "dystopia, AI"},
		{"m5", "The Dark Knight", "Action, Crime", "Christopher Nolan", "Christian Bale, Heath Ledger", "batman, chaos"},
		{"m6", "Pulp Fiction", "Crime, Drama", "Quentin Tarantino", "John Travolta, Samuel L. Jackson", "non-linear, crime"},
		{"m7", "Forrest Gump", "Drama, Romance", "Robert Zemeckis", "Tom Hanks, Robin Wright", "life, running"},
		{"m8", "The Shawshank Redemption", "Drama", "Frank Darabont", "Tim Robbins, Morgan Freeman", "hope, prison"},
		{"m9", "The Godfather", "Crime, Drama", "Francis Ford Coppola", "Marlon Brando, Al Pacino", "mafia, power"},
		{"m10", "Fight Club", "Drama, Thriller", "David Fincher", "Brad Pitt, Edward Norton", "identity, chaos"},
		{"m11", "Parasite", "Thriller, Drama", "Bong Joon-ho", "Song Kang-ho, Lee Sun-kyun", "class, social"},
		{"m12", "The Departed", "Crime, Thriller", "Martin Scorsese", "Leonardo DiCaprio, Matt Damon", "undercover, betrayal"},
		{"m13", "Goodfellas", "Crime, Drama", "Martin Scorsese", "Robert De Niro, Ray Liotta", "gangster, rise"},
		{"m14", "Taxi Driver", "Crime, Drama", "Martin Scorsese", "Robert De Niro, Jodie Foster", "loneliness, violence"},
		{"m15", "Seven", "Crime, Thriller", "David Fincher", "Brad Pitt, Morgan Freeman", "seven sins, mystery"},
		{"m16", "Zodiac", "Crime, Thriller", "David Fincher", "Jake Gyllenhaal, Robert Downey Jr.", "serial killer, investigation"},
		{"m17", "Gone Girl", "Mystery, Thriller", "David Fincher", "Ben Affleck, Rosamund Pike", "marriage, secrets"},
		{"m18", "Se7en", "Crime, Thriller", "David Fincher", "Brad Pitt, Morgan Freeman", "serial killer, detective"},
		{"m19", "Memento", "Mystery, Thriller", "Christopher Nolan", "Guy Pearce, Carrie-Anne Moss", "memory, revenge"},
		{"m20", "The Prestige", "Drama, Mystery", "Christopher Nolan", "Hugh Jackman, Christian Bale", "magic, rivalry"},
	}

	movies := make([]models.Movie, len(rows))
	for i, r := range rows {
		movies[i] = models.Movie{
			ID:       r.id,
			Title:    r.title,
			Genres:   models.ParseStringList(r.genres),
			Director: r.director,
			Cast:     models.ParseStringList(r.cast),
			Tags:     models.ParseStringList(r.tags),
		}
	}
	return movies
}

// SampleRatings returns the demo ratings. Each call returns a fresh copy.
func SampleRatings() []models.Rating {
	rows := []struct {
		user, movie string
		value       float64
	}{
		{"u1", "m1", 5.0}, {"u1", "m2", 5.0}, {"u1", "m3", 4.5},
		{"u2", "m4", 4.5}, {"u2", "m5", 5.0}, {"u2", "m6", 4.0},
		{"u3", "m1", 5.0}, {"u3", "m5", 4.5}, {"u3", "m7", 4.0},
		{"u4", "m8", 5.0}, {"u4", "m9", 5.0}, {"u4", "m10", 4.5},
		{"u5", "m11", 4.5}, {"u5", "m12", 4.5}, {"u5", "m13", 5.0},
		{"u6", "m14", 4.0}, {"u6", "m15", 4.5}, {"u6", "m16", 4.0},
		{"u7", "m17", 4.5}, {"u7", "m18", 4.5}, {"u7", "m19", 4.0},
		{"u8", "m2", 5.0}, {"u8", "m3", 4.5}, {"u8", "m20", 4.5},
		{"u9", "m1", 5.0}, {"u9", "m2", 5.0}, {"u9", "m20", 4.5},
		{"u10", "m4", 4.5}, {"u10", "m3", 4.0}, {"u10", "m5", 5.0},
	}

	ratings := make([]models.Rating, len(rows))
	for i, r := range rows {
		ratings[i] = models.Rating{UserID: r.user, MovieID: r.movie, Value: r.value}
	}
	return ratings
}
