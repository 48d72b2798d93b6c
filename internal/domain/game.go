package domain

import (
	"strings"
	"time"
)

// Genre bounds for a game entry.
const (
	MinGenres = 1
	MaxGenres = 5
)

// Rating bounds for a user rating.
const (
	MinRating = 1
	MaxRating = 5
)

// MinPlayTimeToInteract is the number of logged hours a user needs on a
// game before rating or commenting on it is allowed.
const MinPlayTimeToInteract = 1.0

// Game represents a game in the catalog together with its denormalized
// aggregates: Rating is the mean of all current user ratings and PlayTime
// is the cumulative play time across all users.
type Game struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Genres          []string   `json:"genres"`
	Image           string     `json:"image"`
	PlayTime        float64    `json:"play_time"`
	Rating          float64    `json:"rating"`
	IsRatingEnabled bool       `json:"is_rating_enabled"`
	Developer       string     `json:"developer,omitempty"`
	Publisher       string     `json:"publisher,omitempty"`
	ReleaseDate     *time.Time `json:"release_date,omitempty"`
	Price           *int64     `json:"price,omitempty"`
	Description     string     `json:"description,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Comment represents a comment left on a game. Username is a snapshot of
// the author's name at the time of writing.
type Comment struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidGenreCount checks whether a genre list is within the allowed bounds.
func ValidGenreCount(genres []string) bool {
	return len(genres) >= MinGenres && len(genres) <= MaxGenres
}

// ValidRating checks whether a rating value is within the allowed bounds.
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// NormalizeComment trims surrounding whitespace from a comment body.
// An empty result means the comment is not acceptable.
func NormalizeComment(body string) string {
	return strings.TrimSpace(body)
}
