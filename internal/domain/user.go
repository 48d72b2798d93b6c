package domain

import (
	"time"
)

// User represents a player together with their denormalized aggregates:
// TotalPlayTime is the sum of play time across all rating entries and
// AverageRating is the mean of the ratings the user has given.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TotalPlayTime float64   `json:"total_play_time"`
	AverageRating float64   `json:"average_rating"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RatingEntry is the per-(user, game) interaction record. Rating is nil
// until the user has rated the game; PlayTime accumulates logged hours.
// At most one entry exists per (user, game) pair.
type RatingEntry struct {
	UserID    string    `json:"user_id"`
	GameID    string    `json:"game_id"`
	Rating    *int      `json:"rating"`
	PlayTime  float64   `json:"play_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlayedGame is a user-profile projection row: one game the user has
// logged time on, with the game's name and image denormalized for display.
// GameName falls back to "unknown game" when the game no longer exists.
type PlayedGame struct {
	GameID    string  `json:"game_id"`
	GameName  string  `json:"game_name"`
	GameImage string  `json:"game_image"`
	PlayTime  float64 `json:"play_time"`
	Rating    *int    `json:"rating,omitempty"`
}

// ProfileComment is a user-profile projection row for a comment the user
// left, carrying the commented game's name and image for display.
type ProfileComment struct {
	GameID    string    `json:"game_id"`
	GameName  string    `json:"game_name"`
	GameImage string    `json:"game_image"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// UserProfile is the full read projection for a user: identity, aggregates,
// played games sorted by play time descending, and the user's comments.
// MostPlayedGame is nil when the user has not played anything.
type UserProfile struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	AverageRating  float64          `json:"average_rating"`
	TotalPlayTime  float64          `json:"total_play_time"`
	MostPlayedGame *PlayedGame      `json:"most_played_game,omitempty"`
	PlayedGames    []PlayedGame     `json:"played_games"`
	Comments       []ProfileComment `json:"comments"`
}
