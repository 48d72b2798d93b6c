package repository

import (
	"context"

	"github.com/gameworld-labs/gameworld/internal/domain"
)

// GameRepository defines the interface for game persistence operations.
type GameRepository interface {
	// Create inserts a new game into the store.
	Create(ctx context.Context, game *domain.Game) error

	// GetByID retrieves a game by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Game, error)

	// List returns all games, newest first.
	List(ctx context.Context) ([]domain.Game, error)

	// ToggleRating flips the game's rating-enabled flag and returns the
	// new state.
	ToggleRating(ctx context.Context, id string) (bool, error)

	// Comments returns the comments left on a game, oldest first.
	Comments(ctx context.Context, gameID string) ([]domain.Comment, error)
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// List returns all users, newest first.
	List(ctx context.Context) ([]domain.User, error)

	// PlayedGames returns the user's per-game play records joined with the
	// game catalog, sorted by play time descending (earliest entry first on
	// ties). Records whose game no longer exists are still returned.
	PlayedGames(ctx context.Context, userID string) ([]domain.PlayedGame, error)

	// CommentsByUser returns every comment the user has left, oldest first,
	// joined with the game catalog for display. Comments whose game no
	// longer exists are still returned.
	CommentsByUser(ctx context.Context, userID string) ([]domain.ProfileComment, error)
}

// TxStore is the transaction-scoped store handed to InTx callbacks. Reads
// with the ForUpdate suffix take row locks so concurrent mutations of the
// same entity serialize.
type TxStore interface {
	// GetGameForUpdate loads a game and locks its row for the transaction.
	GetGameForUpdate(ctx context.Context, id string) (*domain.Game, error)

	// GetUserForUpdate loads a user and locks its row for the transaction.
	GetUserForUpdate(ctx context.Context, id string) (*domain.User, error)

	// GetEntry loads the rating entry for a (user, game) pair, locked.
	GetEntry(ctx context.Context, userID, gameID string) (*domain.RatingEntry, error)

	// UpsertEntryPlayTime adds hours to the pair's entry, creating the
	// entry with a nil rating when none exists.
	UpsertEntryPlayTime(ctx context.Context, userID, gameID string, hours float64) error

	// SetEntryRating overwrites the rating on an existing entry.
	SetEntryRating(ctx context.Context, userID, gameID string, rating int) error

	// EntriesByGame returns every rating entry referencing the game.
	EntriesByGame(ctx context.Context, gameID string) ([]domain.RatingEntry, error)

	// EntriesByUser returns the user's rating entries in creation order.
	EntriesByUser(ctx context.Context, userID string) ([]domain.RatingEntry, error)

	// UpdateGameAggregates stores a game's recomputed play time and rating.
	UpdateGameAggregates(ctx context.Context, gameID string, playTime, rating float64) error

	// UpdateUserAggregates stores a user's recomputed totals.
	UpdateUserAggregates(ctx context.Context, userID string, totalPlayTime, averageRating float64) error

	// InsertComment appends a comment to a game.
	InsertComment(ctx context.Context, comment *domain.Comment) error

	// DeleteEntry removes the rating entry for a (user, game) pair.
	DeleteEntry(ctx context.Context, userID, gameID string) error

	// DeleteEntriesByGame removes every entry referencing the game and
	// returns the IDs of the users that held one.
	DeleteEntriesByGame(ctx context.Context, gameID string) ([]string, error)

	// DeleteCommentsByGame removes every comment on the game.
	DeleteCommentsByGame(ctx context.Context, gameID string) error

	// DeleteCommentsByUser removes the user's comments from every game.
	DeleteCommentsByUser(ctx context.Context, userID string) error

	// DeleteGame removes the game row.
	DeleteGame(ctx context.Context, id string) error

	// DeleteUser removes the user row.
	DeleteUser(ctx context.Context, id string) error
}

// InteractionRepository runs multi-record mutations in a single database
// transaction. The callback's error aborts and rolls back the transaction.
type InteractionRepository interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error
}
