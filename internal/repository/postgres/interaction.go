package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gameworld-labs/gameworld/internal/domain"
	"github.com/gameworld-labs/gameworld/internal/repository"
	"github.com/gameworld-labs/gameworld/pkg/database"
	apperrors "github.com/gameworld-labs/gameworld/pkg/errors"
)

// InteractionRepository implements repository.InteractionRepository using
// PostgreSQL transactions. Row locks taken by the ForUpdate reads serialize
// concurrent mutations touching the same game or user.
type InteractionRepository struct {
	db database.DBTX
}

// NewInteractionRepository creates a new PostgreSQL-backed interaction repository.
func NewInteractionRepository(db database.DBTX) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// InTx runs fn inside a database transaction. The transaction commits when
// fn returns nil and rolls back otherwise.
func (r *InteractionRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.TxStore) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(ctx, &txStore{tx: tx}); err != nil {
		// Deadlock and serialization victims surface from the statement
		// inside fn, not only at commit.
		if isSerializationFailure(err) {
			return apperrors.Conflict("concurrent update, retry the request")
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return apperrors.Conflict("concurrent update, retry the request")
		}
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// txStore implements repository.TxStore on top of a pgx transaction.
type txStore struct {
	tx pgx.Tx
}

func (s *txStore) GetGameForUpdate(ctx context.Context, id string) (*domain.Game, error) {
	query := fmt.Sprintf(`SELECT %s FROM games WHERE id = $1 FOR UPDATE`, gameColumns)

	g, err := scanGame(s.tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("game", id)
		}
		return nil, fmt.Errorf("lock game: %w", err)
	}
	return g, nil
}

func (s *txStore) GetUserForUpdate(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 FOR UPDATE`, userColumns)

	u, err := scanUser(s.tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}
	return u, nil
}

func (s *txStore) GetEntry(ctx context.Context, userID, gameID string) (*domain.RatingEntry, error) {
	query := `
		SELECT user_id, game_id, rating, play_time, created_at, updated_at
		FROM user_ratings
		WHERE user_id = $1 AND game_id = $2
		FOR UPDATE`

	var e domain.RatingEntry
	err := s.tx.QueryRow(ctx, query, userID, gameID).Scan(
		&e.UserID, &e.GameID, &e.Rating, &e.PlayTime, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("lock rating entry: %w", err)
	}
	return &e, nil
}

func (s *txStore) UpsertEntryPlayTime(ctx context.Context, userID, gameID string, hours float64) error {
	query := `
		INSERT INTO user_ratings (user_id, game_id, rating, play_time, created_at, updated_at)
		VALUES ($1, $2, NULL, $3, now(), now())
		ON CONFLICT (user_id, game_id)
		DO UPDATE SET play_time = user_ratings.play_time + EXCLUDED.play_time, updated_at = now()`

	if _, err := s.tx.Exec(ctx, query, userID, gameID, hours); err != nil {
		return fmt.Errorf("upsert rating entry: %w", err)
	}
	return nil
}

func (s *txStore) SetEntryRating(ctx context.Context, userID, gameID string, rating int) error {
	query := `
		UPDATE user_ratings
		SET rating = $3, updated_at = now()
		WHERE user_id = $1 AND game_id = $2`

	ct, err := s.tx.Exec(ctx, query, userID, gameID, rating)
	if err != nil {
		return fmt.Errorf("set entry rating: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *txStore) EntriesByGame(ctx context.Context, gameID string) ([]domain.RatingEntry, error) {
	query := `
		SELECT user_id, game_id, rating, play_time, created_at, updated_at
		FROM user_ratings
		WHERE game_id = $1
		ORDER BY created_at ASC`

	rows, err := s.tx.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("list entries by game: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (s *txStore) EntriesByUser(ctx context.Context, userID string) ([]domain.RatingEntry, error) {
	query := `
		SELECT user_id, game_id, rating, play_time, created_at, updated_at
		FROM user_ratings
		WHERE user_id = $1
		ORDER BY created_at ASC`

	rows, err := s.tx.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list entries by user: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (s *txStore) UpdateGameAggregates(ctx context.Context, gameID string, playTime, rating float64) error {
	query := `
		UPDATE games
		SET play_time = $2, rating = $3, updated_at = now()
		WHERE id = $1`

	ct, err := s.tx.Exec(ctx, query, gameID, playTime, rating)
	if err != nil {
		return fmt.Errorf("update game aggregates: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("game", gameID)
	}
	return nil
}

func (s *txStore) UpdateUserAggregates(ctx context.Context, userID string, totalPlayTime, averageRating float64) error {
	query := `
		UPDATE users
		SET total_play_time = $2, average_rating = $3, updated_at = now()
		WHERE id = $1`

	ct, err := s.tx.Exec(ctx, query, userID, totalPlayTime, averageRating)
	if err != nil {
		return fmt.Errorf("update user aggregates: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", userID)
	}
	return nil
}

func (s *txStore) InsertComment(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO game_comments (id, game_id, user_id, username, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.tx.Exec(ctx, query, c.ID, c.GameID, c.UserID, c.Username, c.Body, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *txStore) DeleteEntry(ctx context.Context, userID, gameID string) error {
	query := `DELETE FROM user_ratings WHERE user_id = $1 AND game_id = $2`

	if _, err := s.tx.Exec(ctx, query, userID, gameID); err != nil {
		return fmt.Errorf("delete rating entry: %w", err)
	}
	return nil
}

func (s *txStore) DeleteEntriesByGame(ctx context.Context, gameID string) ([]string, error) {
	query := `DELETE FROM user_ratings WHERE game_id = $1 RETURNING user_id`

	rows, err := s.tx.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("delete entries by game: %w", err)
	}
	defer rows.Close()

	userIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted entry row: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted entry rows: %w", err)
	}

	return userIDs, nil
}

func (s *txStore) DeleteCommentsByGame(ctx context.Context, gameID string) error {
	if _, err := s.tx.Exec(ctx, `DELETE FROM game_comments WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("delete comments by game: %w", err)
	}
	return nil
}

func (s *txStore) DeleteCommentsByUser(ctx context.Context, userID string) error {
	if _, err := s.tx.Exec(ctx, `DELETE FROM game_comments WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete comments by user: %w", err)
	}
	return nil
}

func (s *txStore) DeleteGame(ctx context.Context, id string) error {
	ct, err := s.tx.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("game", id)
	}
	return nil
}

func (s *txStore) DeleteUser(ctx context.Context, id string) error {
	ct, err := s.tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}

func collectEntries(rows pgx.Rows) ([]domain.RatingEntry, error) {
	entries := []domain.RatingEntry{}
	for rows.Next() {
		var e domain.RatingEntry
		if err := rows.Scan(&e.UserID, &e.GameID, &e.Rating, &e.PlayTime, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry rows: %w", err)
	}
	return entries, nil
}

// isSerializationFailure checks for PostgreSQL serialization or deadlock
// errors (SQLSTATE 40001 / 40P01).
func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "40001") || strings.Contains(err.Error(), "40P01")
}
