package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gameworld-labs/gameworld/internal/domain"
	"github.com/gameworld-labs/gameworld/pkg/database"
	apperrors "github.com/gameworld-labs/gameworld/pkg/errors"
)

const gameColumns = `id, name, genres, image, play_time, rating, is_rating_enabled,
		developer, publisher, release_date, price, description, created_at, updated_at`

// GameRepository implements repository.GameRepository using PostgreSQL.
type GameRepository struct {
	db database.DBTX
}

// NewGameRepository creates a new PostgreSQL-backed game repository.
func NewGameRepository(db database.DBTX) *GameRepository {
	return &GameRepository{db: db}
}

// Create inserts a new game into the database.
func (r *GameRepository) Create(ctx context.Context, g *domain.Game) (err error) {
	query := `
		INSERT INTO games (id, name, genres, image, play_time, rating, is_rating_enabled,
			developer, publisher, release_date, price, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	ctx, end := database.TraceQuery(ctx, "CreateGame", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		g.ID,
		g.Name,
		g.Genres,
		g.Image,
		g.PlayTime,
		g.Rating,
		g.IsRatingEnabled,
		g.Developer,
		g.Publisher,
		g.ReleaseDate,
		g.Price,
		g.Description,
		g.CreatedAt,
		g.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("game", "name", g.Name)
		}
		return fmt.Errorf("insert game: %w", err)
	}

	return nil
}

// GetByID retrieves a game by its ID.
func (r *GameRepository) GetByID(ctx context.Context, id string) (_ *domain.Game, err error) {
	query := fmt.Sprintf(`SELECT %s FROM games WHERE id = $1`, gameColumns)

	ctx, end := database.TraceQuery(ctx, "GetGame", query)
	defer func() { end(err) }()

	g, err := scanGame(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("game", id)
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}
	return g, nil
}

// List returns all games, newest first.
func (r *GameRepository) List(ctx context.Context) (_ []domain.Game, err error) {
	query := fmt.Sprintf(`SELECT %s FROM games ORDER BY created_at DESC`, gameColumns)

	ctx, end := database.TraceQuery(ctx, "ListGames", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := []domain.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game row: %w", err)
		}
		games = append(games, *g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game rows: %w", err)
	}

	return games, nil
}

// ToggleRating flips the game's rating-enabled flag and returns the new state.
func (r *GameRepository) ToggleRating(ctx context.Context, id string) (_ bool, err error) {
	query := `
		UPDATE games
		SET is_rating_enabled = NOT is_rating_enabled, updated_at = now()
		WHERE id = $1
		RETURNING is_rating_enabled`

	ctx, end := database.TraceQuery(ctx, "ToggleGameRating", query)
	defer func() { end(err) }()

	var enabled bool
	if err = r.db.QueryRow(ctx, query, id).Scan(&enabled); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NotFound("game", id)
		}
		return false, fmt.Errorf("toggle game rating: %w", err)
	}

	return enabled, nil
}

// Comments returns the comments left on a game, oldest first.
func (r *GameRepository) Comments(ctx context.Context, gameID string) (_ []domain.Comment, err error) {
	query := `
		SELECT id, game_id, user_id, username, body, created_at
		FROM game_comments
		WHERE game_id = $1
		ORDER BY created_at ASC`

	ctx, end := database.TraceQuery(ctx, "ListGameComments", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("list game comments: %w", err)
	}
	defer rows.Close()

	return collectComments(rows)
}

func scanGame(row pgx.Row) (*domain.Game, error) {
	var g domain.Game
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Genres,
		&g.Image,
		&g.PlayTime,
		&g.Rating,
		&g.IsRatingEnabled,
		&g.Developer,
		&g.Publisher,
		&g.ReleaseDate,
		&g.Price,
		&g.Description,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func collectComments(rows pgx.Rows) ([]domain.Comment, error) {
	comments := []domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.GameID, &c.UserID, &c.Username, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment rows: %w", err)
	}
	return comments, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
