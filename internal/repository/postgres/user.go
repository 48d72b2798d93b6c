package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gameworld-labs/gameworld/internal/domain"
	"github.com/gameworld-labs/gameworld/pkg/database"
	apperrors "github.com/gameworld-labs/gameworld/pkg/errors"
)

const userColumns = `id, name, total_play_time, average_rating, created_at, updated_at`

// UnknownGameName is rendered in place of a game that was removed after
// the user played it.
const UnknownGameName = "unknown game"

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user into the database.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	query := `
		INSERT INTO users (id, name, total_play_time, average_rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	ctx, end := database.TraceQuery(ctx, "CreateUser", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		u.ID,
		u.Name,
		u.TotalPlayTime,
		u.AverageRating,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "name", u.Name)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by its ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (_ *domain.User, err error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	ctx, end := database.TraceQuery(ctx, "GetUser", query)
	defer func() { end(err) }()

	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// List returns all users, newest first.
func (r *UserRepository) List(ctx context.Context) (_ []domain.User, err error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at DESC`, userColumns)

	ctx, end := database.TraceQuery(ctx, "ListUsers", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	return users, nil
}

// PlayedGames returns the user's play records joined with the game catalog,
// sorted by play time descending. A record whose game was removed keeps its
// play time and surfaces with a placeholder name.
func (r *UserRepository) PlayedGames(ctx context.Context, userID string) (_ []domain.PlayedGame, err error) {
	query := `
		SELECT r.game_id, COALESCE(g.name, $2), COALESCE(g.image, ''), r.play_time, r.rating
		FROM user_ratings r
		LEFT JOIN games g ON g.id = r.game_id
		WHERE r.user_id = $1
		ORDER BY r.play_time DESC, r.created_at ASC`

	ctx, end := database.TraceQuery(ctx, "ListPlayedGames", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, userID, UnknownGameName)
	if err != nil {
		return nil, fmt.Errorf("list played games: %w", err)
	}
	defer rows.Close()

	played := []domain.PlayedGame{}
	for rows.Next() {
		var pg domain.PlayedGame
		if err := rows.Scan(&pg.GameID, &pg.GameName, &pg.GameImage, &pg.PlayTime, &pg.Rating); err != nil {
			return nil, fmt.Errorf("scan played game row: %w", err)
		}
		played = append(played, pg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate played game rows: %w", err)
	}

	return played, nil
}

// CommentsByUser returns every comment the user has left, oldest first,
// with the commented game's name and image denormalized for display.
// Comments on a since-removed game surface with a placeholder name.
func (r *UserRepository) CommentsByUser(ctx context.Context, userID string) (_ []domain.ProfileComment, err error) {
	query := `
		SELECT c.game_id, COALESCE(g.name, $2), COALESCE(g.image, ''), c.body, c.created_at
		FROM game_comments c
		LEFT JOIN games g ON g.id = c.game_id
		WHERE c.user_id = $1
		ORDER BY c.created_at ASC`

	ctx, end := database.TraceQuery(ctx, "ListUserComments", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, userID, UnknownGameName)
	if err != nil {
		return nil, fmt.Errorf("list user comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.ProfileComment{}
	for rows.Next() {
		var pc domain.ProfileComment
		if err := rows.Scan(&pc.GameID, &pc.GameName, &pc.GameImage, &pc.Comment, &pc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user comment row: %w", err)
		}
		comments = append(comments, pc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user comment rows: %w", err)
	}

	return comments, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.TotalPlayTime,
		&u.AverageRating,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
