package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/gameworld-labs/gameworld/internal/domain"
	"github.com/gameworld-labs/gameworld/pkg/database"
	apperrors "github.com/gameworld-labs/gameworld/pkg/errors"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return mock
}

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var gameCols = []string{
	"id", "name", "genres", "image", "play_time", "rating", "is_rating_enabled",
	"developer", "publisher", "release_date", "price", "description",
	"created_at", "updated_at",
}

var userCols = []string{
	"id", "name", "total_play_time", "average_rating", "created_at", "updated_at",
}

func sampleGame() domain.Game {
	return domain.Game{
		ID:              "game-1",
		Name:            "Orbit",
		Genres:          []string{"strategy", "simulation"},
		Image:           "https://cdn.gameworld.example/orbit.jpg",
		PlayTime:        12.5,
		Rating:          4.5,
		IsRatingEnabled: true,
		Developer:       "Orbit Labs",
		Publisher:       "GW Publishing",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func gameRow(g domain.Game) []any {
	return []any{
		g.ID, g.Name, g.Genres, g.Image, g.PlayTime, g.Rating, g.IsRatingEnabled,
		g.Developer, g.Publisher, g.ReleaseDate, g.Price, g.Description,
		g.CreatedAt, g.UpdatedAt,
	}
}

func sampleUser() domain.User {
	return domain.User{
		ID:            "user-1",
		Name:          "ana",
		TotalPlayTime: 20,
		AverageRating: 4,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func userRow(u domain.User) []any {
	return []any{u.ID, u.Name, u.TotalPlayTime, u.AverageRating, u.CreatedAt, u.UpdatedAt}
}

func TestGameRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewGameRepository(mock)

	g := sampleGame()

	mock.ExpectExec("INSERT INTO games").
		WithArgs(
			g.ID, g.Name, g.Genres, g.Image, g.PlayTime, g.Rating, g.IsRatingEnabled,
			g.Developer, g.Publisher, g.ReleaseDate, g.Price, g.Description,
			g.CreatedAt, g.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), &g)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_Create_UniqueViolation(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewGameRepository(mock)

	g := sampleGame()

	mock.ExpectExec("INSERT INTO games").
		WithArgs(
			g.ID, g.Name, g.Genres, g.Image, g.PlayTime, g.Rating, g.IsRatingEnabled,
			g.Developer, g.Publisher, g.ReleaseDate, g.Price, g.Description,
			g.CreatedAt, g.UpdatedAt,
		).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), &g)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_GetByID_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewGameRepository(mock)

	g := sampleGame()
	mock.ExpectQuery("SELECT .+ FROM games WHERE id").
		WithArgs(g.ID).
		WillReturnRows(pgxmock.NewRows(gameCols).AddRow(gameRow(g)...))

	result, err := repo.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, result.ID)
	assert.Equal(t, g.Name, result.Name)
	assert.Equal(t, g.Genres, result.Genres)
	assert.True(t, result.IsRatingEnabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_GetByID_EmitsQuerySpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		tp.Shutdown(context.Background()) //nolint:errcheck
		otel.SetTracerProvider(prev)
	})

	mock := newMock(t)
	defer mock.Close()
	repo := NewGameRepository(mock)

	g := sampleGame()
	mock.ExpectQuery("SELECT .+ FROM games WHERE id").
		WithArgs(g.ID).
		WillReturnRows(pgxmock.NewRows(gameCols).AddRow(gameRow(g)...))

	_, err := repo.GetByID(context.Background(), g.ID)
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)
	assert.Equal(t, "db.GetGame", spans[0].Name)
}

func TestGameRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewGameRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM games WHERE id").
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByID(context.Background(), "missing-id")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_List_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewGameRepository(mock)

	g := sampleGame()
	mock.ExpectQuery("SELECT .+ FROM games ORDER BY created_at DESC").
		WillReturnRows(pgxmock.NewRows(gameCols).AddRow(gameRow(g)...))

	games, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, games, 1)
	assert.Equal(t, g.ID, games[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_ToggleRating_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewGameRepository(mock)

	mock.ExpectQuery("UPDATE games SET is_rating_enabled").
		WithArgs("game-1").
		WillReturnRows(pgxmock.NewRows([]string{"is_rating_enabled"}).AddRow(false))

	enabled, err := repo.ToggleRating(context.Background(), "game-1")
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_ToggleRating_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewGameRepository(mock)

	mock.ExpectQuery("UPDATE games SET is_rating_enabled").
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.ToggleRating(context.Background(), "missing-id")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_Comments_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewGameRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM game_comments WHERE game_id").
		WithArgs("game-1").
		WillReturnRows(
			pgxmock.NewRows([]string{"id", "game_id", "user_id", "username", "body", "created_at"}).
				AddRow("c-1", "game-1", "user-1", "ana", "great game", now),
		)

	comments, err := repo.Comments(context.Background(), "game-1")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "ana", comments[0].Username)
	assert.Equal(t, "great game", comments[0].Body)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewUserRepository(mock)

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Name, u.TotalPlayTime, u.AverageRating, u.CreatedAt, u.UpdatedAt).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), &u)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewUserRepository(mock)

	u := sampleUser()
	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs(u.ID).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(userRow(u)...))

	result, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Name, result.Name)
	assert.Equal(t, u.TotalPlayTime, result.TotalPlayTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_PlayedGames_DanglingGame(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewUserRepository(mock)

	rating := 4
	mock.ExpectQuery("SELECT .+ FROM user_ratings .+ LEFT JOIN games").
		WithArgs("user-1", UnknownGameName).
		WillReturnRows(
			pgxmock.NewRows([]string{"game_id", "name", "image", "play_time", "rating"}).
				AddRow("game-1", "Orbit", "https://img.example/orbit.png", 12.0, &rating).
				AddRow("game-gone", UnknownGameName, "", 3.0, (*int)(nil)),
		)

	played, err := repo.PlayedGames(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, played, 2)
	assert.Equal(t, "Orbit", played[0].GameName)
	assert.Equal(t, "https://img.example/orbit.png", played[0].GameImage)
	assert.Equal(t, UnknownGameName, played[1].GameName)
	assert.Empty(t, played[1].GameImage)
	assert.Nil(t, played[1].Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CommentsByUser_JoinsGameDisplayFields(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewUserRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM game_comments .+ LEFT JOIN games").
		WithArgs("user-1", UnknownGameName).
		WillReturnRows(
			pgxmock.NewRows([]string{"game_id", "name", "image", "body", "created_at"}).
				AddRow("game-1", "Orbit", "https://img.example/orbit.png", "great soundtrack", now).
				AddRow("game-gone", UnknownGameName, "", "rip", now),
		)

	comments, err := repo.CommentsByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Orbit", comments[0].GameName)
	assert.Equal(t, "https://img.example/orbit.png", comments[0].GameImage)
	assert.Equal(t, "great soundtrack", comments[0].Comment)
	assert.Equal(t, UnknownGameName, comments[1].GameName)
	assert.Empty(t, comments[1].GameImage)
	assert.NoError(t, mock.ExpectationsWereMet())
}
