package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gameworld-labs/gameworld/internal/domain"
	apperrors "github.com/gameworld-labs/gameworld/pkg/errors"
)

// --- Mock Repository ---

type mockGameRepository struct {
	mock.Mock
}

func (m *mockGameRepository) Create(ctx context.Context, game *domain.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *mockGameRepository) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Game), args.Error(1)
}

func (m *mockGameRepository) List(ctx context.Context) ([]domain.Game, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Game), args.Error(1)
}

func (m *mockGameRepository) ToggleRating(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockGameRepository) Comments(ctx context.Context, gameID string) ([]domain.Comment, error) {
	args := m.Called(ctx, gameID)
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func newTestGameService(repo *mockGameRepository) *GameService {
	return NewGameService(repo, newTestProducer(), newTestLogger())
}

// --- Tests ---

func TestCreateGame_Success(t *testing.T) {
	repo := new(mockGameRepository)
	svc := newTestGameService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Game")).Return(nil)

	game, err := svc.CreateGame(ctx, &CreateGameInput{
		Name:   "Orbit",
		Genres: []string{"strategy", "simulation"},
		Image:  "https://cdn.gameworld.example/orbit.jpg",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, game.ID)
	assert.Equal(t, "Orbit", game.Name)
	assert.True(t, game.IsRatingEnabled)
	assert.Equal(t, 0.0, game.Rating)
	assert.Equal(t, 0.0, game.PlayTime)
	repo.AssertExpectations(t)
}

func TestCreateGame_RatingDisabledExplicitly(t *testing.T) {
	repo := new(mockGameRepository)
	svc := newTestGameService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Game")).Return(nil)

	disabled := false
	game, err := svc.CreateGame(ctx, &CreateGameInput{
		Name:            "Muted",
		Genres:          []string{"puzzle"},
		Image:           "https://cdn.gameworld.example/muted.jpg",
		IsRatingEnabled: &disabled,
	})

	require.NoError(t, err)
	assert.False(t, game.IsRatingEnabled)
}

func TestCreateGame_Validation(t *testing.T) {
	repo := new(mockGameRepository)
	svc := newTestGameService(repo)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateGameInput
	}{
		{"missing name", CreateGameInput{Genres: []string{"action"}, Image: "i.jpg"}},
		{"no genres", CreateGameInput{Name: "X", Image: "i.jpg"}},
		{"too many genres", CreateGameInput{Name: "X", Genres: []string{"a", "b", "c", "d", "e", "f"}, Image: "i.jpg"}},
		{"missing image", CreateGameInput{Name: "X", Genres: []string{"action"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateGame(ctx, &tt.input)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
	repo.AssertNotCalled(t, "Create")
}

func TestCreateGame_DuplicateName(t *testing.T) {
	repo := new(mockGameRepository)
	svc := newTestGameService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Game")).
		Return(apperrors.AlreadyExists("game", "name", "Orbit"))

	_, err := svc.CreateGame(ctx, &CreateGameInput{
		Name:   "Orbit",
		Genres: []string{"strategy"},
		Image:  "orbit.jpg",
	})

	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestGetGame_WithComments(t *testing.T) {
	repo := new(mockGameRepository)
	svc := newTestGameService(repo)
	ctx := context.Background()

	game := &domain.Game{ID: "game-1", Name: "Orbit"}
	comments := []domain.Comment{{ID: "c-1", GameID: "game-1", Username: "ana", Body: "nice"}}

	repo.On("GetByID", ctx, "game-1").Return(game, nil)
	repo.On("Comments", ctx, "game-1").Return(comments, nil)

	detail, err := svc.GetGame(ctx, "game-1")
	require.NoError(t, err)
	assert.Equal(t, "Orbit", detail.Game.Name)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "ana", detail.Comments[0].Username)
}

func TestGetGame_NotFound(t *testing.T) {
	repo := new(mockGameRepository)
	svc := newTestGameService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, "missing").Return(nil, apperrors.NotFound("game", "missing"))

	_, err := svc.GetGame(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestToggleRating_Success(t *testing.T) {
	repo := new(mockGameRepository)
	svc := newTestGameService(repo)
	ctx := context.Background()

	repo.On("ToggleRating", ctx, "game-1").Return(false, nil)

	enabled, err := svc.ToggleRating(ctx, "game-1")
	require.NoError(t, err)
	assert.False(t, enabled)
}
