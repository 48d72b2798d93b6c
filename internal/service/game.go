package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gameworld-labs/gameworld/internal/domain"
	"github.com/gameworld-labs/gameworld/internal/event"
	"github.com/gameworld-labs/gameworld/internal/repository"
	apperrors "github.com/gameworld-labs/gameworld/pkg/errors"
)

// CreateGameInput holds the parameters for adding a game to the catalog.
type CreateGameInput struct {
	Name            string
	Genres          []string
	Image           string
	IsRatingEnabled *bool
	Developer       string
	Publisher       string
	ReleaseDate     *time.Time
	Price           *int64
	Description     string
}

// GameDetail is the full read projection for a game: the catalog entry
// plus every comment left on it.
type GameDetail struct {
	Game     domain.Game      `json:"game"`
	Comments []domain.Comment `json:"comments"`
}

// GameService implements the business logic for catalog operations.
type GameService struct {
	repo     repository.GameRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewGameService creates a new game service.
func NewGameService(repo repository.GameRepository, producer *event.Producer, logger *slog.Logger) *GameService {
	return &GameService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateGame adds a game to the catalog. Ratings are accepted by default.
func (s *GameService) CreateGame(ctx context.Context, input *CreateGameInput) (*domain.Game, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if !domain.ValidGenreCount(input.Genres) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("a game needs between %d and %d genres", domain.MinGenres, domain.MaxGenres))
	}
	if input.Image == "" {
		return nil, apperrors.InvalidInput("image is required")
	}

	ratingEnabled := true
	if input.IsRatingEnabled != nil {
		ratingEnabled = *input.IsRatingEnabled
	}

	now := time.Now().UTC()
	game := &domain.Game{
		ID:              uuid.New().String(),
		Name:            input.Name,
		Genres:          input.Genres,
		Image:           input.Image,
		IsRatingEnabled: ratingEnabled,
		Developer:       input.Developer,
		Publisher:       input.Publisher,
		ReleaseDate:     input.ReleaseDate,
		Price:           input.Price,
		Description:     input.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	if err := s.producer.PublishGameCreated(ctx, game); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish game.created event",
			slog.String("game_id", game.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "game created",
		slog.String("game_id", game.ID),
		slog.String("name", game.Name),
	)

	return game, nil
}

// GetGame returns a game with its comments.
func (s *GameService) GetGame(ctx context.Context, id string) (*GameDetail, error) {
	game, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}

	comments, err := s.repo.Comments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get game comments: %w", err)
	}

	return &GameDetail{Game: *game, Comments: comments}, nil
}

// ListGames returns the whole catalog, newest first.
func (s *GameService) ListGames(ctx context.Context) ([]domain.Game, error) {
	games, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

// ToggleRating flips whether a game accepts ratings and returns the new
// state. Existing ratings are kept either way.
func (s *GameService) ToggleRating(ctx context.Context, id string) (bool, error) {
	enabled, err := s.repo.ToggleRating(ctx, id)
	if err != nil {
		return false, fmt.Errorf("toggle game rating: %w", err)
	}

	s.logger.InfoContext(ctx, "game rating toggled",
		slog.String("game_id", id),
		slog.Bool("is_rating_enabled", enabled),
	)

	return enabled, nil
}
