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

// UserService implements the business logic for user operations.
type UserService struct {
	repo     repository.UserRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, producer *event.Producer, logger *slog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateUser registers a user. Names are unique across the service.
func (s *UserService) CreateUser(ctx context.Context, name string) (*domain.User, error) {
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.producer.PublishUserCreated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.created event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user created",
		slog.String("user_id", user.ID),
		slog.String("name", user.Name),
	)

	return user, nil
}

// ListUsers returns all users, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetProfile assembles the user's read projection: stored aggregates, the
// games they played sorted by play time descending, and their comments.
// The most-played game is the head of the sorted list.
func (s *UserService) GetProfile(ctx context.Context, id string) (*domain.UserProfile, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	played, err := s.repo.PlayedGames(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get played games: %w", err)
	}

	comments, err := s.repo.CommentsByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user comments: %w", err)
	}

	profile := &domain.UserProfile{
		ID:            user.ID,
		Name:          user.Name,
		AverageRating: user.AverageRating,
		TotalPlayTime: user.TotalPlayTime,
		PlayedGames:   played,
		Comments:      comments,
	}
	if len(played) > 0 {
		most := played[0]
		profile.MostPlayedGame = &most
	}

	return profile, nil
}
