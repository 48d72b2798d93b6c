package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gameworld-labs/gameworld/internal/domain"
	pkgkafka "github.com/gameworld-labs/gameworld/pkg/kafka"
)

// Kafka topic constants for gameworld domain events.
const (
	TopicGameCreated   = "gameworld.game.created"
	TopicGameRemoved   = "gameworld.game.removed"
	TopicGamePlayed    = "gameworld.game.played"
	TopicGameRated     = "gameworld.game.rated"
	TopicGameCommented = "gameworld.game.commented"
	TopicUserCreated   = "gameworld.user.created"
	TopicUserRemoved   = "gameworld.user.removed"
)

// Aggregate type constants.
const (
	AggregateTypeGame = "game"
	AggregateTypeUser = "user"
)

// Source identifier for events originating from this service.
const SourceGameworld = "gameworld-service"

// GameCreatedData is the payload for a game.created event.
type GameCreatedData struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Genres          []string `json:"genres"`
	IsRatingEnabled bool     `json:"is_rating_enabled"`
}

// GameRemovedData is the payload for a game.removed event.
type GameRemovedData struct {
	ID            string `json:"id"`
	AffectedUsers int    `json:"affected_users"`
}

// GamePlayedData is the payload for a game.played event.
type GamePlayedData struct {
	GameID   string  `json:"game_id"`
	UserID   string  `json:"user_id"`
	Hours    float64 `json:"hours"`
	PlayTime float64 `json:"play_time"`
}

// GameRatedData is the payload for a game.rated event.
type GameRatedData struct {
	GameID     string  `json:"game_id"`
	UserID     string  `json:"user_id"`
	Rating     int     `json:"rating"`
	GameRating float64 `json:"game_rating"`
}

// GameCommentedData is the payload for a game.commented event.
type GameCommentedData struct {
	GameID    string `json:"game_id"`
	UserID    string `json:"user_id"`
	CommentID string `json:"comment_id"`
}

// UserCreatedData is the payload for a user.created event.
type UserCreatedData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserRemovedData is the payload for a user.removed event.
type UserRemovedData struct {
	ID            string `json:"id"`
	AffectedGames int    `json:"affected_games"`
}

// Producer publishes gameworld domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishGameCreated publishes a game.created event.
func (p *Producer) PublishGameCreated(ctx context.Context, game *domain.Game) error {
	data := GameCreatedData{
		ID:              game.ID,
		Name:            game.Name,
		Genres:          game.Genres,
		IsRatingEnabled: game.IsRatingEnabled,
	}

	event, err := pkgkafka.NewEvent(TopicGameCreated, game.ID, AggregateTypeGame, SourceGameworld, data)
	if err != nil {
		return fmt.Errorf("create game.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicGameCreated, event); err != nil {
		return fmt.Errorf("publish game.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published game.created event",
		slog.String("game_id", game.ID),
	)

	return nil
}

// PublishGameRemoved publishes a game.removed event.
func (p *Producer) PublishGameRemoved(ctx context.Context, id string, affectedUsers int) error {
	data := GameRemovedData{ID: id, AffectedUsers: affectedUsers}

	event, err := pkgkafka.NewEvent(TopicGameRemoved, id, AggregateTypeGame, SourceGameworld, data)
	if err != nil {
		return fmt.Errorf("create game.removed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicGameRemoved, event); err != nil {
		return fmt.Errorf("publish game.removed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published game.removed event",
		slog.String("game_id", id),
		slog.Int("affected_users", affectedUsers),
	)

	return nil
}

// PublishGamePlayed publishes a game.played event.
func (p *Producer) PublishGamePlayed(ctx context.Context, userID, gameID string, hours, playTime float64) error {
	data := GamePlayedData{GameID: gameID, UserID: userID, Hours: hours, PlayTime: playTime}

	event, err := pkgkafka.NewEvent(TopicGamePlayed, gameID, AggregateTypeGame, SourceGameworld, data)
	if err != nil {
		return fmt.Errorf("create game.played event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicGamePlayed, event); err != nil {
		return fmt.Errorf("publish game.played event: %w", err)
	}

	p.logger.DebugContext(ctx, "published game.played event",
		slog.String("game_id", gameID),
		slog.String("user_id", userID),
		slog.Float64("hours", hours),
	)

	return nil
}

// PublishGameRated publishes a game.rated event.
func (p *Producer) PublishGameRated(ctx context.Context, userID, gameID string, rating int, gameRating float64) error {
	data := GameRatedData{GameID: gameID, UserID: userID, Rating: rating, GameRating: gameRating}

	event, err := pkgkafka.NewEvent(TopicGameRated, gameID, AggregateTypeGame, SourceGameworld, data)
	if err != nil {
		return fmt.Errorf("create game.rated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicGameRated, event); err != nil {
		return fmt.Errorf("publish game.rated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published game.rated event",
		slog.String("game_id", gameID),
		slog.String("user_id", userID),
		slog.Int("rating", rating),
	)

	return nil
}

// PublishGameCommented publishes a game.commented event.
func (p *Producer) PublishGameCommented(ctx context.Context, comment *domain.Comment) error {
	data := GameCommentedData{GameID: comment.GameID, UserID: comment.UserID, CommentID: comment.ID}

	event, err := pkgkafka.NewEvent(TopicGameCommented, comment.GameID, AggregateTypeGame, SourceGameworld, data)
	if err != nil {
		return fmt.Errorf("create game.commented event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicGameCommented, event); err != nil {
		return fmt.Errorf("publish game.commented event: %w", err)
	}

	p.logger.DebugContext(ctx, "published game.commented event",
		slog.String("game_id", comment.GameID),
		slog.String("user_id", comment.UserID),
	)

	return nil
}

// PublishUserCreated publishes a user.created event.
func (p *Producer) PublishUserCreated(ctx context.Context, user *domain.User) error {
	data := UserCreatedData{ID: user.ID, Name: user.Name}

	event, err := pkgkafka.NewEvent(TopicUserCreated, user.ID, AggregateTypeUser, SourceGameworld, data)
	if err != nil {
		return fmt.Errorf("create user.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserCreated, event); err != nil {
		return fmt.Errorf("publish user.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.created event",
		slog.String("user_id", user.ID),
	)

	return nil
}

// PublishUserRemoved publishes a user.removed event.
func (p *Producer) PublishUserRemoved(ctx context.Context, id string, affectedGames int) error {
	data := UserRemovedData{ID: id, AffectedGames: affectedGames}

	event, err := pkgkafka.NewEvent(TopicUserRemoved, id, AggregateTypeUser, SourceGameworld, data)
	if err != nil {
		return fmt.Errorf("create user.removed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRemoved, event); err != nil {
		return fmt.Errorf("publish user.removed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.removed event",
		slog.String("user_id", id),
		slog.Int("affected_games", affectedGames),
	)

	return nil
}
