package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/gameworld-labs/gameworld/internal/domain"
	"github.com/gameworld-labs/gameworld/internal/event"
	"github.com/gameworld-labs/gameworld/internal/repository"
	"github.com/gameworld-labs/gameworld/internal/stats"
	apperrors "github.com/gameworld-labs/gameworld/pkg/errors"
)

// CacheInvalidator drops cached game state after a mutation. The Redis
// game cache implements it; NoopInvalidator serves when caching is off.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, gameID string)
}

// NoopInvalidator is a CacheInvalidator that does nothing.
type NoopInvalidator struct{}

// Invalidate implements CacheInvalidator.
func (NoopInvalidator) Invalidate(context.Context, string) {}

// InteractionService coordinates the mutations that touch more than one
// record: logging play time, rating, commenting, and the two cascading
// removals. Every operation runs in a single database transaction so the
// denormalized aggregates stay consistent with the rating entries.
type InteractionService struct {
	repo     repository.InteractionRepository
	producer *event.Producer
	cache    CacheInvalidator
	logger   *slog.Logger
}

// NewInteractionService creates a new interaction service.
func NewInteractionService(repo repository.InteractionRepository, producer *event.Producer, cache CacheInvalidator, logger *slog.Logger) *InteractionService {
	return &InteractionService{
		repo:     repo,
		producer: producer,
		cache:    cache,
		logger:   logger,
	}
}

// LogPlayTime adds hours to the user's play record for a game, creating
// the record when none exists, and refreshes both the game's cumulative
// play time and the user's aggregates. Repeating the call accumulates.
func (s *InteractionService) LogPlayTime(ctx context.Context, userID, gameID string, hours float64) (*domain.RatingEntry, error) {
	if hours <= 0 || math.IsInf(hours, 0) || math.IsNaN(hours) {
		return nil, apperrors.InvalidInput("play_time must be a positive number of hours")
	}

	var entry *domain.RatingEntry

	err := s.repo.InTx(ctx, func(ctx context.Context, tx repository.TxStore) error {
		// Lock order is user then game everywhere, matching RemoveUser,
		// so concurrent interactions cannot deadlock on the two rows.
		if _, err := tx.GetUserForUpdate(ctx, userID); err != nil {
			return err
		}
		game, err := tx.GetGameForUpdate(ctx, gameID)
		if err != nil {
			return err
		}

		if err := tx.UpsertEntryPlayTime(ctx, userID, gameID, hours); err != nil {
			return err
		}

		if err := tx.UpdateGameAggregates(ctx, gameID, game.PlayTime+hours, game.Rating); err != nil {
			return err
		}

		entries, err := tx.EntriesByUser(ctx, userID)
		if err != nil {
			return err
		}
		agg := stats.UserAggregates(entries)
		if err := tx.UpdateUserAggregates(ctx, userID, agg.TotalPlayTime, agg.AverageRating); err != nil {
			return err
		}

		for i := range entries {
			if entries[i].GameID == gameID {
				entry = &entries[i]
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, gameID)

	if err := s.producer.PublishGamePlayed(ctx, userID, gameID, hours, entry.PlayTime); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish game.played event",
			slog.String("game_id", gameID),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "play time logged",
		slog.String("game_id", gameID),
		slog.String("user_id", userID),
		slog.Float64("hours", hours),
	)

	return entry, nil
}

// RateGame records the user's rating for a game, overwriting any previous
// rating, and recomputes the game's average from the full set of entries.
// Rating requires the game to accept ratings and the user to have at least
// one hour of logged play time.
func (s *InteractionService) RateGame(ctx context.Context, userID, gameID string, rating int) (*domain.Game, error) {
	if !domain.ValidRating(rating) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be an integer between %d and %d", domain.MinRating, domain.MaxRating))
	}

	var game *domain.Game

	err := s.repo.InTx(ctx, func(ctx context.Context, tx repository.TxStore) error {
		user, err := tx.GetUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		g, err := tx.GetGameForUpdate(ctx, gameID)
		if err != nil {
			return err
		}

		if err := s.checkInteractionGates(ctx, tx, g, user.ID); err != nil {
			return err
		}

		if err := tx.SetEntryRating(ctx, userID, gameID, rating); err != nil {
			return err
		}

		entries, err := tx.EntriesByGame(ctx, gameID)
		if err != nil {
			return err
		}
		g.Rating = stats.GameRating(entries)
		if err := tx.UpdateGameAggregates(ctx, gameID, g.PlayTime, g.Rating); err != nil {
			return err
		}

		userEntries, err := tx.EntriesByUser(ctx, userID)
		if err != nil {
			return err
		}
		agg := stats.UserAggregates(userEntries)
		if err := tx.UpdateUserAggregates(ctx, userID, agg.TotalPlayTime, agg.AverageRating); err != nil {
			return err
		}

		game = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, gameID)

	if err := s.producer.PublishGameRated(ctx, userID, gameID, rating, game.Rating); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish game.rated event",
			slog.String("game_id", gameID),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "game rated",
		slog.String("game_id", gameID),
		slog.String("user_id", userID),
		slog.Int("rating", rating),
	)

	return game, nil
}

// CommentOnGame appends a comment to a game, snapshotting the author's
// current name. The same play-time and rating-enabled gates as rating
// apply; the comment itself is the only record written.
func (s *InteractionService) CommentOnGame(ctx context.Context, userID, gameID, text string) (*domain.Comment, error) {
	body := domain.NormalizeComment(text)
	if body == "" {
		return nil, apperrors.InvalidInput("comment must not be empty")
	}

	var comment *domain.Comment

	err := s.repo.InTx(ctx, func(ctx context.Context, tx repository.TxStore) error {
		user, err := tx.GetUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		game, err := tx.GetGameForUpdate(ctx, gameID)
		if err != nil {
			return err
		}

		if err := s.checkInteractionGates(ctx, tx, game, user.ID); err != nil {
			return err
		}

		comment = &domain.Comment{
			ID:        uuid.New().String(),
			GameID:    gameID,
			UserID:    userID,
			Username:  user.Name,
			Body:      body,
			CreatedAt: time.Now().UTC(),
		}
		return tx.InsertComment(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishGameCommented(ctx, comment); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish game.commented event",
			slog.String("game_id", gameID),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "comment added",
		slog.String("game_id", gameID),
		slog.String("user_id", userID),
		slog.String("comment_id", comment.ID),
	)

	return comment, nil
}

// RemoveGame deletes a game together with every rating entry and comment
// that references it, refreshing the aggregates of each affected user
// before the game row goes away. The whole cascade is one transaction.
func (s *InteractionService) RemoveGame(ctx context.Context, gameID string) error {
	var affected int

	err := s.repo.InTx(ctx, func(ctx context.Context, tx repository.TxStore) error {
		if _, err := tx.GetGameForUpdate(ctx, gameID); err != nil {
			return err
		}

		userIDs, err := tx.DeleteEntriesByGame(ctx, gameID)
		if err != nil {
			return err
		}

		seen := map[string]bool{}
		for _, userID := range userIDs {
			if seen[userID] {
				continue
			}
			seen[userID] = true

			entries, err := tx.EntriesByUser(ctx, userID)
			if err != nil {
				return err
			}
			agg := stats.UserAggregates(entries)
			if err := tx.UpdateUserAggregates(ctx, userID, agg.TotalPlayTime, agg.AverageRating); err != nil {
				return err
			}
		}
		affected = len(seen)

		if err := tx.DeleteCommentsByGame(ctx, gameID); err != nil {
			return err
		}
		return tx.DeleteGame(ctx, gameID)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, gameID)

	if err := s.producer.PublishGameRemoved(ctx, gameID, affected); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish game.removed event",
			slog.String("game_id", gameID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "game removed",
		slog.String("game_id", gameID),
		slog.Int("affected_users", affected),
	)

	return nil
}

// RemoveUser deletes a user together with their rating entries and
// comments. Each game the user played gets its cumulative play time
// decremented (floored at zero) and its average rating recomputed from
// the surviving entries; games that no longer exist are skipped.
func (s *InteractionService) RemoveUser(ctx context.Context, userID string) error {
	var affectedGames []string

	err := s.repo.InTx(ctx, func(ctx context.Context, tx repository.TxStore) error {
		if _, err := tx.GetUserForUpdate(ctx, userID); err != nil {
			return err
		}

		entries, err := tx.EntriesByUser(ctx, userID)
		if err != nil {
			return err
		}

		for _, e := range entries {
			game, err := tx.GetGameForUpdate(ctx, e.GameID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					// Dangling reference from an earlier partial cleanup;
					// drop the entry and move on.
					if err := tx.DeleteEntry(ctx, userID, e.GameID); err != nil {
						return err
					}
					continue
				}
				return err
			}

			if err := tx.DeleteEntry(ctx, userID, e.GameID); err != nil {
				return err
			}

			surviving, err := tx.EntriesByGame(ctx, e.GameID)
			if err != nil {
				return err
			}

			playTime := game.PlayTime - e.PlayTime
			if playTime < 0 {
				playTime = 0
			}
			if err := tx.UpdateGameAggregates(ctx, e.GameID, playTime, stats.GameRating(surviving)); err != nil {
				return err
			}
			affectedGames = append(affectedGames, e.GameID)
		}

		if err := tx.DeleteCommentsByUser(ctx, userID); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, userID)
	})
	if err != nil {
		return err
	}

	for _, gameID := range affectedGames {
		s.cache.Invalidate(ctx, gameID)
	}

	if err := s.producer.PublishUserRemoved(ctx, userID, len(affectedGames)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.removed event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user removed",
		slog.String("user_id", userID),
		slog.Int("affected_games", len(affectedGames)),
	)

	return nil
}

// checkInteractionGates enforces the shared preconditions for rating and
// commenting: the game must accept ratings and the user needs at least
// MinPlayTimeToInteract logged hours on it.
func (s *InteractionService) checkInteractionGates(ctx context.Context, tx repository.TxStore, game *domain.Game, userID string) error {
	if !game.IsRatingEnabled {
		return apperrors.PreconditionFailed("rating is disabled for this game")
	}

	entry, err := tx.GetEntry(ctx, userID, game.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.PreconditionFailed("insufficient play time for this game")
		}
		return err
	}
	if entry.PlayTime < domain.MinPlayTimeToInteract {
		return apperrors.PreconditionFailed("insufficient play time for this game")
	}
	return nil
}
