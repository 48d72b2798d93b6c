// Package rediscache decorates the game repository with a read-through
// Redis cache. Point reads and the catalog list are cached with a short
// TTL; every mutation invalidates the affected keys. Cache failures are
// logged and never fail the request.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gameworld-labs/gameworld/internal/domain"
	"github.com/gameworld-labs/gameworld/internal/repository"
)

const (
	gameKeyPrefix = "gameworld:game:"
	gameListKey   = "gameworld:games:all"
)

// GameRepository wraps a repository.GameRepository with Redis caching.
type GameRepository struct {
	inner  repository.GameRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewGameRepository creates a caching decorator around inner.
func NewGameRepository(inner repository.GameRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *GameRepository {
	return &GameRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

// Create inserts the game and drops the cached catalog list.
func (r *GameRepository) Create(ctx context.Context, g *domain.Game) error {
	if err := r.inner.Create(ctx, g); err != nil {
		return err
	}
	r.invalidate(ctx, gameListKey)
	return nil
}

// GetByID returns the cached game when present, falling back to the store.
func (r *GameRepository) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	key := gameKeyPrefix + id

	if data, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var g domain.Game
		if err := json.Unmarshal(data, &g); err == nil {
			return &g, nil
		}
		r.invalidate(ctx, key)
	} else if err != redis.Nil {
		r.logger.WarnContext(ctx, "game cache read failed", "key", key, "error", err)
	}

	g, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.store(ctx, key, g)
	return g, nil
}

// List returns the cached catalog when present, falling back to the store.
func (r *GameRepository) List(ctx context.Context) ([]domain.Game, error) {
	if data, err := r.client.Get(ctx, gameListKey).Bytes(); err == nil {
		var games []domain.Game
		if err := json.Unmarshal(data, &games); err == nil {
			return games, nil
		}
		r.invalidate(ctx, gameListKey)
	} else if err != redis.Nil {
		r.logger.WarnContext(ctx, "game cache read failed", "key", gameListKey, "error", err)
	}

	games, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	r.store(ctx, gameListKey, games)
	return games, nil
}

// ToggleRating flips the flag in the store and drops the stale entries.
func (r *GameRepository) ToggleRating(ctx context.Context, id string) (bool, error) {
	enabled, err := r.inner.ToggleRating(ctx, id)
	if err != nil {
		return false, err
	}
	r.Invalidate(ctx, id)
	return enabled, nil
}

// Comments passes through; comments are not cached.
func (r *GameRepository) Comments(ctx context.Context, gameID string) ([]domain.Comment, error) {
	return r.inner.Comments(ctx, gameID)
}

// Invalidate drops the cached entry for a game and the catalog list. The
// interaction coordinator calls this after aggregate-mutating transactions.
func (r *GameRepository) Invalidate(ctx context.Context, id string) {
	r.invalidate(ctx, gameKeyPrefix+id, gameListKey)
}

func (r *GameRepository) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.WarnContext(ctx, "game cache marshal failed", "key", key, "error", err)
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "game cache write failed", "key", key, "error", err)
	}
}

func (r *GameRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.WarnContext(ctx, "game cache invalidation failed", "keys", fmt.Sprint(keys), "error", err)
	}
}
