package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gameworld-labs/gameworld/internal/service"
	"github.com/gameworld-labs/gameworld/pkg/health"
	"github.com/gameworld-labs/gameworld/pkg/middleware"
)

// RouterConfig carries the cross-cutting settings the router needs.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	RateLimitRPS   int
	RateLimitBurst int
}

// NewRouter creates a chi router with all gameworld routes registered.
func NewRouter(
	gameService *service.GameService,
	userService *service.UserService,
	interactionService *service.InteractionService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("gameworld"))

	// Health and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	gameHandler := NewGameHandler(gameService, interactionService, logger)
	userHandler := NewUserHandler(userService, interactionService, logger)
	interactionHandler := NewInteractionHandler(interactionService, logger)

	// Rate limiting applies to the public API only, not health or metrics.
	var rateLimit func(http.Handler) http.Handler
	if cfg.RateLimitRPS > 0 {
		rateLimit = middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	}

	r.Route("/api/v1/games", func(r chi.Router) {
		if rateLimit != nil {
			r.Use(rateLimit)
		}
		r.Use(ContentTypeJSON)

		r.Get("/", gameHandler.ListGames)
		r.Post("/", gameHandler.CreateGame)
		r.Get("/{id}", gameHandler.GetGame)
		r.Patch("/{id}/rating-toggle", gameHandler.ToggleRating)
		r.Delete("/{id}", gameHandler.DeleteGame)
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		if rateLimit != nil {
			r.Use(rateLimit)
		}
		r.Use(ContentTypeJSON)

		r.Get("/", userHandler.ListUsers)
		r.Post("/", userHandler.CreateUser)
		r.Get("/{id}", userHandler.GetProfile)
		r.Delete("/{id}", userHandler.DeleteUser)

		r.Route("/{userId}/games/{gameId}", func(r chi.Router) {
			r.Post("/play", interactionHandler.LogPlayTime)
			r.Post("/rating", interactionHandler.RateGame)
			r.Post("/comments", interactionHandler.CommentOnGame)
		})
	})

	return r
}
