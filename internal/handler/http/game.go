package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gameworld-labs/gameworld/internal/service"
	"github.com/gameworld-labs/gameworld/pkg/httputil"
	"github.com/gameworld-labs/gameworld/pkg/validator"
)

// GameHandler handles HTTP requests for catalog endpoints.
type GameHandler struct {
	games        *service.GameService
	interactions *service.InteractionService
	logger       *slog.Logger
}

// NewGameHandler creates a new game HTTP handler.
func NewGameHandler(games *service.GameService, interactions *service.InteractionService, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		games:        games,
		interactions: interactions,
		logger:       logger,
	}
}

// --- Request DTOs ---

// CreateGameRequest is the JSON request body for adding a game.
type CreateGameRequest struct {
	Name            string   `json:"name" validate:"required,max=255"`
	Genres          []string `json:"genres" validate:"required,min=1,max=5,dive,required"`
	Image           string   `json:"image" validate:"required,uri"`
	IsRatingEnabled *bool    `json:"is_rating_enabled"`
	Developer       string   `json:"developer" validate:"max=255"`
	Publisher       string   `json:"publisher" validate:"max=255"`
	ReleaseDate     *string  `json:"release_date"`
	Price           *int64   `json:"price" validate:"omitempty,min=0"`
	Description     string   `json:"description"`
}

// --- Handlers ---

// ListGames handles GET /api/v1/games
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.ListGames(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: games})
}

// GetGame handles GET /api/v1/games/{id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// CreateGame handles POST /api/v1/games
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.CreateGameInput{
		Name:            req.Name,
		Genres:          req.Genres,
		Image:           req.Image,
		IsRatingEnabled: req.IsRatingEnabled,
		Developer:       req.Developer,
		Publisher:       req.Publisher,
		Price:           req.Price,
		Description:     req.Description,
	}
	if req.ReleaseDate != nil {
		released, err := time.Parse("2006-01-02", *req.ReleaseDate)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "release_date must be YYYY-MM-DD"},
			})
			return
		}
		input.ReleaseDate = &released
	}

	game, err := h.games.CreateGame(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: game})
}

// ToggleRating handles PATCH /api/v1/games/{id}/rating-toggle
func (h *GameHandler) ToggleRating(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	enabled, err := h.games.ToggleRating(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"id":                id,
		"is_rating_enabled": enabled,
	}})
}

// DeleteGame handles DELETE /api/v1/games/{id}
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.interactions.RemoveGame(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
