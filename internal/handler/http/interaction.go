package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gameworld-labs/gameworld/internal/service"
	"github.com/gameworld-labs/gameworld/pkg/httputil"
	"github.com/gameworld-labs/gameworld/pkg/validator"
)

// InteractionHandler handles the play / rate / comment endpoints nested
// under a (user, game) pair.
type InteractionHandler struct {
	interactions *service.InteractionService
	logger       *slog.Logger
}

// NewInteractionHandler creates a new interaction HTTP handler.
func NewInteractionHandler(interactions *service.InteractionService, logger *slog.Logger) *InteractionHandler {
	return &InteractionHandler{
		interactions: interactions,
		logger:       logger,
	}
}

// --- Request DTOs ---

// LogPlayTimeRequest is the JSON request body for logging play time.
type LogPlayTimeRequest struct {
	PlayTime float64 `json:"play_time" validate:"required,gt=0"`
}

// RateGameRequest is the JSON request body for rating a game.
type RateGameRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

// CommentRequest is the JSON request body for commenting on a game.
type CommentRequest struct {
	Comment string `json:"comment" validate:"required"`
}

// --- Handlers ---

// LogPlayTime handles POST /api/v1/users/{userId}/games/{gameId}/play
func (h *InteractionHandler) LogPlayTime(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	gameID := chi.URLParam(r, "gameId")

	var req LogPlayTimeRequest
	if !h.decode(w, r, &req) {
		return
	}

	entry, err := h.interactions.LogPlayTime(r.Context(), userID, gameID, req.PlayTime)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: entry})
}

// RateGame handles POST /api/v1/users/{userId}/games/{gameId}/rating
func (h *InteractionHandler) RateGame(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	gameID := chi.URLParam(r, "gameId")

	var req RateGameRequest
	if !h.decode(w, r, &req) {
		return
	}

	game, err := h.interactions.RateGame(r.Context(), userID, gameID, req.Rating)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: game})
}

// CommentOnGame handles POST /api/v1/users/{userId}/games/{gameId}/comments
func (h *InteractionHandler) CommentOnGame(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	gameID := chi.URLParam(r, "gameId")

	var req CommentRequest
	if !h.decode(w, r, &req) {
		return
	}

	comment, err := h.interactions.CommentOnGame(r.Context(), userID, gameID, req.Comment)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: comment})
}

// decode reads and validates a JSON request body, writing the error
// response itself when the payload is unusable.
func (h *InteractionHandler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return false
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}

	return true
}
