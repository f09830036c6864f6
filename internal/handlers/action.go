package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/neonsprawl/engine/internal/game"
)

const actionResponseLogLimit = 10

type ActionRequest struct {
	ActionType string         `json:"action_type"`
	ActionData map[string]any `json:"action_data,omitempty"`
}

type ActionResponse struct {
	Success          bool                    `json:"success"`
	Message          string                  `json:"message"`
	Character        any                     `json:"character,omitempty"`
	AvailableActions []game.ActionDescriptor `json:"available_actions,omitempty"`
	Logs             any                     `json:"logs,omitempty"`
}

// ActionHandler resolves character actions over plain HTTP. The
// WebSocket path is the primary one; this exists for clients that
// poll.
// Routes:
// POST /v1/action - Resolve an action for the requesting character
type ActionHandler struct {
	chars    *game.Characters
	resolver *game.Resolver
	log      *game.ActionLog
	logger   *slog.Logger
}

func NewActionHandler(chars *game.Characters, resolver *game.Resolver, log *game.ActionLog, logger *slog.Logger) *ActionHandler {
	return &ActionHandler{
		chars:    chars,
		resolver: resolver,
		log:      log,
		logger:   logger,
	}
}

func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for action endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	characterID, ok := requestCharacterID(r)
	if !ok {
		writeError(w, h.logger, http.StatusBadRequest, "X-Character-ID header is required")
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ActionType == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Action type is required")
		return
	}

	outcome, err := h.resolver.Resolve(r.Context(), characterID, game.ActionType(req.ActionType), req.ActionData)
	if err != nil {
		h.logger.Error("Action resolution failed", "character_id", characterID, "action_type", req.ActionType, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Action failed")
		return
	}

	response := ActionResponse{
		Success: outcome.Success,
		Message: outcome.Message,
	}

	if outcome.Success {
		c, err := h.chars.Get(r.Context(), characterID)
		if err != nil && !errors.Is(err, game.ErrNotFound) {
			h.logger.Error("Failed to reload character", "character_id", characterID, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to load character")
			return
		}
		response.Character = c

		actions, err := h.resolver.AvailableActions(r.Context(), characterID)
		if err == nil {
			response.AvailableActions = actions
		}

		logs, err := h.log.Recent(r.Context(), characterID, actionResponseLogLimit)
		if err == nil {
			response.Logs = logs
		}
	}

	writeJSON(w, h.logger, http.StatusOK, response)
}
