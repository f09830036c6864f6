package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/neonsprawl/engine/internal/game"
)

const defaultLogLimit = 20

// LogsHandler serves the requesting character's recent action log.
// Routes:
// GET /v1/logs?limit=N - Recent entries, newest first, limit defaults to 20
type LogsHandler struct {
	chars  *game.Characters
	log    *game.ActionLog
	logger *slog.Logger
}

func NewLogsHandler(chars *game.Characters, log *game.ActionLog, logger *slog.Logger) *LogsHandler {
	return &LogsHandler{
		chars:  chars,
		log:    log,
		logger: logger,
	}
}

func (h *LogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for logs endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	characterID, ok := requestCharacterID(r)
	if !ok {
		writeError(w, h.logger, http.StatusBadRequest, "X-Character-ID header is required")
		return
	}

	if _, err := h.chars.Get(r.Context(), characterID); err != nil {
		if errors.Is(err, game.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Character not found")
			return
		}
		h.logger.Error("Failed to load character", "character_id", characterID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load character")
		return
	}

	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	logs, err := h.log.Recent(r.Context(), characterID, limit)
	if err != nil {
		h.logger.Error("Failed to load logs", "character_id", characterID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load logs")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]any{"logs": logs})
}
