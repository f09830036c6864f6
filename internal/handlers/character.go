package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/neonsprawl/engine/internal/game"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// requestCharacterID reads the character identity from the
// X-Character-ID header. Session handling lives upstream of this
// service; the gateway resolves the user and forwards the id.
func requestCharacterID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-Character-ID"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, statusCode int, v any) {
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, statusCode int, message string) {
	writeJSON(w, logger, statusCode, ErrorResponse{Error: message})
}

// CharacterHandler serves character state reads.
// Routes:
// GET /v1/character           - Character record
// GET /v1/character/inventory - Inventory with item definitions
// GET /v1/character/equipment - Equipped items by slot
// GET /v1/character/actions   - Available actions at the current location
type CharacterHandler struct {
	chars    *game.Characters
	resolver *game.Resolver
	logger   *slog.Logger
}

func NewCharacterHandler(chars *game.Characters, resolver *game.Resolver, logger *slog.Logger) *CharacterHandler {
	return &CharacterHandler{
		chars:    chars,
		resolver: resolver,
		logger:   logger,
	}
}

func (h *CharacterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for character endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	characterID, ok := requestCharacterID(r)
	if !ok {
		writeError(w, h.logger, http.StatusBadRequest, "X-Character-ID header is required")
		return
	}

	c, err := h.chars.Get(r.Context(), characterID)
	if err != nil {
		if errors.Is(err, game.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Character not found")
			return
		}
		h.logger.Error("Failed to load character", "character_id", characterID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load character")
		return
	}

	subPath := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/character"), "/")
	switch subPath {
	case "":
		writeJSON(w, h.logger, http.StatusOK, map[string]any{"character": c})

	case "inventory":
		writeJSON(w, h.logger, http.StatusOK, map[string]any{
			"inventory": game.ExpandedInventory(c),
		})

	case "equipment":
		equipped := make(map[string]game.ExpandedItem)
		for slot, itemID := range c.Equipment {
			for _, item := range game.ExpandedInventory(c) {
				if item.ID == itemID {
					equipped[slot] = item
				}
			}
		}
		writeJSON(w, h.logger, http.StatusOK, map[string]any{"equipment": equipped})

	case "actions":
		actions, err := h.resolver.AvailableActions(r.Context(), characterID)
		if err != nil {
			h.logger.Error("Failed to load available actions", "character_id", characterID, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to load actions")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, map[string]any{"actions": actions})

	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown character resource")
	}
}
