package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/neonsprawl/engine/internal/game"
	"github.com/neonsprawl/engine/pkg/entity"
)

type MapResponse struct {
	Map               [][]*entity.MapCell `json:"map"`
	CharacterPosition MapPosition         `json:"character_position"`
}

type MapPosition struct {
	X              int  `json:"x"`
	Y              int  `json:"y"`
	InsideBuilding bool `json:"inside_building"`
}

// MapHandler serves a map slice centered on the requesting character.
// Routes:
// GET /v1/map?radius=N - Map slice, radius defaults to 1
type MapHandler struct {
	chars  *game.Characters
	world  *game.World
	logger *slog.Logger
}

func NewMapHandler(chars *game.Characters, world *game.World, logger *slog.Logger) *MapHandler {
	return &MapHandler{
		chars:  chars,
		world:  world,
		logger: logger,
	}
}

func (h *MapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for map endpoint", "method", r.Method)
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

	radius := 1
	if raw := r.URL.Query().Get("radius"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			radius = parsed
		}
	}

	slice, err := h.world.MapSlice(r.Context(), c.X, c.Y, radius)
	if err != nil {
		h.logger.Error("Failed to load map slice", "x", c.X, "y", c.Y, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load map")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, MapResponse{
		Map: slice,
		CharacterPosition: MapPosition{
			X:              c.X,
			Y:              c.Y,
			InsideBuilding: c.InsideBuilding,
		},
	})
}
