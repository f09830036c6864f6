package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/neonsprawl/engine/internal/game"
	"github.com/neonsprawl/engine/pkg/entity"
)

type LocationResponse struct {
	Tile           *entity.TileDetail     `json:"tile,omitempty"`
	Building       *entity.BuildingDetail `json:"building,omitempty"`
	X              int                    `json:"x"`
	Y              int                    `json:"y"`
	InsideBuilding bool                   `json:"inside_building"`
}

// LocationHandler serves the requesting character's surroundings, the
// building interior when contained and the tile otherwise.
// Routes:
// GET /v1/location - Current location detail
type LocationHandler struct {
	chars  *game.Characters
	world  *game.World
	logger *slog.Logger
}

func NewLocationHandler(chars *game.Characters, world *game.World, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{
		chars:  chars,
		world:  world,
		logger: logger,
	}
}

func (h *LocationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for location endpoint", "method", r.Method)
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

	response := LocationResponse{
		X:              c.X,
		Y:              c.Y,
		InsideBuilding: c.InsideBuilding,
	}

	if c.InsideBuilding {
		building, err := h.world.BuildingWithContents(r.Context(), c.BuildingID)
		if err != nil {
			h.logger.Error("Failed to load building", "building_id", c.BuildingID, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to load location")
			return
		}
		if building == nil {
			writeError(w, h.logger, http.StatusNotFound, "Building not found")
			return
		}
		response.Building = building
	} else {
		tile, err := h.world.TileWithContents(r.Context(), c.X, c.Y)
		if err != nil {
			h.logger.Error("Failed to load tile", "x", c.X, "y", c.Y, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to load location")
			return
		}
		if tile == nil {
			writeError(w, h.logger, http.StatusNotFound, "Location not found")
			return
		}
		response.Tile = tile
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]any{"location": response})
}
