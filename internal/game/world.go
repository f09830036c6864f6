package game

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/neonsprawl/engine/internal/store"
	"github.com/neonsprawl/engine/pkg/entity"
)

const (
	minMapRadius = 1
	maxMapRadius = 5
)

// World answers read-only queries over the tile/building/object graph.
// It never mutates and is safe for concurrent use.
type World struct {
	store  store.Store
	sizeX  int
	sizeY  int
	logger *slog.Logger
}

func NewWorld(s store.Store, sizeX, sizeY int, logger *slog.Logger) *World {
	return &World{
		store:  s,
		sizeX:  sizeX,
		sizeY:  sizeY,
		logger: logger,
	}
}

// InBounds reports whether (x, y) is a valid world coordinate.
func (w *World) InBounds(x, y int) bool {
	return x >= 0 && x < w.sizeX && y >= 0 && y < w.sizeY
}

// TileAt returns the tile at (x, y), or nil when the cell is
// ungenerated or out of bounds.
func (w *World) TileAt(ctx context.Context, x, y int) (*entity.Tile, error) {
	if !w.InBounds(x, y) {
		return nil, nil
	}
	return w.store.GetTile(ctx, x, y)
}

// Building returns the building record, or nil when absent.
func (w *World) Building(ctx context.Context, id string) (*entity.Building, error) {
	return w.store.GetBuilding(ctx, id)
}

// Object returns the world object record, or nil when absent.
func (w *World) Object(ctx context.Context, id string) (*entity.WorldObject, error) {
	return w.store.GetObject(ctx, id)
}

// TileWithContents returns the tile plus fully materialized building
// and object records. Dangling membership IDs are skipped.
func (w *World) TileWithContents(ctx context.Context, x, y int) (*entity.TileDetail, error) {
	tile, err := w.TileAt(ctx, x, y)
	if err != nil {
		return nil, err
	}
	if tile == nil {
		return nil, nil
	}

	detail := &entity.TileDetail{
		Tile:            *tile,
		BuildingDetails: make([]entity.Building, 0, len(tile.Buildings)),
		ObjectDetails:   make([]entity.WorldObject, 0, len(tile.Objects)),
	}

	for _, id := range tile.Buildings {
		b, err := w.store.GetBuilding(ctx, id)
		if err != nil {
			return nil, err
		}
		if b == nil {
			w.logger.Warn("Tile references missing building", "tile", formatCoord(x, y), "building_id", id)
			continue
		}
		detail.BuildingDetails = append(detail.BuildingDetails, *b)
	}

	for _, id := range tile.Objects {
		o, err := w.store.GetObject(ctx, id)
		if err != nil {
			return nil, err
		}
		if o == nil {
			w.logger.Warn("Tile references missing object", "tile", formatCoord(x, y), "object_id", id)
			continue
		}
		detail.ObjectDetails = append(detail.ObjectDetails, *o)
	}

	return detail, nil
}

// BuildingWithContents returns the building plus its materialized
// object records.
func (w *World) BuildingWithContents(ctx context.Context, id string) (*entity.BuildingDetail, error) {
	b, err := w.store.GetBuilding(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}

	detail := &entity.BuildingDetail{
		Building:      *b,
		ObjectDetails: make([]entity.WorldObject, 0, len(b.Objects)),
	}

	for _, objID := range b.Objects {
		o, err := w.store.GetObject(ctx, objID)
		if err != nil {
			return nil, err
		}
		if o == nil {
			w.logger.Warn("Building references missing object", "building_id", id, "object_id", objID)
			continue
		}
		detail.ObjectDetails = append(detail.ObjectDetails, *o)
	}

	return detail, nil
}

// MapSlice returns a square grid of map cells centered on (cx, cy).
// Radius is clamped to [1, 5]. Cells outside the world bounds are nil;
// bounds-valid but ungenerated cells get a placeholder record.
func (w *World) MapSlice(ctx context.Context, cx, cy, radius int) ([][]*entity.MapCell, error) {
	if radius < minMapRadius {
		radius = minMapRadius
	}
	if radius > maxMapRadius {
		radius = maxMapRadius
	}

	grid := make([][]*entity.MapCell, 0, 2*radius+1)
	for y := cy - radius; y <= cy+radius; y++ {
		row := make([]*entity.MapCell, 0, 2*radius+1)
		for x := cx - radius; x <= cx+radius; x++ {
			if !w.InBounds(x, y) {
				row = append(row, nil)
				continue
			}
			tile, err := w.store.GetTile(ctx, x, y)
			if err != nil {
				return nil, err
			}
			if tile == nil {
				row = append(row, &entity.MapCell{
					X:        x,
					Y:        y,
					Name:     fmt.Sprintf("Unknown (%d, %d)", x, y),
					TileType: "empty",
				})
				continue
			}
			row = append(row, &entity.MapCell{
				X:            x,
				Y:            y,
				Name:         tile.Name,
				TileType:     tile.TileType,
				HasBuildings: len(tile.Buildings) > 0,
			})
		}
		grid = append(grid, row)
	}

	return grid, nil
}

func formatCoord(x, y int) string {
	return strconv.Itoa(x) + ":" + strconv.Itoa(y)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
