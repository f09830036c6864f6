package store

import (
	"context"

	"github.com/neonsprawl/engine/pkg/entity"
)

// Log stream keys. A character stream is LogStreamCharacter(id); every
// entry is also written to LogStreamGlobal with the same score.
const LogStreamGlobal = "logs:global"

func LogStreamCharacter(characterID int64) string {
	return "logs:" + formatID(characterID)
}

// Store is the entity store contract the engine is written against.
// Get methods return (nil, nil) for absent records; callers decide
// whether absence is an error.
type Store interface {
	Ping(ctx context.Context) error
	Close() error

	GetCharacter(ctx context.Context, id int64) (*entity.Character, error)
	SaveCharacter(ctx context.Context, c *entity.Character) error
	DeleteCharacter(ctx context.Context, id int64) error
	// CharacterIDs returns the IDs of every saved character, in no
	// particular order.
	CharacterIDs(ctx context.Context) ([]int64, error)

	GetTile(ctx context.Context, x, y int) (*entity.Tile, error)
	SaveTile(ctx context.Context, t *entity.Tile) error
	GetBuilding(ctx context.Context, id string) (*entity.Building, error)
	SaveBuilding(ctx context.Context, b *entity.Building) error
	GetObject(ctx context.Context, id string) (*entity.WorldObject, error)
	SaveObject(ctx context.Context, o *entity.WorldObject) error

	// NextID returns a monotonically increasing ID for the named counter.
	NextID(ctx context.Context, counter string) (int64, error)

	// AppendLog writes an encoded log entry into a time-scored stream.
	AppendLog(ctx context.Context, stream string, entry []byte, score float64) error
	// RecentLogs returns up to limit entries, most recent first.
	RecentLogs(ctx context.Context, stream string, limit int) ([][]byte, error)

	WorldInitialized(ctx context.Context) (bool, error)
	MarkWorldInitialized(ctx context.Context) error
}
