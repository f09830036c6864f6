package game

import (
	"context"
	"testing"

	"github.com/neonsprawl/engine/internal/config"
	"github.com/neonsprawl/engine/internal/store"
	"github.com/neonsprawl/engine/pkg/entity"
)

// testEnv wires the engine components over an in-memory store with a
// 12x12 world.
type testEnv struct {
	ms       *store.MemStore
	cfg      *config.Config
	world    *World
	log      *ActionLog
	resolver *Resolver
	chars    *Characters
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ms := store.NewMemStore()
	cfg := &config.Config{
		WorldSizeX:      12,
		WorldSizeY:      12,
		StartingHealth:  100,
		StartingStamina: 100,
		MaxAP:           10,
		StartingMoney:   500,
		StartX:          6,
		StartY:          6,
		MovementAPCost:  1,
	}

	logger := testLogger()
	locks := NewKeyedLocks()
	world := NewWorld(ms, cfg.WorldSizeX, cfg.WorldSizeY, logger)
	actionLog := NewActionLog(ms, logger)

	return &testEnv{
		ms:       ms,
		cfg:      cfg,
		world:    world,
		log:      actionLog,
		resolver: NewResolver(ms, world, actionLog, locks, cfg, logger),
		chars:    NewCharacters(ms, locks, cfg, logger),
	}
}

func (e *testEnv) seedTile(t *testing.T, x, y int, name string, buildings, objects []string) {
	t.Helper()
	if buildings == nil {
		buildings = []string{}
	}
	if objects == nil {
		objects = []string{}
	}
	tile := &entity.Tile{X: x, Y: y, Name: name, TileType: "midtown", Buildings: buildings, Objects: objects}
	if err := e.ms.SaveTile(context.Background(), tile); err != nil {
		t.Fatalf("Failed to seed tile: %v", err)
	}
}

func (e *testEnv) seedBuilding(t *testing.T, id, name string, x, y int, objects []string) {
	t.Helper()
	if objects == nil {
		objects = []string{}
	}
	b := &entity.Building{ID: id, X: x, Y: y, Name: name, BuildingType: "bar", Objects: objects}
	if err := e.ms.SaveBuilding(context.Background(), b); err != nil {
		t.Fatalf("Failed to seed building: %v", err)
	}
}

func (e *testEnv) seedObject(t *testing.T, id, name, objectType string) {
	t.Helper()
	o := &entity.WorldObject{ID: id, Name: name, ObjectType: objectType}
	if err := e.ms.SaveObject(context.Background(), o); err != nil {
		t.Fatalf("Failed to seed object: %v", err)
	}
}

func (e *testEnv) seedCharacter(t *testing.T, id int64, x, y int) *entity.Character {
	t.Helper()
	c := entity.NewCharacter(id, "user", "Tester", 100, 100, 10, 500, x, y)
	if err := e.ms.SaveCharacter(context.Background(), c); err != nil {
		t.Fatalf("Failed to seed character: %v", err)
	}
	return c
}

func (e *testEnv) character(t *testing.T, id int64) *entity.Character {
	t.Helper()
	c, err := e.ms.GetCharacter(context.Background(), id)
	if err != nil || c == nil {
		t.Fatalf("Failed to load character %d: %v", id, err)
	}
	return c
}
