package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/neonsprawl/engine/pkg/entity"
)

// MemStore is an in-memory implementation of Store for testing.
// Records round-trip through JSON so tests see the same copy
// semantics as the Redis store: a loaded record is never an alias of
// the saved one.
type MemStore struct {
	mu         sync.RWMutex
	characters map[int64][]byte
	tiles      map[string][]byte
	buildings  map[string][]byte
	objects    map[string][]byte
	counters   map[string]int64
	streams    map[string][]scoredEntry
	worldInit  bool
	pingError  error
}

type scoredEntry struct {
	score float64
	seq   int // insertion order, tie-breaker for equal scores
	data  []byte
}

// Ensure MemStore implements Store interface
var _ Store = (*MemStore)(nil)

// NewMemStore creates a new in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		characters: make(map[int64][]byte),
		tiles:      make(map[string][]byte),
		buildings:  make(map[string][]byte),
		objects:    make(map[string][]byte),
		counters:   make(map[string]int64),
		streams:    make(map[string][]scoredEntry),
	}
}

// SetPingError configures the store to fail on ping with the given error
func (m *MemStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MemStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MemStore) Close() error {
	return nil
}

func (m *MemStore) GetCharacter(ctx context.Context, id int64) (*entity.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.characters[id]
	if !ok {
		return nil, nil
	}
	var c entity.Character
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (m *MemStore) SaveCharacter(ctx context.Context, c *entity.Character) error {
	if c == nil {
		return errors.New("character cannot be nil")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.characters[c.ID] = data
	return nil
}

func (m *MemStore) DeleteCharacter(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.characters, id)
	return nil
}

func (m *MemStore) CharacterIDs(ctx context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int64, 0, len(m.characters))
	for id := range m.characters {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MemStore) GetTile(ctx context.Context, x, y int) (*entity.Tile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.tiles[tileKey(x, y)]
	if !ok {
		return nil, nil
	}
	var t entity.Tile
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (m *MemStore) SaveTile(ctx context.Context, t *entity.Tile) error {
	if t == nil {
		return errors.New("tile cannot be nil")
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiles[tileKey(t.X, t.Y)] = data
	return nil
}

func (m *MemStore) GetBuilding(ctx context.Context, id string) (*entity.Building, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.buildings[id]
	if !ok {
		return nil, nil
	}
	var b entity.Building
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (m *MemStore) SaveBuilding(ctx context.Context, b *entity.Building) error {
	if b == nil {
		return errors.New("building cannot be nil")
	}
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buildings[b.ID] = data
	return nil
}

func (m *MemStore) GetObject(ctx context.Context, id string) (*entity.WorldObject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[id]
	if !ok {
		return nil, nil
	}
	var o entity.WorldObject
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (m *MemStore) SaveObject(ctx context.Context, o *entity.WorldObject) error {
	if o == nil {
		return errors.New("object cannot be nil")
	}
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[o.ID] = data
	return nil
}

func (m *MemStore) NextID(ctx context.Context, counter string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[counter]++
	return m.counters[counter], nil
}

func (m *MemStore) AppendLog(ctx context.Context, stream string, entry []byte, score float64) error {
	if len(entry) == 0 {
		return fmt.Errorf("empty log entry for stream %q", stream)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data := make([]byte, len(entry))
	copy(data, entry)
	m.streams[stream] = append(m.streams[stream], scoredEntry{
		score: score,
		seq:   len(m.streams[stream]),
		data:  data,
	})
	return nil
}

func (m *MemStore) RecentLogs(ctx context.Context, stream string, limit int) ([][]byte, error) {
	if limit <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]scoredEntry, len(m.streams[stream]))
	copy(entries, m.streams[stream])
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].seq > entries[j].seq
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([][]byte, len(entries))
	for i, e := range entries {
		out[i] = e.data
	}
	return out, nil
}

func (m *MemStore) WorldInitialized(ctx context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.worldInit, nil
}

func (m *MemStore) MarkWorldInitialized(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worldInit = true
	return nil
}
