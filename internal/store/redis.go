package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neonsprawl/engine/pkg/entity"
)

// RedisStore implements the Store interface on Redis. Entities are
// stored as JSON records under type-prefixed keys; log streams are
// sorted sets scored by timestamp; ID counters are plain INCR keys.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStore implements Store interface
var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a new Redis store instance
func NewRedisStore(redisURL string, logger *slog.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisStore{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStore) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Entity records

func (r *RedisStore) GetCharacter(ctx context.Context, id int64) (*entity.Character, error) {
	var c entity.Character
	ok, err := r.getJSON(ctx, characterKey(id), &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (r *RedisStore) SaveCharacter(ctx context.Context, c *entity.Character) error {
	if err := r.setJSON(ctx, characterKey(c.ID), c); err != nil {
		return err
	}
	// Track the ID so bulk passes (AP regen) can find every character.
	if err := r.client.SAdd(ctx, "characters:all", c.ID).Err(); err != nil {
		return fmt.Errorf("failed to register character id: %w", err)
	}
	return nil
}

func (r *RedisStore) DeleteCharacter(ctx context.Context, id int64) error {
	if err := r.client.Del(ctx, characterKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete character: %w", err)
	}
	if err := r.client.SRem(ctx, "characters:all", id).Err(); err != nil {
		return fmt.Errorf("failed to unregister character id: %w", err)
	}
	return nil
}

func (r *RedisStore) CharacterIDs(ctx context.Context) ([]int64, error) {
	members, err := r.client.SMembers(ctx, "characters:all").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list character ids: %w", err)
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			r.logger.Warn("Skipping malformed character id", "member", m)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *RedisStore) GetTile(ctx context.Context, x, y int) (*entity.Tile, error) {
	var t entity.Tile
	ok, err := r.getJSON(ctx, tileKey(x, y), &t)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}

func (r *RedisStore) SaveTile(ctx context.Context, t *entity.Tile) error {
	return r.setJSON(ctx, tileKey(t.X, t.Y), t)
}

func (r *RedisStore) GetBuilding(ctx context.Context, id string) (*entity.Building, error) {
	var b entity.Building
	ok, err := r.getJSON(ctx, "building:"+id, &b)
	if err != nil || !ok {
		return nil, err
	}
	return &b, nil
}

func (r *RedisStore) SaveBuilding(ctx context.Context, b *entity.Building) error {
	return r.setJSON(ctx, "building:"+b.ID, b)
}

func (r *RedisStore) GetObject(ctx context.Context, id string) (*entity.WorldObject, error) {
	var o entity.WorldObject
	ok, err := r.getJSON(ctx, "object:"+id, &o)
	if err != nil || !ok {
		return nil, err
	}
	return &o, nil
}

func (r *RedisStore) SaveObject(ctx context.Context, o *entity.WorldObject) error {
	return r.setJSON(ctx, "object:"+o.ID, o)
}

// Counters and log streams

func (r *RedisStore) NextID(ctx context.Context, counter string) (int64, error) {
	id, err := r.client.Incr(ctx, "id:"+counter).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment id counter %q: %w", counter, err)
	}
	return id, nil
}

func (r *RedisStore) AppendLog(ctx context.Context, stream string, entry []byte, score float64) error {
	err := r.client.ZAdd(ctx, stream, redis.Z{Score: score, Member: entry}).Err()
	if err != nil {
		r.logger.Error("Failed to append log entry", "stream", stream, "error", err)
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	return nil
}

func (r *RedisStore) RecentLogs(ctx context.Context, stream string, limit int) ([][]byte, error) {
	if limit <= 0 {
		return nil, nil
	}
	vals, err := r.client.ZRevRange(ctx, stream, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read log stream %q: %w", stream, err)
	}
	entries := make([][]byte, len(vals))
	for i, v := range vals {
		entries[i] = []byte(v)
	}
	return entries, nil
}

// World initialization flag

func (r *RedisStore) WorldInitialized(ctx context.Context) (bool, error) {
	n, err := r.client.Exists(ctx, "world:initialized").Result()
	if err != nil {
		return false, fmt.Errorf("failed to check world flag: %w", err)
	}
	return n > 0, nil
}

func (r *RedisStore) MarkWorldInitialized(ctx context.Context) error {
	if err := r.client.Set(ctx, "world:initialized", "1", 0).Err(); err != nil {
		return fmt.Errorf("failed to set world flag: %w", err)
	}
	return nil
}

// JSON record helpers. getJSON reports found=false for absent keys
// instead of surfacing redis.Nil.

func (r *RedisStore) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.logger.Error("Failed to load record", "key", key, "error", err)
		return false, fmt.Errorf("failed to load %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		r.logger.Error("Failed to unmarshal record", "key", key, "error", err)
		return false, fmt.Errorf("failed to unmarshal %q: %w", key, err)
	}
	return true, nil
}

func (r *RedisStore) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", key, err)
	}
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save record", "key", key, "error", err)
		return fmt.Errorf("failed to save %q: %w", key, err)
	}
	return nil
}

func characterKey(id int64) string {
	return "character:" + formatID(id)
}

func tileKey(x, y int) string {
	return fmt.Sprintf("tile:%d:%d", x, y)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
