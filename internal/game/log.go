package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/neonsprawl/engine/internal/store"
	"github.com/neonsprawl/engine/pkg/entity"
)

const maxLogLimit = 100

// ActionLog is the append-only, time-ordered action history. Every
// entry lands in the acting character's stream and the global stream
// with the same score.
type ActionLog struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewActionLog(s store.Store, logger *slog.Logger) *ActionLog {
	return &ActionLog{
		store:  s,
		logger: logger,
		now:    time.Now,
	}
}

// Append writes one entry and returns its assigned ID. Entries record
// completed mutations only; a rejected action must never reach here.
func (l *ActionLog) Append(ctx context.Context, characterID int64, actionType, message string, data map[string]any) (int64, error) {
	id, err := l.store.NextID(ctx, "action_logs")
	if err != nil {
		return 0, fmt.Errorf("failed to assign log id: %w", err)
	}

	now := l.now()
	entry := entity.ActionLogEntry{
		ID:          id,
		CharacterID: characterID,
		ActionType:  actionType,
		Message:     message,
		Data:        data,
		Timestamp:   now,
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal log entry: %w", err)
	}

	score := float64(now.UnixNano())
	if err := l.store.AppendLog(ctx, store.LogStreamCharacter(characterID), encoded, score); err != nil {
		return 0, err
	}
	if err := l.store.AppendLog(ctx, store.LogStreamGlobal, encoded, score); err != nil {
		return 0, err
	}

	return id, nil
}

// Recent returns the character's latest entries, most recent first.
func (l *ActionLog) Recent(ctx context.Context, characterID int64, limit int) ([]entity.ActionLogEntry, error) {
	return l.read(ctx, store.LogStreamCharacter(characterID), limit)
}

// RecentGlobal returns the latest entries across all characters.
func (l *ActionLog) RecentGlobal(ctx context.Context, limit int) ([]entity.ActionLogEntry, error) {
	return l.read(ctx, store.LogStreamGlobal, limit)
}

func (l *ActionLog) read(ctx context.Context, stream string, limit int) ([]entity.ActionLogEntry, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	raw, err := l.store.RecentLogs(ctx, stream, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]entity.ActionLogEntry, 0, len(raw))
	for _, data := range raw {
		var e entity.ActionLogEntry
		if err := json.Unmarshal(data, &e); err != nil {
			l.logger.Warn("Skipping malformed log entry", "stream", stream, "error", err)
			continue
		}
		entries = append(entries, e)
	}

	return entries, nil
}
