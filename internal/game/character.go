package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neonsprawl/engine/internal/config"
	"github.com/neonsprawl/engine/internal/store"
	"github.com/neonsprawl/engine/pkg/entity"
)

// Characters owns character lifecycle and progression. All mutations
// go through the per-character lock.
type Characters struct {
	store  store.Store
	locks  *KeyedLocks
	cfg    *config.Config
	logger *slog.Logger
}

func NewCharacters(s store.Store, locks *KeyedLocks, cfg *config.Config, logger *slog.Logger) *Characters {
	return &Characters{
		store:  s,
		locks:  locks,
		cfg:    cfg,
		logger: logger,
	}
}

// Create makes a new character for a user with the standard starting
// block and starting inventory.
func (cs *Characters) Create(ctx context.Context, userID, name string) (*entity.Character, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: character name required", ErrInvalidInput)
	}

	id, err := cs.store.NextID(ctx, "characters")
	if err != nil {
		return nil, fmt.Errorf("failed to assign character id: %w", err)
	}

	c := entity.NewCharacter(id, userID, name,
		cs.cfg.StartingHealth, cs.cfg.StartingStamina, cs.cfg.MaxAP,
		cs.cfg.StartingMoney, cs.cfg.StartX, cs.cfg.StartY)

	if err := AddItem(ctx, cs.store, c, "basic_phone", 1, nil); err != nil {
		return nil, err
	}
	if err := AddItem(ctx, cs.store, c, "credits_chip", 1, nil); err != nil {
		return nil, err
	}

	if err := cs.store.SaveCharacter(ctx, c); err != nil {
		return nil, err
	}

	cs.logger.Info("Character created", "character_id", id, "user_id", userID, "name", name)
	return c, nil
}

// Get loads a character, converting absence to ErrNotFound.
func (cs *Characters) Get(ctx context.Context, id int64) (*entity.Character, error) {
	c, err := cs.store.GetCharacter(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: character %d", ErrNotFound, id)
	}
	return c, nil
}

// AddExperience grants experience, applying level-ups as they come due.
func (cs *Characters) AddExperience(ctx context.Context, id int64, amount int) error {
	unlock := cs.locks.Lock(characterLockKey(id))
	defer unlock()

	c, err := cs.store.GetCharacter(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}

	grantExperience(c, amount)

	return cs.store.SaveCharacter(ctx, c)
}

// grantExperience mutates a loaded character; callers hold the lock.
// At most one level is gained per grant.
func grantExperience(c *entity.Character, amount int) {
	c.Experience += amount
	if c.Experience >= entity.ExperienceToLevel(c.Level) {
		c.Level++
	}
}

// AddEffect attaches a timed effect. Expired effects are never swept
// here; readers filter with ActiveEffects.
func (cs *Characters) AddEffect(ctx context.Context, id int64, effectType string, durationSeconds int, data map[string]any) error {
	unlock := cs.locks.Lock(characterLockKey(id))
	defer unlock()

	c, err := cs.store.GetCharacter(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}

	c.Effects = append(c.Effects, entity.Effect{
		Type:      effectType,
		StartTime: time.Now(),
		Duration:  durationSeconds,
		Data:      data,
	})

	return cs.store.SaveCharacter(ctx, c)
}
