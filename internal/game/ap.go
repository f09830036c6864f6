package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neonsprawl/engine/internal/store"
	"github.com/neonsprawl/engine/pkg/entity"
)

// APEconomy owns the action point accounting rules: consumption,
// refunds and the periodic bulk regeneration pass.
type APEconomy struct {
	store  store.Store
	locks  *KeyedLocks
	logger *slog.Logger
}

func NewAPEconomy(s store.Store, locks *KeyedLocks, logger *slog.Logger) *APEconomy {
	return &APEconomy{
		store:  s,
		locks:  locks,
		logger: logger,
	}
}

// Debit applies consumption rules to a loaded character. Rejected
// outright when the balance is short; AP never goes negative and a
// rejected debit changes nothing. Callers already holding the
// character's lock use this inside their own load-save sequence.
func Debit(c *entity.Character, amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative ap amount %d", ErrInvalidInput, amount)
	}
	if c.AP < amount {
		return ErrInsufficientAP
	}
	c.AP -= amount
	return nil
}

// Credit adds AP to a loaded character, clamped to [0, MaxAP].
func Credit(c *entity.Character, amount int) {
	c.AP += amount
	if c.AP > c.MaxAP {
		c.AP = c.MaxAP
	}
	if c.AP < 0 {
		c.AP = 0
	}
}

// Consume debits AP from a character, serialized against every other
// writer of that character.
func (a *APEconomy) Consume(ctx context.Context, characterID int64, amount int) error {
	unlock := a.locks.Lock(characterLockKey(characterID))
	defer unlock()

	c, err := a.store.GetCharacter(ctx, characterID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}

	if err := Debit(c, amount); err != nil {
		return err
	}

	return a.store.SaveCharacter(ctx, c)
}

// Regen credits AP to a character, clamped to its maximum.
func (a *APEconomy) Regen(ctx context.Context, characterID int64, amount int) error {
	unlock := a.locks.Lock(characterLockKey(characterID))
	defer unlock()

	c, err := a.store.GetCharacter(ctx, characterID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}

	Credit(c, amount)

	return a.store.SaveCharacter(ctx, c)
}

// RegenAll applies the per-tick regen rate to every character and
// returns how many were actually updated. Characters that fail to
// load are skipped, not fatal: a character deleted mid-scan must not
// sink the batch.
func (a *APEconomy) RegenAll(ctx context.Context, rate int) (int, error) {
	ids, err := a.store.CharacterIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to enumerate characters: %w", err)
	}

	updated := 0
	for _, id := range ids {
		if err := a.Regen(ctx, id, rate); err != nil {
			a.logger.Warn("Skipping character during AP regen", "character_id", id, "error", err)
			continue
		}
		updated++
	}

	a.logger.Info("AP regeneration complete", "updated", updated, "total", len(ids))
	return updated, nil
}
