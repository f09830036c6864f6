package game

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCharacterCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.chars.Create(ctx, "user-1", "Razor")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if c.ID != 1 {
		t.Errorf("Expected first character id 1, got %d", c.ID)
	}
	if c.Name != "Razor" || c.UserID != "user-1" {
		t.Errorf("Unexpected identity: %+v", c)
	}
	if c.Health != 100 || c.Stamina != 100 || c.AP != 10 || c.Money != 500 {
		t.Errorf("Unexpected starting resources: health=%d stamina=%d ap=%d money=%d",
			c.Health, c.Stamina, c.AP, c.Money)
	}
	if c.X != 6 || c.Y != 6 {
		t.Errorf("Expected start position (6, 6), got (%d, %d)", c.X, c.Y)
	}
	if c.Level != 1 || c.Experience != 0 {
		t.Errorf("Expected level 1 with 0 xp, got level %d xp %d", c.Level, c.Experience)
	}

	codes := make(map[string]bool)
	for _, item := range c.Inventory {
		codes[item.ItemCode] = true
	}
	if !codes["basic_phone"] || !codes["credits_chip"] {
		t.Errorf("Expected starting inventory with basic_phone and credits_chip, got %+v", c.Inventory)
	}

	// Record is persisted.
	saved := env.character(t, c.ID)
	if saved.Name != "Razor" {
		t.Errorf("Persisted character mismatch: %+v", saved)
	}
}

func TestCharacterCreate_RequiresName(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.chars.Create(context.Background(), "user-1", "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestCharacterGet_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.chars.Get(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAddExperience_LevelUp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCharacter(t, 1, 6, 6)

	if err := env.chars.AddExperience(ctx, 1, 50); err != nil {
		t.Fatalf("AddExperience failed: %v", err)
	}
	c := env.character(t, 1)
	if c.Level != 1 || c.Experience != 50 {
		t.Errorf("Expected level 1 with 50 xp, got level %d xp %d", c.Level, c.Experience)
	}

	// Crossing level*100 levels up; 150 xp clears level 1 but not level 2.
	if err := env.chars.AddExperience(ctx, 1, 100); err != nil {
		t.Fatalf("AddExperience failed: %v", err)
	}
	c = env.character(t, 1)
	if c.Level != 2 || c.Experience != 150 {
		t.Errorf("Expected level 2 with 150 xp, got level %d xp %d", c.Level, c.Experience)
	}

	// Experience is cumulative but at most one level is gained per
	// grant, however large.
	if err := env.chars.AddExperience(ctx, 1, 450); err != nil {
		t.Fatalf("AddExperience failed: %v", err)
	}
	c = env.character(t, 1)
	if c.Level != 3 || c.Experience != 600 {
		t.Errorf("Expected level 3 with 600 xp, got level %d xp %d", c.Level, c.Experience)
	}
}

func TestAddExperience_MissingCharacter(t *testing.T) {
	env := newTestEnv(t)

	err := env.chars.AddExperience(context.Background(), 99, 10)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAddEffect(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCharacter(t, 1, 6, 6)

	err := env.chars.AddEffect(ctx, 1, "temporary_boost", 300, map[string]any{"strength": 2})
	if err != nil {
		t.Fatalf("AddEffect failed: %v", err)
	}

	c := env.character(t, 1)
	if len(c.Effects) != 1 {
		t.Fatalf("Expected 1 effect, got %d", len(c.Effects))
	}

	active := c.ActiveEffects(time.Now())
	if len(active) != 1 {
		t.Errorf("Expected effect active now, got %d", len(active))
	}

	expired := c.ActiveEffects(time.Now().Add(10 * time.Minute))
	if len(expired) != 0 {
		t.Errorf("Expected effect expired after its duration, got %d", len(expired))
	}
}
