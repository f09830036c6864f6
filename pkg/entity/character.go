package entity

import (
	"time"
)

// Effect is a timed buff or debuff on a character. Expiry is evaluated
// lazily by ActiveEffects; nothing sweeps expired effects in
// the background.
type Effect struct {
	Type      string         `json:"type"`
	StartTime time.Time      `json:"start_time"`
	Duration  int            `json:"duration"` // seconds
	Data      map[string]any `json:"data,omitempty"`
}

// Expired reports whether the effect has run out at the given instant.
func (e Effect) Expired(now time.Time) bool {
	return now.After(e.StartTime.Add(time.Duration(e.Duration) * time.Second))
}

// InventoryItem is one stack (or unique item) in a character's inventory.
type InventoryItem struct {
	ID         string         `json:"id"`
	ItemCode   string         `json:"item_code"`
	Quantity   int            `json:"quantity"`
	CustomData map[string]any `json:"custom_data,omitempty"`
	AcquiredAt time.Time      `json:"acquired_at"`
}

// Character is a player-controlled entity in the world.
type Character struct {
	ID     int64  `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`

	Health     int `json:"health"`
	MaxHealth  int `json:"max_health"`
	Stamina    int `json:"stamina"`
	MaxStamina int `json:"max_stamina"`
	AP         int `json:"ap"`
	MaxAP      int `json:"max_ap"`

	Money      int `json:"money"`
	Experience int `json:"experience"`
	Level      int `json:"level"`

	X int `json:"x"`
	Y int `json:"y"`
	// InsideBuilding and BuildingID move together: when
	// InsideBuilding is false, BuildingID must be empty.
	InsideBuilding bool   `json:"inside_building"`
	BuildingID     string `json:"building_id,omitempty"`

	Stats      map[string]int    `json:"stats"`
	Skills     map[string]int    `json:"skills"`
	Attributes map[string]int    `json:"attributes"`
	Effects    []Effect          `json:"effects"`
	Equipment  map[string]string `json:"equipment"` // slot -> inventory item ID
	Inventory  []InventoryItem   `json:"inventory"`

	CreatedAt time.Time `json:"created_at"`
}

// NewCharacter returns a character with the standard starting block.
// Position and resource maxima come from the caller so the config
// package stays out of entity.
func NewCharacter(id int64, userID, name string, health, stamina, ap, money, x, y int) *Character {
	return &Character{
		ID:         id,
		UserID:     userID,
		Name:       name,
		Health:     health,
		MaxHealth:  health,
		Stamina:    stamina,
		MaxStamina: stamina,
		AP:         ap,
		MaxAP:      ap,
		Money:      money,
		Experience: 0,
		Level:      1,
		X:          x,
		Y:          y,
		Stats: map[string]int{
			"strength":     5,
			"agility":      5,
			"intelligence": 5,
			"charisma":     5,
			"perception":   5,
			"tech":         5,
		},
		Skills: map[string]int{
			"combat":      0,
			"stealth":     0,
			"hacking":     0,
			"engineering": 0,
			"persuasion":  0,
			"medicine":    0,
		},
		Attributes: map[string]int{
			"reputation": 0,
			"karma":      0,
		},
		Effects:   []Effect{},
		Equipment: map[string]string{},
		Inventory: []InventoryItem{},
		CreatedAt: time.Now(),
	}
}

// Stat returns a named stat, falling back to the baseline of 5 when
// the stat block is missing the key.
func (c *Character) Stat(name string) int {
	if v, ok := c.Stats[name]; ok {
		return v
	}
	return 5
}

// ActiveEffects filters out effects that have expired as of now.
func (c *Character) ActiveEffects(now time.Time) []Effect {
	active := make([]Effect, 0, len(c.Effects))
	for _, e := range c.Effects {
		if !e.Expired(now) {
			active = append(active, e)
		}
	}
	return active
}

// ExperienceToLevel is the experience required to advance past the
// given level.
func ExperienceToLevel(level int) int {
	return level * 100
}
