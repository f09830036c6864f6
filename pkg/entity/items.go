package entity

// ItemDef describes one item in the static catalog. The catalog is
// compiled in rather than persisted; item stacks in inventories refer
// to it by code.
type ItemDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        string         `json:"type"` // equipment, weapon, armor, consumable, currency, key, quest
	Slot        string         `json:"slot,omitempty"`
	Value       int            `json:"value"`
	Damage      int            `json:"damage,omitempty"`
	Defense     int            `json:"defense,omitempty"`
	Effects     map[string]any `json:"effects,omitempty"`
	UseEffect   map[string]any `json:"use_effect,omitempty"`
	Icon        string         `json:"icon"`
}

// Stackable reports whether stacks of this item merge in an inventory.
func (d ItemDef) Stackable() bool {
	return d.Type == "consumable" || d.Type == "currency"
}

// ItemCatalog is the full item table.
var ItemCatalog = map[string]ItemDef{
	"basic_phone": {
		Name:        "Basic Phone",
		Description: "A simple communication device.",
		Type:        "equipment",
		Slot:        "comm",
		Value:       50,
		Effects:     map[string]any{"can_communicate": true},
		Icon:        "phone",
	},
	"cyberdeck_basic": {
		Name:        "Basic Cyberdeck",
		Description: "Entry-level hacking device.",
		Type:        "equipment",
		Slot:        "deck",
		Value:       500,
		Effects:     map[string]any{"hacking_bonus": 1},
		Icon:        "laptop-code",
	},
	"pistol": {
		Name:        "Pistol",
		Description: "Standard semi-automatic pistol.",
		Type:        "weapon",
		Slot:        "weapon",
		Value:       200,
		Damage:      10,
		Icon:        "gun",
	},
	"stun_baton": {
		Name:        "Stun Baton",
		Description: "Non-lethal melee weapon.",
		Type:        "weapon",
		Slot:        "weapon",
		Value:       150,
		Damage:      5,
		Effects:     map[string]any{"stun_chance": 0.25},
		Icon:        "bolt",
	},
	"light_armor": {
		Name:        "Light Armor Jacket",
		Description: "Provides basic protection.",
		Type:        "armor",
		Slot:        "body",
		Value:       300,
		Defense:     5,
		Icon:        "vest",
	},
	"medkit": {
		Name:        "Medkit",
		Description: "Heals injuries.",
		Type:        "consumable",
		Value:       100,
		UseEffect:   map[string]any{"health": 25},
		Icon:        "medkit",
	},
	"stim_pack": {
		Name:        "Stim Pack",
		Description: "Temporarily boosts capabilities.",
		Type:        "consumable",
		Value:       75,
		UseEffect: map[string]any{
			"temporary_boost": map[string]any{
				"duration": 300,
				"stats":    map[string]any{"strength": 2, "agility": 2},
			},
		},
		Icon: "syringe",
	},
	"credits_chip": {
		Name:        "Credits Chip",
		Description: "Digital currency storage.",
		Type:        "currency",
		Value:       0, // amount rides in the stack quantity / custom data
		Icon:        "credit-card",
	},
	"access_card": {
		Name:        "Access Card",
		Description: "Grants access to restricted areas.",
		Type:        "key",
		Value:       250,
		Effects:     map[string]any{"access_level": 1},
		Icon:        "id-card",
	},
	"data_chip": {
		Name:        "Data Chip",
		Description: "Contains encrypted data.",
		Type:        "quest",
		Value:       500,
		Icon:        "microchip",
	},
}

// ItemDefinition looks up an item by catalog code.
func ItemDefinition(code string) (ItemDef, bool) {
	def, ok := ItemCatalog[code]
	return def, ok
}
