package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/neonsprawl/engine/internal/config"
	"github.com/neonsprawl/engine/internal/store"
	"github.com/neonsprawl/engine/pkg/entity"
)

// ActionType identifies one transition of the action state machine.
// The set is closed: adding a type means adding a const, a table entry
// and an AvailableActions rule.
type ActionType string

const (
	ActionMove          ActionType = "MOVE"
	ActionEnterBuilding ActionType = "ENTER_BUILDING"
	ActionExitBuilding  ActionType = "EXIT_BUILDING"
	ActionRest          ActionType = "REST"
	ActionSearch        ActionType = "SEARCH"
	ActionInteract      ActionType = "INTERACT"
	ActionAttack        ActionType = "ATTACK"
	ActionHack          ActionType = "HACK"
	ActionRepair        ActionType = "REPAIR"
	ActionCraft         ActionType = "CRAFT"
)

// Outcome is the structured result of resolving one action. Domain
// failures (bad direction, missing building, not enough AP) are
// unsuccessful outcomes, not errors; errors are reserved for store
// trouble.
type Outcome struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	LogData map[string]any `json:"log_data,omitempty"`
}

func failed(message string) Outcome {
	return Outcome{Success: false, Message: message}
}

// ActionDescriptor is one entry of the currently legal action set.
type ActionDescriptor struct {
	Type        ActionType     `json:"type"`
	Name        string         `json:"name"`
	APCost      int            `json:"ap_cost"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data"`
}

type actionSpec struct {
	Name        string
	APCost      int
	Description string
	// handler applies the action's effect to the loaded character.
	// A nil handler marks a reserved action: it validates AP and then
	// fails closed.
	handler func(r *Resolver, ctx context.Context, c *entity.Character, data map[string]any) (Outcome, error)
}

var actionTable = map[ActionType]actionSpec{
	ActionMove:          {Name: "Move", APCost: 1, Description: "Move to an adjacent tile", handler: (*Resolver).resolveMove},
	ActionEnterBuilding: {Name: "Enter Building", APCost: 1, Description: "Enter a building", handler: (*Resolver).resolveEnterBuilding},
	ActionExitBuilding:  {Name: "Exit Building", APCost: 1, Description: "Exit a building", handler: (*Resolver).resolveExitBuilding},
	ActionRest:          {Name: "Rest", APCost: 2, Description: "Rest to recover health and stamina", handler: (*Resolver).resolveRest},
	ActionSearch:        {Name: "Search", APCost: 1, Description: "Search the area for items", handler: (*Resolver).resolveSearch},
	ActionInteract:      {Name: "Interact", APCost: 1, Description: "Interact with an object", handler: (*Resolver).resolveInteract},
	ActionAttack:        {Name: "Attack", APCost: 2, Description: "Attack another character"},
	ActionHack:          {Name: "Hack", APCost: 2, Description: "Attempt to hack a system"},
	ActionRepair:        {Name: "Repair", APCost: 2, Description: "Repair an object"},
	ActionCraft:         {Name: "Craft", APCost: 3, Description: "Craft an item"},
}

// The 8 compass deltas a MOVE may take.
var moveDeltas = map[string][2]int{
	"north":     {0, -1},
	"east":      {1, 0},
	"south":     {0, 1},
	"west":      {-1, 0},
	"northeast": {1, -1},
	"southeast": {1, 1},
	"southwest": {-1, 1},
	"northwest": {-1, -1},
}

// moveDirections is moveDeltas in a stable enumeration order for
// AvailableActions.
var moveDirections = []string{"north", "east", "south", "west", "northeast", "southeast", "southwest", "northwest"}

// searchLoot is the fixed loot table SEARCH draws from.
var searchLoot = []string{"medkit", "stim_pack", "credits_chip"}

const searchExperience = 5

// SearchChance is the probability of a SEARCH finding something:
// 10% base plus 2% per point of perception, capped at 50%.
func SearchChance(perception int) float64 {
	chance := 0.1 + float64(perception)*0.02
	if chance > 0.5 {
		chance = 0.5
	}
	return chance
}

// Resolver is the action state machine. Resolution serializes per
// character: validate, apply effect, persist and log run under the
// character's lock.
type Resolver struct {
	store  store.Store
	world  *World
	log    *ActionLog
	locks  *KeyedLocks
	logger *slog.Logger

	actions map[ActionType]actionSpec

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewResolver(s store.Store, world *World, log *ActionLog, locks *KeyedLocks, cfg *config.Config, logger *slog.Logger) *Resolver {
	// Copy the table so the configured movement cost never mutates
	// the package-level defaults.
	actions := make(map[ActionType]actionSpec, len(actionTable))
	for k, v := range actionTable {
		actions[k] = v
	}
	move := actions[ActionMove]
	move.APCost = cfg.MovementAPCost
	actions[ActionMove] = move

	return &Resolver{
		store:   s,
		world:   world,
		log:     log,
		locks:   locks,
		logger:  logger,
		actions: actions,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand replaces the resolver's randomness source. Tests use this to
// fix SEARCH rolls.
func (r *Resolver) SetRand(rng *rand.Rand) {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	r.rng = rng
}

func (r *Resolver) randFloat() float64 {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return r.rng.Float64()
}

func (r *Resolver) randIntn(n int) int {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return r.rng.Intn(n)
}

// Resolve validates and applies one action for a character. A failed
// effect leaves AP and all other state untouched; only a successful
// effect consumes AP and appends a log entry.
func (r *Resolver) Resolve(ctx context.Context, characterID int64, actionType ActionType, data map[string]any) (Outcome, error) {
	unlock := r.locks.Lock(characterLockKey(characterID))
	defer unlock()

	c, err := r.store.GetCharacter(ctx, characterID)
	if err != nil {
		return Outcome{}, err
	}
	if c == nil {
		return failed("Character not found"), nil
	}

	spec, ok := r.actions[actionType]
	if !ok {
		return failed("Invalid action type"), nil
	}

	if c.AP < spec.APCost {
		return failed(fmt.Sprintf("Not enough AP. Need %d AP.", spec.APCost)), nil
	}

	if spec.handler == nil {
		// Reserved action: AP validated, but no effect is wired yet.
		return failed(fmt.Sprintf("%s is not implemented", spec.Name)), nil
	}

	outcome, err := spec.handler(r, ctx, c, data)
	if err != nil {
		return Outcome{}, err
	}
	if !outcome.Success {
		return outcome, nil
	}

	if err := Debit(c, spec.APCost); err != nil {
		// Unreachable after the cost check above; fail the action
		// rather than persist a half-applied effect.
		return Outcome{}, err
	}
	if err := r.store.SaveCharacter(ctx, c); err != nil {
		return Outcome{}, err
	}

	if _, err := r.log.Append(ctx, c.ID, string(actionType), outcome.Message, outcome.LogData); err != nil {
		// The mutation is already durable; a log write failure is not
		// worth failing the action over.
		r.logger.Error("Failed to append action log", "character_id", c.ID, "action", actionType, "error", err)
	}

	return outcome, nil
}

func (r *Resolver) resolveMove(ctx context.Context, c *entity.Character, data map[string]any) (Outcome, error) {
	direction, ok := stringField(data, "direction")
	if !ok {
		return failed("No direction specified"), nil
	}

	delta, ok := moveDeltas[direction]
	if !ok {
		return failed("Invalid direction"), nil
	}

	newX := c.X + delta[0]
	newY := c.Y + delta[1]
	if !r.world.InBounds(newX, newY) {
		return failed("Cannot move outside the world boundaries"), nil
	}

	c.X = newX
	c.Y = newY
	c.InsideBuilding = false
	c.BuildingID = ""

	tileName := fmt.Sprintf("Unknown (%d, %d)", newX, newY)
	tile, err := r.world.TileAt(ctx, newX, newY)
	if err != nil {
		return Outcome{}, err
	}
	if tile != nil {
		tileName = tile.Name
	}

	return Outcome{
		Success: true,
		Message: fmt.Sprintf("Moved %s to %s", direction, tileName),
		LogData: map[string]any{
			"x":         newX,
			"y":         newY,
			"direction": direction,
			"tile_name": tileName,
		},
	}, nil
}

func (r *Resolver) resolveEnterBuilding(ctx context.Context, c *entity.Character, data map[string]any) (Outcome, error) {
	buildingID, ok := stringField(data, "building_id")
	if !ok {
		return failed("No building specified"), nil
	}

	building, err := r.world.Building(ctx, buildingID)
	if err != nil {
		return Outcome{}, err
	}
	if building == nil {
		return failed("Building not found"), nil
	}

	tile, err := r.world.TileAt(ctx, c.X, c.Y)
	if err != nil {
		return Outcome{}, err
	}
	if tile == nil || !contains(tile.Buildings, buildingID) {
		return failed("Building not found at current location"), nil
	}

	c.InsideBuilding = true
	c.BuildingID = buildingID

	return Outcome{
		Success: true,
		Message: fmt.Sprintf("Entered %s", building.Name),
		LogData: map[string]any{
			"building_id":   buildingID,
			"building_name": building.Name,
		},
	}, nil
}

func (r *Resolver) resolveExitBuilding(ctx context.Context, c *entity.Character, _ map[string]any) (Outcome, error) {
	if !c.InsideBuilding {
		return failed("Not inside a building"), nil
	}

	buildingName := "building"
	exitedID := c.BuildingID
	building, err := r.world.Building(ctx, exitedID)
	if err != nil {
		return Outcome{}, err
	}
	if building != nil {
		buildingName = building.Name
	}

	c.InsideBuilding = false
	c.BuildingID = ""

	return Outcome{
		Success: true,
		Message: fmt.Sprintf("Exited %s", buildingName),
		LogData: map[string]any{
			"building_id":   exitedID,
			"building_name": buildingName,
		},
	}, nil
}

func (r *Resolver) resolveRest(_ context.Context, c *entity.Character, _ map[string]any) (Outcome, error) {
	healthRecovery := min(10, c.MaxHealth-c.Health)
	staminaRecovery := min(10, c.MaxStamina-c.Stamina)

	c.Health += healthRecovery
	c.Stamina += staminaRecovery

	locationType := "area"
	if c.InsideBuilding {
		locationType = "building"
	}

	return Outcome{
		Success: true,
		Message: fmt.Sprintf("Rested and recovered %d Health and %d Stamina", healthRecovery, staminaRecovery),
		LogData: map[string]any{
			"health_recovery":  healthRecovery,
			"stamina_recovery": staminaRecovery,
			"location_type":    locationType,
		},
	}, nil
}

func (r *Resolver) resolveSearch(ctx context.Context, c *entity.Character, _ map[string]any) (Outcome, error) {
	locationType := "area"
	if c.InsideBuilding {
		locationType = "building"
	}

	if r.randFloat() >= SearchChance(c.Stat("perception")) {
		return Outcome{
			Success: true,
			Message: fmt.Sprintf("Searched the %s but found nothing", locationType),
			LogData: map[string]any{
				"location_type": locationType,
				"found_nothing": true,
			},
		}, nil
	}

	itemCode := searchLoot[r.randIntn(len(searchLoot))]

	var message string
	if itemCode == "credits_chip" {
		amount := 10 + r.randIntn(41) // 10-50 credits
		if err := AddItem(ctx, r.store, c, itemCode, 1, map[string]any{"amount": amount}); err != nil {
			return Outcome{}, err
		}
		message = fmt.Sprintf("Found %d credits", amount)
	} else {
		if err := AddItem(ctx, r.store, c, itemCode, 1, nil); err != nil {
			return Outcome{}, err
		}
		itemName := itemCode
		if def, ok := entity.ItemDefinition(itemCode); ok {
			itemName = def.Name
		}
		message = fmt.Sprintf("Found %s", itemName)
	}

	grantExperience(c, searchExperience)

	return Outcome{
		Success: true,
		Message: message,
		LogData: map[string]any{
			"location_type": locationType,
			"item_code":     itemCode,
			"quantity":      1,
		},
	}, nil
}

func (r *Resolver) resolveInteract(ctx context.Context, c *entity.Character, data map[string]any) (Outcome, error) {
	objectID, ok := stringField(data, "object_id")
	if !ok {
		return failed("No object specified"), nil
	}

	obj, err := r.world.Object(ctx, objectID)
	if err != nil {
		return Outcome{}, err
	}
	if obj == nil {
		return failed("Object not found"), nil
	}

	// The object must live in the character's current container.
	if c.InsideBuilding {
		building, err := r.world.Building(ctx, c.BuildingID)
		if err != nil {
			return Outcome{}, err
		}
		if building == nil || !contains(building.Objects, objectID) {
			return failed("Object not found in this building"), nil
		}
	} else {
		tile, err := r.world.TileAt(ctx, c.X, c.Y)
		if err != nil {
			return Outcome{}, err
		}
		if tile == nil || !contains(tile.Objects, objectID) {
			return failed("Object not found in this area"), nil
		}
	}

	// Object category only selects message text for now; richer
	// effects hang off this switch.
	message := fmt.Sprintf("Interacted with %s", obj.Name)
	switch obj.ObjectType {
	case "terminal":
		message = fmt.Sprintf("Accessed %s terminal", obj.Name)
	case "container":
		message = fmt.Sprintf("Opened %s", obj.Name)
	case "door":
		message = fmt.Sprintf("Opened door to %s", obj.Name)
	}

	return Outcome{
		Success: true,
		Message: message,
		LogData: map[string]any{
			"object_id":   objectID,
			"object_name": obj.Name,
			"object_type": obj.ObjectType,
		},
	}, nil
}

// AvailableActions enumerates the currently legal action set for a
// character. It is a side-effect-free projection and stays consistent
// with what Resolve will accept.
func (r *Resolver) AvailableActions(ctx context.Context, characterID int64) ([]ActionDescriptor, error) {
	c, err := r.store.GetCharacter(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return []ActionDescriptor{}, nil
	}

	if c.InsideBuilding {
		return r.buildingActions(ctx, c)
	}
	return r.outdoorActions(ctx, c)
}

func (r *Resolver) buildingActions(ctx context.Context, c *entity.Character) ([]ActionDescriptor, error) {
	building, err := r.world.Building(ctx, c.BuildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return []ActionDescriptor{}, nil
	}

	actions := []ActionDescriptor{
		r.descriptor(ActionExitBuilding, "", nil),
		r.descriptor(ActionRest, "", nil),
		r.descriptor(ActionSearch, "Search the building", nil),
	}

	for _, objectID := range building.Objects {
		obj, err := r.world.Object(ctx, objectID)
		if err != nil {
			return nil, err
		}
		if obj == nil {
			continue
		}
		actions = append(actions, r.interactDescriptor(obj))
	}

	return actions, nil
}

func (r *Resolver) outdoorActions(ctx context.Context, c *entity.Character) ([]ActionDescriptor, error) {
	tile, err := r.world.TileAt(ctx, c.X, c.Y)
	if err != nil {
		return nil, err
	}
	if tile == nil {
		return []ActionDescriptor{}, nil
	}

	var actions []ActionDescriptor

	var movementOptions []map[string]any
	for _, direction := range moveDirections {
		delta := moveDeltas[direction]
		newX, newY := c.X+delta[0], c.Y+delta[1]
		if !r.world.InBounds(newX, newY) {
			continue
		}
		movementOptions = append(movementOptions, map[string]any{
			"direction": direction,
			"label":     capitalize(direction),
			"x":         newX,
			"y":         newY,
		})
	}
	if len(movementOptions) > 0 {
		actions = append(actions, r.descriptor(ActionMove, "", map[string]any{"options": movementOptions}))
	}

	var buildingOptions []map[string]any
	for _, buildingID := range tile.Buildings {
		building, err := r.world.Building(ctx, buildingID)
		if err != nil {
			return nil, err
		}
		if building == nil {
			continue
		}
		buildingOptions = append(buildingOptions, map[string]any{
			"building_id": buildingID,
			"label":       building.Name,
			"description": building.Description,
		})
	}
	if len(buildingOptions) > 0 {
		actions = append(actions, r.descriptor(ActionEnterBuilding, "", map[string]any{"options": buildingOptions}))
	}

	actions = append(actions,
		r.descriptor(ActionRest, "", nil),
		r.descriptor(ActionSearch, "Search the area", nil),
	)

	for _, objectID := range tile.Objects {
		obj, err := r.world.Object(ctx, objectID)
		if err != nil {
			return nil, err
		}
		if obj == nil {
			continue
		}
		actions = append(actions, r.interactDescriptor(obj))
	}

	return actions, nil
}

func (r *Resolver) descriptor(t ActionType, description string, data map[string]any) ActionDescriptor {
	spec := r.actions[t]
	if description == "" {
		description = spec.Description
	}
	if data == nil {
		data = map[string]any{}
	}
	return ActionDescriptor{
		Type:        t,
		Name:        spec.Name,
		APCost:      spec.APCost,
		Description: description,
		Data:        data,
	}
}

func (r *Resolver) interactDescriptor(obj *entity.WorldObject) ActionDescriptor {
	d := r.descriptor(ActionInteract, fmt.Sprintf("Interact with %s", obj.Name), map[string]any{"object_id": obj.ID})
	d.Name = fmt.Sprintf("Interact with %s", obj.Name)
	return d
}

func stringField(data map[string]any, key string) (string, bool) {
	if data == nil {
		return "", false
	}
	v, ok := data[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	// cases.Caser is stateful, so build one per call.
	return cases.Title(language.English).String(s)
}
