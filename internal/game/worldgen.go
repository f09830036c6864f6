package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/neonsprawl/engine/internal/store"
	"github.com/neonsprawl/engine/pkg/entity"
)

// World-content naming tables. Placement is random but the layout is
// fixed: slums in the center, midtown around it, corporate at the edge.

type buildingCategory struct {
	Type  string
	Names []string
}

var buildingCategories = []buildingCategory{
	{Type: "corp_office", Names: []string{"MegaTech HQ", "NexCorp Tower", "Quantum Dynamics", "Apex Industries", "Synapse Corp"}},
	{Type: "nightclub", Names: []string{"Neon Pulse", "Circuit Lounge", "Zero Gravity", "The Matrix", "Digital Dreams"}},
	{Type: "apartment", Names: []string{"High-Rise Condos", "Skyline Apartments", "Metro Living Pods", "Urban Dwellings", "Stacked Housing"}},
	{Type: "tech_shop", Names: []string{"CyberTech Emporium", "Neural Nexus", "Chrome & Circuits", "Tech Junction", "Hack Shack"}},
	{Type: "clinic", Names: []string{"BioMend Clinic", "Cybernetic Care", "Neural Patch-up", "Street Medica", "Quick Fix"}},
	{Type: "black_market", Names: []string{"Shadow Bazaar", "Dark Exchange", "Undercity Market", "Off-Grid Goods", "The Backdoor"}},
	{Type: "bar", Names: []string{"The Rusty Gear", "Neon Shots", "Static Bar", "The Circuit Breaker", "Binary Brew"}},
	{Type: "noodle_shop", Names: []string{"Byte Noodles", "Electric Eats", "Ramen Override", "Synth Soup", "Data Diner"}},
}

type areaInfo struct {
	NamePrefixes []string
	NameSuffixes []string
	Description  string
}

var areaTypes = map[string]areaInfo{
	"corporate": {
		NamePrefixes: []string{"Corporate", "Financial", "Business", "Commercial", "Tech"},
		NameSuffixes: []string{"District", "Sector", "Zone", "Plaza", "Quarter"},
		Description:  "A pristine area dominated by towering corporate buildings with heavy security presence.",
	},
	"midtown": {
		NamePrefixes: []string{"Residential", "Mixed", "Urban", "Metro", "Central"},
		NameSuffixes: []string{"Block", "Neighborhood", "Area", "District", "Commons"},
		Description:  "A middle-class area with a mix of residential and commercial buildings.",
	},
	"slums": {
		NamePrefixes: []string{"Undercity", "Lower", "Forgotten", "Shadow", "Gutter"},
		NameSuffixes: []string{"Slums", "District", "Sector", "Sprawl", "Blocks"},
		Description:  "A rundown area with crumbling infrastructure and makeshift dwellings.",
	},
}

type objectCategory struct {
	Type  string
	Names []string
}

var objectCategories = []objectCategory{
	{Type: "terminal", Names: []string{"Public Terminal", "Info Kiosk", "Network Node", "Datajack Point", "Grid Access"}},
	{Type: "vending_machine", Names: []string{"QuickByte Vending", "Snack Matrix", "AutoFeed", "NutriDispense", "Quick-E-Eat"}},
	{Type: "atm", Names: []string{"CreditLink ATM", "NuBank Terminal", "Cash Node", "Digital Wallet Station", "Money Mesh"}},
	{Type: "container", Names: []string{"Storage Crate", "Cargo Container", "Dumpster", "Locker", "Abandoned Crate"}},
	{Type: "door", Names: []string{"Security Door", "Reinforced Entry", "Access Gate", "Service Entrance", "Maintenance Hatch"}},
}

var outdoorObjectTypes = []string{"terminal", "vending_machine", "atm", "container"}

var areaBuildingTypes = map[string][]string{
	"corporate": {"corp_office", "tech_shop", "clinic", "nightclub"},
	"midtown":   {"apartment", "tech_shop", "bar", "clinic", "noodle_shop"},
	"slums":     {"black_market", "noodle_shop", "apartment", "bar"},
}

// Generator builds the world grid once. Initialize is idempotent via
// the store's initialization flag.
type Generator struct {
	store  store.Store
	sizeX  int
	sizeY  int
	rng    *rand.Rand
	logger *slog.Logger
}

func NewGenerator(s store.Store, sizeX, sizeY int, logger *slog.Logger) *Generator {
	return &Generator{
		store:  s,
		sizeX:  sizeX,
		sizeY:  sizeY,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

// SetRand replaces the generator's randomness source for tests.
func (g *Generator) SetRand(rng *rand.Rand) {
	g.rng = rng
}

// areaTypeAt picks an area type by normalized distance from the world
// center: inner third slums, middle midtown, outer ring corporate.
func (g *Generator) areaTypeAt(x, y int) string {
	centerX := float64(g.sizeX) / 2
	centerY := float64(g.sizeY) / 2

	dx := abs(float64(x)-centerX) / centerX
	dy := abs(float64(y)-centerY) / centerY
	distance := (dx + dy) / 2

	switch {
	case distance < 0.33:
		return "slums"
	case distance < 0.66:
		return "midtown"
	default:
		return "corporate"
	}
}

// Initialize generates the full world grid unless it already exists.
func (g *Generator) Initialize(ctx context.Context) error {
	initialized, err := g.store.WorldInitialized(ctx)
	if err != nil {
		return err
	}
	if initialized {
		g.logger.Info("World already initialized")
		return nil
	}

	g.logger.Info("Initializing game world", "size_x", g.sizeX, "size_y", g.sizeY)

	for y := 0; y < g.sizeY; y++ {
		for x := 0; x < g.sizeX; x++ {
			if err := g.generateTile(ctx, x, y); err != nil {
				return fmt.Errorf("failed to generate tile (%d, %d): %w", x, y, err)
			}
		}
	}

	if err := g.store.MarkWorldInitialized(ctx); err != nil {
		return err
	}

	g.logger.Info("Game world initialized")
	return nil
}

func (g *Generator) generateTile(ctx context.Context, x, y int) error {
	areaType := g.areaTypeAt(x, y)
	area := areaTypes[areaType]

	tile := &entity.Tile{
		X:           x,
		Y:           y,
		Name:        g.pick(area.NamePrefixes) + " " + g.pick(area.NameSuffixes),
		Description: area.Description,
		TileType:    areaType,
		Buildings:   []string{},
		Objects:     []string{},
	}

	// 1-3 buildings per tile, drawn from the area's building mix.
	numBuildings := 1 + g.rng.Intn(3)
	for i := 0; i < numBuildings; i++ {
		buildingType := g.pick(areaBuildingTypes[areaType])
		category := findBuildingCategory(buildingType)
		if category == nil {
			continue
		}

		building := &entity.Building{
			ID:                 uuid.New().String(),
			X:                  x,
			Y:                  y,
			Name:               g.pick(category.Names),
			BuildingType:       buildingType,
			Objects:            []string{},
			AccessRequirements: map[string]any{},
		}
		building.Description = fmt.Sprintf("A %s named %s.", humanType(buildingType), building.Name)
		building.InteriorDescription = fmt.Sprintf("The interior of %s.", building.Name)

		// 0-3 objects inside.
		numObjects := g.rng.Intn(4)
		for j := 0; j < numObjects; j++ {
			category := objectCategories[g.rng.Intn(len(objectCategories))]
			objID, err := g.createObject(ctx, category)
			if err != nil {
				return err
			}
			building.Objects = append(building.Objects, objID)
		}

		if err := g.store.SaveBuilding(ctx, building); err != nil {
			return err
		}
		tile.Buildings = append(tile.Buildings, building.ID)
	}

	// 0-2 outdoor objects, from outdoor-appropriate types.
	numObjects := g.rng.Intn(3)
	for i := 0; i < numObjects; i++ {
		objectType := outdoorObjectTypes[g.rng.Intn(len(outdoorObjectTypes))]
		category := findObjectCategory(objectType)
		if category == nil {
			continue
		}
		objID, err := g.createObject(ctx, *category)
		if err != nil {
			return err
		}
		tile.Objects = append(tile.Objects, objID)
	}

	return g.store.SaveTile(ctx, tile)
}

func (g *Generator) createObject(ctx context.Context, category objectCategory) (string, error) {
	obj := &entity.WorldObject{
		ID:         uuid.New().String(),
		Name:       g.pick(category.Names),
		ObjectType: category.Type,
	}
	obj.Description = fmt.Sprintf("A %s called %s.", humanType(category.Type), obj.Name)

	if err := g.store.SaveObject(ctx, obj); err != nil {
		return "", err
	}
	return obj.ID, nil
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}

func findBuildingCategory(buildingType string) *buildingCategory {
	for i := range buildingCategories {
		if buildingCategories[i].Type == buildingType {
			return &buildingCategories[i]
		}
	}
	return nil
}

func findObjectCategory(objectType string) *objectCategory {
	for i := range objectCategories {
		if objectCategories[i].Type == objectType {
			return &objectCategories[i]
		}
	}
	return nil
}

func humanType(t string) string {
	out := make([]byte, len(t))
	for i := 0; i < len(t); i++ {
		if t[i] == '_' {
			out[i] = ' '
		} else {
			out[i] = t[i]
		}
	}
	return string(out)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
