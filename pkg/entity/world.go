package entity

// Tile is one cell of the world grid, keyed by its coordinates.
// Generated once; only its membership lists grow afterwards.
type Tile struct {
	X           int            `json:"x"`
	Y           int            `json:"y"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	TileType    string         `json:"tile_type"`
	Buildings   []string       `json:"buildings"`
	Objects     []string       `json:"objects"`
	Flags       map[string]any `json:"flags,omitempty"`
}

// Building is an enterable structure. A building belongs to exactly
// one tile; the tile's Buildings list is the authoritative membership.
type Building struct {
	ID                  string         `json:"id"`
	X                   int            `json:"x"`
	Y                   int            `json:"y"`
	Name                string         `json:"name"`
	Description         string         `json:"description"`
	BuildingType        string         `json:"building_type"`
	InteriorDescription string         `json:"interior_description"`
	Objects             []string       `json:"objects"`
	Flags               map[string]any `json:"flags,omitempty"`
	AccessRequirements  map[string]any `json:"access_requirements,omitempty"`
}

// WorldObject is an interactive object owned by exactly one container
// (a tile or a building). Ownership lives on the container's Objects
// list, not here; whoever moves an object maintains both lists.
type WorldObject struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	ObjectType      string         `json:"object_type"`
	InteractionData map[string]any `json:"interaction_data,omitempty"`
	Flags           map[string]any `json:"flags,omitempty"`
}

// TileDetail is a tile with its building and object records
// materialized for clients.
type TileDetail struct {
	Tile
	BuildingDetails []Building    `json:"building_details"`
	ObjectDetails   []WorldObject `json:"object_details"`
}

// BuildingDetail is a building with its object records materialized.
type BuildingDetail struct {
	Building
	ObjectDetails []WorldObject `json:"object_details"`
}

// MapCell is one entry of a map slice: a lightweight tile summary.
// Cells outside the world bounds are nil in the slice grid.
type MapCell struct {
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Name         string `json:"name"`
	TileType     string `json:"tile_type"`
	HasBuildings bool   `json:"has_buildings"`
}
