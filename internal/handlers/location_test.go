package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/neonsprawl/engine/pkg/entity"
)

func TestLocationHandler_Outdoors(t *testing.T) {
	env := newHandlerEnv(t)
	env.seedTile(t, 6, 6, "Metro Block")
	c := env.createCharacter(t, "Razor")
	handler := NewLocationHandler(env.chars, env.world, env.logger)

	rr := doRequest(handler, http.MethodGet, "/v1/location", c.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var response struct {
		Location LocationResponse `json:"location"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	loc := response.Location
	if loc.InsideBuilding {
		t.Error("Expected outdoor location")
	}
	if loc.Tile == nil || loc.Tile.Name != "Metro Block" {
		t.Errorf("Expected tile detail, got %+v", loc.Tile)
	}
	if loc.Building != nil {
		t.Error("Outdoor location must not carry building detail")
	}
	if loc.X != 6 || loc.Y != 6 {
		t.Errorf("Unexpected position (%d, %d)", loc.X, loc.Y)
	}
}

func TestLocationHandler_InsideBuilding(t *testing.T) {
	env := newHandlerEnv(t)
	c := env.createCharacter(t, "Razor")

	building := &entity.Building{ID: "b-1", X: 6, Y: 6, Name: "Neon Pulse", BuildingType: "nightclub", Objects: []string{}}
	if err := env.ms.SaveBuilding(context.Background(), building); err != nil {
		t.Fatalf("Failed to seed building: %v", err)
	}
	env.seedTile(t, 6, 6, "Metro Block")

	c.InsideBuilding = true
	c.BuildingID = "b-1"
	if err := env.ms.SaveCharacter(context.Background(), c); err != nil {
		t.Fatalf("Failed to save character: %v", err)
	}

	handler := NewLocationHandler(env.chars, env.world, env.logger)
	rr := doRequest(handler, http.MethodGet, "/v1/location", c.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var response struct {
		Location LocationResponse `json:"location"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	loc := response.Location
	if !loc.InsideBuilding {
		t.Error("Expected contained location")
	}
	if loc.Building == nil || loc.Building.Name != "Neon Pulse" {
		t.Errorf("Expected building detail, got %+v", loc.Building)
	}
	if loc.Tile != nil {
		t.Error("Contained location must not carry tile detail")
	}
}

func TestLocationHandler_MissingTile(t *testing.T) {
	env := newHandlerEnv(t)
	c := env.createCharacter(t, "Razor")
	handler := NewLocationHandler(env.chars, env.world, env.logger)

	rr := doRequest(handler, http.MethodGet, "/v1/location", c.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for ungenerated tile, got %d", rr.Code)
	}
}
