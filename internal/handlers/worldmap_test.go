package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestMapHandler_DefaultRadius(t *testing.T) {
	env := newHandlerEnv(t)
	for y := 5; y <= 7; y++ {
		for x := 5; x <= 7; x++ {
			env.seedTile(t, x, y, "Metro Block")
		}
	}
	c := env.createCharacter(t, "Razor")
	handler := NewMapHandler(env.chars, env.world, env.logger)

	rr := doRequest(handler, http.MethodGet, "/v1/map", c.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var response MapResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(response.Map) != 3 {
		t.Fatalf("Expected 3 rows for radius 1, got %d", len(response.Map))
	}
	if len(response.Map[0]) != 3 {
		t.Fatalf("Expected 3 columns, got %d", len(response.Map[0]))
	}
	center := response.Map[1][1]
	if center == nil || center.X != 6 || center.Y != 6 {
		t.Errorf("Unexpected center cell: %+v", center)
	}
	if response.CharacterPosition.X != 6 || response.CharacterPosition.Y != 6 {
		t.Errorf("Unexpected character position: %+v", response.CharacterPosition)
	}
}

func TestMapHandler_RadiusParameter(t *testing.T) {
	env := newHandlerEnv(t)
	env.seedTile(t, 6, 6, "Metro Block")
	c := env.createCharacter(t, "Razor")
	handler := NewMapHandler(env.chars, env.world, env.logger)

	rr := doRequest(handler, http.MethodGet, "/v1/map?radius=2", c.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var response MapResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Map) != 5 {
		t.Errorf("Expected 5 rows for radius 2, got %d", len(response.Map))
	}

	// Oversized radius is clamped rather than rejected.
	rr = doRequest(handler, http.MethodGet, "/v1/map?radius=99", c.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	response = MapResponse{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Map) != 11 {
		t.Errorf("Expected 11 rows for clamped radius 5, got %d", len(response.Map))
	}
}

func TestMapHandler_CharacterNotFound(t *testing.T) {
	env := newHandlerEnv(t)
	handler := NewMapHandler(env.chars, env.world, env.logger)

	rr := doRequest(handler, http.MethodGet, "/v1/map", 42, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}
