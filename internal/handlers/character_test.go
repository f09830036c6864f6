package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/neonsprawl/engine/internal/config"
	"github.com/neonsprawl/engine/internal/game"
	"github.com/neonsprawl/engine/internal/store"
	"github.com/neonsprawl/engine/pkg/entity"
)

type handlerEnv struct {
	ms       *store.MemStore
	chars    *game.Characters
	resolver *game.Resolver
	world    *game.World
	log      *game.ActionLog
	logger   *slog.Logger
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	ms := store.NewMemStore()
	cfg := &config.Config{
		WorldSizeX:      12,
		WorldSizeY:      12,
		StartingHealth:  100,
		StartingStamina: 100,
		MaxAP:           10,
		StartingMoney:   500,
		StartX:          6,
		StartY:          6,
		MovementAPCost:  1,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	locks := game.NewKeyedLocks()
	world := game.NewWorld(ms, cfg.WorldSizeX, cfg.WorldSizeY, logger)
	actionLog := game.NewActionLog(ms, logger)

	return &handlerEnv{
		ms:       ms,
		chars:    game.NewCharacters(ms, locks, cfg, logger),
		resolver: game.NewResolver(ms, world, actionLog, locks, cfg, logger),
		world:    world,
		log:      actionLog,
		logger:   logger,
	}
}

func (e *handlerEnv) seedTile(t *testing.T, x, y int, name string) {
	t.Helper()
	tile := &entity.Tile{X: x, Y: y, Name: name, TileType: "midtown", Buildings: []string{}, Objects: []string{}}
	if err := e.ms.SaveTile(context.Background(), tile); err != nil {
		t.Fatalf("Failed to seed tile: %v", err)
	}
}

func (e *handlerEnv) createCharacter(t *testing.T, name string) *entity.Character {
	t.Helper()
	c, err := e.chars.Create(context.Background(), "user-1", name)
	if err != nil {
		t.Fatalf("Failed to create character: %v", err)
	}
	return c
}

func doRequest(handler http.Handler, method, target string, characterID int64, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if characterID > 0 {
		req.Header.Set("X-Character-ID", strconv.FormatInt(characterID, 10))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestCharacterHandler_Get(t *testing.T) {
	env := newHandlerEnv(t)
	c := env.createCharacter(t, "Razor")
	handler := NewCharacterHandler(env.chars, env.resolver, env.logger)

	rr := doRequest(handler, http.MethodGet, "/v1/character", c.ID, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var response struct {
		Character *entity.Character `json:"character"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Character == nil || response.Character.Name != "Razor" {
		t.Errorf("Unexpected character payload: %+v", response.Character)
	}
	if response.Character.X != 6 || response.Character.Y != 6 {
		t.Errorf("Expected start position (6, 6), got (%d, %d)", response.Character.X, response.Character.Y)
	}
}

func TestCharacterHandler_MissingHeader(t *testing.T) {
	env := newHandlerEnv(t)
	handler := NewCharacterHandler(env.chars, env.resolver, env.logger)

	rr := doRequest(handler, http.MethodGet, "/v1/character", 0, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestCharacterHandler_NotFound(t *testing.T) {
	env := newHandlerEnv(t)
	handler := NewCharacterHandler(env.chars, env.resolver, env.logger)

	rr := doRequest(handler, http.MethodGet, "/v1/character", 42, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}

	var response ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Error != "Character not found" {
		t.Errorf("Unexpected error message: %q", response.Error)
	}
}

func TestCharacterHandler_MethodNotAllowed(t *testing.T) {
	env := newHandlerEnv(t)
	handler := NewCharacterHandler(env.chars, env.resolver, env.logger)

	rr := doRequest(handler, http.MethodPost, "/v1/character", 1, nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rr.Code)
	}
}

func TestCharacterHandler_Inventory(t *testing.T) {
	env := newHandlerEnv(t)
	c := env.createCharacter(t, "Razor")
	handler := NewCharacterHandler(env.chars, env.resolver, env.logger)

	rr := doRequest(handler, http.MethodGet, "/v1/character/inventory", c.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var response struct {
		Inventory []game.ExpandedItem `json:"inventory"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	codes := make(map[string]bool)
	for _, item := range response.Inventory {
		codes[item.ItemCode] = true
		if item.Definition.Name == "" {
			t.Errorf("Expected catalog definition attached to %s", item.ItemCode)
		}
	}
	if !codes["basic_phone"] || !codes["credits_chip"] {
		t.Errorf("Expected starting inventory, got %+v", response.Inventory)
	}
}

func TestCharacterHandler_Actions(t *testing.T) {
	env := newHandlerEnv(t)
	env.seedTile(t, 6, 6, "Metro Block")
	c := env.createCharacter(t, "Razor")
	handler := NewCharacterHandler(env.chars, env.resolver, env.logger)

	rr := doRequest(handler, http.MethodGet, "/v1/character/actions", c.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var response struct {
		Actions []game.ActionDescriptor `json:"actions"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	types := make(map[game.ActionType]bool)
	for _, a := range response.Actions {
		types[a.Type] = true
	}
	if !types[game.ActionMove] || !types[game.ActionRest] || !types[game.ActionSearch] {
		t.Errorf("Expected outdoor actions, got %+v", response.Actions)
	}
}

func TestCharacterHandler_UnknownResource(t *testing.T) {
	env := newHandlerEnv(t)
	c := env.createCharacter(t, "Razor")
	handler := NewCharacterHandler(env.chars, env.resolver, env.logger)

	rr := doRequest(handler, http.MethodGet, "/v1/character/biography", c.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}
