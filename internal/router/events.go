package router

import (
	"time"

	"github.com/neonsprawl/engine/pkg/entity"
)

// EventType represents the type of event pushed to a client
type EventType string

const (
	EventCharacterUpdate EventType = "character_update"
	EventActionsUpdate   EventType = "actions_update"
	EventLogsUpdate      EventType = "logs_update"
	EventLocationUpdate  EventType = "location_update"
	EventMapUpdate       EventType = "map_update"
	EventMessage         EventType = "message"
	EventError           EventType = "error"
	EventPlayerLeft      EventType = "player_left"
	EventPlayerEntered   EventType = "player_entered"
	EventChatMessage     EventType = "chat_message"
)

// Event is the wire envelope for everything sent to clients.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// LocationUpdate describes the character's current surroundings. Tile
// is set outdoors, Building when inside one.
type LocationUpdate struct {
	Tile           *entity.TileDetail     `json:"tile,omitempty"`
	Building       *entity.BuildingDetail `json:"building,omitempty"`
	X              int                    `json:"x"`
	Y              int                    `json:"y"`
	InsideBuilding bool                   `json:"inside_building"`
}

// Position locates a character on the world grid.
type Position struct {
	X              int  `json:"x"`
	Y              int  `json:"y"`
	InsideBuilding bool `json:"inside_building"`
}

// MapUpdate carries a map slice centered on the character.
type MapUpdate struct {
	Map               [][]*entity.MapCell `json:"map"`
	CharacterPosition Position            `json:"character_position"`
}

// Presence announces a character entering or leaving a location.
type Presence struct {
	CharacterID   int64  `json:"character_id"`
	CharacterName string `json:"character_name"`
}

// ChatMessage is a chat line delivered to a channel's group.
type ChatMessage struct {
	CharacterID   int64     `json:"character_id"`
	CharacterName string    `json:"character_name"`
	Message       string    `json:"message"`
	Channel       string    `json:"channel"`
	Timestamp     time.Time `json:"timestamp"`
}

func errorEvent(message string) Event {
	return Event{Type: EventError, Data: map[string]any{"message": message}}
}

func messageEvent(text string) Event {
	return Event{Type: EventMessage, Data: map[string]any{"text": text}}
}
