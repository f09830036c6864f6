package entity

import "time"

// ActionLogEntry records one completed action. Entries are written to
// the acting character's stream and the global stream with the same
// score, so the two views stay in the same order.
type ActionLogEntry struct {
	ID          int64          `json:"id"`
	CharacterID int64          `json:"character_id"`
	ActionType  string         `json:"action_type"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}
