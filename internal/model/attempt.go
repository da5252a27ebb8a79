package model

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is one recorded spelling or speaking try.
type Attempt struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"session_id"`
	Topic     string    `json:"topic"`
	Word      string    `json:"word"`
	Mode      Mode      `json:"mode"`
	Input     string    `json:"input"`
	Score     int       `json:"score"`
	Correct   bool      `json:"correct"`
	CreatedAt time.Time `json:"created_at"`
}
