package events

import "time"

// Event is a unit activity announced to its cadets.
type Event struct {
	ID           int64     `json:"event_id"`
	EventDate    string    `json:"event_date"`
	FallinTime   string    `json:"fallin_time"`
	DressCode    string    `json:"dress_code"`
	Location     string    `json:"location"`
	Instructions string    `json:"instructions"`
	CreatedAt    time.Time `json:"created_at"`
}

// Input is the create/update payload. Every field is required.
type Input struct {
	EventDate    string `json:"event_date" validate:"required"`
	FallinTime   string `json:"fallin_time" validate:"required"`
	DressCode    string `json:"dress_code" validate:"required"`
	Location     string `json:"location" validate:"required"`
	Instructions string `json:"instructions" validate:"required"`
}
