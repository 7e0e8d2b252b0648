package achievements

import "time"

// Achievement is a unit accomplishment, optionally with an image.
type Achievement struct {
	ID          int64     `json:"achievement_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	ImagePath   *string   `json:"image_path"`
	CreatedAt   time.Time `json:"created_at"`
}

// Input carries the text fields of a new achievement.
type Input struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
