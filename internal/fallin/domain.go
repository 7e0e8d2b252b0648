package fallin

import "time"

// DefaultType is applied when a fall-in is posted without a type.
const DefaultType = "Afternoon"

// Fallin is a scheduled roll-call belonging to one unit.
type Fallin struct {
	ID              int64     `json:"fallin_id"`
	UnitID          string    `json:"-"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Type            string    `json:"type"`
	Location        *string   `json:"location"`
	DressCode       string    `json:"dress_code"`
	Instructions    *string   `json:"instructions"`
	ActivityDetails *string   `json:"activity_details"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Input is the create/update payload.
type Input struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	Type            string `json:"type"`
	Location        string `json:"location"`
	DressCode       string `json:"dress_code"`
	Instructions    string `json:"instructions"`
	ActivityDetails string `json:"activity_details"`
}

func (in Input) typeOrDefault() string {
	if in.Type == "" {
		return DefaultType
	}
	return in.Type
}
