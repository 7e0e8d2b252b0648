package attendance

import "time"

// FallinSummary is the fall-in picker shown when taking attendance.
type FallinSummary struct {
	ID       int64   `json:"fallin_id"`
	Date     string  `json:"date"`
	Time     string  `json:"time"`
	Type     string  `json:"type"`
	Location *string `json:"location"`
}

// Cadet is an attendance-eligible member of a unit.
type Cadet struct {
	RegimentalNumber string `json:"regimental_number"`
	Name             string `json:"name"`
}

// Mark is one entry of an attendance batch.
type Mark struct {
	RegimentalNumber string `json:"regimental_number"`
	Status           string `json:"status"`
	Remarks          string `json:"remarks"`
}

// Row is an attendance entry joined with the cadet's name.
type Row struct {
	ID               int64     `json:"attendance_id"`
	RegimentalNumber string    `json:"regimental_number"`
	Name             string    `json:"name"`
	Status           string    `json:"status"`
	Remarks          *string   `json:"remarks"`
	RecordedAt       time.Time `json:"recorded_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Record is a single attendance row with the units used for authorization.
type Record struct {
	ID               int64     `json:"attendance_id"`
	FallinID         int64     `json:"fallin_id"`
	RegimentalNumber string    `json:"regimental_number"`
	RecordUnit       string    `json:"record_ano"`
	Status           string    `json:"status"`
	Remarks          *string   `json:"remarks"`
	RecordedAt       time.Time `json:"recorded_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	FallinUnit       string    `json:"fallin_ano"`
}

// Change is the single-record update payload.
type Change struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}
