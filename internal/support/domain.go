package support

import "time"

// Query statuses.
const (
	StatusOpen   = "Open"
	StatusClosed = "Closed"
)

// Query is a cadet-authored support request.
type Query struct {
	ID               int64     `json:"query_id"`
	RegimentalNumber string    `json:"regimental_number,omitempty"`
	CadetName        string    `json:"cadet_name,omitempty"`
	Message          string    `json:"message"`
	Response         *string   `json:"response"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Owner identifies the cadet behind a query and their unit.
type Owner struct {
	RegimentalNumber string
	UnitID           string
}
