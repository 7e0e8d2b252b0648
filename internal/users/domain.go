package users

import "time"

// Cadet is a cadet account as shown on the management screens.
type Cadet struct {
	ID               int64     `json:"id"`
	RegimentalNumber string    `json:"regimental_number"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Contact          string    `json:"contact"`
	UnitID           string    `json:"ano_id"`
	IsApproved       bool      `json:"is_approved"`
	CreatedAt        time.Time `json:"created_at"`
}

// Admin is a unit-admin account as listed to the super-admin.
type Admin struct {
	UnitID     string    `json:"ano_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Contact    string    `json:"contact"`
	Role       string    `json:"role"`
	Type       string    `json:"type"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

const (
	approvedMessage = "Your account has been approved! You may now log in."
	approvedLink    = "/cadet/dashboard"
	rejectedMessage = "Your registration has been rejected by the ANO."
)
