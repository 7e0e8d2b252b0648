// Package settings manages the super-admin platform configuration.
package settings

import "time"

// Entry is one platform_config row.
type Entry struct {
	ID          int64     `json:"config_id"`
	Key         string    `json:"cfg_key"`
	Value       string    `json:"cfg_value"`
	Description *string   `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateInput adds a configuration key.
type CreateInput struct {
	Key         string `json:"cfg_key" validate:"required"`
	Value       string `json:"cfg_value" validate:"required"`
	Description string `json:"description"`
}

// UpdateInput replaces the value and description of an existing key.
type UpdateInput struct {
	Value       string `json:"cfg_value" validate:"required"`
	Description string `json:"description"`
}
