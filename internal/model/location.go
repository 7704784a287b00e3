package model

import "time"

// Location is a named physical place holding zero or more storage units.
// It carries no geometry of its own.
type Location struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
