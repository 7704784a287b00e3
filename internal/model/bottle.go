package model

import "time"

// BottleStatus is the lifecycle state of a bottle.
type BottleStatus string

// Bottle statuses. Only stored bottles occupy a slot.
const (
	BottleStored   BottleStatus = "Stored"
	BottleConsumed BottleStatus = "Consumed"
	BottleGifted   BottleStatus = "Gifted"
)

// Bottle is one physical bottle. X, Y and Depth are meaningful only
// relative to UnitID.
type Bottle struct {
	ID                string       `json:"id"`
	WineID            string       `json:"wine_id"`
	LocationID        string       `json:"location_id"`
	UnitID            string       `json:"unit_id"`
	X                 int          `json:"x"`
	Y                 int          `json:"y"`
	Depth             int          `json:"depth"`
	Status            BottleStatus `json:"status"`
	AddedAt           time.Time    `json:"added_at"`
	ConsumedAt        *time.Time   `json:"consumed_at,omitempty"`
	ConsumptionRating *int         `json:"consumption_rating,omitempty"`
	ConsumptionNotes  string       `json:"consumption_notes,omitempty"`

	// Joined fields (not always populated).
	WineName     string `json:"wine_name,omitempty"`
	Producer     string `json:"producer,omitempty"`
	UnitName     string `json:"unit_name,omitempty"`
	LocationName string `json:"location_name,omitempty"`
}

// BottleUpdate is a partial update keyed by bottle ID. Nil fields are left
// unchanged.
type BottleUpdate struct {
	LocationID        *string
	UnitID            *string
	X, Y, Depth       *int
	Status            *BottleStatus
	ConsumedAt        *time.Time
	ConsumptionRating *int
	ConsumptionNotes  *string
}

// BottleEventKind classifies history entries.
type BottleEventKind string

// Event kinds.
const (
	EventStored   BottleEventKind = "stored"
	EventMoved    BottleEventKind = "moved"
	EventConsumed BottleEventKind = "consumed"
	EventGifted   BottleEventKind = "gifted"
)

// BottleEvent is an append-only history entry for a bottle.
type BottleEvent struct {
	ID         int64           `json:"id"`
	BottleID   string          `json:"bottle_id"`
	Kind       BottleEventKind `json:"kind"`
	FromUnitID string          `json:"from_unit_id,omitempty"`
	FromX      *int            `json:"from_x,omitempty"`
	FromY      *int            `json:"from_y,omitempty"`
	FromDepth  *int            `json:"from_depth,omitempty"`
	ToUnitID   string          `json:"to_unit_id,omitempty"`
	ToX        *int            `json:"to_x,omitempty"`
	ToY        *int            `json:"to_y,omitempty"`
	ToDepth    *int            `json:"to_depth,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	CreatedBy  *int64          `json:"created_by,omitempty"`
}
