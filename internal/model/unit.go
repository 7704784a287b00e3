package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UnitType selects how a storage unit is addressed and drawn.
type UnitType string

// Unit types.
const (
	UnitTypeGrid           UnitType = "grid"
	UnitTypeList           UnitType = "list"
	UnitTypeCrate          UnitType = "crate"
	UnitTypeVerticalDrawer UnitType = "vertical_drawer"
)

// Valid reports whether t is a known unit type.
func (t UnitType) Valid() bool {
	switch t {
	case UnitTypeGrid, UnitTypeList, UnitTypeCrate, UnitTypeVerticalDrawer:
		return true
	}
	return false
}

// StorageUnit is a physical container (rack, crate, drawer) inside a location.
type StorageUnit struct {
	ID         string     `json:"id"`
	LocationID string     `json:"location_id"`
	Name       string     `json:"name"`
	Type       UnitType   `json:"type"`
	Dimensions Dimensions `json:"dimensions"`
	Config     UnitConfig `json:"config"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Dimensions of a unit. Width x Height is the planar grid, Depth is the
// default number of slots behind each planar cell.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Depth  int `json:"depth"`
}

// UnitConfig holds optional per-unit overrides.
type UnitConfig struct {
	CustomDepthMap DepthMap `json:"custom_depth_map,omitempty"`
}

// CellKey addresses one planar cell of a unit.
type CellKey struct {
	Row int
	Col int
}

// String renders the key as "row-col".
func (k CellKey) String() string {
	return strconv.Itoa(k.Row) + "-" + strconv.Itoa(k.Col)
}

// MarshalText implements encoding.TextMarshaler so a DepthMap encodes as a
// JSON object keyed by "row-col".
func (k CellKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses "row-col". Both parts must be non-negative decimal
// integers; anything else is an error rather than a key that never matches.
func (k *CellKey) UnmarshalText(text []byte) error {
	s := string(text)
	rowStr, colStr, ok := strings.Cut(s, "-")
	if !ok {
		return fmt.Errorf("cell key %q: expected row-col", s)
	}
	row, err := parseIndex(rowStr)
	if err != nil {
		return fmt.Errorf("cell key %q: row: %w", s, err)
	}
	col, err := parseIndex(colStr)
	if err != nil {
		return fmt.Errorf("cell key %q: col: %w", s, err)
	}
	k.Row, k.Col = row, col
	return nil
}

func parseIndex(s string) (int, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return strconv.Atoi(s)
}

// DepthMap overrides the default depth for individual planar cells.
type DepthMap map[CellKey]int
