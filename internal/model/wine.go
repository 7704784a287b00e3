package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// WineType is the style of a wine.
type WineType string

// Wine types.
const (
	WineTypeRed       WineType = "Red"
	WineTypeWhite     WineType = "White"
	WineTypeRose      WineType = "Rosé"
	WineTypeSparkling WineType = "Sparkling"
	WineTypeDessert   WineType = "Dessert"
	WineTypeFortified WineType = "Fortified"
)

// Wine is a logical wine (label + vintage). Individual bottles reference it.
type Wine struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Producer    string              `json:"producer"`
	Vineyard    string              `json:"vineyard,omitempty"`
	Year        int                 `json:"year"`
	Type        WineType            `json:"type"`
	Varietals   []string            `json:"varietals"`
	Country     string              `json:"country,omitempty"`
	Region      string              `json:"region,omitempty"`
	Description string              `json:"description,omitempty"`
	Rating      *int                `json:"rating,omitempty"`
	Price       decimal.NullDecimal `json:"price"`
	ImageMime   string              `json:"image_mime,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
