package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/erazemk/klet/internal/grid"
	"github.com/erazemk/klet/internal/model"
)

//go:embed default_layout.yaml
var defaultLayout []byte

// Layout is the set of locations and units to create on first start.
type Layout struct {
	Locations []LocationSeed `yaml:"locations"`
}

// LocationSeed describes one location and its units.
type LocationSeed struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Units       []UnitSeed `yaml:"units"`
}

// UnitSeed describes one storage unit. CustomDepth is keyed by "row-col".
type UnitSeed struct {
	Name        string         `yaml:"name"`
	Type        model.UnitType `yaml:"type"`
	Width       int            `yaml:"width"`
	Height      int            `yaml:"height"`
	Depth       int            `yaml:"depth"`
	CustomDepth map[string]int `yaml:"custom_depth"`
}

// DefaultLayout returns the built-in layout.
func DefaultLayout() *Layout {
	l, err := ParseLayout(defaultLayout)
	if err != nil {
		panic(fmt.Sprintf("embedded layout: %v", err))
	}
	return l
}

// LoadLayout reads a layout file, or returns the built-in layout when path
// is empty.
func LoadLayout(path string) (*Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	l, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	return l, nil
}

// ParseLayout decodes and validates a YAML layout. Unknown keys are errors.
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("decoding layout: %w", err)
	}
	for i, loc := range l.Locations {
		if loc.Name == "" {
			return nil, fmt.Errorf("location %d: name required", i+1)
		}
		for _, u := range loc.Units {
			if _, err := u.Unit(""); err != nil {
				return nil, fmt.Errorf("location %q: %w", loc.Name, err)
			}
		}
	}
	return &l, nil
}

// Unit converts the seed into a storage unit inside locationID.
func (s UnitSeed) Unit(locationID string) (model.StorageUnit, error) {
	u := model.StorageUnit{
		LocationID: locationID,
		Name:       s.Name,
		Type:       s.Type,
		Dimensions: model.Dimensions{Width: s.Width, Height: s.Height, Depth: s.Depth},
	}
	if s.Name == "" {
		return u, fmt.Errorf("unit name required")
	}
	if !s.Type.Valid() {
		return u, fmt.Errorf("unit %q: unknown type %q", s.Name, s.Type)
	}
	if grid.Degenerate(u) {
		return u, fmt.Errorf("unit %q: width and height must be positive", s.Name)
	}
	if s.Depth < 0 {
		return u, fmt.Errorf("unit %q: negative depth", s.Name)
	}
	if len(s.CustomDepth) > 0 {
		u.Config.CustomDepthMap = make(model.DepthMap, len(s.CustomDepth))
		for key, depth := range s.CustomDepth {
			var k model.CellKey
			if err := k.UnmarshalText([]byte(key)); err != nil {
				return u, fmt.Errorf("unit %q: %w", s.Name, err)
			}
			if depth < 0 {
				return u, fmt.Errorf("unit %q: negative depth at %s", s.Name, key)
			}
			u.Config.CustomDepthMap[k] = depth
		}
	}
	return u, nil
}
