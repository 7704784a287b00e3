package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/klet/internal/grid"
	"github.com/erazemk/klet/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "klet.sqlite3", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "Admin", cfg.AdminUser)
	assert.True(t, cfg.SeedLayout)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("KLET_ADDR", "127.0.0.1:9000")
	t.Setenv("KLET_SEED_LAYOUT", "false")
	t.Setenv("KLET_TOKEN_TTL", "1h")
	t.Setenv("KLET_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.False(t, cfg.SeedLayout)
	assert.Equal(t, time.Hour, cfg.TokenTTL)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLevelRejectsGarbage(t *testing.T) {
	_, err := (&Config{LogLevel: "loud"}).Level()
	assert.Error(t, err)
}

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()
	require.Len(t, l.Locations, 3)

	locker := l.Locations[0]
	assert.Equal(t, "Private Locker", locker.Name)
	require.Len(t, locker.Units, 4)

	capacity := 0
	for _, s := range locker.Units {
		u, err := s.Unit("loc")
		require.NoError(t, err)
		capacity += grid.Capacity(u)
	}
	assert.Equal(t, 8*8*2+3*8*8*3, capacity)

	cabinet, err := l.Locations[2].Units[0].Unit("gift")
	require.NoError(t, err)
	assert.Equal(t, model.UnitTypeVerticalDrawer, cabinet.Type)
	assert.Equal(t, 18, grid.Capacity(cabinet))
}

func TestParseLayoutCustomDepth(t *testing.T) {
	l, err := ParseLayout([]byte(`
locations:
  - name: Cellar
    units:
      - name: Corner Rack
        type: grid
        width: 3
        height: 2
        depth: 2
        custom_depth:
          "1-2": 0
`))
	require.NoError(t, err)

	u, err := l.Locations[0].Units[0].Unit("c")
	require.NoError(t, err)
	assert.Equal(t, 0, grid.EffectiveDepth(u, 2, 1))
	assert.Equal(t, 10, grid.Capacity(u))
}

func TestParseLayoutErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "locations:\n  - name: A\n    colour: red\n",
		"missing name": "locations:\n  - description: x\n",
		"bad type":     "locations:\n  - name: A\n    units:\n      - {name: U, type: barrel, width: 1, height: 1, depth: 1}\n",
		"zero width":   "locations:\n  - name: A\n    units:\n      - {name: U, type: grid, width: 0, height: 1, depth: 1}\n",
		"bad cell key": "locations:\n  - name: A\n    units:\n      - {name: U, type: grid, width: 1, height: 1, depth: 1, custom_depth: {\"a-b\": 1}}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLayout([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locations:\n  - name: Garage\n"), 0o644))

	l, err := LoadLayout(path)
	require.NoError(t, err)
	assert.Equal(t, "Garage", l.Locations[0].Name)

	_, err = LoadLayout(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
