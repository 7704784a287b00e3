package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS locations (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS storage_units (
    id          TEXT PRIMARY KEY,
    location_id TEXT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    type        TEXT NOT NULL CHECK (type IN ('grid', 'list', 'crate', 'vertical_drawer')),
    width       INTEGER NOT NULL DEFAULT 1,
    height      INTEGER NOT NULL DEFAULT 1,
    depth       INTEGER NOT NULL DEFAULT 1,
    config      TEXT NOT NULL DEFAULT '{}',
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_storage_units_location ON storage_units(location_id);

CREATE TABLE IF NOT EXISTS wines (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    producer    TEXT NOT NULL,
    vineyard    TEXT,
    year        INTEGER NOT NULL DEFAULT 0,
    type        TEXT NOT NULL,
    varietals   TEXT NOT NULL DEFAULT '[]',
    country     TEXT,
    region      TEXT,
    description TEXT,
    rating      INTEGER,
    price       TEXT,
    image       BLOB,
    image_mime  TEXT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bottles (
    id                 TEXT PRIMARY KEY,
    wine_id            TEXT NOT NULL REFERENCES wines(id) ON DELETE CASCADE,
    location_id        TEXT NOT NULL,
    unit_id            TEXT NOT NULL REFERENCES storage_units(id) ON DELETE CASCADE,
    x                  INTEGER NOT NULL CHECK (x >= 0),
    y                  INTEGER NOT NULL CHECK (y >= 0),
    depth              INTEGER NOT NULL CHECK (depth >= 0),
    status             TEXT NOT NULL DEFAULT 'Stored' CHECK (status IN ('Stored', 'Consumed', 'Gifted')),
    added_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    consumed_at        DATETIME,
    consumption_rating INTEGER,
    consumption_notes  TEXT
);

CREATE INDEX IF NOT EXISTS idx_bottles_unit ON bottles(unit_id);
CREATE INDEX IF NOT EXISTS idx_bottles_wine ON bottles(wine_id);

CREATE TABLE IF NOT EXISTS bottle_events (
    id           INTEGER PRIMARY KEY,
    bottle_id    TEXT NOT NULL REFERENCES bottles(id) ON DELETE CASCADE,
    kind         TEXT NOT NULL CHECK (kind IN ('stored', 'moved', 'consumed', 'gifted')),
    from_unit_id TEXT,
    from_x       INTEGER,
    from_y       INTEGER,
    from_depth   INTEGER,
    to_unit_id   TEXT,
    to_x         INTEGER,
    to_y         INTEGER,
    to_depth     INTEGER,
    notes        TEXT,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    created_by   INTEGER REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_bottle_events_bottle ON bottle_events(bottle_id);
`

// EnsureSchema creates all tables and indexes if they don't already exist,
// then applies migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return migrate(db)
}
