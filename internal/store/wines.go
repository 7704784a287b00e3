package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/erazemk/klet/internal/model"
)

const wineColumns = `id, name, producer, vineyard, year, type, varietals, country, region,
	description, rating, price, image_mime, created_at, updated_at`

// WineFilter narrows ListWines. Zero values match everything.
type WineFilter struct {
	Query string
	Type  model.WineType
}

// CreateWine inserts w with a fresh ID and returns the stored row.
func CreateWine(ctx context.Context, db DBTX, w model.Wine) (*model.Wine, error) {
	varietals, err := encodeVarietals(w.Varietals)
	if err != nil {
		return nil, err
	}

	id := newID()
	_, err = db.ExecContext(ctx,
		`INSERT INTO wines (id, name, producer, vineyard, year, type, varietals, country, region,
		                    description, rating, price)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, w.Name, w.Producer, w.Vineyard, w.Year, w.Type, varietals, w.Country, w.Region,
		w.Description, w.Rating, w.Price,
	)
	if err != nil {
		return nil, fmt.Errorf("creating wine: %w", err)
	}
	return GetWine(ctx, db, id)
}

// GetWine returns a wine by ID, or nil if it does not exist.
func GetWine(ctx context.Context, db DBTX, id string) (*model.Wine, error) {
	row := db.QueryRowContext(ctx, `SELECT `+wineColumns+` FROM wines WHERE id = ?`, id)
	w, err := scanWine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting wine: %w", err)
	}
	return w, nil
}

// ListWines returns wines matching f, ordered by producer, name and vintage.
func ListWines(ctx context.Context, db DBTX, f WineFilter) ([]model.Wine, error) {
	var (
		where []string
		args  []any
	)
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, `(name LIKE ? OR producer LIKE ? OR region LIKE ?)`)
		like := "%" + q + "%"
		args = append(args, like, like, like)
	}
	if f.Type != "" {
		where = append(where, `type = ?`)
		args = append(args, f.Type)
	}

	query := `SELECT ` + wineColumns + ` FROM wines`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY producer, name, year`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing wines: %w", err)
	}
	defer rows.Close()

	wines := []model.Wine{}
	for rows.Next() {
		w, err := scanWine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning wine: %w", err)
		}
		wines = append(wines, *w)
	}
	return wines, rows.Err()
}

// UpdateWine replaces the descriptive fields of a wine. The image is kept.
func UpdateWine(ctx context.Context, db DBTX, w model.Wine) error {
	varietals, err := encodeVarietals(w.Varietals)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`UPDATE wines SET name = ?, producer = ?, vineyard = ?, year = ?, type = ?, varietals = ?,
		                  country = ?, region = ?, description = ?, rating = ?, price = ?,
		                  updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		w.Name, w.Producer, w.Vineyard, w.Year, w.Type, varietals,
		w.Country, w.Region, w.Description, w.Rating, w.Price, w.ID,
	)
	if err != nil {
		return fmt.Errorf("updating wine: %w", err)
	}
	return requireAffected(res, "wine "+w.ID)
}

// DeleteWine removes a wine and every bottle of it.
func DeleteWine(ctx context.Context, db DBTX, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM wines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting wine: %w", err)
	}
	return requireAffected(res, "wine "+id)
}

// SetWineImage stores a label photo for a wine.
func SetWineImage(ctx context.Context, db DBTX, id string, image []byte, mime string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE wines SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting wine image: %w", err)
	}
	return requireAffected(res, "wine "+id)
}

// GetWineImage returns a wine's label photo and its MIME type. A wine
// without a photo yields a nil slice.
func GetWineImage(ctx context.Context, db DBTX, id string) ([]byte, string, error) {
	var (
		image []byte
		mime  sql.NullString
	)
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM wines WHERE id = ?`, id,
	).Scan(&image, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting wine image: %w", err)
	}
	return image, mime.String, nil
}

func encodeVarietals(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding varietals: %w", err)
	}
	return string(b), nil
}

func scanWine(s rowScanner) (*model.Wine, error) {
	var (
		w                                            model.Wine
		vineyard, country, region, description, mime sql.NullString
		varietals                                    string
	)
	err := s.Scan(&w.ID, &w.Name, &w.Producer, &vineyard, &w.Year, &w.Type, &varietals,
		&country, &region, &description, &w.Rating, &w.Price, &mime, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	w.Vineyard = vineyard.String
	w.Country = country.String
	w.Region = region.String
	w.Description = description.String
	w.ImageMime = mime.String
	if err := json.Unmarshal([]byte(varietals), &w.Varietals); err != nil {
		return nil, fmt.Errorf("decoding varietals of wine %s: %w", w.ID, err)
	}
	return &w, nil
}
