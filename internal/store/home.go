package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/homekeep-app/homekeep/internal/model"
)

type HomeStore struct {
	db *sql.DB
}

func NewHomeStore(db *sql.DB) *HomeStore {
	return &HomeStore{db: db}
}

const homeCols = `id, user_id, nickname, address, city, state, zip_code, year_built, home_type, square_feet, climate_zone, latitude, longitude, is_active, created_at, updated_at`

func scanHome(scanner interface{ Scan(...any) error }) (*model.Home, error) {
	var h model.Home
	var yearBuilt, squareFeet sql.NullInt64
	var lat, lon sql.NullFloat64

	err := scanner.Scan(
		&h.ID, &h.UserID, &h.Nickname, &h.Address, &h.City, &h.State, &h.ZipCode,
		&yearBuilt, &h.HomeType, &squareFeet, &h.ClimateZone, &lat, &lon,
		&h.IsActive, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if yearBuilt.Valid {
		v := int(yearBuilt.Int64)
		h.YearBuilt = &v
	}
	if squareFeet.Valid {
		v := int(squareFeet.Int64)
		h.SquareFeet = &v
	}
	if lat.Valid {
		h.Latitude = &lat.Float64
	}
	if lon.Valid {
		h.Longitude = &lon.Float64
	}
	return &h, nil
}

func (s *HomeStore) Create(h *model.Home) (*model.Home, error) {
	result, err := s.db.Exec(
		`INSERT INTO homes (user_id, nickname, address, city, state, zip_code, year_built, home_type, square_feet, climate_zone, latitude, longitude)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.UserID, h.Nickname, h.Address, h.City, h.State, h.ZipCode,
		nullInt(h.YearBuilt), h.HomeType, nullInt(h.SquareFeet), h.ClimateZone,
		nullFloat(h.Latitude), nullFloat(h.Longitude),
	)
	if err != nil {
		return nil, fmt.Errorf("insert home: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, h.UserID)
}

// GetByID returns the home only when it belongs to userID. Callers treat a
// nil result as not-found, which covers not-owned as well.
func (s *HomeStore) GetByID(id, userID int64) (*model.Home, error) {
	row := s.db.QueryRow(`SELECT `+homeCols+` FROM homes WHERE id = ? AND user_id = ?`, id, userID)
	h, err := scanHome(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get home: %w", err)
	}
	return h, nil
}

func (s *HomeStore) ListByUser(userID int64) ([]model.Home, error) {
	rows, err := s.db.Query(
		`SELECT `+homeCols+` FROM homes WHERE user_id = ? AND is_active = 1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list homes: %w", err)
	}
	defer rows.Close()

	var homes []model.Home
	for rows.Next() {
		h, err := scanHome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan home: %w", err)
		}
		homes = append(homes, *h)
	}
	return homes, rows.Err()
}

// ListIDsByUser returns the ids of the user's active homes, optionally
// restricted to a single home (budget plan scoping).
func (s *HomeStore) ListIDsByUser(userID int64, homeID *int64) ([]int64, error) {
	query := `SELECT id FROM homes WHERE user_id = ? AND is_active = 1`
	args := []any{userID}
	if homeID != nil {
		query += ` AND id = ?`
		args = append(args, *homeID)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list home ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan home id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *HomeStore) Update(h *model.Home) (*model.Home, error) {
	_, err := s.db.Exec(
		`UPDATE homes SET nickname = ?, address = ?, city = ?, state = ?, zip_code = ?, year_built = ?, home_type = ?, square_feet = ?, climate_zone = ?, latitude = ?, longitude = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		h.Nickname, h.Address, h.City, h.State, h.ZipCode, nullInt(h.YearBuilt),
		h.HomeType, nullInt(h.SquareFeet), h.ClimateZone, nullFloat(h.Latitude),
		nullFloat(h.Longitude), h.IsActive, h.ID, h.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update home: %w", err)
	}
	return s.GetByID(h.ID, h.UserID)
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
