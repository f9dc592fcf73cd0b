package store

import (
	"database/sql"
	"fmt"

	"github.com/homekeep-app/homekeep/internal/model"
)

type MaintenanceStore struct {
	db *sql.DB
}

func NewMaintenanceStore(db *sql.DB) *MaintenanceStore {
	return &MaintenanceStore{db: db}
}

const recordCols = `id, home_id, item_id, service_date, description, cost, performed_by, created_at`

func scanRecord(scanner interface{ Scan(...any) error }) (*model.MaintenanceRecord, error) {
	var r model.MaintenanceRecord
	var itemID sql.NullInt64

	err := scanner.Scan(&r.ID, &r.HomeID, &itemID, &r.ServiceDate, &r.Description, &r.Cost, &r.PerformedBy, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	if itemID.Valid {
		r.ItemID = &itemID.Int64
	}
	return &r, nil
}

// Create inserts a service record and, when tied to an inventory item,
// advances the item's last_service_date in the same transaction.
func (s *MaintenanceStore) Create(r *model.MaintenanceRecord) (*model.MaintenanceRecord, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO maintenance_records (home_id, item_id, service_date, description, cost, performed_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.HomeID, nullInt64(r.ItemID), r.ServiceDate.UTC(), r.Description, r.Cost, r.PerformedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if r.ItemID != nil {
		_, err := tx.Exec(
			`UPDATE inventory_items SET last_service_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			r.ServiceDate.UTC(), *r.ItemID,
		)
		if err != nil {
			return nil, fmt.Errorf("update last service date: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+recordCols+` FROM maintenance_records WHERE id = ?`, id)
	return scanRecord(row)
}

// List returns the user's service records, optionally scoped to a home or a
// single inventory item.
func (s *MaintenanceStore) List(userID int64, homeID, itemID *int64) ([]model.MaintenanceRecord, error) {
	query := `SELECT r.id, r.home_id, r.item_id, r.service_date, r.description, r.cost, r.performed_by, r.created_at
		 FROM maintenance_records r JOIN homes h ON h.id = r.home_id
		 WHERE h.user_id = ?`
	args := []any{userID}
	if homeID != nil {
		query += ` AND r.home_id = ?`
		args = append(args, *homeID)
	}
	if itemID != nil {
		query += ` AND r.item_id = ?`
		args = append(args, *itemID)
	}
	query += ` ORDER BY r.service_date DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []model.MaintenanceRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}
