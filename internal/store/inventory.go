package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/homekeep-app/homekeep/internal/model"
)

type InventoryStore struct {
	db *sql.DB
}

func NewInventoryStore(db *sql.DB) *InventoryStore {
	return &InventoryStore{db: db}
}

const inventoryCols = `id, home_id, kind, name, category, brand, model_number, install_date, warranty_expires, condition, material, location, notes, last_service_date, is_active, created_at, updated_at`

func scanInventoryItem(scanner interface{ Scan(...any) error }) (*model.InventoryItem, error) {
	var it model.InventoryItem
	var installDate, warrantyExpires, lastService sql.NullTime

	err := scanner.Scan(
		&it.ID, &it.HomeID, &it.Kind, &it.Name, &it.Category, &it.Brand, &it.ModelNumber,
		&installDate, &warrantyExpires, &it.Condition, &it.Material, &it.Location,
		&it.Notes, &lastService, &it.IsActive, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	it.InstallDate = timePtr(installDate)
	it.WarrantyExpires = timePtr(warrantyExpires)
	it.LastServiceDate = timePtr(lastService)
	return &it, nil
}

// CreateBatch inserts a request-sized batch of items for one home inside a
// single transaction.
func (s *InventoryStore) CreateBatch(homeID int64, kind string, items []model.InventoryItem) ([]model.InventoryItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var ids []int64
	for _, it := range items {
		result, err := tx.Exec(
			`INSERT INTO inventory_items (home_id, kind, name, category, brand, model_number, install_date, warranty_expires, condition, material, location, notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			homeID, kind, it.Name, it.Category, it.Brand, it.ModelNumber,
			nullTime(it.InstallDate), nullTime(it.WarrantyExpires),
			it.Condition, it.Material, it.Location, it.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("insert inventory item: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	var created []model.InventoryItem
	for _, id := range ids {
		row := s.db.QueryRow(`SELECT `+inventoryCols+` FROM inventory_items WHERE id = ?`, id)
		it, err := scanInventoryItem(row)
		if err != nil {
			return nil, fmt.Errorf("get created item: %w", err)
		}
		created = append(created, *it)
	}
	return created, nil
}

// GetByID returns the item only when its home belongs to userID.
func (s *InventoryStore) GetByID(id, userID int64) (*model.InventoryItem, error) {
	row := s.db.QueryRow(
		`SELECT i.id, i.home_id, i.kind, i.name, i.category, i.brand, i.model_number, i.install_date, i.warranty_expires, i.condition, i.material, i.location, i.notes, i.last_service_date, i.is_active, i.created_at, i.updated_at
		 FROM inventory_items i JOIN homes h ON h.id = i.home_id
		 WHERE i.id = ? AND h.user_id = ?`,
		id, userID,
	)
	it, err := scanInventoryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return it, nil
}

func (s *InventoryStore) ListByHome(homeID int64, kind string) ([]model.InventoryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+inventoryCols+` FROM inventory_items WHERE home_id = ? AND kind = ? AND is_active = 1 ORDER BY name ASC`,
		homeID, kind,
	)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (s *InventoryStore) Update(it *model.InventoryItem) (*model.InventoryItem, error) {
	_, err := s.db.Exec(
		`UPDATE inventory_items SET name = ?, category = ?, brand = ?, model_number = ?, install_date = ?, warranty_expires = ?, condition = ?, material = ?, location = ?, notes = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		it.Name, it.Category, it.Brand, it.ModelNumber,
		nullTime(it.InstallDate), nullTime(it.WarrantyExpires),
		it.Condition, it.Material, it.Location, it.Notes, it.IsActive, it.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update inventory item: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+inventoryCols+` FROM inventory_items WHERE id = ?`, it.ID)
	updated, err := scanInventoryItem(row)
	if err != nil {
		return nil, fmt.Errorf("get updated item: %w", err)
	}
	return updated, nil
}

func (s *InventoryStore) SetLastServiceDate(itemID int64, serviceDate time.Time) error {
	_, err := s.db.Exec(
		`UPDATE inventory_items SET last_service_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		serviceDate.UTC(), itemID,
	)
	if err != nil {
		return fmt.Errorf("set last service date: %w", err)
	}
	return nil
}

// ListExpiringWarranties returns the user's active items whose warranty
// expires within [from, to].
func (s *InventoryStore) ListExpiringWarranties(userID int64, from, to time.Time) ([]model.InventoryItem, error) {
	rows, err := s.db.Query(
		`SELECT i.id, i.home_id, i.kind, i.name, i.category, i.brand, i.model_number, i.install_date, i.warranty_expires, i.condition, i.material, i.location, i.notes, i.last_service_date, i.is_active, i.created_at, i.updated_at
		 FROM inventory_items i JOIN homes h ON h.id = i.home_id
		 WHERE h.user_id = ? AND i.is_active = 1 AND i.warranty_expires IS NOT NULL
		   AND i.warranty_expires >= ? AND i.warranty_expires <= ?
		 ORDER BY i.warranty_expires ASC`,
		userID, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list expiring warranties: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}
