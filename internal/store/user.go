package store

import (
	"database/sql"
	"fmt"

	"github.com/homekeep-app/homekeep/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userCols = `id, external_id, email, name, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.ExternalID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByExternalID(externalID string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE external_id = ?`, externalID)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by external id: %w", err)
	}
	return u, nil
}

// GetOrCreate resolves the local mirror row for an external identity,
// provisioning it on first sight and refreshing email/name on subsequent
// requests when they changed upstream.
func (s *UserStore) GetOrCreate(externalID, email, name string) (*model.User, error) {
	existing, err := s.GetByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Email != email || existing.Name != name {
			_, err := s.db.Exec(
				`UPDATE users SET email = ?, name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
				email, name, existing.ID,
			)
			if err != nil {
				return nil, fmt.Errorf("refresh user: %w", err)
			}
			return s.GetByID(existing.ID)
		}
		return existing, nil
	}

	result, err := s.db.Exec(
		`INSERT INTO users (external_id, email, name) VALUES (?, ?, ?)`,
		externalID, email, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// ListIDs returns all user ids, used by the scan jobs.
func (s *UserStore) ListIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
