package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/homekeep-app/homekeep/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, home_id, title, description, category, frequency, custom_interval, custom_unit, next_due, snoozed_until, estimated_cost, is_active, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.MaintenanceTask, error) {
	var t model.MaintenanceTask
	var customInterval sql.NullInt64
	var customUnit sql.NullString
	var snoozedUntil sql.NullTime

	err := scanner.Scan(
		&t.ID, &t.HomeID, &t.Title, &t.Description, &t.Category, &t.Frequency,
		&customInterval, &customUnit, &t.NextDue, &snoozedUntil,
		&t.EstimatedCost, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if customInterval.Valid {
		v := int(customInterval.Int64)
		t.CustomInterval = &v
	}
	if customUnit.Valid {
		t.CustomUnit = &customUnit.String
	}
	t.SnoozedUntil = timePtr(snoozedUntil)
	return &t, nil
}

func (s *TaskStore) Create(t *model.MaintenanceTask) (*model.MaintenanceTask, error) {
	var interval sql.NullInt64
	if t.CustomInterval != nil {
		interval = sql.NullInt64{Int64: int64(*t.CustomInterval), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO maintenance_tasks (home_id, title, description, category, frequency, custom_interval, custom_unit, next_due, estimated_cost)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.HomeID, t.Title, t.Description, t.Category, t.Frequency,
		interval, nullString(t.CustomUnit), t.NextDue.UTC(), t.EstimatedCost,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+taskCols+` FROM maintenance_tasks WHERE id = ?`, id)
	return scanTask(row)
}

// GetByID returns the task only when its home belongs to userID.
func (s *TaskStore) GetByID(id, userID int64) (*model.MaintenanceTask, error) {
	row := s.db.QueryRow(
		`SELECT t.id, t.home_id, t.title, t.description, t.category, t.frequency, t.custom_interval, t.custom_unit, t.next_due, t.snoozed_until, t.estimated_cost, t.is_active, t.created_at, t.updated_at
		 FROM maintenance_tasks t JOIN homes h ON h.id = t.home_id
		 WHERE t.id = ? AND h.user_id = ?`,
		id, userID,
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns the user's active tasks, optionally scoped to one home.
func (s *TaskStore) List(userID int64, homeID *int64) ([]model.MaintenanceTask, error) {
	query := `SELECT t.id, t.home_id, t.title, t.description, t.category, t.frequency, t.custom_interval, t.custom_unit, t.next_due, t.snoozed_until, t.estimated_cost, t.is_active, t.created_at, t.updated_at
		 FROM maintenance_tasks t JOIN homes h ON h.id = t.home_id
		 WHERE h.user_id = ? AND t.is_active = 1`
	args := []any{userID}
	if homeID != nil {
		query += ` AND t.home_id = ?`
		args = append(args, *homeID)
	}
	query += ` ORDER BY t.next_due ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.MaintenanceTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(t *model.MaintenanceTask) (*model.MaintenanceTask, error) {
	var interval sql.NullInt64
	if t.CustomInterval != nil {
		interval = sql.NullInt64{Int64: int64(*t.CustomInterval), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE maintenance_tasks SET title = ?, description = ?, category = ?, frequency = ?, custom_interval = ?, custom_unit = ?, next_due = ?, snoozed_until = ?, estimated_cost = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		t.Title, t.Description, t.Category, t.Frequency, interval, nullString(t.CustomUnit),
		t.NextDue.UTC(), nullTime(t.SnoozedUntil), t.EstimatedCost, t.IsActive, t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+taskCols+` FROM maintenance_tasks WHERE id = ?`, t.ID)
	return scanTask(row)
}

func (s *TaskStore) Snooze(id int64, until time.Time) error {
	_, err := s.db.Exec(
		`UPDATE maintenance_tasks SET snoozed_until = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		until.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("snooze task: %w", err)
	}
	return nil
}

const completedCols = `id, task_id, home_id, category, completed_at, actual_cost, notes, created_at`

func scanCompletedTask(scanner interface{ Scan(...any) error }) (*model.CompletedTask, error) {
	var c model.CompletedTask
	err := scanner.Scan(&c.ID, &c.TaskID, &c.HomeID, &c.Category, &c.CompletedAt, &c.ActualCost, &c.Notes, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Complete records a completion, advances the task's next_due to nextDue, and
// clears any snooze, all in one transaction.
func (s *TaskStore) Complete(task *model.MaintenanceTask, completedAt, nextDue time.Time, actualCost float64, notes string) (*model.CompletedTask, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO completed_tasks (task_id, home_id, category, completed_at, actual_cost, notes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		task.ID, task.HomeID, task.Category, completedAt.UTC(), actualCost, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE maintenance_tasks SET next_due = ?, snoozed_until = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		nextDue.UTC(), task.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("advance next due: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+completedCols+` FROM completed_tasks WHERE id = ?`, id)
	return scanCompletedTask(row)
}

func (s *TaskStore) ListCompletions(userID, taskID int64) ([]model.CompletedTask, error) {
	rows, err := s.db.Query(
		`SELECT c.id, c.task_id, c.home_id, c.category, c.completed_at, c.actual_cost, c.notes, c.created_at
		 FROM completed_tasks c JOIN homes h ON h.id = c.home_id
		 WHERE h.user_id = ? AND c.task_id = ? ORDER BY c.completed_at DESC`,
		userID, taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var completions []model.CompletedTask
	for rows.Next() {
		c, err := scanCompletedTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, *c)
	}
	return completions, rows.Err()
}

// SumCompletedCost totals actual costs of completions in [start, end) across
// the given homes, optionally filtered by task category.
func (s *TaskStore) SumCompletedCost(homeIDs []int64, category *string, start, end time.Time) (float64, error) {
	if len(homeIDs) == 0 {
		return 0, nil
	}

	query := `SELECT COALESCE(SUM(actual_cost), 0) FROM completed_tasks WHERE completed_at >= ? AND completed_at < ? AND home_id IN (`
	args := []any{start.UTC(), end.UTC()}
	for i, id := range homeIDs {
		if i > 0 {
			query += `, `
		}
		query += `?`
		args = append(args, id)
	}
	query += `)`
	if category != nil && *category != "" {
		query += ` AND category = ?`
		args = append(args, *category)
	}

	var total float64
	if err := s.db.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum completed cost: %w", err)
	}
	return total, nil
}
