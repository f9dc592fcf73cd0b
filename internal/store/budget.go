package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/homekeep-app/homekeep/internal/model"
)

type BudgetStore struct {
	db *sql.DB
}

func NewBudgetStore(db *sql.DB) *BudgetStore {
	return &BudgetStore{db: db}
}

const planCols = `id, user_id, name, amount, period, category, home_id, start_date, end_date, is_active, created_at, updated_at`

func scanPlan(scanner interface{ Scan(...any) error }) (*model.BudgetPlan, error) {
	var p model.BudgetPlan
	var category sql.NullString
	var homeID sql.NullInt64
	var endDate sql.NullTime

	err := scanner.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Amount, &p.Period, &category, &homeID,
		&p.StartDate, &endDate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if category.Valid {
		p.Category = &category.String
	}
	if homeID.Valid {
		p.HomeID = &homeID.Int64
	}
	p.EndDate = timePtr(endDate)
	return &p, nil
}

func (s *BudgetStore) CreatePlan(p *model.BudgetPlan) (*model.BudgetPlan, error) {
	result, err := s.db.Exec(
		`INSERT INTO budget_plans (user_id, name, amount, period, category, home_id, start_date, end_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Name, p.Amount, p.Period, nullString(p.Category),
		nullInt64(p.HomeID), p.StartDate.UTC(), nullTime(p.EndDate),
	)
	if err != nil {
		return nil, fmt.Errorf("insert plan: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetPlan(id, p.UserID)
}

func (s *BudgetStore) GetPlan(id, userID int64) (*model.BudgetPlan, error) {
	row := s.db.QueryRow(`SELECT `+planCols+` FROM budget_plans WHERE id = ? AND user_id = ?`, id, userID)
	p, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

func (s *BudgetStore) ListPlans(userID int64) ([]model.BudgetPlan, error) {
	rows, err := s.db.Query(
		`SELECT `+planCols+` FROM budget_plans WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()
	return collectPlans(rows)
}

// ListActivePlans returns every plan, across all users, that is flagged
// active and whose date range covers now. Used by the alert evaluator.
func (s *BudgetStore) ListActivePlans(now time.Time) ([]model.BudgetPlan, error) {
	rows, err := s.db.Query(
		`SELECT `+planCols+` FROM budget_plans
		 WHERE is_active = 1 AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		 ORDER BY id`,
		now.UTC(), now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list active plans: %w", err)
	}
	defer rows.Close()
	return collectPlans(rows)
}

func collectPlans(rows *sql.Rows) ([]model.BudgetPlan, error) {
	var plans []model.BudgetPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (s *BudgetStore) UpdatePlan(p *model.BudgetPlan) (*model.BudgetPlan, error) {
	_, err := s.db.Exec(
		`UPDATE budget_plans SET name = ?, amount = ?, period = ?, category = ?, home_id = ?, start_date = ?, end_date = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		p.Name, p.Amount, p.Period, nullString(p.Category), nullInt64(p.HomeID),
		p.StartDate.UTC(), nullTime(p.EndDate), p.IsActive, p.ID, p.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}
	return s.GetPlan(p.ID, p.UserID)
}

// --- Alert methods ---

const alertCols = `id, user_id, plan_id, project_id, alert_type, message, status, created_at, updated_at`

func scanAlert(scanner interface{ Scan(...any) error }) (*model.BudgetAlert, error) {
	var a model.BudgetAlert
	var planID, projectID sql.NullInt64

	err := scanner.Scan(&a.ID, &a.UserID, &planID, &projectID, &a.AlertType, &a.Message, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if planID.Valid {
		a.PlanID = &planID.Int64
	}
	if projectID.Valid {
		a.ProjectID = &projectID.Int64
	}
	return &a, nil
}

// HasOpenAlert reports whether a non-dismissed alert of the given type exists
// for the plan or project. This existence check is the dedup guarantee: at
// most one open alert per (plan-or-project, type).
func (s *BudgetStore) HasOpenAlert(planID, projectID *int64, alertType string) (bool, error) {
	var query string
	var ref int64
	switch {
	case planID != nil:
		query = `SELECT COUNT(*) FROM budget_alerts WHERE plan_id = ? AND alert_type = ? AND status != 'DISMISSED'`
		ref = *planID
	case projectID != nil:
		query = `SELECT COUNT(*) FROM budget_alerts WHERE project_id = ? AND alert_type = ? AND status != 'DISMISSED'`
		ref = *projectID
	default:
		return false, fmt.Errorf("alert needs a plan or project reference")
	}

	var count int
	if err := s.db.QueryRow(query, ref, alertType).Scan(&count); err != nil {
		return false, fmt.Errorf("check open alert: %w", err)
	}
	return count > 0, nil
}

func (s *BudgetStore) CreateAlert(a *model.BudgetAlert) (*model.BudgetAlert, error) {
	result, err := s.db.Exec(
		`INSERT INTO budget_alerts (user_id, plan_id, project_id, alert_type, message) VALUES (?, ?, ?, ?, ?)`,
		a.UserID, nullInt64(a.PlanID), nullInt64(a.ProjectID), a.AlertType, a.Message,
	)
	if err != nil {
		return nil, fmt.Errorf("insert alert: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+alertCols+` FROM budget_alerts WHERE id = ?`, id)
	return scanAlert(row)
}

func (s *BudgetStore) ListAlerts(userID int64) ([]model.BudgetAlert, error) {
	rows, err := s.db.Query(
		`SELECT `+alertCols+` FROM budget_alerts WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.BudgetAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

// SetAlertStatus transitions an alert's status; the userID guard keeps one
// user from touching another's alerts.
func (s *BudgetStore) SetAlertStatus(id, userID int64, status string) error {
	result, err := s.db.Exec(
		`UPDATE budget_alerts SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`,
		status, id, userID,
	)
	if err != nil {
		return fmt.Errorf("set alert status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkSent flips a PENDING alert to SENT after a notification went out.
func (s *BudgetStore) MarkSent(id int64) error {
	_, err := s.db.Exec(
		`UPDATE budget_alerts SET status = 'SENT', updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = 'PENDING'`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark alert sent: %w", err)
	}
	return nil
}

// SumProjectCost totals recorded project spend in [start, end) across the
// given homes, optionally filtered by category. A project dates from its
// completion when finished, otherwise from its start.
func (s *BudgetStore) SumProjectCost(homeIDs []int64, category *string, start, end time.Time) (float64, error) {
	if len(homeIDs) == 0 {
		return 0, nil
	}

	query := `SELECT COALESCE(SUM(actual_cost), 0) FROM diy_projects
		 WHERE actual_cost IS NOT NULL
		   AND COALESCE(completed_at, started_at, created_at) >= ?
		   AND COALESCE(completed_at, started_at, created_at) < ?
		   AND home_id IN (`
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
		return 0, fmt.Errorf("sum project cost: %w", err)
	}
	return total, nil
}
