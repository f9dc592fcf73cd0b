package store

import (
	"database/sql"
	"fmt"

	"github.com/homekeep-app/homekeep/internal/model"
)

type ProjectStore struct {
	db *sql.DB
}

func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

const projectCols = `id, home_id, title, description, category, status, budget, actual_cost, started_at, completed_at, created_at, updated_at`

func scanProject(scanner interface{ Scan(...any) error }) (*model.DiyProject, error) {
	var p model.DiyProject
	var budget, actualCost sql.NullFloat64
	var startedAt, completedAt sql.NullTime

	err := scanner.Scan(
		&p.ID, &p.HomeID, &p.Title, &p.Description, &p.Category, &p.Status,
		&budget, &actualCost, &startedAt, &completedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if budget.Valid {
		p.Budget = &budget.Float64
	}
	if actualCost.Valid {
		p.ActualCost = &actualCost.Float64
	}
	p.StartedAt = timePtr(startedAt)
	p.CompletedAt = timePtr(completedAt)
	return &p, nil
}

func (s *ProjectStore) Create(p *model.DiyProject) (*model.DiyProject, error) {
	result, err := s.db.Exec(
		`INSERT INTO diy_projects (home_id, title, description, category, status, budget, actual_cost, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.HomeID, p.Title, p.Description, p.Category, p.Status,
		nullFloat(p.Budget), nullFloat(p.ActualCost), nullTime(p.StartedAt), nullTime(p.CompletedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+projectCols+` FROM diy_projects WHERE id = ?`, id)
	return scanProject(row)
}

// GetByID returns the project only when its home belongs to userID.
func (s *ProjectStore) GetByID(id, userID int64) (*model.DiyProject, error) {
	row := s.db.QueryRow(
		`SELECT p.id, p.home_id, p.title, p.description, p.category, p.status, p.budget, p.actual_cost, p.started_at, p.completed_at, p.created_at, p.updated_at
		 FROM diy_projects p JOIN homes h ON h.id = p.home_id
		 WHERE p.id = ? AND h.user_id = ?`,
		id, userID,
	)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *ProjectStore) List(userID int64, homeID *int64) ([]model.DiyProject, error) {
	query := `SELECT p.id, p.home_id, p.title, p.description, p.category, p.status, p.budget, p.actual_cost, p.started_at, p.completed_at, p.created_at, p.updated_at
		 FROM diy_projects p JOIN homes h ON h.id = p.home_id
		 WHERE h.user_id = ?`
	args := []any{userID}
	if homeID != nil {
		query += ` AND p.home_id = ?`
		args = append(args, *homeID)
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.DiyProject
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// BudgetedProject pairs a project with its owner for the alert evaluator.
type BudgetedProject struct {
	Project model.DiyProject
	UserID  int64
}

// ListBudgeted returns every planning/in-progress project with a budget set,
// across all users.
func (s *ProjectStore) ListBudgeted() ([]BudgetedProject, error) {
	rows, err := s.db.Query(
		`SELECT p.id, p.home_id, p.title, p.description, p.category, p.status, p.budget, p.actual_cost, p.started_at, p.completed_at, p.created_at, p.updated_at, h.user_id
		 FROM diy_projects p JOIN homes h ON h.id = p.home_id
		 WHERE p.budget IS NOT NULL AND p.status IN ('planning', 'in_progress')
		 ORDER BY p.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list budgeted projects: %w", err)
	}
	defer rows.Close()

	var result []BudgetedProject
	for rows.Next() {
		var p model.DiyProject
		var budget, actualCost sql.NullFloat64
		var startedAt, completedAt sql.NullTime
		var userID int64

		err := rows.Scan(
			&p.ID, &p.HomeID, &p.Title, &p.Description, &p.Category, &p.Status,
			&budget, &actualCost, &startedAt, &completedAt, &p.CreatedAt, &p.UpdatedAt,
			&userID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan budgeted project: %w", err)
		}
		if budget.Valid {
			p.Budget = &budget.Float64
		}
		if actualCost.Valid {
			p.ActualCost = &actualCost.Float64
		}
		p.StartedAt = timePtr(startedAt)
		p.CompletedAt = timePtr(completedAt)
		result = append(result, BudgetedProject{Project: p, UserID: userID})
	}
	return result, rows.Err()
}

func (s *ProjectStore) Update(p *model.DiyProject) (*model.DiyProject, error) {
	_, err := s.db.Exec(
		`UPDATE diy_projects SET title = ?, description = ?, category = ?, status = ?, budget = ?, actual_cost = ?, started_at = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		p.Title, p.Description, p.Category, p.Status, nullFloat(p.Budget),
		nullFloat(p.ActualCost), nullTime(p.StartedAt), nullTime(p.CompletedAt), p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+projectCols+` FROM diy_projects WHERE id = ?`, p.ID)
	return scanProject(row)
}

// --- Material methods ---

const materialCols = `id, project_id, name, quantity, unit_price, purchased, created_at`

func scanMaterial(scanner interface{ Scan(...any) error }) (*model.ProjectMaterial, error) {
	var m model.ProjectMaterial
	err := scanner.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Quantity, &m.UnitPrice, &m.Purchased, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *ProjectStore) CreateMaterial(m *model.ProjectMaterial) (*model.ProjectMaterial, error) {
	result, err := s.db.Exec(
		`INSERT INTO project_materials (project_id, name, quantity, unit_price, purchased) VALUES (?, ?, ?, ?, ?)`,
		m.ProjectID, m.Name, m.Quantity, m.UnitPrice, m.Purchased,
	)
	if err != nil {
		return nil, fmt.Errorf("insert material: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+materialCols+` FROM project_materials WHERE id = ?`, id)
	return scanMaterial(row)
}

func (s *ProjectStore) ListMaterials(projectID int64) ([]model.ProjectMaterial, error) {
	rows, err := s.db.Query(
		`SELECT `+materialCols+` FROM project_materials WHERE project_id = ? ORDER BY id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var materials []model.ProjectMaterial
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, *m)
	}
	return materials, rows.Err()
}

func (s *ProjectStore) UpdateMaterial(m *model.ProjectMaterial) (*model.ProjectMaterial, error) {
	_, err := s.db.Exec(
		`UPDATE project_materials SET name = ?, quantity = ?, unit_price = ?, purchased = ? WHERE id = ?`,
		m.Name, m.Quantity, m.UnitPrice, m.Purchased, m.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update material: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+materialCols+` FROM project_materials WHERE id = ?`, m.ID)
	return scanMaterial(row)
}

// --- Tool methods ---

const toolCols = `id, project_id, name, owned, rented, purchase_cost, daily_rate, rental_days, created_at`

func scanTool(scanner interface{ Scan(...any) error }) (*model.ProjectTool, error) {
	var t model.ProjectTool
	err := scanner.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Owned, &t.Rented, &t.PurchaseCost, &t.DailyRate, &t.RentalDays, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *ProjectStore) CreateTool(t *model.ProjectTool) (*model.ProjectTool, error) {
	result, err := s.db.Exec(
		`INSERT INTO project_tools (project_id, name, owned, rented, purchase_cost, daily_rate, rental_days)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ProjectID, t.Name, t.Owned, t.Rented, t.PurchaseCost, t.DailyRate, t.RentalDays,
	)
	if err != nil {
		return nil, fmt.Errorf("insert tool: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+toolCols+` FROM project_tools WHERE id = ?`, id)
	return scanTool(row)
}

func (s *ProjectStore) ListTools(projectID int64) ([]model.ProjectTool, error) {
	rows, err := s.db.Query(
		`SELECT `+toolCols+` FROM project_tools WHERE project_id = ? ORDER BY id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	defer rows.Close()

	var tools []model.ProjectTool
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tool: %w", err)
		}
		tools = append(tools, *t)
	}
	return tools, rows.Err()
}

func (s *ProjectStore) DeleteTool(id int64) error {
	_, err := s.db.Exec(`DELETE FROM project_tools WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tool: %w", err)
	}
	return nil
}

// --- Step methods ---

const stepCols = `id, project_id, title, status, sort_order, estimated_hours, actual_hours, created_at, updated_at`

func scanStep(scanner interface{ Scan(...any) error }) (*model.ProjectStep, error) {
	var st model.ProjectStep
	err := scanner.Scan(&st.ID, &st.ProjectID, &st.Title, &st.Status, &st.SortOrder, &st.EstimatedHours, &st.ActualHours, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *ProjectStore) CreateStep(st *model.ProjectStep) (*model.ProjectStep, error) {
	result, err := s.db.Exec(
		`INSERT INTO project_steps (project_id, title, status, sort_order, estimated_hours, actual_hours)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		st.ProjectID, st.Title, st.Status, st.SortOrder, st.EstimatedHours, st.ActualHours,
	)
	if err != nil {
		return nil, fmt.Errorf("insert step: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+stepCols+` FROM project_steps WHERE id = ?`, id)
	return scanStep(row)
}

func (s *ProjectStore) ListSteps(projectID int64) ([]model.ProjectStep, error) {
	rows, err := s.db.Query(
		`SELECT `+stepCols+` FROM project_steps WHERE project_id = ? ORDER BY sort_order ASC, id ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var steps []model.ProjectStep
	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, *st)
	}
	return steps, rows.Err()
}

func (s *ProjectStore) UpdateStep(st *model.ProjectStep) (*model.ProjectStep, error) {
	_, err := s.db.Exec(
		`UPDATE project_steps SET title = ?, status = ?, sort_order = ?, estimated_hours = ?, actual_hours = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		st.Title, st.Status, st.SortOrder, st.EstimatedHours, st.ActualHours, st.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update step: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+stepCols+` FROM project_steps WHERE id = ?`, st.ID)
	return scanStep(row)
}
