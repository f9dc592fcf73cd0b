package model

import "time"

// Budget plan periods.
const (
	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
	PeriodAnnual    = "annual"
)

// Budget alert types.
const (
	AlertApproachingLimit  = "APPROACHING_LIMIT"
	AlertExceededLimit     = "EXCEEDED_LIMIT"
	AlertProjectOverBudget = "PROJECT_OVER_BUDGET"
)

// Budget alert statuses. An alert is "open" while PENDING or SENT.
const (
	AlertStatusPending   = "PENDING"
	AlertStatusSent      = "SENT"
	AlertStatusDismissed = "DISMISSED"
)

type BudgetPlan struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Name      string     `json:"name"`
	Amount    float64    `json:"amount"`
	Period    string     `json:"period"`
	Category  *string    `json:"category"`
	HomeID    *int64     `json:"home_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type BudgetAlert struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PlanID    *int64    `json:"plan_id"`
	ProjectID *int64    `json:"project_id"`
	AlertType string    `json:"alert_type"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
