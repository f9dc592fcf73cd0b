package model

import "time"

// DIY project statuses.
const (
	ProjectPlanning   = "planning"
	ProjectInProgress = "in_progress"
	ProjectCompleted  = "completed"
	ProjectOnHold     = "on_hold"
)

// Project step statuses.
const (
	StepNotStarted = "not_started"
	StepInProgress = "in_progress"
	StepCompleted  = "completed"
)

type DiyProject struct {
	ID          int64      `json:"id"`
	HomeID      int64      `json:"home_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	Budget      *float64   `json:"budget"`
	ActualCost  *float64   `json:"actual_cost"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ProjectMaterial struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	Purchased bool      `json:"purchased"`
	CreatedAt time.Time `json:"created_at"`
}

type ProjectTool struct {
	ID           int64     `json:"id"`
	ProjectID    int64     `json:"project_id"`
	Name         string    `json:"name"`
	Owned        bool      `json:"owned"`
	Rented       bool      `json:"rented"`
	PurchaseCost float64   `json:"purchase_cost"`
	DailyRate    float64   `json:"daily_rate"`
	RentalDays   int       `json:"rental_days"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProjectStep struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"project_id"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	SortOrder      int       `json:"sort_order"`
	EstimatedHours float64   `json:"estimated_hours"`
	ActualHours    float64   `json:"actual_hours"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CostToDate returns the project's spend: the stored actual cost when
// present, otherwise purchased materials plus non-owned tool costs
// (rental = daily rate x days, else purchase cost).
func (p *DiyProject) CostToDate(materials []ProjectMaterial, tools []ProjectTool) float64 {
	if p.ActualCost != nil && *p.ActualCost > 0 {
		return *p.ActualCost
	}
	var total float64
	for _, m := range materials {
		if m.Purchased {
			total += m.UnitPrice * m.Quantity
		}
	}
	for _, t := range tools {
		if t.Owned {
			continue
		}
		if t.Rented {
			total += t.DailyRate * float64(t.RentalDays)
		} else {
			total += t.PurchaseCost
		}
	}
	return total
}
