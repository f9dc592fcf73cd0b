package model

import "time"

type MaintenanceTask struct {
	ID             int64      `json:"id"`
	HomeID         int64      `json:"home_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Frequency      string     `json:"frequency"`
	CustomInterval *int       `json:"custom_interval"`
	CustomUnit     *string    `json:"custom_unit"`
	NextDue        time.Time  `json:"next_due"`
	SnoozedUntil   *time.Time `json:"snoozed_until"`
	EstimatedCost  float64    `json:"estimated_cost"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type CompletedTask struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"task_id"`
	HomeID      int64     `json:"home_id"`
	Category    string    `json:"category"`
	CompletedAt time.Time `json:"completed_at"`
	ActualCost  float64   `json:"actual_cost"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}
