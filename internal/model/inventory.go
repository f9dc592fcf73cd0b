package model

import "time"

// Inventory item kinds. Systems, appliances, and exterior/interior features
// share one table; the kind column selects which API surface an item belongs
// to.
const (
	KindSystem    = "system"
	KindAppliance = "appliance"
	KindExterior  = "exterior"
	KindInterior  = "interior"
)

// ValidKind reports whether k is a known inventory kind.
func ValidKind(k string) bool {
	switch k {
	case KindSystem, KindAppliance, KindExterior, KindInterior:
		return true
	}
	return false
}

type InventoryItem struct {
	ID              int64      `json:"id"`
	HomeID          int64      `json:"home_id"`
	Kind            string     `json:"kind"`
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	Brand           string     `json:"brand"`
	ModelNumber     string     `json:"model_number"`
	InstallDate     *time.Time `json:"install_date"`
	WarrantyExpires *time.Time `json:"warranty_expires"`
	Condition       string     `json:"condition"`
	Material        string     `json:"material"`
	Location        string     `json:"location"`
	Notes           string     `json:"notes"`
	LastServiceDate *time.Time `json:"last_service_date"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// MaintenanceRecord is a service-history entry, optionally tied to an
// inventory item.
type MaintenanceRecord struct {
	ID          int64     `json:"id"`
	HomeID      int64     `json:"home_id"`
	ItemID      *int64    `json:"item_id"`
	ServiceDate time.Time `json:"service_date"`
	Description string    `json:"description"`
	Cost        float64   `json:"cost"`
	PerformedBy string    `json:"performed_by"`
	CreatedAt   time.Time `json:"created_at"`
}
