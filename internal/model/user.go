package model

import "time"

// User mirrors an identity in the external auth provider, keyed by the
// provider's subject id. Rows are provisioned lazily on first request.
type User struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
