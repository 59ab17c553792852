package auth

import "time"

// Actor is an authenticated identity carrying exactly one role. An inactive
// actor may authenticate but is denied all state-changing actions until an
// administrator activates the account.
type Actor struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
