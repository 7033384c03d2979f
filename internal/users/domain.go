package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/factecho/factecho/internal/authz"
)

// User represents a registered account.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         authz.Role `json:"role"`
	Avatar       string     `json:"avatar,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
