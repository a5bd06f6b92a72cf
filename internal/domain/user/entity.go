package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents an operator who can sign in to the CRM.
type User struct {
	ID           uuid.UUID // ID is the unique identifier for the user
	Name         string    // Name is the unique login name
	PasswordHash string    // PasswordHash is a bcrypt hash, never serialized
	Role         Role      // Role decides the capability set
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
