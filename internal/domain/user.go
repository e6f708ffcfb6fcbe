package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an author account. Many posts may reference the same user.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
