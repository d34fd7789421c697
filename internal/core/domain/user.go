package domain

import "time"

// User represents a registered customer. PasswordHash is a bcrypt hash and is never
// populated with plaintext.
type User struct {
	UserID       int64     `json:"userID"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"createdAt"`
}
