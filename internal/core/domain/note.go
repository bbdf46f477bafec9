package domain

import "time"

// Note is a short text owned by exactly one user.
type Note struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
