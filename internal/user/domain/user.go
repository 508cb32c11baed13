package domain

import "time"

type ID string

type User struct {
	ID           ID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Summary is the public projection of a user, safe to embed in responses.
type Summary struct {
	ID        ID
	Email     string
	CreatedAt time.Time
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}
