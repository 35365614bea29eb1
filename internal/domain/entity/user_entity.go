package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// Password holds the bcrypt hash and must never be serialized to a client.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the public identity of a user, safe to embed in responses.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}
