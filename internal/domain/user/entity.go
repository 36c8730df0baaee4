package user

import (
	"errors"
	"time"
)

// ErrEmailTaken is returned by repositories when the unique email index rejects an insert.
var ErrEmailTaken = errors.New("email already taken")

// User is a registered account.
type User struct {
	ID        string
	Name      string
	Email     string // lower-cased, unique
	Password  string // salted hash, never the plaintext
	Picture   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
