package entity

import "time"

// User is an account allowed to call the admin API
type User struct {
	ID           string
	Username     string
	PasswordHash string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasLoggedIn reports whether the user has logged in at least once
func (u *User) HasLoggedIn() bool {
	return u.LastLoginAt != nil
}
