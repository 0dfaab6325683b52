package models

import "time"

type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// DisplayName is what the UI greets the user by: the username, or the
// local part of the email when no username is set.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}

type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// GeneratedPost is one saved generation. The id is assigned at insert time
// and is opaque to callers; rows are never updated in place.
type GeneratedPost struct {
	ID        string
	UserID    int64
	Content   string
	Platform  string
	Prompt    string
	CreatedAt time.Time
}
