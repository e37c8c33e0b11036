package entity

import "time"

// Session is an authenticated dashboard session backed by Postgres.
type Session struct {
	Key           string    `json:"-" db:"session_key"`
	Authenticated bool      `json:"authenticated" db:"authenticated"`
	Username      string    `json:"username" db:"username"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	ExpiresAt     time.Time `json:"expires_at" db:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
