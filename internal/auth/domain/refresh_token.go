package domain

import "time"

// RefreshToken is the stored form of a refresh token. RawToken is populated
// only on issue; the database keeps the hash.
type RefreshToken struct {
	ID        string
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	RawToken  string
}
