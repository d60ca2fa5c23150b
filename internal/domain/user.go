package domain

import "time"

// User is an authenticated account, onboarded via Google OAuth on first login.
type User struct {
	ID                string
	GoogleID          string
	Email             string
	Name              string
	ProfilePictureURL string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
