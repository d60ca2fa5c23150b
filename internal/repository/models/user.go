package models

import (
	"database/sql"
	"time"
)

// User is the users table row.
type User struct {
	ID                string       `db:"id"`
	GoogleID          string       `db:"google_id"`
	Email             string       `db:"email"`
	Name              string       `db:"name"`
	ProfilePictureURL string       `db:"profile_picture_url"`
	CreatedAt         time.Time    `db:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at"`
	DeletedAt         sql.NullTime `db:"deleted_at"`
}
