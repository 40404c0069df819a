package models

import "time"

// Profile is an optional 1:1 extension of a User. It is created lazily on the
// first profile edit; a user without a Profile row is a valid state distinct
// from a user with an empty one.
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
