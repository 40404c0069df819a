package models

import "time"

// Post represents a published post: an optional caption plus an ordered set of
// images. A post with zero images is valid but incomplete (image uploads are
// separate round trips and may still be in flight, or may have failed).
type Post struct {
	ID      uint        `gorm:"primaryKey" json:"id"`
	Caption string      `gorm:"type:text" json:"caption"`
	UserID  uint        `gorm:"not null;index" json:"user_id"`
	User    User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Images  []PostImage `gorm:"foreignKey:PostID" json:"images,omitempty"`
	// LikesCount is not persisted; aggregated at query time.
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; aggregated at query time.
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the requesting viewer liked this post (computed).
	Liked     bool      `gorm:"->" json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
