package models

import "time"

// MaxImagesPerPost is the hard cap on images attached to a single post.
const MaxImagesPerPost = 6

// PostImage is one ordered image belonging to a Post.
//
// Within a post, display_order values are unique and contiguous starting at 0,
// in acceptance order. Order assignment is server-authoritative and happens
// under the post row lock in the append path; the composite unique index is
// the backstop, and a violation of it surfacing means a store-layer bug.
type PostImage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PostID       uint      `gorm:"not null;uniqueIndex:idx_post_image_order" json:"post_id"`
	Post         Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	ImageURL     string    `gorm:"not null" json:"image_url"`
	DisplayOrder int       `gorm:"column:display_order;not null;uniqueIndex:idx_post_image_order" json:"order"`
	CreatedAt    time.Time `json:"created_at"`
}
