package models

import "time"

// AuthorSummary is the slice of the author rendered with each feed entry.
type AuthorSummary struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// FeedEntry is one viewer-scoped entry of the reverse-chronological feed.
type FeedEntry struct {
	PostID         uint          `json:"post_id"`
	Caption        string        `json:"caption"`
	CreatedAt      time.Time     `json:"created_at"`
	Author         AuthorSummary `json:"author"`
	Media          Media         `json:"media"`
	LikesCount     int           `json:"likes_count"`
	CommentsCount  int           `json:"comments_count"`
	ViewerHasLiked bool          `json:"viewer_has_liked"`
}
