package cache

import (
	"context"
	"fmt"
	"time"
)

// Key templates. Every cached object in the system has an entry here so
// write paths know exactly what to invalidate.
const (
	UserKeyPrefix        = "user:%d"
	PostKeyPrefix        = "post:%d"
	ProfileKeyPrefix     = "profile:%d"
	AuthorPostsKeyPrefix = "user:%d:posts"
	FeedFirstPageKey     = "feed:anon:first"
	SearchKeyPrefix      = "search:%s"
)

const (
	UserTTL        = 5 * time.Minute
	PostTTL        = 10 * time.Minute
	ProfileTTL     = 10 * time.Minute
	AuthorPostsTTL = 2 * time.Minute
	FeedTTL        = 30 * time.Second
	SearchTTL      = time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func ProfileKey(userID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

func AuthorPostsKey(userID uint) string {
	return fmt.Sprintf(AuthorPostsKeyPrefix, userID)
}

func SearchKey(normalized string) string {
	return fmt.Sprintf(SearchKeyPrefix, normalized)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID), ProfileKey(userID))
}

// InvalidatePost drops the post entry plus every listing that embeds its
// counts. Like toggles and attachment appends both route through here.
func InvalidatePost(ctx context.Context, postID, authorID uint) {
	Invalidate(ctx, PostKey(postID), AuthorPostsKey(authorID), FeedFirstPageKey)
}
