package server

import (
	"fmt"
	"net/http"
	"testing"

	"snapfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_WithImages(t *testing.T) {
	srv, app := newTestServer(t)
	_, token := createUser(t, srv, "alice")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/posts", map[string]any{
		"caption": "first light",
		"image_urls": []string{
			"https://cdn.example.com/a.jpg",
			"https://cdn.example.com/b.jpg",
		},
	}, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var post models.Post
	decodeBody(t, resp, &post)
	assert.Equal(t, "first light", post.Caption)
	require.Len(t, post.Images, 2)
	assert.Equal(t, 0, post.Images[0].DisplayOrder)
	assert.Equal(t, 1, post.Images[1].DisplayOrder)
}

func TestCreatePost_RequiresAuth(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/posts", map[string]any{
		"caption": "anonymous",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreatePost_TooManyImages(t *testing.T) {
	srv, app := newTestServer(t)
	_, token := createUser(t, srv, "alice")

	urls := make([]string, models.MaxImagesPerPost+1)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://cdn.example.com/%d.jpg", i)
	}

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/posts", map[string]any{
		"image_urls": urls,
	}, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddPostImage(t *testing.T) {
	srv, app := newTestServer(t)
	user, token := createUser(t, srv, "alice")

	post := &models.Post{UserID: user.ID, Caption: "growing"}
	require.NoError(t, srv.db.Create(post).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/images", post.ID), map[string]string{
			"image_url": "https://cdn.example.com/new.jpg",
		}, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var image models.PostImage
	decodeBody(t, resp, &image)
	assert.Equal(t, 0, image.DisplayOrder)
	assert.Equal(t, "https://cdn.example.com/new.jpg", image.ImageURL)
}

func TestAddPostImage_NotOwner(t *testing.T) {
	srv, app := newTestServer(t)
	alice, _ := createUser(t, srv, "alice")
	_, bobToken := createUser(t, srv, "bob")

	post := &models.Post{UserID: alice.ID}
	require.NoError(t, srv.db.Create(post).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/images", post.ID), map[string]string{
			"image_url": "https://cdn.example.com/sneaky.jpg",
		}, bobToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAddPostImage_InvalidURL(t *testing.T) {
	srv, app := newTestServer(t)
	user, token := createUser(t, srv, "alice")

	post := &models.Post{UserID: user.ID}
	require.NoError(t, srv.db.Create(post).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/images", post.ID), map[string]string{
			"image_url": "not-a-url",
		}, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetPost_NotFound(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/posts/999", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetPost_InvalidID(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/posts/abc", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeletePost(t *testing.T) {
	srv, app := newTestServer(t)
	user, token := createUser(t, srv, "alice")

	post := &models.Post{UserID: user.ID}
	require.NoError(t, srv.db.Create(post).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodDelete,
		fmt.Sprintf("/api/posts/%d", post.ID), nil, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodGet,
		fmt.Sprintf("/api/posts/%d", post.ID), nil, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLikePost_Toggles(t *testing.T) {
	srv, app := newTestServer(t)
	user, token := createUser(t, srv, "alice")

	post := &models.Post{UserID: user.ID, Caption: "likeable"}
	require.NoError(t, srv.db.Create(post).Error)

	likeURL := fmt.Sprintf("/api/posts/%d/like", post.ID)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, likeURL, nil, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var state struct {
		Liked      bool `json:"liked"`
		LikesCount int  `json:"likes_count"`
	}
	decodeBody(t, resp, &state)
	assert.True(t, state.Liked)
	assert.Equal(t, 1, state.LikesCount)

	// Second toggle returns to unliked.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, likeURL, nil, token))
	require.NoError(t, err)
	decodeBody(t, resp, &state)
	assert.False(t, state.Liked)
	assert.Equal(t, 0, state.LikesCount)
}

func TestGetLikeState(t *testing.T) {
	srv, app := newTestServer(t)
	alice, aliceToken := createUser(t, srv, "alice")
	_, bobToken := createUser(t, srv, "bob")

	post := &models.Post{UserID: alice.ID}
	require.NoError(t, srv.db.Create(post).Error)
	require.NoError(t, srv.db.Create(&models.Like{UserID: alice.ID, PostID: post.ID}).Error)

	likeURL := fmt.Sprintf("/api/posts/%d/like", post.ID)

	var state struct {
		Liked      bool `json:"liked"`
		LikesCount int  `json:"likes_count"`
	}

	resp, err := app.Test(jsonRequest(t, http.MethodGet, likeURL, nil, aliceToken))
	require.NoError(t, err)
	decodeBody(t, resp, &state)
	assert.True(t, state.Liked)
	assert.Equal(t, 1, state.LikesCount)

	// Like state is viewer-scoped; the aggregate count is not.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, likeURL, nil, bobToken))
	require.NoError(t, err)
	decodeBody(t, resp, &state)
	assert.False(t, state.Liked)
	assert.Equal(t, 1, state.LikesCount)
}
