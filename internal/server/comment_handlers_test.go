package server

import (
	"net/http"
	"testing"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	s, app := setupTestServer(t)
	alice := seedUser(t, s.db, "alice")
	bob := seedUser(t, s.db, "bob")
	seedTweet(t, s.db, alice.ID, "discuss")

	t.Run("success notifies author", func(t *testing.T) {
		var comment struct {
			ID      uint   `json:"id"`
			Content string `json:"content"`
			User    struct {
				Username string `json:"username"`
			} `json:"user"`
		}
		resp := doJSON(t, app, http.MethodPost, "/api/tweets/1/comments",
			map[string]string{"content": "nice one"}, signToken(t, bob.ID), &comment)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "nice one", comment.Content)
		assert.Equal(t, "bob", comment.User.Username)

		var notifs []models.Notification
		require.NoError(t, s.db.Where("receiver_id = ?", alice.ID).Find(&notifs).Error)
		require.Len(t, notifs, 1)
		assert.Equal(t, models.NotificationTypeComment, notifs[0].Type)
	})

	t.Run("empty content rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/tweets/1/comments",
			map[string]string{"content": "  "}, signToken(t, bob.ID), nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing tweet", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/tweets/999/comments",
			map[string]string{"content": "hello"}, signToken(t, bob.ID), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("requires auth", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/tweets/1/comments",
			map[string]string{"content": "anon"}, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestGetComments_OldestFirst(t *testing.T) {
	s, app := setupTestServer(t)
	alice := seedUser(t, s.db, "alice")
	bob := seedUser(t, s.db, "bob")
	seedTweet(t, s.db, alice.ID, "discuss")

	for _, content := range []string{"first", "second"} {
		resp := doJSON(t, app, http.MethodPost, "/api/tweets/1/comments",
			map[string]string{"content": content}, signToken(t, bob.ID), nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var body struct {
		Comments []struct {
			Content string `json:"content"`
		} `json:"comments"`
	}
	resp := doJSON(t, app, http.MethodGet, "/api/tweets/1/comments", nil, "", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Comments, 2)
	assert.Equal(t, "first", body.Comments[0].Content)
	assert.Equal(t, "second", body.Comments[1].Content)
}

func TestDeleteComment_OwnerOnly(t *testing.T) {
	s, app := setupTestServer(t)
	alice := seedUser(t, s.db, "alice")
	bob := seedUser(t, s.db, "bob")
	seedTweet(t, s.db, alice.ID, "discuss")

	var comment struct {
		ID uint `json:"id"`
	}
	resp := doJSON(t, app, http.MethodPost, "/api/tweets/1/comments",
		map[string]string{"content": "mine"}, signToken(t, bob.ID), &comment)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// The tweet author does not own the comment.
	resp = doJSON(t, app, http.MethodDelete, "/api/tweets/1/comments/1", nil, signToken(t, alice.ID), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/api/tweets/1/comments/1", nil, signToken(t, bob.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, s.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}
