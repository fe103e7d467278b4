package server

import (
	"net/http"
	"testing"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	s, app := setupTestServer(t)
	alice := seedUser(t, s.db, "alice")
	bob := seedUser(t, s.db, "bob")
	token := signToken(t, alice.ID)

	t.Run("success", func(t *testing.T) {
		var msg struct {
			ID         uint   `json:"id"`
			SenderID   uint   `json:"sender_id"`
			ReceiverID uint   `json:"receiver_id"`
			Content    string `json:"content"`
		}
		resp := doJSON(t, app, http.MethodPost, "/api/messages/2",
			map[string]string{"content": "  hey bob  "}, token, &msg)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, alice.ID, msg.SenderID)
		assert.Equal(t, bob.ID, msg.ReceiverID)
		assert.Equal(t, "hey bob", msg.Content)
	})

	t.Run("empty content", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/messages/2",
			map[string]string{"content": " "}, token, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("self message rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/messages/1",
			map[string]string{"content": "hi me"}, token, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown receiver", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/messages/999",
			map[string]string{"content": "hello?"}, token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGetConversation_BothDirections(t *testing.T) {
	s, app := setupTestServer(t)
	alice := seedUser(t, s.db, "alice")
	bob := seedUser(t, s.db, "bob")

	resp := doJSON(t, app, http.MethodPost, "/api/messages/2",
		map[string]string{"content": "hi bob"}, signToken(t, alice.ID), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, app, http.MethodPost, "/api/messages/1",
		map[string]string{"content": "hi alice"}, signToken(t, bob.ID), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	resp = doJSON(t, app, http.MethodGet, "/api/messages/2", nil, signToken(t, alice.ID), &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "hi bob", body.Messages[0].Content)
	assert.Equal(t, "hi alice", body.Messages[1].Content)
}

func TestGetConversations_OnePerPartner(t *testing.T) {
	s, app := setupTestServer(t)
	alice := seedUser(t, s.db, "alice")
	seedUser(t, s.db, "bob")
	seedUser(t, s.db, "carol")
	token := signToken(t, alice.ID)

	for _, m := range []struct {
		target  string
		content string
	}{
		{"/api/messages/2", "first to bob"},
		{"/api/messages/2", "second to bob"},
		{"/api/messages/3", "hi carol"},
	} {
		resp := doJSON(t, app, http.MethodPost, m.target,
			map[string]string{"content": m.content}, token, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var body struct {
		Conversations []struct {
			Partner struct {
				Username string `json:"username"`
			} `json:"partner"`
			LastMessage struct {
				Content string `json:"content"`
			} `json:"last_message"`
		} `json:"conversations"`
	}
	resp := doJSON(t, app, http.MethodGet, "/api/messages", nil, token, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Conversations, 2)

	latest := map[string]string{}
	for _, conv := range body.Conversations {
		latest[conv.Partner.Username] = conv.LastMessage.Content
	}
	assert.Equal(t, "second to bob", latest["bob"])
	assert.Equal(t, "hi carol", latest["carol"])
}

func TestGetMessagePartners_FollowGraphUnion(t *testing.T) {
	s, app := setupTestServer(t)
	alice := seedUser(t, s.db, "alice")
	bob := seedUser(t, s.db, "bob")
	carol := seedUser(t, s.db, "carol")
	seedUser(t, s.db, "dave")

	// Alice follows bob; carol follows alice; dave is unrelated.
	require.NoError(t, s.db.Create(&models.Follow{FollowerID: alice.ID, FolloweeID: bob.ID}).Error)
	require.NoError(t, s.db.Create(&models.Follow{FollowerID: carol.ID, FolloweeID: alice.ID}).Error)

	var body struct {
		Partners []struct {
			Username string `json:"username"`
		} `json:"partners"`
	}
	resp := doJSON(t, app, http.MethodGet, "/api/messages/partners", nil, signToken(t, alice.ID), &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	usernames := make([]string, 0, len(body.Partners))
	for _, p := range body.Partners {
		usernames = append(usernames, p.Username)
	}
	assert.ElementsMatch(t, []string{"bob", "carol"}, usernames)
}
