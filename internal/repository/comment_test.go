package repository

import (
	"context"
	"testing"
	"time"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_ListByTweetID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	tweet := seedTweet(t, db, alice.ID, "thread starter", time.Now())

	first := &models.Comment{UserID: bob.ID, TweetID: tweet.ID, Content: "first"}
	second := &models.Comment{UserID: alice.ID, TweetID: tweet.ID, Content: "second"}
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(second).Error)

	comments, err := repo.ListByTweetID(ctx, tweet.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	// Chronological ascending, commenters preloaded
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "bob", comments[0].User.Username)
	assert.Equal(t, "second", comments[1].Content)

	count, err := repo.CountByTweetID(ctx, tweet.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestCommentRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	tweet := seedTweet(t, db, alice.ID, "hello", time.Now())
	comment := &models.Comment{UserID: alice.ID, TweetID: tweet.ID, Content: "oops"}
	require.NoError(t, db.Create(comment).Error)

	require.NoError(t, repo.Delete(ctx, comment.ID))

	count, err := repo.CountByTweetID(ctx, tweet.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
