package service

import (
	"context"
	"strings"
	"testing"

	"chirp/internal/models"
	"chirp/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_CreateComment(t *testing.T) {
	db := setupTestDB(t)
	pub := &capturingPublisher{}
	svc := NewCommentService(db, repository.NewCommentRepository(db), pub)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	reader := seedUser(t, db, "reader")
	tweet := seedTweet(t, db, author.ID, "discuss")

	comment, err := svc.CreateComment(ctx, CreateCommentInput{
		UserID:  reader.ID,
		TweetID: tweet.ID,
		Content: "great point",
	})
	require.NoError(t, err)
	assert.Equal(t, "great point", comment.Content)
	// Commenter comes back preloaded for the response
	assert.Equal(t, "reader", comment.User.Username)

	var notifications []models.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeComment, notifications[0].Type)
	assert.Equal(t, author.ID, notifications[0].ReceiverID)
	require.NotNil(t, notifications[0].TweetID)
	assert.Equal(t, tweet.ID, *notifications[0].TweetID)
	require.Len(t, pub.notifications, 1)
}

func TestCommentService_OwnTweetNoNotification(t *testing.T) {
	db := setupTestDB(t)
	pub := &capturingPublisher{}
	svc := NewCommentService(db, repository.NewCommentRepository(db), pub)

	author := seedUser(t, db, "author")
	tweet := seedTweet(t, db, author.ID, "replying to myself")

	_, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID:  author.ID,
		TweetID: tweet.ID,
		Content: "addendum",
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	assert.Empty(t, pub.notifications)
}

func TestCommentService_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCommentService(db, repository.NewCommentRepository(db), nil)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	tweet := seedTweet(t, db, author.ID, "discuss")

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t"},
		{"too long", strings.Repeat("a", models.MaxCommentLen+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateComment(ctx, CreateCommentInput{
				UserID:  author.ID,
				TweetID: tweet.ID,
				Content: tt.content,
			})
			require.Error(t, err)

			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}

	_, err := svc.CreateComment(ctx, CreateCommentInput{
		UserID:  author.ID,
		TweetID: 9999,
		Content: "into the void",
	})
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestCommentService_ListOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCommentService(db, repository.NewCommentRepository(db), nil)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	tweet := seedTweet(t, db, author.ID, "discuss")

	for _, content := range []string{"first", "second", "third"} {
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: author.ID, TweetID: tweet.ID, Content: content})
		require.NoError(t, err)
	}

	comments, err := svc.ListComments(ctx, tweet.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "third", comments[2].Content)
}

func TestCommentService_DeleteOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCommentService(db, repository.NewCommentRepository(db), nil)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	reader := seedUser(t, db, "reader")
	tweet := seedTweet(t, db, author.ID, "discuss")

	comment, err := svc.CreateComment(ctx, CreateCommentInput{UserID: reader.ID, TweetID: tweet.ID, Content: "mine"})
	require.NoError(t, err)

	err = svc.DeleteComment(ctx, author.ID, comment.ID)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)

	require.NoError(t, svc.DeleteComment(ctx, reader.ID, comment.ID))

	comments, err := svc.ListComments(ctx, tweet.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
