package service

import (
	"context"
	"testing"

	"chirp/internal/models"
	"chirp/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService_ToggleFollow(t *testing.T) {
	db := setupTestDB(t)
	pub := &capturingPublisher{}
	svc := NewFollowService(db, repository.NewFollowRepository(db), pub)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	res, err := svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.True(t, res.Notified)

	following, err := svc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// Follow notifications carry no tweet
	var notifications []models.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeFollow, notifications[0].Type)
	assert.Equal(t, alice.ID, notifications[0].SenderID)
	assert.Equal(t, bob.ID, notifications[0].ReceiverID)
	assert.Nil(t, notifications[0].TweetID)
	require.Len(t, pub.notifications, 1)

	// Unfollow removes the edge; the old notification stays
	res, err = svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.False(t, res.Notified)

	following, err = svc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	var total int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestFollowService_SelfFollowRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFollowService(db, repository.NewFollowRepository(db), nil)

	alice := seedUser(t, db, "alice")

	_, err := svc.ToggleFollow(context.Background(), alice.ID, alice.ID)
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	var edges int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&edges).Error)
	assert.EqualValues(t, 0, edges)
}

func TestFollowService_MissingTarget(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFollowService(db, repository.NewFollowRepository(db), nil)

	alice := seedUser(t, db, "alice")

	_, err := svc.ToggleFollow(context.Background(), alice.ID, 9999)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestFollowService_ListBothSides(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFollowService(db, repository.NewFollowRepository(db), nil)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	_, err := svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.ToggleFollow(ctx, carol.ID, bob.ID)
	require.NoError(t, err)

	followers, err := svc.ListFollowers(ctx, bob.ID, 10, 0)
	require.NoError(t, err)
	names := make([]string, 0, len(followers))
	for _, u := range followers {
		names = append(names, u.Username)
	}
	assert.ElementsMatch(t, []string{"alice", "carol"}, names)

	following, err := svc.ListFollowing(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].Username)
}
