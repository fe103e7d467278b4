package service

import (
	"context"
	"strings"
	"testing"

	"chirp/internal/cache"
	"chirp/internal/models"
	"chirp/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) *UserService {
	return NewUserService(repository.NewUserRepository(db), repository.NewFollowRepository(db))
}

func strPtr(s string) *string { return &s }

func TestUserService_GetProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	seedTweet(t, db, alice.ID, "one")
	seedTweet(t, db, alice.ID, "two")
	require.NoError(t, db.Create(&models.Follow{FollowerID: bob.ID, FolloweeID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: alice.ID, FolloweeID: carol.ID}).Error)

	profile, err := svc.GetProfile(ctx, "alice", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, profile.TweetCount)
	assert.EqualValues(t, 1, profile.FollowerCount)
	assert.EqualValues(t, 1, profile.FollowingCount)
	assert.False(t, profile.User.IsFollowed)
	assert.False(t, profile.User.IsFollower)

	// bob follows alice, so from bob's side: IsFollowed true, IsFollower false
	profile, err = svc.GetProfile(ctx, "alice", bob.ID)
	require.NoError(t, err)
	assert.True(t, profile.User.IsFollowed)
	assert.False(t, profile.User.IsFollower)

	// and alice is a follower from carol's side
	profile, err = svc.GetProfile(ctx, "alice", carol.ID)
	require.NoError(t, err)
	assert.False(t, profile.User.IsFollowed)
	assert.True(t, profile.User.IsFollower)

	_, err = svc.GetProfile(ctx, "nobody", 0)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestUserService_GetProfile_ImageRenditions(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)

	alice := seedUser(t, db, "alice")
	alice.IconImageURL = "https://res.cloudinary.com/demo/image/upload/v1/avatars/alice.jpg"
	require.NoError(t, db.Save(alice).Error)

	profile, err := svc.GetProfile(context.Background(), "alice", 0)
	require.NoError(t, err)
	assert.Contains(t, profile.IconURL, "c_fill")
	assert.Contains(t, profile.IconURL, "w_150,h_150")
	assert.Empty(t, profile.HeaderURL)
}

func TestUserService_UpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	alice.Bio = "original bio"
	require.NoError(t, db.Save(alice).Error)

	updated, err := svc.UpdateProfile(ctx, UpdateProfileInput{
		UserID:      alice.ID,
		DisplayName: strPtr("Alice A."),
		Location:    strPtr("Tokyo"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.DisplayName)
	assert.Equal(t, "Tokyo", updated.Location)
	// nil pointer leaves the field untouched
	assert.Equal(t, "original bio", updated.Bio)
}

func TestUserService_UpdateProfileValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")

	tests := []struct {
		name string
		in   UpdateProfileInput
	}{
		{"display name too long", UpdateProfileInput{UserID: alice.ID, DisplayName: strPtr(strings.Repeat("a", 51))}},
		{"bio too long", UpdateProfileInput{UserID: alice.ID, Bio: strPtr(strings.Repeat("a", 501))}},
		{"location too long", UpdateProfileInput{UserID: alice.ID, Location: strPtr(strings.Repeat("a", 101))}},
		{"relative website", UpdateProfileInput{UserID: alice.ID, Website: strPtr("not-a-url")}},
		{"non-http image", UpdateProfileInput{UserID: alice.ID, IconImageURL: strPtr("ftp://example.com/a.png")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateProfile(ctx, tt.in)
			require.Error(t, err)

			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}

	_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 9999, Bio: strPtr("hi")})
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestUserService_SearchUsers(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	seedUser(t, db, "gopher_fan")
	seedUser(t, db, "pythonista")

	users, err := svc.SearchUsers(ctx, "gopher", 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "gopher_fan", users[0].Username)

	_, err = svc.SearchUsers(ctx, "", 10, 0)
	require.Error(t, err)
}

func TestUserService_GetProfileCacheAside(t *testing.T) {
	db := setupTestDB(t)
	mr := setupTestCache(t)
	svc := newUserService(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	require.NoError(t, db.Create(&models.Follow{FollowerID: bob.ID, FolloweeID: alice.ID}).Error)

	profile, err := svc.GetProfile(ctx, "alice", 0)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.ProfileKey("alice")))

	// Follow relations are per-viewer and computed on every read, so a
	// cache hit still reflects them.
	profile, err = svc.GetProfile(ctx, "alice", bob.ID)
	require.NoError(t, err)
	assert.True(t, profile.User.IsFollowed)

	// A direct row update stays invisible until a profile update drops
	// the key.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", alice.ID).Update("bio", "changed elsewhere").Error)

	stale, err := svc.GetProfile(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Empty(t, stale.User.Bio)

	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{UserID: alice.ID, DisplayName: strPtr("Alice")})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.ProfileKey("alice")))

	fresh, err := svc.GetProfile(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, "Alice", fresh.User.DisplayName)

	// Misses are never cached.
	_, err = svc.GetProfile(ctx, "nobody", 0)
	require.Error(t, err)
	assert.False(t, mr.Exists(cache.ProfileKey("nobody")))
}
