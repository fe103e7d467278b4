package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ProfileKeyPrefix     = "profile:%s"
	TweetKeyPrefix       = "tweet:%d"
	TimelineKeyPrefix    = "feed:timeline:p%d"
	FollowingIDsPrefix   = "graph:following:%d"
	RefreshTokenPrefix   = "refresh:%s"
	UnreadCountKeyPrefix = "notifications:unread:%d"
)

const (
	ProfileTTL      = 5 * time.Minute
	TweetTTL        = 30 * time.Minute
	TimelineTTL     = 30 * time.Second
	FollowingIDsTTL = 2 * time.Minute
	UnreadCountTTL  = time.Minute

	// RefreshTokenTTL matches the refresh token lifetime in the auth service.
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// ProfileKey caches the viewer-independent profile (user, counts,
// renditions). Whole user rows are never cached: the password hash does not
// survive a JSON round trip and Update saves the full row.
func ProfileKey(username string) string {
	return fmt.Sprintf(ProfileKeyPrefix, username)
}

func TweetKey(tweetID uint) string {
	return fmt.Sprintf(TweetKeyPrefix, tweetID)
}

// TimelineKey caches the public timeline only; per-viewer annotations are
// applied after the cached page is loaded.
func TimelineKey(page int) string {
	return fmt.Sprintf(TimelineKeyPrefix, page)
}

func FollowingIDsKey(userID uint) string {
	return fmt.Sprintf(FollowingIDsPrefix, userID)
}

func RefreshTokenKey(jti string) string {
	return fmt.Sprintf(RefreshTokenPrefix, jti)
}

func UnreadCountKey(userID uint) string {
	return fmt.Sprintf(UnreadCountKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateProfile(ctx context.Context, username string) {
	Invalidate(ctx, ProfileKey(username))
}

func InvalidateTweet(ctx context.Context, tweetID uint) {
	Invalidate(ctx, TweetKey(tweetID))
}

func InvalidateFollowingIDs(ctx context.Context, userID uint) {
	Invalidate(ctx, FollowingIDsKey(userID))
}

func InvalidateUnreadCount(ctx context.Context, userID uint) {
	Invalidate(ctx, UnreadCountKey(userID))
}

// InvalidateTimeline drops the cached first page. Only page 1 is cached;
// new tweets land there and deeper pages always come from the database.
func InvalidateTimeline(ctx context.Context) {
	Invalidate(ctx, TimelineKey(1))
}
