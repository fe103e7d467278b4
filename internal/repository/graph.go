package repository

import (
	"context"

	"chirp/internal/cache"
	"chirp/internal/models"

	"gorm.io/gorm"
)

// GraphRepository reads the viewer's engagement and follow relations in bulk.
// All methods are single-query Plucks; a user with no relations gets an empty
// slice, never an error.
type GraphRepository interface {
	LikedTweetIDs(ctx context.Context, userID uint, tweetIDs []uint) ([]uint, error)
	RetweetedTweetIDs(ctx context.Context, userID uint, tweetIDs []uint) ([]uint, error)
	BookmarkedTweetIDs(ctx context.Context, userID uint, tweetIDs []uint) ([]uint, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
}

type graphRepository struct {
	db *gorm.DB
}

// NewGraphRepository creates a new graph repository
func NewGraphRepository(db *gorm.DB) GraphRepository {
	return &graphRepository{db: db}
}

func (r *graphRepository) engagedTweetIDs(ctx context.Context, model interface{}, userID uint, tweetIDs []uint) ([]uint, error) {
	if len(tweetIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(model).
		Where("user_id = ? AND tweet_id IN ?", userID, tweetIDs).
		Pluck("tweet_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *graphRepository) LikedTweetIDs(ctx context.Context, userID uint, tweetIDs []uint) ([]uint, error) {
	return r.engagedTweetIDs(ctx, &models.Like{}, userID, tweetIDs)
}

func (r *graphRepository) RetweetedTweetIDs(ctx context.Context, userID uint, tweetIDs []uint) ([]uint, error) {
	return r.engagedTweetIDs(ctx, &models.Retweet{}, userID, tweetIDs)
}

func (r *graphRepository) BookmarkedTweetIDs(ctx context.Context, userID uint, tweetIDs []uint) ([]uint, error) {
	return r.engagedTweetIDs(ctx, &models.Bookmark{}, userID, tweetIDs)
}

// FollowingIDs is cached: it runs on every authenticated feed page for the
// following filter and the follow annotations. Follow toggles invalidate it.
func (r *graphRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := cache.CacheAside(ctx, cache.FollowingIDsKey(userID), &ids, cache.FollowingIDsTTL, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Follow{}).
			Where("follower_id = ?", userID).
			Pluck("followee_id", &ids).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *graphRepository) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
