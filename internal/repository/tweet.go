// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"chirp/internal/cache"
	"chirp/internal/models"

	"gorm.io/gorm"
)

// TweetRepository defines the interface for tweet data operations
type TweetRepository interface {
	Create(ctx context.Context, tweet *models.Tweet) error
	GetByID(ctx context.Context, id uint) (*models.Tweet, error)
	Delete(ctx context.Context, id uint) error

	ListTimeline(ctx context.Context, limit, offset int) ([]*models.Tweet, error)
	CountTimeline(ctx context.Context) (int64, error)

	ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Tweet, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (int64, error)

	ListLikedBy(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error)
	CountLikedBy(ctx context.Context, userID uint) (int64, error)
	ListRetweetedBy(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error)
	CountRetweetedBy(ctx context.Context, userID uint) (int64, error)
	ListBookmarkedBy(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error)
	CountBookmarkedBy(ctx context.Context, userID uint) (int64, error)
	ListCommentedBy(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error)
	CountCommentedBy(ctx context.Context, userID uint) (int64, error)

	Search(ctx context.Context, query string, limit, offset int) ([]*models.Tweet, error)
	CountSearch(ctx context.Context, query string) (int64, error)
}

// tweetRepository implements TweetRepository
type tweetRepository struct {
	db *gorm.DB
}

// NewTweetRepository creates a new tweet repository
func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

// applyTweetDetails adds subqueries computing engagement counts in the same query.
// The aliases target the gorm:"->" fields on models.Tweet.
func (r *tweetRepository) applyTweetDetails(db *gorm.DB) *gorm.DB {
	return db.Select("tweets.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.tweet_id = tweets.id) AS likes_count, " +
		"(SELECT COUNT(*) FROM retweets WHERE retweets.tweet_id = tweets.id) AS retweets_count, " +
		"(SELECT COUNT(*) FROM bookmarks WHERE bookmarks.tweet_id = tweets.id) AS bookmarks_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.tweet_id = tweets.id AND comments.deleted_at IS NULL) AS comments_count")
}

// stableOrder sorts newest-first with the ID as a deterministic tie-break.
func stableOrder(db *gorm.DB) *gorm.DB {
	return db.Order("tweets.created_at DESC, tweets.id DESC")
}

func (r *tweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	err := r.db.WithContext(ctx).Create(tweet).Error
	if err == nil {
		cache.InvalidateTimeline(ctx)
	}
	return err
}

// GetByID serves the tweet detail cache-aside. Engagement and comment writes
// invalidate the key; the cached copy carries no viewer annotations.
func (r *tweetRepository) GetByID(ctx context.Context, id uint) (*models.Tweet, error) {
	var tweet models.Tweet
	err := cache.CacheAside(ctx, cache.TweetKey(id), &tweet, cache.TweetTTL, func() error {
		return r.applyTweetDetails(r.db.WithContext(ctx)).
			Preload("User").
			First(&tweet, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

func (r *tweetRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Tweet{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateTweet(ctx, id)
	cache.InvalidateTimeline(ctx)
	return nil
}

func (r *tweetRepository) ListTimeline(ctx context.Context, limit, offset int) ([]*models.Tweet, error) {
	var tweets []*models.Tweet
	err := stableOrder(r.applyTweetDetails(r.db.WithContext(ctx))).
		Preload("User").
		Limit(limit).
		Offset(offset).
		Find(&tweets).Error
	return tweets, err
}

func (r *tweetRepository) CountTimeline(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tweet{}).Count(&count).Error
	return count, err
}

func (r *tweetRepository) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Tweet, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var tweets []*models.Tweet
	err := stableOrder(r.applyTweetDetails(r.db.WithContext(ctx))).
		Preload("User").
		Where("tweets.user_id IN ?", authorIDs).
		Limit(limit).
		Offset(offset).
		Find(&tweets).Error
	return tweets, err
}

func (r *tweetRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (int64, error) {
	if len(authorIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Tweet{}).
		Where("user_id IN ?", authorIDs).
		Count(&count).Error
	return count, err
}

// Engagement-filtered feeds use EXISTS so the SELECT aliases stay one row per
// tweet without DISTINCT.
const (
	likedExists      = "EXISTS (SELECT 1 FROM likes WHERE likes.tweet_id = tweets.id AND likes.user_id = ?)"
	retweetedExists  = "EXISTS (SELECT 1 FROM retweets WHERE retweets.tweet_id = tweets.id AND retweets.user_id = ?)"
	bookmarkedExists = "EXISTS (SELECT 1 FROM bookmarks WHERE bookmarks.tweet_id = tweets.id AND bookmarks.user_id = ?)"
	commentedExists  = "EXISTS (SELECT 1 FROM comments WHERE comments.tweet_id = tweets.id AND comments.user_id = ? AND comments.deleted_at IS NULL)"
)

func (r *tweetRepository) listWhereEngaged(ctx context.Context, existsClause string, userID uint, limit, offset int) ([]*models.Tweet, error) {
	var tweets []*models.Tweet
	err := stableOrder(r.applyTweetDetails(r.db.WithContext(ctx))).
		Preload("User").
		Where(existsClause, userID).
		Limit(limit).
		Offset(offset).
		Find(&tweets).Error
	return tweets, err
}

func (r *tweetRepository) countWhereEngaged(ctx context.Context, existsClause string, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Tweet{}).
		Where(existsClause, userID).
		Count(&count).Error
	return count, err
}

func (r *tweetRepository) ListLikedBy(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error) {
	return r.listWhereEngaged(ctx, likedExists, userID, limit, offset)
}

func (r *tweetRepository) CountLikedBy(ctx context.Context, userID uint) (int64, error) {
	return r.countWhereEngaged(ctx, likedExists, userID)
}

func (r *tweetRepository) ListRetweetedBy(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error) {
	return r.listWhereEngaged(ctx, retweetedExists, userID, limit, offset)
}

func (r *tweetRepository) CountRetweetedBy(ctx context.Context, userID uint) (int64, error) {
	return r.countWhereEngaged(ctx, retweetedExists, userID)
}

func (r *tweetRepository) ListBookmarkedBy(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error) {
	return r.listWhereEngaged(ctx, bookmarkedExists, userID, limit, offset)
}

func (r *tweetRepository) CountBookmarkedBy(ctx context.Context, userID uint) (int64, error) {
	return r.countWhereEngaged(ctx, bookmarkedExists, userID)
}

func (r *tweetRepository) ListCommentedBy(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error) {
	return r.listWhereEngaged(ctx, commentedExists, userID, limit, offset)
}

func (r *tweetRepository) CountCommentedBy(ctx context.Context, userID uint) (int64, error) {
	return r.countWhereEngaged(ctx, commentedExists, userID)
}

func (r *tweetRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Tweet, error) {
	var tweets []*models.Tweet
	like := "%" + query + "%"
	// LOWER(...) LIKE works on both PostgreSQL and SQLite
	err := stableOrder(r.applyTweetDetails(r.db.WithContext(ctx))).
		Preload("User").
		Where("LOWER(tweets.content) LIKE LOWER(?)", like).
		Limit(limit).
		Offset(offset).
		Find(&tweets).Error
	return tweets, err
}

func (r *tweetRepository) CountSearch(ctx context.Context, query string) (int64, error) {
	var count int64
	like := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Model(&models.Tweet{}).
		Where("LOWER(content) LIKE LOWER(?)", like).
		Count(&count).Error
	return count, err
}
