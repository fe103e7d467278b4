package service

import (
	"context"
	"errors"
	"time"

	"chirp/internal/cache"
	"chirp/internal/models"
	"chirp/internal/observability"

	"gorm.io/gorm"
)

// NotificationPublisher delivers a freshly committed notification to online
// receivers. Implementations must be best-effort; delivery failures are logged
// and swallowed.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, n *models.Notification)
}

// ToggleResult reports the outcome of a toggle operation.
type ToggleResult struct {
	// Active is the state after the toggle: true when the relation now
	// exists, false when it was removed.
	Active bool `json:"active"`
	// Notified reports whether a notification row was written.
	Notified bool `json:"notified"`
}

// engagementKind binds a relation table to its notification type.
type engagementKind struct {
	table    string
	notify   models.NotificationType
	conflict string
}

var (
	likeKind     = engagementKind{table: "likes", notify: models.NotificationTypeLike, conflict: "user_id, tweet_id"}
	retweetKind  = engagementKind{table: "retweets", notify: models.NotificationTypeRetweet, conflict: "user_id, tweet_id"}
	// Bookmarks are private: no notification type.
	bookmarkKind = engagementKind{table: "bookmarks", conflict: "user_id, tweet_id"}
)

// EngagementService toggles likes, retweets, and bookmarks. It holds the DB
// directly because each toggle is a single transaction spanning two tables.
type EngagementService struct {
	db        *gorm.DB
	publisher NotificationPublisher
}

func NewEngagementService(db *gorm.DB, publisher NotificationPublisher) *EngagementService {
	return &EngagementService{db: db, publisher: publisher}
}

func (s *EngagementService) ToggleLike(ctx context.Context, actorID, tweetID uint) (*ToggleResult, error) {
	return s.toggle(ctx, likeKind, actorID, tweetID)
}

func (s *EngagementService) ToggleRetweet(ctx context.Context, actorID, tweetID uint) (*ToggleResult, error) {
	return s.toggle(ctx, retweetKind, actorID, tweetID)
}

// ToggleBookmark never notifies: bookmarks are private to the actor.
func (s *EngagementService) ToggleBookmark(ctx context.Context, actorID, tweetID uint) (*ToggleResult, error) {
	return s.toggle(ctx, bookmarkKind, actorID, tweetID)
}

func (s *EngagementService) toggle(ctx context.Context, kind engagementKind, actorID, tweetID uint) (*ToggleResult, error) {
	result := &ToggleResult{}
	var notification *models.Notification

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tweet models.Tweet
		if err := tx.Select("id", "user_id").First(&tweet, tweetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Tweet", tweetID)
			}
			return err
		}

		var count int64
		if err := tx.Table(kind.table).
			Where("user_id = ? AND tweet_id = ?", actorID, tweetID).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			// Present: remove, never notify.
			if err := tx.Exec(
				"DELETE FROM "+kind.table+" WHERE user_id = ? AND tweet_id = ?",
				actorID, tweetID,
			).Error; err != nil {
				return err
			}
			result.Active = false
			return nil
		}

		// Absent: insert. ON CONFLICT DO NOTHING absorbs a concurrent
		// duplicate; the timestamp is bound as a parameter so the same SQL
		// runs on PostgreSQL and SQLite.
		res := tx.Exec(
			"INSERT INTO "+kind.table+" (user_id, tweet_id, created_at) VALUES (?, ?, ?) "+
				"ON CONFLICT ("+kind.conflict+") DO NOTHING",
			actorID, tweetID, time.Now(),
		)
		if res.Error != nil {
			return res.Error
		}
		result.Active = true

		if res.RowsAffected == 0 {
			// Lost the race: the relation already exists, so the winner
			// already owns the notification.
			return nil
		}

		// Self-engagement is allowed but never notifies the actor about
		// their own action. Bookmarks stay private.
		if kind.notify == "" || tweet.UserID == actorID {
			return nil
		}

		notification = &models.Notification{
			Type:       kind.notify,
			SenderID:   actorID,
			ReceiverID: tweet.UserID,
			TweetID:    &tweetID,
		}
		if err := tx.Create(notification).Error; err != nil {
			return err
		}
		result.Notified = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	direction := "off"
	if result.Active {
		direction = "on"
	}
	observability.EngagementToggles.WithLabelValues(kind.table, direction).Inc()
	cache.InvalidateTweet(ctx, tweetID)

	if result.Notified {
		observability.NotificationsPublished.WithLabelValues(string(kind.notify)).Inc()
		cache.InvalidateUnreadCount(ctx, notification.ReceiverID)
		if s.publisher != nil {
			s.publisher.PublishNotification(ctx, notification)
		}
	}

	return result, nil
}
