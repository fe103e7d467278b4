package service

import (
	"context"
	"errors"
	"time"

	"chirp/internal/cache"
	"chirp/internal/models"
	"chirp/internal/observability"
	"chirp/internal/repository"

	"gorm.io/gorm"
)

// FollowService toggles follow edges and lists either side of the graph.
type FollowService struct {
	db         *gorm.DB
	followRepo repository.FollowRepository
	publisher  NotificationPublisher
}

func NewFollowService(db *gorm.DB, followRepo repository.FollowRepository, publisher NotificationPublisher) *FollowService {
	return &FollowService{
		db:         db,
		followRepo: followRepo,
		publisher:  publisher,
	}
}

// ToggleFollow follows or unfollows the target. Following yourself is a
// validation error. A new follow writes the notification in the same
// transaction; a follow notification carries no tweet.
func (s *FollowService) ToggleFollow(ctx context.Context, actorID, targetID uint) (*ToggleResult, error) {
	if actorID == targetID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}

	result := &ToggleResult{}
	var notification *models.Notification

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.Select("id").First(&target, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", targetID)
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.Follow{}).
			Where("follower_id = ? AND followee_id = ?", actorID, targetID).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			if err := tx.Exec(
				"DELETE FROM follows WHERE follower_id = ? AND followee_id = ?",
				actorID, targetID,
			).Error; err != nil {
				return err
			}
			result.Active = false
			return nil
		}

		res := tx.Exec(
			"INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, ?) "+
				"ON CONFLICT (follower_id, followee_id) DO NOTHING",
			actorID, targetID, time.Now(),
		)
		if res.Error != nil {
			return res.Error
		}
		result.Active = true

		if res.RowsAffected == 0 {
			// Concurrent duplicate: already following, no notification.
			return nil
		}

		notification = &models.Notification{
			Type:       models.NotificationTypeFollow,
			SenderID:   actorID,
			ReceiverID: targetID,
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
	observability.EngagementToggles.WithLabelValues("follows", direction).Inc()
	cache.InvalidateFollowingIDs(ctx, actorID)

	if result.Notified {
		observability.NotificationsPublished.WithLabelValues(string(models.NotificationTypeFollow)).Inc()
		cache.InvalidateUnreadCount(ctx, targetID)
		if s.publisher != nil {
			s.publisher.PublishNotification(ctx, notification)
		}
	}

	return result, nil
}

// IsFollowing reports whether follower currently follows followee.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followeeID)
}

func (s *FollowService) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]*models.User, error) {
	return s.followRepo.ListFollowers(ctx, userID, limit, offset)
}

func (s *FollowService) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]*models.User, error) {
	return s.followRepo.ListFollowing(ctx, userID, limit, offset)
}
