package service

import (
	"context"
	"errors"

	"chirp/internal/cache"
	"chirp/internal/models"
	"chirp/internal/repository"

	"gorm.io/gorm"
)

type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

// NotificationPage is one page of a user's notification list.
type NotificationPage struct {
	Notifications []*models.Notification `json:"notifications"`
	Page          int                    `json:"page"`
	TotalPages    int                    `json:"total_pages"`
	TotalItems    int64                  `json:"total_items"`
	UnreadCount   int64                  `json:"unread_count"`
}

func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

func (s *NotificationService) List(ctx context.Context, receiverID uint, pageNum int) (*NotificationPage, error) {
	total, err := s.notificationRepo.CountByReceiver(ctx, receiverID)
	if err != nil {
		return nil, err
	}

	page, totalPages := clampPage(pageNum, total)
	offset := (page - 1) * FeedPageSize

	notifications, err := s.notificationRepo.ListByReceiver(ctx, receiverID, FeedPageSize, offset)
	if err != nil {
		return nil, err
	}

	unread, err := s.UnreadCount(ctx, receiverID)
	if err != nil {
		return nil, err
	}

	return &NotificationPage{
		Notifications: notifications,
		Page:          page,
		TotalPages:    totalPages,
		TotalItems:    total,
		UnreadCount:   unread,
	}, nil
}

// UnreadCount serves the badge counter through the cache; the repository
// invalidates the key on every write.
func (s *NotificationService) UnreadCount(ctx context.Context, receiverID uint) (int64, error) {
	var count int64
	err := cache.CacheAside(ctx, cache.UnreadCountKey(receiverID), &count, cache.UnreadCountTTL, func() error {
		var fetchErr error
		count, fetchErr = s.notificationRepo.CountUnread(ctx, receiverID)
		return fetchErr
	})
	return count, err
}

func (s *NotificationService) MarkRead(ctx context.Context, receiverID, notificationID uint) error {
	err := s.notificationRepo.MarkRead(ctx, notificationID, receiverID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Notification", notificationID)
	}
	return err
}

func (s *NotificationService) MarkAllRead(ctx context.Context, receiverID uint) error {
	return s.notificationRepo.MarkAllRead(ctx, receiverID)
}
