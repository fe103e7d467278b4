package service

import (
	"context"
	"errors"

	"chirp/internal/cache"
	"chirp/internal/models"
	"chirp/internal/observability"
	"chirp/internal/repository"
	"chirp/internal/validation"

	"gorm.io/gorm"
)

type CommentService struct {
	db          *gorm.DB
	commentRepo repository.CommentRepository
	publisher   NotificationPublisher
}

type CreateCommentInput struct {
	UserID  uint
	TweetID uint
	Content string
}

func NewCommentService(db *gorm.DB, commentRepo repository.CommentRepository, publisher NotificationPublisher) *CommentService {
	return &CommentService{
		db:          db,
		commentRepo: commentRepo,
		publisher:   publisher,
	}
}

// CreateComment inserts the comment and, unless the commenter owns the tweet,
// the notification in one transaction.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validation.ValidateTweetContent(in.Content, models.MaxCommentLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	var comment *models.Comment
	var notification *models.Notification

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tweet models.Tweet
		if err := tx.Select("id", "user_id").First(&tweet, in.TweetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Tweet", in.TweetID)
			}
			return err
		}

		comment = &models.Comment{
			UserID:  in.UserID,
			TweetID: in.TweetID,
			Content: in.Content,
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}

		if tweet.UserID == in.UserID {
			return nil
		}

		notification = &models.Notification{
			Type:       models.NotificationTypeComment,
			SenderID:   in.UserID,
			ReceiverID: tweet.UserID,
			TweetID:    &in.TweetID,
		}
		return tx.Create(notification).Error
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateTweet(ctx, in.TweetID)

	if notification != nil {
		observability.NotificationsPublished.WithLabelValues(string(models.NotificationTypeComment)).Inc()
		cache.InvalidateUnreadCount(ctx, notification.ReceiverID)
		if s.publisher != nil {
			s.publisher.PublishNotification(ctx, notification)
		}
	}

	// Load the commenter for the response
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns a tweet's comments oldest-first.
func (s *CommentService) ListComments(ctx context.Context, tweetID uint, limit, offset int) ([]*models.Comment, error) {
	return s.commentRepo.ListByTweetID(ctx, tweetID, limit, offset)
}

// DeleteComment removes a comment; only its author may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return err
	}
	if comment.UserID != userID {
		return models.NewUnauthorizedError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, commentID)
}
