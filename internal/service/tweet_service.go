package service

import (
	"context"
	"errors"
	"strings"

	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/validation"

	"gorm.io/gorm"
)

type TweetService struct {
	tweetRepo repository.TweetRepository
	feed      *FeedService
}

type CreateTweetInput struct {
	UserID   uint
	Content  string
	ImageURL string
}

type DeleteTweetInput struct {
	UserID  uint
	TweetID uint
}

func NewTweetService(tweetRepo repository.TweetRepository, feed *FeedService) *TweetService {
	return &TweetService{
		tweetRepo: tweetRepo,
		feed:      feed,
	}
}

func (s *TweetService) CreateTweet(ctx context.Context, in CreateTweetInput) (*models.Tweet, error) {
	if err := validation.ValidateTweetContent(in.Content, models.MaxTweetLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateImageURL(in.ImageURL); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	tweet := &models.Tweet{
		UserID:   in.UserID,
		Content:  strings.TrimSpace(in.Content),
		ImageURL: in.ImageURL,
	}
	if err := s.tweetRepo.Create(ctx, tweet); err != nil {
		return nil, err
	}

	// Re-read through the detail query so counts and the author come back
	// populated.
	return s.GetTweet(ctx, tweet.ID, in.UserID)
}

// GetTweet loads one tweet with counts, annotated for the viewer.
func (s *TweetService) GetTweet(ctx context.Context, tweetID, viewerID uint) (*models.Tweet, error) {
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tweet", tweetID)
		}
		return nil, err
	}

	if err := s.feed.annotateForViewer(ctx, []*models.Tweet{tweet}, viewerID); err != nil {
		return nil, err
	}
	return tweet, nil
}

// DeleteTweet removes a tweet. Only the author may delete it.
func (s *TweetService) DeleteTweet(ctx context.Context, in DeleteTweetInput) error {
	tweet, err := s.tweetRepo.GetByID(ctx, in.TweetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Tweet", in.TweetID)
		}
		return err
	}

	if tweet.UserID != in.UserID {
		return models.NewUnauthorizedError("You can only delete your own tweets")
	}

	return s.tweetRepo.Delete(ctx, in.TweetID)
}
