package service

import (
	"context"
	"errors"

	"chirp/internal/cache"
	"chirp/internal/media"
	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/validation"

	"gorm.io/gorm"
)

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// Profile is a user with aggregate counts and the viewer's follow relation.
type Profile struct {
	User           *models.User `json:"user"`
	TweetCount     int64        `json:"tweet_count"`
	FollowerCount  int64        `json:"follower_count"`
	FollowingCount int64        `json:"following_count"`
	// Display renditions of the profile images.
	IconURL   string `json:"icon_url,omitempty"`
	HeaderURL string `json:"header_url,omitempty"`
}

type UpdateProfileInput struct {
	UserID         uint
	DisplayName    *string
	Bio            *string
	Location       *string
	Website        *string
	TelNumber      *string
	IconImageURL   *string
	HeaderImageURL *string
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// GetProfile loads a profile by username, with counts and the viewer's follow
// relation when the viewer is signed in. The viewer-independent part is
// cached; profile updates invalidate it and the counts ride out the TTL.
func (s *UserService) GetProfile(ctx context.Context, username string, viewerID uint) (*Profile, error) {
	var profile Profile
	err := cache.CacheAside(ctx, cache.ProfileKey(username), &profile, cache.ProfileTTL, func() error {
		loaded, err := s.loadProfile(ctx, username)
		if err != nil {
			return err
		}
		profile = *loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Follow relations are per-viewer and applied after the cached load.
	if viewerID != 0 && viewerID != profile.User.ID {
		followed, err := s.followRepo.Exists(ctx, viewerID, profile.User.ID)
		if err != nil {
			return nil, err
		}
		follower, err := s.followRepo.Exists(ctx, profile.User.ID, viewerID)
		if err != nil {
			return nil, err
		}
		profile.User.IsFollowed = followed
		profile.User.IsFollower = follower
	}

	return &profile, nil
}

func (s *UserService) loadProfile(ctx context.Context, username string) (*Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, err
	}

	tweetCount, err := s.userRepo.CountTweets(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followerCount, err := s.userRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followingCount, err := s.userRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:           user,
		TweetCount:     tweetCount,
		FollowerCount:  followerCount,
		FollowingCount: followingCount,
		IconURL:        media.IconURL(user.IconImageURL),
		HeaderURL:      media.HeaderURL(user.HeaderImageURL),
	}, nil
}

// UpdateProfile applies the provided fields; nil pointers leave the field
// untouched.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", in.UserID)
		}
		return nil, err
	}

	if in.DisplayName != nil {
		if len(*in.DisplayName) > 50 {
			return nil, models.NewValidationError("Display name too long (max 50 characters)")
		}
		user.DisplayName = *in.DisplayName
	}
	if in.Bio != nil {
		if len(*in.Bio) > 500 {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.Location != nil {
		if len(*in.Location) > 100 {
			return nil, models.NewValidationError("Location too long (max 100 characters)")
		}
		user.Location = *in.Location
	}
	if in.Website != nil {
		if err := validation.ValidateWebsite(*in.Website); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Website = *in.Website
	}
	if in.TelNumber != nil {
		user.TelNumber = *in.TelNumber
	}
	if in.IconImageURL != nil {
		if err := validation.ValidateImageURL(*in.IconImageURL); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.IconImageURL = *in.IconImageURL
	}
	if in.HeaderImageURL != nil {
		if err := validation.ValidateImageURL(*in.HeaderImageURL); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.HeaderImageURL = *in.HeaderImageURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) SearchUsers(ctx context.Context, query string, limit, offset int) ([]*models.User, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.userRepo.Search(ctx, query, limit, offset)
}
