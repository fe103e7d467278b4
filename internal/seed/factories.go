// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"chirp/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak randomness is fine for seeding
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Factory{db: db, opts: opts, rng: rng, nextID: 1000}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	username := fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999))
	user := &models.User{
		Username:     username,
		Email:        gofakeit.Email(),
		DisplayName:  gofakeit.Name(),
		Bio:          gofakeit.Sentence(10),
		Location:     gofakeit.City(),
		Website:      gofakeit.URL(),
		IconImageURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildTweet constructs a tweet without persisting it. Useful for batching.
func (f *Factory) BuildTweet(user *models.User, overrides ...func(*models.Tweet)) *models.Tweet {
	tweet := &models.Tweet{
		Content: gofakeit.Sentence(f.rng.Intn(12) + 3),
		UserID:  user.ID,
	}

	// roughly a third of tweets carry an image
	if f.rng.Float32() < 0.35 {
		tweet.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	tweet.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(tweet)
	}
	return tweet
}

// CreateTweet constructs and persists a sample `models.Tweet` for the given user.
func (f *Factory) CreateTweet(user *models.User, overrides ...func(*models.Tweet)) (*models.Tweet, error) {
	tweet := f.BuildTweet(user, overrides...)

	if f.opts.DryRun {
		f.nextID++
		tweet.ID = f.nextID
		log.Printf("[dry-run] CreateTweet: user=%d content=%q", tweet.UserID, tweet.Content)
		return tweet, nil
	}

	if err := f.db.Create(tweet).Error; err != nil {
		return nil, err
	}
	return tweet, nil
}

// CreateTweetsBatch persists multiple tweets in a single DB call when possible.
func (f *Factory) CreateTweetsBatch(tweets []*models.Tweet) error {
	if f.opts.DryRun {
		for _, tw := range tweets {
			f.nextID++
			tw.ID = f.nextID
		}
		log.Printf("[dry-run] CreateTweetsBatch: %d tweets (no DB write)", len(tweets))
		return nil
	}
	return f.db.Create(&tweets).Error
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided tweet authored by the provided user.
func (f *Factory) CreateComment(user *models.User, tweet *models.Tweet, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		UserID:  user.ID,
		TweetID: tweet.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from `user` on `tweet`.
func (f *Factory) CreateLike(user *models.User, tweet *models.Tweet) error {
	return f.db.Create(&models.Like{UserID: user.ID, TweetID: tweet.ID}).Error
}

// CreateRetweet persists a retweet from `user` on `tweet`.
func (f *Factory) CreateRetweet(user *models.User, tweet *models.Tweet) error {
	return f.db.Create(&models.Retweet{UserID: user.ID, TweetID: tweet.ID}).Error
}

// CreateBookmark persists a bookmark from `user` on `tweet`.
func (f *Factory) CreateBookmark(user *models.User, tweet *models.Tweet) error {
	return f.db.Create(&models.Bookmark{UserID: user.ID, TweetID: tweet.ID}).Error
}

// CreateFollow persists a follow edge from follower to followee.
func (f *Factory) CreateFollow(follower, followee *models.User) error {
	return f.db.Create(&models.Follow{
		FollowerID: follower.ID,
		FolloweeID: followee.ID,
	}).Error
}

// CreateMessage constructs and persists a sample `models.Message` between
// the provided users.
func (f *Factory) CreateMessage(sender, receiver *models.User, overrides ...func(*models.Message)) (*models.Message, error) {
	message := &models.Message{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    gofakeit.Sentence(10),
	}

	for _, override := range overrides {
		override(message)
	}

	if err := f.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// CreateNotification persists a notification of the given type.
func (f *Factory) CreateNotification(sender, receiver *models.User, typ models.NotificationType, tweetID *uint) error {
	return f.db.Create(&models.Notification{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Type:       typ,
		TweetID:    tweetID,
	}).Error
}
