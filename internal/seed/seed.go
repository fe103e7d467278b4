package seed

import (
	"fmt"
	"log"

	"chirp/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumTweets   int
	ShouldClean bool
	// MaxDays spreads generated timestamps over this many days back.
	MaxDays int
	// SkipBcrypt stores plaintext passwords; only for throwaway dev DBs.
	SkipBcrypt bool
	// DryRun logs what would be created without writing to the database.
	DryRun bool
}

// Seed populates the database with test data: users, a follow mesh, tweets,
// engagement, comments, conversations, and the notifications those actions
// would have produced.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d tweets...", opts.NumUsers, opts.NumTweets)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	factory := NewFactory(db, opts)

	users, err := createUsers(factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	tweets, err := createTweets(factory, users, opts.NumTweets)
	if err != nil {
		return fmt.Errorf("failed to create tweets: %w", err)
	}
	log.Printf("created %d tweets", len(tweets))

	if opts.DryRun {
		log.Println("[dry-run] skipping follow mesh, engagement, comments and messages")
		return nil
	}

	if err := createFollowMesh(factory, users); err != nil {
		return fmt.Errorf("failed to create follow mesh: %w", err)
	}

	if err := createEngagement(factory, users, tweets); err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}

	if err := createConversations(factory, users); err != nil {
		return fmt.Errorf("failed to create conversations: %w", err)
	}

	log.Println("Database seeding completed.")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE notifications, messages, bookmarks, retweets, likes, comments, follows, tweets, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// Always include a few well-known accounts so dev logins stay stable.
	if count >= 3 {
		for _, username := range []string{"alice", "bob", "demo"} {
			name := username
			user, err := f.CreateUser(func(u *models.User) {
				u.Username = name
				u.Email = fmt.Sprintf("%s@example.com", name)
				u.Bio = "One of the OGs."
			})
			if err != nil {
				continue
			}
			users = append(users, user)
		}
	}

	for i := len(users); i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("created %d users...", i)
		}
	}
	return users, nil
}

// createFollowMesh gives every user a handful of random followees so the
// following feed has content.
func createFollowMesh(f *Factory, users []*models.User) error {
	if len(users) < 2 {
		return nil
	}
	for _, follower := range users {
		targets := f.rng.Intn(8) + 1
		seen := map[uint]struct{}{follower.ID: {}}
		for i := 0; i < targets; i++ {
			followee := users[f.rng.Intn(len(users))]
			if _, dup := seen[followee.ID]; dup {
				continue
			}
			seen[followee.ID] = struct{}{}
			if err := f.CreateFollow(follower, followee); err != nil {
				return err
			}
			if err := f.CreateNotification(follower, followee, models.NotificationTypeFollow, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func createTweets(f *Factory, users []*models.User, count int) ([]*models.Tweet, error) {
	const batchSize = 200
	tweets := make([]*models.Tweet, 0, count)

	batch := make([]*models.Tweet, 0, batchSize)
	for i := 0; i < count; i++ {
		user := users[f.rng.Intn(len(users))]
		batch = append(batch, f.BuildTweet(user))

		if len(batch) == batchSize || i == count-1 {
			if err := f.CreateTweetsBatch(batch); err != nil {
				return nil, err
			}
			tweets = append(tweets, batch...)
			batch = batch[:0]
		}
	}
	return tweets, nil
}

// createEngagement sprinkles likes, retweets, bookmarks and comments across
// the generated tweets, with matching notifications for actions on other
// people's tweets.
func createEngagement(f *Factory, users []*models.User, tweets []*models.Tweet) error {
	for _, tweet := range tweets {
		author := userByID(users, tweet.UserID)
		likers := f.rng.Intn(5)
		for i := 0; i < likers; i++ {
			actor := users[f.rng.Intn(len(users))]
			if err := f.CreateLike(actor, tweet); err != nil {
				continue // duplicate pair, skip
			}
			if author != nil && actor.ID != author.ID {
				tweetID := tweet.ID
				_ = f.CreateNotification(actor, author, models.NotificationTypeLike, &tweetID)
			}
		}

		if f.rng.Float32() < 0.3 {
			actor := users[f.rng.Intn(len(users))]
			if err := f.CreateRetweet(actor, tweet); err == nil && author != nil && actor.ID != author.ID {
				tweetID := tweet.ID
				_ = f.CreateNotification(actor, author, models.NotificationTypeRetweet, &tweetID)
			}
		}

		if f.rng.Float32() < 0.2 {
			actor := users[f.rng.Intn(len(users))]
			_ = f.CreateBookmark(actor, tweet)
		}

		comments := f.rng.Intn(3)
		for i := 0; i < comments; i++ {
			actor := users[f.rng.Intn(len(users))]
			if _, err := f.CreateComment(actor, tweet); err != nil {
				return err
			}
			if author != nil && actor.ID != author.ID {
				tweetID := tweet.ID
				_ = f.CreateNotification(actor, author, models.NotificationTypeComment, &tweetID)
			}
		}
	}
	return nil
}

// createConversations seeds a few DM threads between random user pairs.
func createConversations(f *Factory, users []*models.User) error {
	if len(users) < 2 {
		return nil
	}
	threads := len(users) / 2
	for i := 0; i < threads; i++ {
		a := users[f.rng.Intn(len(users))]
		b := users[f.rng.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}
		messages := f.rng.Intn(6) + 2
		for j := 0; j < messages; j++ {
			sender, receiver := a, b
			if j%2 == 1 {
				sender, receiver = b, a
			}
			if _, err := f.CreateMessage(sender, receiver, func(m *models.Message) {
				m.Content = gofakeit.HipsterSentence(f.rng.Intn(8) + 3)
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func userByID(users []*models.User, id uint) *models.User {
	for _, u := range users {
		if u.ID == id {
			return u
		}
	}
	return nil
}
