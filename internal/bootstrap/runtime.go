// Package bootstrap wires the shared runtime pieces (database, Redis,
// optional dev fixtures) used by the server and CLI entrypoints.
package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"chirp/internal/cache"
	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/models"
	"chirp/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// EnsureDemoAccount creates the stable "demo" login in development.
	EnsureDemoAccount bool
	// SeedDemoData populates an empty development database with sample
	// users, tweets and conversations.
	SeedDemoData bool
}

// InitRuntime connects to DB and Redis and optionally provisions dev fixtures.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.EnsureDemoAccount {
		if err := ensureDevDemoAccount(cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to bootstrap development demo account: %w", err)
		}
	}

	if opts.SeedDemoData {
		if err := seedDemoData(cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// ensureDevDemoAccount keeps a stable demo login around in development so
// frontend work never starts from an empty sign-in screen. Production
// environments never run this.
func ensureDevDemoAccount(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("DemoPassword123!"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var demo models.User
		findErr := tx.Where("username = ?", "demo").First(&demo).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			demo = models.User{
				Username:    "demo",
				Email:       "demo@chirp.local",
				Password:    string(hashedPassword),
				DisplayName: "Demo Account",
				Bio:         "Stable development login.",
			}
			if err := tx.Create(&demo).Error; err != nil {
				return err
			}
			log.Printf("development demo account created (demo@chirp.local)")
		case findErr != nil:
			return findErr
		}
		return nil
	})
}

// seedDemoData fills an empty development database with sample content.
// A non-empty users table means a developer already has data worth keeping.
func seedDemoData(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		log.Printf("skipping demo seed: %d users already present", userCount)
		return nil
	}

	return seed.Seed(db, seed.Options{
		NumUsers:  25,
		NumTweets: 200,
	})
}
