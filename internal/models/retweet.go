package models

import "time"

// Retweet represents a user's retweet of a tweet, unique per (user, tweet).
type Retweet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_retweet_user_tweet" json:"user_id"`
	TweetID   uint      `gorm:"not null;uniqueIndex:idx_retweet_user_tweet;index" json:"tweet_id"`
	CreatedAt time.Time `json:"created_at"`

	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Tweet Tweet `gorm:"foreignKey:TweetID" json:"tweet,omitempty"`
}

// TableName specifies the table name for GORM.
func (Retweet) TableName() string {
	return "retweets"
}
