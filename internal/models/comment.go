package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxCommentLen is the maximum number of characters in a comment.
const MaxCommentLen = 500

// Comment represents a comment on a tweet, ordered by creation time.
type Comment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	TweetID uint   `gorm:"not null;index" json:"tweet_id"`
	Content string `gorm:"type:text;not null" json:"content"`

	User  User  `gorm:"foreignKey:UserID" json:"user"`
	Tweet Tweet `gorm:"foreignKey:TweetID" json:"tweet,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}
