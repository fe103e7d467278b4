// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxTweetLen is the maximum number of characters in a tweet.
const MaxTweetLen = 140

// Tweet represents a short post, optionally carrying one image.
type Tweet struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	Content  string `gorm:"size:140;not null" json:"content"`
	ImageURL string `json:"image_url,omitempty"`

	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// RetweetsCount is not persisted; computed at query time
	RetweetsCount int `gorm:"->" json:"retweets_count"`
	// BookmarksCount is not persisted; computed at query time
	BookmarksCount int `gorm:"->" json:"bookmarks_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`

	// Viewer-relative flags, set by the annotator, never queried per row.
	IsLiked      bool `gorm:"-" json:"is_liked"`
	IsRetweeted  bool `gorm:"-" json:"is_retweeted"`
	IsBookmarked bool `gorm:"-" json:"is_bookmarked"`

	// DisplayImageURL is the resized rendition of ImageURL, present only
	// when the tweet has an image.
	DisplayImageURL string `gorm:"-" json:"display_image_url,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (Tweet) TableName() string {
	return "tweets"
}
