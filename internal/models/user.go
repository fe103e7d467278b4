// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account on Chirp.
type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Username       string     `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	Password       string     `gorm:"not null" json:"-"`
	DisplayName    string     `gorm:"size:50" json:"display_name"`
	Bio            string     `gorm:"type:text" json:"bio"`
	Location       string     `gorm:"size:100" json:"location"`
	Website        string     `gorm:"size:255" json:"website"`
	TelNumber      string     `gorm:"size:15" json:"tel_number,omitempty"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	IconImageURL   string     `json:"icon_image_url"`
	HeaderImageURL string     `json:"header_image_url"`
	LoginCount     int        `gorm:"default:0" json:"login_count"`

	// IsFollowed reports whether the requesting user follows this user (computed).
	IsFollowed bool `gorm:"-" json:"is_followed"`
	// IsFollower reports whether this user follows the requesting user (computed).
	IsFollower bool `gorm:"-" json:"is_follower"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Tweets []Tweet `gorm:"foreignKey:UserID" json:"tweets,omitempty"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}
