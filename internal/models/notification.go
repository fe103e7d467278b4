package models

import "time"

// NotificationType identifies the action that produced a notification.
type NotificationType string

const (
	// NotificationTypeLike is emitted when someone likes a tweet.
	NotificationTypeLike NotificationType = "like"
	// NotificationTypeRetweet is emitted when someone retweets a tweet.
	NotificationTypeRetweet NotificationType = "retweet"
	// NotificationTypeComment is emitted when someone comments on a tweet.
	NotificationTypeComment NotificationType = "comment"
	// NotificationTypeFollow is emitted when someone follows a user.
	NotificationTypeFollow NotificationType = "follow"
)

// Notification records a social event addressed to a user.
// Never created when sender equals receiver.
type Notification struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	Type       NotificationType `gorm:"type:varchar(20);not null;index" json:"type"`
	SenderID   uint             `gorm:"not null;index" json:"sender_id"`
	ReceiverID uint             `gorm:"not null;index" json:"receiver_id"`
	// TweetID is nil for follow notifications.
	TweetID *uint `gorm:"index" json:"tweet_id,omitempty"`
	IsRead  bool  `gorm:"default:false;index" json:"is_read"`

	Sender   User   `gorm:"foreignKey:SenderID" json:"sender"`
	Receiver User   `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Tweet    *Tweet `gorm:"foreignKey:TweetID" json:"tweet,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}
