package repository

import (
	"context"

	"chirp/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for direct message data operations
type MessageRepository interface {
	Create(ctx context.Context, m *models.Message) error
	ListConversation(ctx context.Context, userA, userB uint, limit, offset int) ([]*models.Message, error)
	CountConversation(ctx context.Context, userA, userB uint) (int64, error)
	LatestPerPartner(ctx context.Context, userID uint) ([]*models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, m *models.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// conversationScope matches messages in either direction of the user pair.
func conversationScope(db *gorm.DB, userA, userB uint) *gorm.DB {
	return db.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userA, userB, userB, userA,
	)
}

func (r *messageRepository) ListConversation(ctx context.Context, userA, userB uint, limit, offset int) ([]*models.Message, error) {
	var messages []*models.Message
	err := conversationScope(r.db.WithContext(ctx).Model(&models.Message{}), userA, userB).
		Preload("Sender").
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) CountConversation(ctx context.Context, userA, userB uint) (int64, error) {
	var count int64
	err := conversationScope(r.db.WithContext(ctx).Model(&models.Message{}), userA, userB).
		Count(&count).Error
	return count, err
}

// LatestPerPartner returns the newest message the user exchanged with each
// distinct partner, newest conversation first.
func (r *messageRepository) LatestPerPartner(ctx context.Context, userID uint) ([]*models.Message, error) {
	var messages []*models.Message
	// Group messages by the partner regardless of direction, then keep the
	// newest row per group.
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("id IN (SELECT MAX(id) FROM messages "+
			"WHERE sender_id = ? OR receiver_id = ? "+
			"GROUP BY CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END)",
			userID, userID, userID).
		Order("created_at DESC, id DESC").
		Find(&messages).Error
	return messages, err
}
