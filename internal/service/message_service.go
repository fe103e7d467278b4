package service

import (
	"context"
	"errors"
	"strings"

	"chirp/internal/models"
	"chirp/internal/repository"

	"gorm.io/gorm"
)

// MaxMessageLen bounds direct message bodies.
const MaxMessageLen = 1000

// MessageEventPublisher delivers a direct message to the receiver's open
// WebSocket sessions, best-effort.
type MessageEventPublisher interface {
	PublishMessage(ctx context.Context, m *models.Message)
}

type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	publisher   MessageEventPublisher
}

type SendMessageInput struct {
	SenderID   uint
	ReceiverID uint
	Content    string
}

// Conversation summarizes one DM thread for the inbox view.
type Conversation struct {
	Partner     *models.User    `json:"partner"`
	LastMessage *models.Message `json:"last_message"`
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, publisher MessageEventPublisher) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

func (s *MessageService) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Message cannot be empty")
	}
	if len(content) > MaxMessageLen {
		return nil, models.NewValidationError("Message too long")
	}
	if in.SenderID == in.ReceiverID {
		return nil, models.NewValidationError("You cannot message yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, in.ReceiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", in.ReceiverID)
		}
		return nil, err
	}

	message := &models.Message{
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Content:    content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishMessage(ctx, message)
	}

	return message, nil
}

// GetConversation returns the thread between the user and the partner,
// oldest-first.
func (s *MessageService) GetConversation(ctx context.Context, userID, partnerID uint, limit, offset int) ([]*models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, partnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", partnerID)
		}
		return nil, err
	}
	return s.messageRepo.ListConversation(ctx, userID, partnerID, limit, offset)
}

// ListConversations builds the inbox: one entry per partner with the latest
// message, newest conversation first.
func (s *MessageService) ListConversations(ctx context.Context, userID uint) ([]*Conversation, error) {
	latest, err := s.messageRepo.LatestPerPartner(ctx, userID)
	if err != nil {
		return nil, err
	}

	conversations := make([]*Conversation, 0, len(latest))
	for _, m := range latest {
		partner := &m.Sender
		if m.SenderID == userID {
			partner = &m.Receiver
		}
		conversations = append(conversations, &Conversation{
			Partner:     partner,
			LastMessage: m,
		})
	}
	return conversations, nil
}
