package server

import (
	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultMessageLimit = 50

// SendMessage handles POST /api/messages/:userId
func (s *Server) SendMessage(c *fiber.Ctx) error {
	receiverID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondServiceError(c, errInvalidBody)
	}

	message, err := s.messageService.SendMessage(c.Context(), service.SendMessageInput{
		SenderID:   currentUserID(c),
		ReceiverID: receiverID,
		Content:    req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetConversation handles GET /api/messages/:userId — the thread with one
// partner, oldest first.
func (s *Server) GetConversation(c *fiber.Ctx) error {
	partnerID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	p := parsePagination(c, defaultMessageLimit)
	messages, err := s.messageService.GetConversation(c.Context(), currentUserID(c), partnerID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// GetConversations handles GET /api/messages — the inbox, one entry per
// partner with the latest message.
func (s *Server) GetConversations(c *fiber.Ctx) error {
	conversations, err := s.messageService.ListConversations(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"conversations": conversations})
}

// GetMessagePartners handles GET /api/messages/partners — the users the
// caller can start a conversation with, drawn from both sides of the follow
// graph.
func (s *Server) GetMessagePartners(c *fiber.Ctx) error {
	userID := currentUserID(c)
	p := parsePagination(c, defaultMessageLimit)

	following, err := s.followRepo.ListFollowing(c.Context(), userID, p.Limit, 0)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	followers, err := s.followRepo.ListFollowers(c.Context(), userID, p.Limit, 0)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	seen := make(map[uint]struct{}, len(following)+len(followers))
	partners := make([]*models.User, 0, len(following)+len(followers))
	for _, u := range append(following, followers...) {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		partners = append(partners, u)
	}

	return c.JSON(fiber.Map{"partners": partners})
}
