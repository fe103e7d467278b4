package server

import (
	"context"

	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

// toggleEngagement runs one of the engagement toggles and renders the
// resulting state.
func (s *Server) toggleEngagement(
	c *fiber.Ctx,
	toggle func(ctx context.Context, actorID, tweetID uint) (*service.ToggleResult, error),
) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := toggle(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// ToggleLike handles POST /api/tweets/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	return s.toggleEngagement(c, s.engagementService.ToggleLike)
}

// ToggleRetweet handles POST /api/tweets/:id/retweet
func (s *Server) ToggleRetweet(c *fiber.Ctx) error {
	return s.toggleEngagement(c, s.engagementService.ToggleRetweet)
}

// ToggleBookmark handles POST /api/tweets/:id/bookmark
func (s *Server) ToggleBookmark(c *fiber.Ctx) error {
	return s.toggleEngagement(c, s.engagementService.ToggleBookmark)
}

// ToggleFollow handles POST /api/follows/:userId
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	result, err := s.followService.ToggleFollow(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}
