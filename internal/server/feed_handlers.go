package server

import (
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetTimeline handles GET /api/tweets?page=N — the global feed.
func (s *Server) GetTimeline(c *fiber.Ctx) error {
	page, err := s.feedService.GetFeed(c.Context(), service.GetFeedInput{
		Mode:     service.FeedTimeline,
		Page:     parsePage(c),
		ViewerID: viewerID(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetFollowingFeed handles GET /api/feed/following?page=N.
func (s *Server) GetFollowingFeed(c *fiber.Ctx) error {
	page, err := s.feedService.GetFeed(c.Context(), service.GetFeedInput{
		Mode:     service.FeedFollowing,
		Page:     parsePage(c),
		ViewerID: currentUserID(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetBookmarks handles GET /api/feed/bookmarks?page=N.
func (s *Server) GetBookmarks(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page, err := s.feedService.GetFeed(c.Context(), service.GetFeedInput{
		Mode:         service.FeedBookmarked,
		Page:         parsePage(c),
		ViewerID:     userID,
		TargetUserID: userID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// SearchTweets handles GET /api/tweets/search?q=...&page=N.
func (s *Server) SearchTweets(c *fiber.Ctx) error {
	query := c.Query("q")
	page, err := s.feedService.Search(c.Context(), query, parsePage(c), viewerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// userFeed resolves a username to an ID and serves one of the profile-scoped
// feed modes for it.
func (s *Server) userFeed(c *fiber.Ctx, mode service.FeedMode) error {
	user, err := s.resolveUsername(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	page, err := s.feedService.GetFeed(c.Context(), service.GetFeedInput{
		Mode:         mode,
		Page:         parsePage(c),
		ViewerID:     viewerID(c),
		TargetUserID: user.ID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetUserTweets handles GET /api/users/:username/tweets?page=N.
func (s *Server) GetUserTweets(c *fiber.Ctx) error {
	return s.userFeed(c, service.FeedAuthor)
}

// GetUserLikedFeed handles GET /api/users/:username/likes?page=N.
func (s *Server) GetUserLikedFeed(c *fiber.Ctx) error {
	return s.userFeed(c, service.FeedLiked)
}

// GetUserRetweetedFeed handles GET /api/users/:username/retweets?page=N.
func (s *Server) GetUserRetweetedFeed(c *fiber.Ctx) error {
	return s.userFeed(c, service.FeedRetweeted)
}

// GetUserCommentedFeed handles GET /api/users/:username/comments?page=N.
func (s *Server) GetUserCommentedFeed(c *fiber.Ctx) error {
	return s.userFeed(c, service.FeedCommented)
}
