package server

import (
	"errors"

	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const defaultUserListLimit = 50

// GetProfile handles GET /api/users/:username
func (s *Server) GetProfile(c *fiber.Ctx) error {
	profile, err := s.userService.GetProfile(c.Context(), c.Params("username"), viewerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// GetMyProfile handles GET /api/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondServiceError(c, models.NewNotFoundError("User", currentUserID(c)))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	profile, err := s.userService.GetProfile(c.Context(), user.Username, user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/me. Absent fields are left untouched.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		DisplayName    *string `json:"display_name"`
		Bio            *string `json:"bio"`
		Location       *string `json:"location"`
		Website        *string `json:"website"`
		TelNumber      *string `json:"tel_number"`
		IconImageURL   *string `json:"icon_image_url"`
		HeaderImageURL *string `json:"header_image_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondServiceError(c, errInvalidBody)
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:         currentUserID(c),
		DisplayName:    req.DisplayName,
		Bio:            req.Bio,
		Location:       req.Location,
		Website:        req.Website,
		TelNumber:      req.TelNumber,
		IconImageURL:   req.IconImageURL,
		HeaderImageURL: req.HeaderImageURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// SearchUsers handles GET /api/users/search?q=
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	p := parsePagination(c, defaultUserListLimit)
	users, err := s.userService.SearchUsers(c.Context(), c.Query("q"), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetFollowers handles GET /api/users/:username/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	user, err := s.resolveUsername(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	p := parsePagination(c, defaultUserListLimit)
	users, err := s.followService.ListFollowers(c.Context(), user.ID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetFollowing handles GET /api/users/:username/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	user, err := s.resolveUsername(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	p := parsePagination(c, defaultUserListLimit)
	users, err := s.followService.ListFollowing(c.Context(), user.ID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

func (s *Server) resolveUsername(c *fiber.Ctx) (*models.User, error) {
	username := c.Params("username")
	user, err := s.userRepo.GetByUsername(c.Context(), username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, err
	}
	return user, nil
}
