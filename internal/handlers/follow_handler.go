package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
	}
}

// RegisterFollowRoutes registers follow-related routes on an
// authenticated group. Both verbs are accepted for browser clients.
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.GET("/profile/:username/follow/", h.Follow)
	g.POST("/profile/:username/follow/", h.Follow)
	g.GET("/profile/:username/unfollow/", h.Unfollow)
	g.POST("/profile/:username/unfollow/", h.Unfollow)
}

// Follow subscribes the acting user to an author's posts. Self-follow is
// a no-op and repeated calls never create a second record.
func (h *FollowHandler) Follow(c echo.Context) error {
	userID := getUserIDFromContext(c)
	username := c.Param("username")

	author, err := h.userRepository.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if author.ID == userID {
		return c.Redirect(http.StatusFound, profilePath(username))
	}

	isFollowing, err := h.followRepository.IsFollowing(userID, author.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !isFollowing {
		follow := &models.Follow{UserID: userID, AuthorID: author.ID}
		if err := h.followRepository.CreateFollow(follow); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Redirect(http.StatusFound, profilePath(username))
}

// Unfollow removes any follow record for the pair. Unfollowing someone
// never followed is a no-op.
func (h *FollowHandler) Unfollow(c echo.Context) error {
	userID := getUserIDFromContext(c)
	username := c.Param("username")

	author, err := h.userRepository.GetUserByUsername(username)
	if err == nil {
		if err := h.followRepository.DeleteFollow(userID, author.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.Redirect(http.StatusFound, profilePath(username))
}
