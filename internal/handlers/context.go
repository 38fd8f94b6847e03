package handlers

import (
	"github.com/anonto42/microblog/backend/internal/middleware"
	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// currentUser returns the authenticated claims, or nil for anonymous callers
func currentUser(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(middleware.ContextUserKey).(*models.JwtCustomClaims)
	return claims
}

// getUserIDFromContext returns the acting user's ID, 0 when anonymous
func getUserIDFromContext(c echo.Context) uint {
	if claims := currentUser(c); claims != nil {
		return claims.UserID
	}
	return 0
}

func postDetailPath(postID string) string {
	return "/posts/" + postID + "/"
}

func profilePath(username string) string {
	return "/profile/" + username + "/"
}
