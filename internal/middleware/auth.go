package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// ContextUserKey is where the authenticated claims live on the echo context
const ContextUserKey = "user"

// LoginPath is where anonymous callers of protected routes are sent
const LoginPath = "/auth/login"

// TokenCookieName carries the JWT for browser clients
const TokenCookieName = "token"

// JWTSecret returns the signing secret shared with the auth handler
func JWTSecret() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return "supersecretjwtkey"
}

var errNoToken = errors.New("no token presented")

// parseClaims extracts and verifies the JWT from the Authorization header
// or the token cookie.
func parseClaims(c echo.Context) (*models.JwtCustomClaims, error) {
	tokenString := ""
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return nil, errors.New("invalid Authorization header format")
		}
		tokenString = parts[1]
	} else if cookie, err := c.Cookie(TokenCookieName); err == nil {
		tokenString = cookie.Value
	}
	if tokenString == "" {
		return nil, errNoToken
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(JWTSecret()), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// RequireAuth redirects anonymous or invalid-token callers to the login
// flow, preserving the original target in the next parameter.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parseClaims(c)
			if err != nil {
				target := LoginPath + "?next=" + url.QueryEscape(c.Request().RequestURI)
				return c.Redirect(http.StatusFound, target)
			}
			c.Set(ContextUserKey, claims)
			return next(c)
		}
	}
}

// OptionalAuth populates the viewer identity when a valid token is
// presented and lets anonymous requests through untouched.
func OptionalAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, err := parseClaims(c); err == nil {
				c.Set(ContextUserKey, claims)
			}
			return next(c)
		}
	}
}
