package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:30"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserCompact is the author payload embedded in listing and detail views
type UserCompact struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// ToCompact strips a user down to what listings embed
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username}
}

// SignupRequest defines the request body for local account registration
type SignupRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=30,alphanum"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
}

// LoginRequest defines the request body for local authentication
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
