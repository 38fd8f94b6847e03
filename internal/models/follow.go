package models

import "time"

// Follow is a directed subscription: UserID follows AuthorID
type Follow struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_author"`
	AuthorID  uint      `json:"author_id" gorm:"index;uniqueIndex:idx_user_author"`
	CreatedAt time.Time `json:"created_at"`
}
