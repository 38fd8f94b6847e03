package models

import "time"

// Comment belongs to one post and one user. PostID is the hex form of the
// MongoDB post id.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"index;size:24"`
	AuthorID  uint      `json:"author_id" gorm:"index"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentForm defines the request body for submitting a comment
type CommentForm struct {
	Text string `json:"text" form:"text" validate:"required,max=2000"`
}

// CommentView is a comment enriched with its author
type CommentView struct {
	Comment
	Author UserCompact `json:"author"`
}
