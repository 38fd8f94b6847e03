package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a blog entry stored in MongoDB
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Text      string             `json:"text" bson:"text"`
	AuthorID  uint               `json:"author_id" bson:"author_id"`
	GroupID   *uint              `json:"group_id,omitempty" bson:"group_id,omitempty"`
	ImageURL  string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// PostForm carries the writable post fields for both create and edit.
// The same shape is echoed back as the form descriptor on GET and on
// validation failure.
type PostForm struct {
	Text     string `json:"text" form:"text" validate:"required,max=10000"`
	GroupID  *uint  `json:"group_id,omitempty" form:"group_id" validate:"omitempty,min=1"`
	ImageURL string `json:"image_url,omitempty" form:"image_url" validate:"omitempty,url"`
}

// FormFromPost pre-fills an edit form with the post's current values
func FormFromPost(p *Post) PostForm {
	return PostForm{Text: p.Text, GroupID: p.GroupID, ImageURL: p.ImageURL}
}

// PostView is a post enriched with its author for listing responses
type PostView struct {
	Post
	Author UserCompact `json:"author"`
}
