package models

// Group is a topic board posts may optionally belong to
type Group struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:100"`
	Description string `json:"description"`
}

// CreateGroupRequest defines the request body for creating a new group
type CreateGroupRequest struct {
	Title       string `json:"title" form:"title" validate:"required,min=1,max=200"`
	Slug        string `json:"slug" form:"slug" validate:"required,max=100,lowercase,excludesall=0x20"`
	Description string `json:"description" form:"description" validate:"max=2000"`
}
