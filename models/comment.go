package models

import (
	"time"

	"social-blog/markup"

	"gorm.io/gorm"
)

type Comment struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Body      string    `json:"body" gorm:"type:text"`
	BodyHTML  string    `json:"body_html" gorm:"type:text"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
	Disabled  bool      `json:"disabled" gorm:"default:false"`
	AuthorID  uint      `json:"author_id" gorm:"index"`
	Author    *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	PostID    uint      `json:"post_id" gorm:"index"`
	Post      *Post     `json:"post,omitempty" gorm:"foreignKey:PostID"`
}

// SetBody stores body and re-renders BodyHTML with the comment allow-list.
func (c *Comment) SetBody(body string) {
	c.Body = body
	c.BodyHTML = markup.RenderComment(body)
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = Now()
	}
	return nil
}
