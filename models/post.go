package models

import (
	"time"

	"social-blog/markup"

	"gorm.io/gorm"
)

type Post struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Body      string    `json:"body" gorm:"type:text"`
	BodyHTML  string    `json:"body_html" gorm:"type:text"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
	AuthorID  uint      `json:"author_id" gorm:"index"`
	Author    *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

// SetBody stores body and re-renders BodyHTML from it.
func (p *Post) SetBody(body string) {
	p.Body = body
	p.BodyHTML = markup.RenderPost(body)
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.Timestamp.IsZero() {
		p.Timestamp = Now()
	}
	return nil
}
