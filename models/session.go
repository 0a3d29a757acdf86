package models

import "time"

// Session backs the web surface's cookie. UserID is zero for anonymous visitors.
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Remember  bool      `json:"remember"`
	Flashes   []string  `json:"flashes" gorm:"serializer:json;type:text"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type Email struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
}
