package middleware

import (
	"errors"
	"net/http"
	"time"

	"social-blog/models"
	"social-blog/repositories"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie = "session"

	sessionContextKey = "web_session"
	sessionTTL        = 24 * time.Hour
	rememberTTL       = 30 * 24 * time.Hour
)

// WebSession is the server-side session of a browser. Anonymous sessions are
// only stored once something is written to them.
type WebSession struct {
	repo   repositories.SessionRepository
	c      *gin.Context
	secure bool
	record *models.Session
}

func (s *WebSession) UserID() uint {
	if s.record == nil {
		return 0
	}
	return s.record.UserID
}

// Login binds the session to userID under a fresh id. Pending flashes are
// carried over.
func (s *WebSession) Login(userID uint, remember bool) error {
	var flashes []string
	if s.record != nil {
		flashes = s.record.Flashes
		if err := s.repo.Delete(s.c.Request.Context(), s.record.ID); err != nil {
			return err
		}
	}
	s.record = s.newRecord(userID, remember)
	s.record.Flashes = flashes
	return s.save()
}

// Logout deletes the stored session and expires the cookie.
func (s *WebSession) Logout() error {
	if s.record != nil {
		if err := s.repo.Delete(s.c.Request.Context(), s.record.ID); err != nil {
			return err
		}
		s.record = nil
	}
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(SessionCookie, "", -1, "/", "", s.secure, true)
	return nil
}

// Flash queues a message for the next rendered page.
func (s *WebSession) Flash(message string) error {
	if s.record == nil {
		s.record = s.newRecord(0, false)
	}
	s.record.Flashes = append(s.record.Flashes, message)
	return s.save()
}

func (s *WebSession) PopFlashes() []string {
	if s.record == nil || len(s.record.Flashes) == 0 {
		return nil
	}
	flashes := s.record.Flashes
	s.record.Flashes = nil
	if err := s.save(); err != nil {
		_ = s.c.Error(err)
	}
	return flashes
}

func (s *WebSession) newRecord(userID uint, remember bool) *models.Session {
	ttl := sessionTTL
	if remember {
		ttl = rememberTTL
	}
	return &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Remember:  remember,
		ExpiresAt: models.Now().Add(ttl),
	}
}

func (s *WebSession) save() error {
	if err := s.repo.Save(s.c.Request.Context(), s.record); err != nil {
		return err
	}
	maxAge := 0
	if s.record.Remember {
		maxAge = int(rememberTTL.Seconds())
	}
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(SessionCookie, s.record.ID, maxAge, "/", "", s.secure, true)
	return nil
}

// Sessions attaches the browser's WebSession to the request.
func Sessions(repo repositories.SessionRepository, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := &WebSession{repo: repo, c: c, secure: secure}
		if id, err := c.Cookie(SessionCookie); err == nil && id != "" {
			record, err := repo.Get(c.Request.Context(), id)
			switch {
			case err == nil:
				session.record = record
			case !errors.Is(err, repositories.ErrSessionNotFound):
				_ = c.Error(err)
			}
		}
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// CurrentSession returns the request's WebSession, or nil outside the web
// surface.
func CurrentSession(c *gin.Context) *WebSession {
	if v, ok := c.Get(sessionContextKey); ok {
		return v.(*WebSession)
	}
	return nil
}
