package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"social-blog/models"
	"social-blog/services"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// LoadPrincipal resolves the session's user. Requests without a live
// session, or whose user no longer exists, get models.AnonymousUser.
func LoadPrincipal(users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var principal models.Principal = models.AnonymousUser{}
		if session := CurrentSession(c); session != nil && session.UserID() != 0 {
			if user, err := users.GetByID(session.UserID()); err == nil {
				principal = user
			}
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// CurrentPrincipal never returns nil.
func CurrentPrincipal(c *gin.Context) models.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(models.Principal); ok && p != nil {
			return p
		}
	}
	return models.AnonymousUser{}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	user, _ := CurrentPrincipal(c).(*models.User)
	return user
}

func SetPrincipal(c *gin.Context, principal models.Principal) {
	c.Set(principalKey, principal)
}

// Ping records the time of the authenticated user's latest request.
func Ping(users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := CurrentUser(c); user != nil {
			if err := users.Ping(user); err != nil {
				_ = c.Error(err)
			}
		}
		c.Next()
	}
}

// RequireConfirmed sends authenticated but unconfirmed users to the
// unconfirmed page, except on auth and static routes.
func RequireConfirmed() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		path := c.Request.URL.Path
		if user != nil && !user.Confirmed &&
			!strings.HasPrefix(path, "/auth/") && !strings.HasPrefix(path, "/static/") {
			c.Redirect(http.StatusFound, "/auth/unconfirmed")
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentPrincipal(c).IsAnonymous() {
			c.Redirect(http.StatusFound, "/auth/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequirePermission(flag models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentPrincipal(c).Can(flag) {
			RenderError(c, http.StatusForbidden, "Forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return RequirePermission(models.PermissionAdminister)
}
