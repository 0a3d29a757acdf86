package middleware

import (
	"net/http"
	"strings"

	"social-blog/models"
	"social-blog/services"

	"github.com/gin-gonic/gin"
)

const tokenUsedKey = "token_used"

// APIAuth authenticates API requests with HTTP Basic credentials. A blank
// password means the username field carries an API token.
func APIAuth(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, _ := c.Request.BasicAuth()
		if username == "" {
			HTTPHelper.SendUnauthorizedError(c, "Invalid credentials")
			c.Abort()
			return
		}

		var (
			user *models.User
			err  error
		)
		if password == "" {
			user, err = auth.AuthenticateToken(username)
			c.Set(tokenUsedKey, true)
		} else {
			user, err = auth.Login(username, password)
			c.Set(tokenUsedKey, false)
		}
		if err != nil {
			if HTTPHelper.GetStatusCode(err) == http.StatusInternalServerError {
				HTTPHelper.SendServiceError(c, err)
			} else {
				HTTPHelper.SendUnauthorizedError(c, "Invalid credentials")
			}
			c.Abort()
			return
		}

		if !user.Confirmed {
			HTTPHelper.SendForbiddenError(c, "Unconfirmed account")
			c.Abort()
			return
		}

		SetPrincipal(c, user)
		c.Next()
	}
}

// TokenUsed reports whether the request authenticated with an API token.
func TokenUsed(c *gin.Context) bool {
	return c.GetBool(tokenUsedKey)
}

func APIRequirePermission(flag models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentPrincipal(c).Can(flag) {
			HTTPHelper.SendForbiddenError(c, "Insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// ForPrefix runs h only for requests whose path is prefix or lies under it.
// Other requests pass through untouched.
func ForPrefix(prefix string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			h(c)
		}
	}
}
