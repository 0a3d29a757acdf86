package middleware

import (
	"net/http"

	"social-blog/helper"
	"social-blog/models"

	"github.com/gin-gonic/gin"
)

// Render executes the named page template. The current user, its
// permissions and pending flashes are added to data.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	principal := CurrentPrincipal(c)
	if user := CurrentUser(c); user != nil {
		data["current_user"] = user
	}
	data["can_write"] = principal.Can(models.PermissionWriteArticles)
	data["can_comment"] = principal.Can(models.PermissionComment)
	data["can_follow"] = principal.Can(models.PermissionFollow)
	data["can_moderate"] = principal.Can(models.PermissionModerateComments)
	data["is_admin"] = principal.IsAdministrator()
	if session := CurrentSession(c); session != nil {
		data["flashes"] = session.PopFlashes()
	}
	c.HTML(status, name, data)
}

// Flash queues message on the request's session, if any.
func Flash(c *gin.Context, message string) {
	if session := CurrentSession(c); session != nil {
		if err := session.Flash(message); err != nil {
			_ = c.Error(err)
		}
	}
}

// RenderError answers with a JSON error body when the client prefers JSON
// and the error page otherwise.
func RenderError(c *gin.Context, status int, message string) {
	if helper.WantsJSON(c) {
		HTTPHelper.SendError(c, status, message)
		return
	}
	if message == "" {
		message = http.StatusText(status)
	}
	Render(c, status, "error.html", gin.H{"title": http.StatusText(status), "message": message})
}
