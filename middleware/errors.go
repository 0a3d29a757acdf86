package middleware

import (
	"net/http"

	"social-blog/helper"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var HTTPHelper = helper.NewHTTPHelper()

// Recovery turns a panic into a 500 response and logs it at ERROR, which
// mails the administrator in production.
func Recovery(log *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"panic":  recovered,
		}).Error("request panicked")
		RenderError(c, http.StatusInternalServerError, "Internal server error")
		c.Abort()
	})
}

// Errors logs the errors attached to the request. Internal server errors
// are logged at ERROR, everything else at WARN.
func Errors(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		for _, e := range c.Errors {
			entry := log.WithFields(logrus.Fields{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			}).WithError(e.Err)
			if HTTPHelper.GetStatusCode(e.Err) == http.StatusInternalServerError {
				entry.Error("request failed")
			} else {
				entry.Warn("request error")
			}
		}
	}
}

func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		RenderError(c, http.StatusNotFound, "Not found")
	}
}
