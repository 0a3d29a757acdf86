package app

import (
	"net/http"

	"social-blog/handlers"
	"social-blog/middleware"
	"social-blog/models"
	"social-blog/templates"

	"github.com/gin-gonic/gin"
)

// Router builds the HTTP routes of both surfaces.
func (a *App) Router() *gin.Engine {
	authHandler := handlers.NewAuthHandler(a.Auth, a.Users, a.Mail, a.Helper)
	mainHandler := handlers.NewMainHandler(a.Users, a.Posts, a.Comments, a.Roles, a.pageSizes(), a.Helper)
	apiHandler := handlers.NewAPIHandler(a.Auth, a.Users, a.Posts, a.Comments, a.pageSizes(), a.Config.TokenTTL, a.Helper)

	router := gin.New()
	router.SetHTMLTemplate(templates.Pages())
	router.Use(
		middleware.Logger(a.Log),
		middleware.Errors(a.Log),
		middleware.Recovery(a.Log),
		a.Metrics.Handler(),
	)
	router.NoRoute(
		middleware.ForPrefix(handlers.APIPrefix, middleware.APIAuth(a.Auth)),
		middleware.NotFound(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", a.Metrics.Expose())

	login := middleware.RequireLogin()

	web := router.Group("/")
	web.Use(
		middleware.Sessions(a.Sessions, a.Config.SessionCookieSecure),
		middleware.LoadPrincipal(a.Users),
		middleware.Ping(a.Users),
		middleware.RequireConfirmed(),
	)
	{
		auth := web.Group("/auth")
		{
			auth.GET("/login", authHandler.Login)
			auth.POST("/login", a.Limiter.Handler(), authHandler.Login)
			auth.GET("/logout", login, authHandler.Logout)
			auth.POST("/logout", login, authHandler.Logout)
			auth.GET("/register", authHandler.Register)
			auth.POST("/register", authHandler.Register)
			auth.GET("/confirm/:token", login, authHandler.Confirm)
			auth.GET("/confirm", login, authHandler.ResendConfirmation)
			auth.GET("/unconfirmed", authHandler.Unconfirmed)
			auth.GET("/change-password", login, authHandler.ChangePassword)
			auth.POST("/change-password", login, authHandler.ChangePassword)
			auth.GET("/reset", authHandler.PasswordResetRequest)
			auth.POST("/reset", authHandler.PasswordResetRequest)
			auth.GET("/reset/:token", authHandler.PasswordReset)
			auth.POST("/reset/:token", authHandler.PasswordReset)
			auth.GET("/change-email", login, authHandler.ChangeEmailRequest)
			auth.POST("/change-email", login, authHandler.ChangeEmailRequest)
			auth.GET("/change-email/:token", login, authHandler.ChangeEmail)
		}

		follow := middleware.RequirePermission(models.PermissionFollow)
		moderate := middleware.RequirePermission(models.PermissionModerateComments)

		web.GET("/", mainHandler.Index)
		web.POST("/", mainHandler.Index)
		web.GET("/all", login, mainHandler.ShowAll)
		web.GET("/followed", login, mainHandler.ShowFollowed)
		web.GET("/user/:username", mainHandler.User)
		web.GET("/edit-profile", login, mainHandler.EditProfile)
		web.POST("/edit-profile", login, mainHandler.EditProfile)
		web.GET("/edit-profile/:id", login, middleware.RequireAdmin(), mainHandler.EditProfileAdmin)
		web.POST("/edit-profile/:id", login, middleware.RequireAdmin(), mainHandler.EditProfileAdmin)
		web.GET("/post/:id", mainHandler.Post)
		web.POST("/post/:id", mainHandler.Post)
		web.GET("/edit/:id", login, mainHandler.Edit)
		web.POST("/edit/:id", login, mainHandler.Edit)
		web.GET("/follow/:username", login, follow, mainHandler.Follow)
		web.GET("/unfollow/:username", login, follow, mainHandler.Unfollow)
		web.GET("/followers/:username", mainHandler.Followers)
		web.GET("/followed_by/:username", mainHandler.FollowedBy)
		web.GET("/moderate", login, moderate, mainHandler.Moderate)
		web.GET("/moderate/enable/:id", login, moderate, mainHandler.ModerateEnable)
		web.GET("/moderate/disable/:id", login, moderate, mainHandler.ModerateDisable)
	}

	api := router.Group(handlers.APIPrefix)
	api.Use(a.Limiter.Handler(), middleware.APIAuth(a.Auth))
	{
		write := middleware.APIRequirePermission(models.PermissionWriteArticles)
		comment := middleware.APIRequirePermission(models.PermissionComment)

		api.GET("/token", apiHandler.GetToken)

		api.GET("/users/:id", apiHandler.GetUser)
		api.GET("/users/:id/posts/", apiHandler.GetUserPosts)
		api.GET("/users/:id/timeline/", apiHandler.GetUserTimeline)

		api.GET("/posts/", apiHandler.GetPosts)
		api.POST("/posts/", write, apiHandler.NewPost)
		api.GET("/posts/:id", apiHandler.GetPost)
		api.PUT("/posts/:id", write, apiHandler.EditPost)
		api.GET("/posts/:id/comments/", apiHandler.GetPostComments)
		api.POST("/posts/:id/comments/", comment, apiHandler.NewPostComment)

		api.GET("/comments/", apiHandler.GetComments)
		api.GET("/comments/:id", apiHandler.GetComment)
	}

	return router
}
