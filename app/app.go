// Package app wires configuration, storage and services into the HTTP
// application.
package app

import (
	"time"

	"social-blog/config"
	"social-blog/handlers"
	"social-blog/helper"
	"social-blog/middleware"
	"social-blog/repositories"
	"social-blog/services"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App is built once at startup and shared by every request.
type App struct {
	Config *config.Config
	Log    *logrus.Logger
	DB     *gorm.DB

	Sessions repositories.SessionRepository

	Tokens   services.TokenService
	Mail     services.MailService
	Roles    services.RoleService
	Users    services.UserService
	Auth     services.AuthService
	Posts    services.PostService
	Comments services.CommentService

	Helper  *helper.HTTPHelper
	Metrics *middleware.Metrics
	Limiter *middleware.RateLimiter
}

// New builds the application. sessions may be nil, in which case sessions
// are kept in the database.
func New(cfg *config.Config, log *logrus.Logger, db *gorm.DB, sessions repositories.SessionRepository, sender services.Sender) *App {
	if sessions == nil {
		sessions = repositories.NewSessionRepository(db)
	}

	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	followRepo := repositories.NewFollowRepository(db)
	postRepo := repositories.NewPostRepository(db)
	commentRepo := repositories.NewCommentRepository(db)

	tokens := services.NewTokenService(cfg.SecretKey, time.Now)
	users := services.NewUserService(userRepo, roleRepo, followRepo, postRepo, sessions, cfg.AdminEmail)

	return &App{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Sessions: sessions,
		Tokens:   tokens,
		Mail:     services.NewMailService(sender, cfg.MailSubjectPrefix, cfg.MailSender, log),
		Roles:    services.NewRoleService(roleRepo),
		Users:    users,
		Auth:     services.NewAuthService(users, tokens),
		Posts:    services.NewPostService(postRepo, commentRepo),
		Comments: services.NewCommentService(commentRepo),
		Helper:   middleware.HTTPHelper,
		Metrics:  middleware.NewMetrics(),
		Limiter:  middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log),
	}
}

// Fake returns a fake-data generator seeded with seed.
func (a *App) Fake(seed int64) services.FakeService {
	return services.NewFakeService(
		a.Users,
		repositories.NewUserRepository(a.DB),
		repositories.NewPostRepository(a.DB),
		seed,
		a.Log,
	)
}

// Deploy migrates the schema, seeds the roles and repairs missing
// self-follows.
func (a *App) Deploy() error {
	if err := config.Migrate(a.DB); err != nil {
		return err
	}
	if err := a.Roles.InsertRoles(); err != nil {
		return err
	}
	n, err := a.Users.EnsureSelfFollows()
	if err != nil {
		return err
	}
	a.Log.WithField("added", n).Info("self follows checked")
	return nil
}

func (a *App) pageSizes() handlers.PageSizes {
	return handlers.PageSizes{
		Posts:     a.Config.PostsPerPage,
		Followers: a.Config.FollowersPerPage,
		Comments:  a.Config.CommentsPerPage,
	}
}
