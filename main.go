package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-blog/app"
	"social-blog/config"
	"social-blog/repositories"
	"social-blog/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const usage = `usage: social-blog [command]

commands:
  serve                         run the HTTP server (default)
  deploy                        migrate, insert roles, repair self-follows
  fake [-users N] [-posts N] [-seed S]
                                generate fake users and posts
  delete-user <username>        delete a user and its follow edges
`

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := config.NewLogger(cfg)

	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}
	if err := config.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	var sessions repositories.SessionRepository
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.WithError(err).Fatal("redis unavailable")
	}
	if rdb != nil {
		defer rdb.Close()
		sessions = repositories.NewRedisSessionRepository(rdb)
		log.WithField("addr", cfg.RedisAddr).Info("sessions stored in redis")
	}

	var sender services.Sender
	if cfg.MailUsername != "" {
		sender = services.NewSMTPSender(cfg.MailServer, cfg.MailPort, cfg.MailUsername, cfg.MailPassword)
	} else {
		sender = services.NewLogSender(log)
	}

	application := app.New(cfg, log, db, sessions, sender)
	if cfg.IsProduction() && cfg.AdminEmail != "" {
		log.AddHook(services.NewAdminMailHook(application.Mail, cfg.AdminEmail))
	}

	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve":
		serve(application)
	case "deploy":
		if err := application.Deploy(); err != nil {
			log.WithError(err).Fatal("deploy failed")
		}
		log.Info("deploy complete")
	case "fake":
		fake(application, args)
	case "delete-user":
		if len(args) != 1 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		if err := application.Users.Delete(context.Background(), args[0]); err != nil {
			log.WithError(err).WithField("username", args[0]).Fatal("delete user failed")
		}
		log.WithField("username", args[0]).Info("user deleted")
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func fake(application *app.App, args []string) {
	fs := flag.NewFlagSet("fake", flag.ExitOnError)
	users := fs.Int("users", 100, "number of fake users")
	posts := fs.Int("posts", 100, "number of fake posts")
	seed := fs.Int64("seed", time.Now().UnixNano(), "random seed")
	_ = fs.Parse(args)

	if err := application.Roles.InsertRoles(); err != nil {
		application.Log.WithError(err).Fatal("insert roles failed")
	}
	generator := application.Fake(*seed)
	createdUsers, err := generator.Users(*users)
	if err != nil {
		application.Log.WithError(err).Fatal("fake users failed")
	}
	createdPosts, err := generator.Posts(*posts)
	if err != nil {
		application.Log.WithError(err).Fatal("fake posts failed")
	}
	application.Log.WithFields(logrus.Fields{
		"users": createdUsers,
		"posts": createdPosts,
	}).Info("fake data generated")
}

func serve(application *app.App) {
	cfg := application.Config
	log := application.Log
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	application.Limiter.StartCleanup(10*time.Minute, ctx.Done())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           application.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
	log.Info("Server stopped")
}
