package config

import (
	"fmt"
	"strings"
	"time"

	"social-blog/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the configured database. Queries slower than
// cfg.SlowQueryThreshold are reported through log at WARN.
func InitDB(cfg *Config, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   NewGormLogger(log, cfg.SlowQueryThreshold),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc:                                  models.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// every connection to ":memory:" is a fresh database
	if strings.Contains(cfg.DatabaseURL, ":memory:") || strings.Contains(cfg.DatabaseURL, "mode=memory") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Comment{},
		&models.Session{},
	)
}

type gormWriter struct {
	log *logrus.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.WithField("component", "gorm").Warnf(format, args...)
}

func NewGormLogger(log *logrus.Logger, slow time.Duration) logger.Interface {
	return logger.New(gormWriter{log: log}, logger.Config{
		SlowThreshold:             slow,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
