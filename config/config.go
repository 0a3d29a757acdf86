package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

const defaultSecretKey = "hard to guess string"

type Config struct {
	Env       string `env:"APP_ENV,default=development"`
	Port      string `env:"PORT,default=5000"`
	SecretKey string `env:"SECRET_KEY,default=hard to guess string"`

	DBDriver    string `env:"DB_DRIVER,default=sqlite"`
	DatabaseURL string `env:"DATABASE_URL,default=data-dev.sqlite"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	MailServer        string `env:"MAIL_SERVER,default=smtp.googlemail.com"`
	MailPort          int    `env:"MAIL_PORT,default=587"`
	MailUsername      string `env:"MAIL_USERNAME"`
	MailPassword      string `env:"MAIL_PASSWORD"`
	MailSubjectPrefix string `env:"MAIL_SUBJECT_PREFIX,default=[Social Blog]"`
	MailSender        string `env:"MAIL_SENDER,default=Social Blog Admin <blog@example.com>"`
	AdminEmail        string `env:"BLOG_ADMIN"`

	PostsPerPage       int           `env:"POSTS_PER_PAGE,default=20"`
	FollowersPerPage   int           `env:"FOLLOWERS_PER_PAGE,default=50"`
	CommentsPerPage    int           `env:"COMMENTS_PER_PAGE,default=30"`
	SlowQueryThreshold time.Duration `env:"SLOW_DB_QUERY_TIME,default=500ms"`
	TokenTTL           time.Duration `env:"TOKEN_TTL,default=1h"`

	LogLevel            string  `env:"LOG_LEVEL,default=info"`
	RateLimitRPS        float64 `env:"RATE_LIMIT_RPS,default=10"`
	RateLimitBurst      int     `env:"RATE_LIMIT_BURST,default=30"`
	SessionCookieSecure bool    `env:"SESSION_COOKIE_SECURE,default=false"`
}

// Load decodes the configuration from the environment. A .env file, when
// present, has already been applied by the caller.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case "development", "testing", "production":
	default:
		return fmt.Errorf("unknown APP_ENV %q", c.Env)
	}
	if c.IsProduction() && (c.SecretKey == "" || c.SecretKey == defaultSecretKey) {
		return errors.New("SECRET_KEY must be set in production")
	}
	if c.PostsPerPage < 1 || c.FollowersPerPage < 1 || c.CommentsPerPage < 1 {
		return errors.New("page sizes must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }
func (c *Config) IsTesting() bool    { return c.Env == "testing" }

// ForTesting returns a configuration backed by an in-memory sqlite database.
func ForTesting() *Config {
	return &Config{
		Env:                "testing",
		Port:               "0",
		SecretKey:          "test-secret",
		DBDriver:           "sqlite",
		DatabaseURL:        ":memory:",
		MailSubjectPrefix:  "[Social Blog]",
		MailSender:         "Social Blog Admin <blog@example.com>",
		AdminEmail:         "admin@example.com",
		PostsPerPage:       20,
		FollowersPerPage:   50,
		CommentsPerPage:    30,
		SlowQueryThreshold: 500 * time.Millisecond,
		TokenTTL:           time.Hour,
		LogLevel:           "warn",
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
	}
}
