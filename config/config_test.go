package config

import (
	"testing"
	"time"

	"social-blog/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("POSTS_PER_PAGE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.PostsPerPage)
	assert.Equal(t, 50, cfg.FollowersPerPage)
	assert.Equal(t, 30, cfg.CommentsPerPage)
	assert.Equal(t, 500*time.Millisecond, cfg.SlowQueryThreshold)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "[Social Blog]", cfg.MailSubjectPrefix)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("POSTS_PER_PAGE", "5")
	t.Setenv("SLOW_DB_QUERY_TIME", "2s")
	t.Setenv("BLOG_ADMIN", "root@example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.PostsPerPage)
	assert.Equal(t, 2*time.Second, cfg.SlowQueryThreshold)
	assert.Equal(t, "root@example.com", cfg.AdminEmail)
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SECRET_KEY", "s3cr3t")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoadRejectsUnknownEnv(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	_, err := Load()
	assert.Error(t, err)
}

func TestInitDBInMemory(t *testing.T) {
	cfg := ForTesting()
	log := NewLogger(cfg)

	db, err := InitDB(cfg, log)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&models.Role{Name: models.RoleUser, Default: true, Permissions: 0x07}).Error)
	var count int64
	require.NoError(t, db.Model(&models.Role{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInitDBUnknownDriver(t *testing.T) {
	cfg := ForTesting()
	cfg.DBDriver = "oracle"
	_, err := InitDB(cfg, NewLogger(cfg))
	assert.Error(t, err)
}

func TestNewLoggerFormatter(t *testing.T) {
	cfg := ForTesting()
	log := NewLogger(cfg)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	cfg.Env = "production"
	cfg.LogLevel = "bogus"
	log = NewLogger(cfg)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestNewRedisClientDisabled(t *testing.T) {
	rdb, err := NewRedisClient(ForTesting())
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}
