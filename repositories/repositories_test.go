package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"social-blog/config"
	"social-blog/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.ForTesting()
	db, err := config.InitDB(cfg, config.NewLogger(cfg))
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, repo UserRepository, name string) *models.User {
	t.Helper()
	user := &models.User{Username: name, MemberSince: models.Now(), LastSeen: models.Now()}
	user.SetEmail(name + "@example.com")
	require.NoError(t, repo.Create(user))
	return user
}

func createPost(t *testing.T, repo PostRepository, author *models.User, body string, at time.Time) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: author.ID, Timestamp: at}
	post.SetBody(body)
	require.NoError(t, repo.Create(post))
	return post
}

func TestUserCreateAddsSelfFollow(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	follows := NewFollowRepository(db)

	john := createUser(t, users, "john")

	following, err := follows.IsFollowing(john.ID, john.ID)
	require.NoError(t, err)
	assert.True(t, following)

	count, err := follows.CountFollowers(john.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestFollowIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	follows := NewFollowRepository(db)

	john := createUser(t, users, "john")
	susan := createUser(t, users, "susan")

	require.NoError(t, follows.Follow(john.ID, susan.ID))
	require.NoError(t, follows.Follow(john.ID, susan.ID))

	count, err := follows.CountFollowed(john.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	followers, total, err := follows.Followers(susan.ID, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, followers, 2)
	assert.NotNil(t, followers[0].Follower)

	require.NoError(t, follows.Unfollow(john.ID, susan.ID))
	following, err := follows.IsFollowing(john.ID, susan.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestUserDeleteCascadesFollowsOnly(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	follows := NewFollowRepository(db)
	posts := NewPostRepository(db)

	john := createUser(t, users, "john")
	susan := createUser(t, users, "susan")
	require.NoError(t, follows.Follow(john.ID, susan.ID))
	require.NoError(t, follows.Follow(susan.ID, john.ID))
	post := createPost(t, posts, john, "hello", models.Now())

	require.NoError(t, users.Delete(john.ID))

	var edges int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id = ? OR followed_id = ?", john.ID, john.ID).Count(&edges).Error)
	assert.Zero(t, edges)

	stillFollowing, err := follows.IsFollowing(susan.ID, susan.ID)
	require.NoError(t, err)
	assert.True(t, stillFollowing)

	_, err = posts.GetByID(post.ID)
	assert.NoError(t, err)

	_, err = users.GetByID(john.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestListFollowed(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	follows := NewFollowRepository(db)
	posts := NewPostRepository(db)

	john := createUser(t, users, "john")
	susan := createUser(t, users, "susan")
	david := createUser(t, users, "david")

	base := models.Now().Add(-time.Hour)
	own := createPost(t, posts, john, "own", base)
	followed := createPost(t, posts, susan, "followed", base.Add(time.Minute))
	createPost(t, posts, david, "stranger", base.Add(2*time.Minute))
	require.NoError(t, follows.Follow(john.ID, susan.ID))

	items, total, err := posts.ListFollowed(john.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, followed.ID, items[0].ID)
	assert.Equal(t, own.ID, items[1].ID)
	assert.Equal(t, "susan", items[0].Author.Username)
}

func TestPaginateOutOfRange(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)

	john := createUser(t, users, "john")
	createPost(t, posts, john, "only", models.Now())

	items, total, err := posts.List(1, 20)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(1), total)

	for _, page := range []int{0, -3, 2, 99} {
		items, total, err = posts.List(page, 20)
		require.NoError(t, err, fmt.Sprint(page))
		assert.Empty(t, items)
		assert.NotNil(t, items)
		assert.Equal(t, int64(1), total)
	}
}

func TestCommentsOrderAndModeration(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)

	john := createUser(t, users, "john")
	post := createPost(t, posts, john, "post", models.Now())

	base := models.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		c := &models.Comment{AuthorID: john.ID, PostID: post.ID, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		c.SetBody(fmt.Sprintf("comment %d", i))
		require.NoError(t, comments.Create(c))
	}

	items, total, err := comments.ListByPost(post.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	assert.Equal(t, "comment 0", items[0].Body)

	items, _, err = comments.ListByPost(post.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "comment 2", items[0].Body)

	require.NoError(t, comments.SetDisabled(items[0].ID, true))
	got, err := comments.GetByID(items[0].ID)
	require.NoError(t, err)
	assert.True(t, got.Disabled)
	assert.Equal(t, post.ID, got.Post.ID)

	assert.ErrorIs(t, comments.SetDisabled(9999, true), gorm.ErrRecordNotFound)
}

func TestEnsureSelfFollows(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	follows := NewFollowRepository(db)

	john := createUser(t, users, "john")
	require.NoError(t, follows.Unfollow(john.ID, john.ID))

	added, err := follows.EnsureSelfFollows()
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	added, err = follows.EnsureSelfFollows()
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestRoleRepository(t *testing.T) {
	db := newTestDB(t)
	roles := NewRoleRepository(db)

	for _, def := range models.RoleTable {
		require.NoError(t, roles.Save(&models.Role{Name: def.Name, Permissions: def.Permissions, Default: def.Default}))
	}

	def, err := roles.GetDefault()
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, def.Name)

	admin, err := roles.GetByPermissions(0xff)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdministrator, admin.Name)

	all, err := roles.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSessionRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	session := &models.Session{
		ID:        "abc",
		UserID:    7,
		Flashes:   []string{"hello"},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Save(ctx, session))

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, uint(7), got.UserID)
	assert.Equal(t, []string{"hello"}, got.Flashes)

	session.Flashes = nil
	require.NoError(t, repo.Save(ctx, session))
	got, err = repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, got.Flashes)

	expired := &models.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, repo.Save(ctx, expired))
	_, err = repo.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, repo.DeleteByUser(ctx, 7))
	_, err = repo.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionRepository(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	repo := NewRedisSessionRepository(rdb)
	ctx := context.Background()

	session := &models.Session{ID: "redis-test", UserID: 3, ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, repo.Save(ctx, session))

	got, err := repo.Get(ctx, "redis-test")
	require.NoError(t, err)
	assert.Equal(t, uint(3), got.UserID)

	require.NoError(t, repo.DeleteByUser(ctx, 3))
	_, err = repo.Get(ctx, "redis-test")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUserRepositoryDatabaseFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnError(errors.New("connection reset"))

	_, err = NewUserRepository(db).GetByID(1)
	require.Error(t, err)
	assert.False(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
