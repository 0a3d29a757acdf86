package repositories

import (
	"social-blog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id uint) (*models.Post, error)
	Update(post *models.Post) error
	List(page, perPage int) ([]models.Post, int64, error)
	ListByAuthor(authorID uint, page, perPage int) ([]models.Post, int64, error)
	ListFollowed(userID uint, page, perPage int) ([]models.Post, int64, error)
	CountByAuthor(authorID uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *models.Post) error {
	return r.db.Omit(clause.Associations).Create(post).Error
}

func (r *postRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Author").First(&post, id).Error
	return &post, err
}

func (r *postRepository) Update(post *models.Post) error {
	return r.db.Model(post).Select("body", "body_html").Updates(post).Error
}

func (r *postRepository) List(page, perPage int) ([]models.Post, int64, error) {
	return paginate[models.Post](r.db, func(db *gorm.DB) *gorm.DB {
		return db
	}, "posts.timestamp desc, posts.id desc", page, perPage, "Author")
}

func (r *postRepository) ListByAuthor(authorID uint, page, perPage int) ([]models.Post, int64, error) {
	return paginate[models.Post](r.db, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author_id = ?", authorID)
	}, "posts.timestamp desc, posts.id desc", page, perPage, "Author")
}

// ListFollowed joins follow edges on the post author, so a user's own posts
// are included through the self-follow.
func (r *postRepository) ListFollowed(userID uint, page, perPage int) ([]models.Post, int64, error) {
	return paginate[models.Post](r.db, func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN follows ON follows.followed_id = posts.author_id").
			Where("follows.follower_id = ?", userID)
	}, "posts.timestamp desc, posts.id desc", page, perPage, "Author")
}

func (r *postRepository) CountByAuthor(authorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}
