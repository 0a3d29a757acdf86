package repositories

import (
	"social-blog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id uint) (*models.Comment, error)
	SetDisabled(id uint, disabled bool) error
	List(page, perPage int) ([]models.Comment, int64, error)
	ListByPost(postID uint, page, perPage int) ([]models.Comment, int64, error)
	CountByPost(postID uint) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(comment *models.Comment) error {
	return r.db.Omit(clause.Associations).Create(comment).Error
}

func (r *commentRepository) GetByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Preload("Author").Preload("Post").First(&comment, id).Error
	return &comment, err
}

func (r *commentRepository) SetDisabled(id uint, disabled bool) error {
	result := r.db.Model(&models.Comment{}).Where("id = ?", id).UpdateColumn("disabled", disabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *commentRepository) List(page, perPage int) ([]models.Comment, int64, error) {
	return paginate[models.Comment](r.db, func(db *gorm.DB) *gorm.DB {
		return db
	}, "comments.timestamp desc, comments.id desc", page, perPage, "Author", "Post")
}

func (r *commentRepository) ListByPost(postID uint, page, perPage int) ([]models.Comment, int64, error) {
	return paginate[models.Comment](r.db, func(db *gorm.DB) *gorm.DB {
		return db.Where("comments.post_id = ?", postID)
	}, "comments.timestamp asc, comments.id asc", page, perPage, "Author")
}

func (r *commentRepository) CountByPost(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
