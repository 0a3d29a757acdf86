package repositories

import (
	"social-blog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository interface {
	Follow(followerID, followedID uint) error
	Unfollow(followerID, followedID uint) error
	IsFollowing(followerID, followedID uint) (bool, error)
	Followers(userID uint, page, perPage int) ([]models.Follow, int64, error)
	Followed(userID uint, page, perPage int) ([]models.Follow, int64, error)
	CountFollowers(userID uint) (int64, error)
	CountFollowed(userID uint) (int64, error)
	EnsureSelfFollows() (int, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(followerID, followedID uint) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
		Timestamp:  models.Now(),
	}).Error
}

func (r *followRepository) Unfollow(followerID, followedID uint) error {
	return r.db.Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{}).Error
}

func (r *followRepository) IsFollowing(followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) Followers(userID uint, page, perPage int) ([]models.Follow, int64, error) {
	return paginate[models.Follow](r.db, func(db *gorm.DB) *gorm.DB {
		return db.Where("followed_id = ?", userID)
	}, "timestamp desc", page, perPage, "Follower")
}

func (r *followRepository) Followed(userID uint, page, perPage int) ([]models.Follow, int64, error) {
	return paginate[models.Follow](r.db, func(db *gorm.DB) *gorm.DB {
		return db.Where("follower_id = ?", userID)
	}, "timestamp desc", page, perPage, "Followed")
}

func (r *followRepository) CountFollowers(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("followed_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowed(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

// EnsureSelfFollows adds the missing self-follow edges and reports how many
// were created.
func (r *followRepository) EnsureSelfFollows() (int, error) {
	var missing []uint
	err := r.db.Model(&models.User{}).
		Where("NOT EXISTS (SELECT 1 FROM follows WHERE follows.follower_id = users.id AND follows.followed_id = users.id)").
		Pluck("id", &missing).Error
	if err != nil {
		return 0, err
	}
	for _, id := range missing {
		if err := r.Follow(id, id); err != nil {
			return 0, err
		}
	}
	return len(missing), nil
}
