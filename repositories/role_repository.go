package repositories

import (
	"social-blog/models"

	"gorm.io/gorm"
)

type RoleRepository interface {
	GetByID(id uint) (*models.Role, error)
	GetByName(name string) (*models.Role, error)
	GetDefault() (*models.Role, error)
	GetByPermissions(perms models.Permission) (*models.Role, error)
	GetAll() ([]models.Role, error)
	Save(role *models.Role) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) GetByID(id uint) (*models.Role, error) {
	var role models.Role
	err := r.db.First(&role, id).Error
	return &role, err
}

func (r *roleRepository) GetByName(name string) (*models.Role, error) {
	var role models.Role
	err := r.db.Where("name = ?", name).First(&role).Error
	return &role, err
}

func (r *roleRepository) GetDefault() (*models.Role, error) {
	var role models.Role
	err := r.db.Where(&models.Role{Default: true}).First(&role).Error
	return &role, err
}

func (r *roleRepository) GetByPermissions(perms models.Permission) (*models.Role, error) {
	var role models.Role
	err := r.db.Where("permissions = ?", perms).First(&role).Error
	return &role, err
}

func (r *roleRepository) GetAll() ([]models.Role, error) {
	var roles []models.Role
	err := r.db.Order("permissions asc").Find(&roles).Error
	return roles, err
}

func (r *roleRepository) Save(role *models.Role) error {
	return r.db.Save(role).Error
}
