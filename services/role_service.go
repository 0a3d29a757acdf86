package services

import (
	"errors"

	"social-blog/models"
	"social-blog/repositories"

	"gorm.io/gorm"
)

type RoleService interface {
	InsertRoles() error
	GetAll() ([]models.Role, error)
	GetByID(id uint) (*models.Role, error)
}

type roleService struct {
	roleRepo repositories.RoleRepository
}

func NewRoleService(roleRepo repositories.RoleRepository) RoleService {
	return &roleService{roleRepo: roleRepo}
}

// InsertRoles creates or refreshes every role of models.RoleTable.
func (s *roleService) InsertRoles() error {
	for _, def := range models.RoleTable {
		role, err := s.roleRepo.GetByName(def.Name)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = &models.Role{Name: def.Name}
		} else if err != nil {
			return internal("load role", err)
		}
		role.Permissions = def.Permissions
		role.Default = def.Default
		if err := s.roleRepo.Save(role); err != nil {
			return internal("save role", err)
		}
	}
	return nil
}

func (s *roleService) GetAll() ([]models.Role, error) {
	roles, err := s.roleRepo.GetAll()
	return roles, internal("list roles", err)
}

func (s *roleService) GetByID(id uint) (*models.Role, error) {
	role, err := s.roleRepo.GetByID(id)
	if err != nil {
		return nil, translate(err, "role")
	}
	return role, nil
}
