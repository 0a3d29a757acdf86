package services

import (
	"context"
	"errors"
	"strings"

	"social-blog/models"
	"social-blog/repositories"

	"gorm.io/gorm"
)

// UserStats are the counters shown on a profile page. Follower counts
// exclude the self-follow edge.
type UserStats struct {
	Posts     int64
	Followers int64
	Followed  int64
}

type UserService interface {
	Create(user *models.User, password string) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	EmailTaken(email string) (bool, error)
	UsernameTaken(username string) (bool, error)
	Save(user *models.User) error
	Ping(user *models.User) error
	UpdateProfile(user *models.User, form models.EditProfileForm) error
	AdminUpdateProfile(user *models.User, form models.EditProfileAdminForm) error
	Follow(user, target *models.User) error
	Unfollow(user, target *models.User) error
	IsFollowing(user, target *models.User) (bool, error)
	Followers(user *models.User, page, perPage int) ([]models.Follow, int64, error)
	Followed(user *models.User, page, perPage int) ([]models.Follow, int64, error)
	Stats(user *models.User) (UserStats, error)
	EnsureSelfFollows() (int, error)
	Delete(ctx context.Context, username string) error
}

type userService struct {
	userRepo   repositories.UserRepository
	roleRepo   repositories.RoleRepository
	followRepo repositories.FollowRepository
	postRepo   repositories.PostRepository
	sessions   repositories.SessionRepository
	adminEmail string
}

func NewUserService(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	followRepo repositories.FollowRepository,
	postRepo repositories.PostRepository,
	sessions repositories.SessionRepository,
	adminEmail string,
) UserService {
	return &userService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		followRepo: followRepo,
		postRepo:   postRepo,
		sessions:   sessions,
		adminEmail: adminEmail,
	}
}

// Create assigns the role, hashes the password and stores the user with its
// self-follow edge. The administrator address gets the 0xff role.
func (s *userService) Create(user *models.User, password string) error {
	if user.RoleID == 0 {
		var (
			role *models.Role
			err  error
		)
		if s.adminEmail != "" && strings.EqualFold(user.Email, s.adminEmail) {
			role, err = s.roleRepo.GetByPermissions(0xff)
		} else {
			role, err = s.roleRepo.GetDefault()
		}
		if err != nil {
			return internal("resolve role", err)
		}
		user.RoleID = role.ID
		user.Role = role
	}

	if err := user.SetPassword(password); err != nil {
		return internal("set password", err)
	}
	user.SetEmail(user.Email)

	now := models.Now()
	if user.MemberSince.IsZero() {
		user.MemberSince = now
	}
	if user.LastSeen.IsZero() {
		user.LastSeen = now
	}

	if err := s.userRepo.Create(user); err != nil {
		return internal("create user", err)
	}
	return nil
}

func (s *userService) GetByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

func (s *userService) GetByEmail(email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

func (s *userService) GetByUsername(username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

func (s *userService) EmailTaken(email string) (bool, error) {
	_, err := s.userRepo.GetByEmail(email)
	return exists(err)
}

func (s *userService) UsernameTaken(username string) (bool, error) {
	_, err := s.userRepo.GetByUsername(username)
	return exists(err)
}

func exists(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, internal("lookup user", err)
	}
}

func (s *userService) Save(user *models.User) error {
	return internal("save user", s.userRepo.Update(user))
}

func (s *userService) Ping(user *models.User) error {
	user.Ping(models.Now())
	return internal("update last seen", s.userRepo.UpdateLastSeen(user.ID, user.LastSeen))
}

func (s *userService) UpdateProfile(user *models.User, form models.EditProfileForm) error {
	user.Name = form.Name
	user.Location = form.Location
	user.AboutMe = form.AboutMe
	return internal("update profile", s.userRepo.Update(user))
}

func (s *userService) AdminUpdateProfile(user *models.User, form models.EditProfileAdminForm) error {
	email := strings.ToLower(strings.TrimSpace(form.Email))
	if !strings.EqualFold(email, user.Email) {
		taken, err := s.EmailTaken(email)
		if err != nil {
			return err
		}
		if taken {
			return models.ErrorValidation{Field: "email", Message: "Email already registered."}
		}
	}
	if form.Username != user.Username {
		taken, err := s.UsernameTaken(form.Username)
		if err != nil {
			return err
		}
		if taken {
			return models.ErrorValidation{Field: "username", Message: "Username already in use."}
		}
	}
	role, err := s.roleRepo.GetByID(form.RoleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrorValidation{Field: "role", Message: "Invalid role."}
		}
		return internal("load role", err)
	}

	user.SetEmail(email)
	user.Username = form.Username
	user.Confirmed = form.Confirmed
	user.RoleID = role.ID
	user.Role = role
	user.Name = form.Name
	user.Location = form.Location
	user.AboutMe = form.AboutMe
	return internal("update profile", s.userRepo.Update(user))
}

func (s *userService) Follow(user, target *models.User) error {
	return internal("follow", s.followRepo.Follow(user.ID, target.ID))
}

func (s *userService) Unfollow(user, target *models.User) error {
	if user.ID == target.ID {
		return models.ErrorValidation{Message: "You cannot unfollow yourself."}
	}
	return internal("unfollow", s.followRepo.Unfollow(user.ID, target.ID))
}

func (s *userService) IsFollowing(user, target *models.User) (bool, error) {
	ok, err := s.followRepo.IsFollowing(user.ID, target.ID)
	return ok, internal("check follow", err)
}

func (s *userService) Followers(user *models.User, page, perPage int) ([]models.Follow, int64, error) {
	follows, total, err := s.followRepo.Followers(user.ID, page, perPage)
	return follows, total, internal("list followers", err)
}

func (s *userService) Followed(user *models.User, page, perPage int) ([]models.Follow, int64, error) {
	follows, total, err := s.followRepo.Followed(user.ID, page, perPage)
	return follows, total, internal("list followed", err)
}

func (s *userService) Stats(user *models.User) (UserStats, error) {
	var (
		stats UserStats
		err   error
	)
	if stats.Posts, err = s.postRepo.CountByAuthor(user.ID); err != nil {
		return stats, internal("count posts", err)
	}
	if stats.Followers, err = s.followRepo.CountFollowers(user.ID); err != nil {
		return stats, internal("count followers", err)
	}
	if stats.Followed, err = s.followRepo.CountFollowed(user.ID); err != nil {
		return stats, internal("count followed", err)
	}
	stats.Followers = withoutSelf(stats.Followers)
	stats.Followed = withoutSelf(stats.Followed)
	return stats, nil
}

func (s *userService) EnsureSelfFollows() (int, error) {
	n, err := s.followRepo.EnsureSelfFollows()
	return n, internal("ensure self follows", err)
}

// Delete removes the user, its follow edges and its sessions. Posts and
// comments stay.
func (s *userService) Delete(ctx context.Context, username string) error {
	user, err := s.GetByUsername(username)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(user.ID); err != nil {
		return internal("delete user", err)
	}
	if s.sessions != nil {
		if err := s.sessions.DeleteByUser(ctx, user.ID); err != nil {
			return internal("delete sessions", err)
		}
	}
	return nil
}

func withoutSelf(n int64) int64 {
	if n > 0 {
		return n - 1
	}
	return 0
}
