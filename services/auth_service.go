package services

import (
	"errors"
	"strings"
	"time"

	"social-blog/models"
)

const (
	claimConfirm     = "confirm"
	claimReset       = "reset"
	claimChangeEmail = "change_email"
	claimNewEmail    = "new_email"
	claimAPI         = "id"

	// AccountTokenTTL bounds confirmation, reset and change-email links.
	AccountTokenTTL = time.Hour
)

var (
	errInvalidCredentials = models.ErrorUnauthorized{Message: "Invalid email or password."}
	errInvalidLink        = models.ErrorValidation{Message: "The confirmation link is invalid or has expired."}
	errInvalidResetLink   = models.ErrorValidation{Message: "The password reset link is invalid or has expired."}
	errInvalidEmailChange = models.ErrorValidation{Message: "Invalid request."}
	errEmailRegistered    = models.ErrorValidation{Field: "email", Message: "Email already registered."}
	errUsernameInUse      = models.ErrorValidation{Field: "username", Message: "Username already in use."}
)

type AuthService interface {
	Register(form models.RegisterForm) (*models.User, error)
	Login(email, password string) (*models.User, error)
	AuthenticateToken(token string) (*models.User, error)
	GenerateAPIToken(user *models.User, ttl time.Duration) (string, error)
	GenerateConfirmationToken(user *models.User) (string, error)
	Confirm(user *models.User, token string) error
	ChangePassword(user *models.User, oldPassword, newPassword string) error
	GenerateResetToken(user *models.User) (string, error)
	ResetPassword(token, email, password string) error
	RequestEmailChange(user *models.User, newEmail, password string) (string, error)
	ChangeEmail(user *models.User, token string) error
}

type authService struct {
	users  UserService
	tokens TokenService
}

func NewAuthService(users UserService, tokens TokenService) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Register(form models.RegisterForm) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(form.Email))
	taken, err := s.users.EmailTaken(email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errEmailRegistered
	}
	taken, err = s.users.UsernameTaken(form.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errUsernameInUse
	}

	user := &models.User{Email: email, Username: form.Username}
	if err := s.users.Create(user, form.Password); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		var notFound models.ErrorNotFound
		if errors.As(err, &notFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(password) {
		return nil, errInvalidCredentials
	}
	return user, nil
}

// AuthenticateToken resolves an API token to its user. Tokens minted for
// any other purpose are rejected.
func (s *authService) AuthenticateToken(token string) (*models.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, models.ErrorUnauthorized{Message: ErrInvalidToken.Error()}
	}
	id, ok := claimID(claims, claimAPI)
	if !ok {
		return nil, models.ErrorUnauthorized{Message: ErrInvalidToken.Error()}
	}
	user, err := s.users.GetByID(id)
	if err != nil {
		var notFound models.ErrorNotFound
		if errors.As(err, &notFound) {
			return nil, models.ErrorUnauthorized{Message: ErrInvalidToken.Error()}
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) GenerateAPIToken(user *models.User, ttl time.Duration) (string, error) {
	token, err := s.tokens.Issue(map[string]interface{}{claimAPI: user.ID}, ttl)
	return token, internal("issue token", err)
}

func (s *authService) GenerateConfirmationToken(user *models.User) (string, error) {
	token, err := s.tokens.Issue(map[string]interface{}{claimConfirm: user.ID}, AccountTokenTTL)
	return token, internal("issue token", err)
}

// Confirm marks user confirmed when token carries its id. Confirming an
// already confirmed account is a no-op.
func (s *authService) Confirm(user *models.User, token string) error {
	if user.Confirmed {
		return nil
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return errInvalidLink
	}
	if id, ok := claimID(claims, claimConfirm); !ok || id != user.ID {
		return errInvalidLink
	}
	user.Confirmed = true
	return s.users.Save(user)
}

func (s *authService) ChangePassword(user *models.User, oldPassword, newPassword string) error {
	if !user.VerifyPassword(oldPassword) {
		return models.ErrorValidation{Message: "Invalid password."}
	}
	if err := user.SetPassword(newPassword); err != nil {
		return internal("set password", err)
	}
	return s.users.Save(user)
}

func (s *authService) GenerateResetToken(user *models.User) (string, error) {
	token, err := s.tokens.Issue(map[string]interface{}{claimReset: user.ID}, AccountTokenTTL)
	return token, internal("issue token", err)
}

// ResetPassword sets a new password for the account named by email when
// token was issued for that account.
func (s *authService) ResetPassword(token, email, password string) error {
	user, err := s.users.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		var notFound models.ErrorNotFound
		if errors.As(err, &notFound) {
			return errInvalidResetLink
		}
		return err
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return errInvalidResetLink
	}
	if id, ok := claimID(claims, claimReset); !ok || id != user.ID {
		return errInvalidResetLink
	}
	if err := user.SetPassword(password); err != nil {
		return internal("set password", err)
	}
	return s.users.Save(user)
}

func (s *authService) RequestEmailChange(user *models.User, newEmail, password string) (string, error) {
	if !user.VerifyPassword(password) {
		return "", models.ErrorValidation{Message: "Invalid email or password."}
	}
	newEmail = strings.ToLower(strings.TrimSpace(newEmail))
	taken, err := s.users.EmailTaken(newEmail)
	if err != nil {
		return "", err
	}
	if taken {
		return "", errEmailRegistered
	}
	token, err := s.tokens.Issue(map[string]interface{}{
		claimChangeEmail: user.ID,
		claimNewEmail:    newEmail,
	}, AccountTokenTTL)
	return token, internal("issue token", err)
}

// ChangeEmail applies the address carried by token. The address must still
// be unregistered.
func (s *authService) ChangeEmail(user *models.User, token string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return errInvalidEmailChange
	}
	if id, ok := claimID(claims, claimChangeEmail); !ok || id != user.ID {
		return errInvalidEmailChange
	}
	newEmail, _ := claims[claimNewEmail].(string)
	if newEmail == "" {
		return errInvalidEmailChange
	}
	taken, err := s.users.EmailTaken(newEmail)
	if err != nil {
		return err
	}
	if taken {
		return errInvalidEmailChange
	}
	user.SetEmail(newEmail)
	return s.users.Save(user)
}
