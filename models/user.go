package models

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordWriteOnly = errors.New("password is not a readable attribute")

// BcryptCost is lowered by tests.
var BcryptCost = bcrypt.DefaultCost

// Principal is the resolved identity of a request: a *User or AnonymousUser.
type Principal interface {
	Can(flag Permission) bool
	IsAdministrator() bool
	IsAnonymous() bool
}

type AnonymousUser struct{}

func (AnonymousUser) Can(Permission) bool    { return false }
func (AnonymousUser) IsAdministrator() bool { return false }
func (AnonymousUser) IsAnonymous() bool     { return true }

type User struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	Email        string    `json:"email" gorm:"size:64;uniqueIndex;not null"`
	Username     string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	RoleID       uint      `json:"role_id" gorm:"index"`
	Role         *Role     `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	PasswordHash string    `json:"-" gorm:"size:128"`
	Confirmed    bool      `json:"confirmed" gorm:"default:false"`
	Name         string    `json:"name" gorm:"size:64"`
	Location     string    `json:"location" gorm:"size:64"`
	AboutMe      string    `json:"about_me" gorm:"type:text"`
	MemberSince  time.Time `json:"member_since"`
	LastSeen     time.Time `json:"last_seen"`
	AvatarHash   string    `json:"-" gorm:"size:32"`
}

func (u *User) Can(flag Permission) bool {
	return u.Role.Can(flag)
}

func (u *User) IsAdministrator() bool {
	return u.Can(PermissionAdminister)
}

func (u *User) IsAnonymous() bool {
	return false
}

// Password always fails; only the hash is stored.
func (u *User) Password() (string, error) {
	return "", ErrPasswordWriteOnly
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetEmail stores the address and refreshes the cached avatar hash.
func (u *User) SetEmail(email string) {
	u.Email = email
	sum := md5.Sum([]byte(strings.ToLower(email)))
	u.AvatarHash = hex.EncodeToString(sum[:])
}

func (u *User) Gravatar(size int) string {
	hash := u.AvatarHash
	if hash == "" {
		sum := md5.Sum([]byte(strings.ToLower(u.Email)))
		hash = hex.EncodeToString(sum[:])
	}
	return fmt.Sprintf("https://secure.gravatar.com/avatar/%s?s=%d&d=identicon&r=g", hash, size)
}

func (u *User) Ping(now time.Time) {
	u.LastSeen = now
}

// Now is the timestamp source for persisted records.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
