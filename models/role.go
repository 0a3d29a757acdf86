package models

// Permission is a bit flag. Flags combine with bitwise OR.
type Permission uint8

const (
	PermissionFollow           Permission = 0x01
	PermissionComment          Permission = 0x02
	PermissionWriteArticles    Permission = 0x04
	PermissionModerateComments Permission = 0x08
	PermissionAdminister       Permission = 0x80
)

// Has reports whether every bit of flag is set in p.
func (p Permission) Has(flag Permission) bool {
	return p&flag == flag
}

const (
	RoleUser          = "User"
	RoleModerator     = "Moderator"
	RoleAdministrator = "Administrator"
)

type Role struct {
	ID          uint       `json:"id" gorm:"primarykey"`
	Name        string     `json:"name" gorm:"size:64;uniqueIndex;not null"`
	Default     bool       `json:"default" gorm:"column:is_default;index"`
	Permissions Permission `json:"permissions" gorm:"not null;default:0"`
}

func (r *Role) Can(flag Permission) bool {
	return r != nil && r.Permissions.Has(flag)
}

type RoleDefinition struct {
	Name        string
	Permissions Permission
	Default     bool
}

// RoleTable is the fixed set of roles seeded at deploy time.
var RoleTable = []RoleDefinition{
	{
		Name:        RoleUser,
		Permissions: PermissionFollow | PermissionComment | PermissionWriteArticles,
		Default:     true,
	},
	{
		Name:        RoleModerator,
		Permissions: PermissionFollow | PermissionComment | PermissionWriteArticles | PermissionModerateComments,
	},
	{
		Name:        RoleAdministrator,
		Permissions: 0xff,
	},
}
