package models

import (
	"time"

	"gorm.io/gorm"
)

// Permission actions. Role names are deliberately not enumerated: roles are
// created dynamically through the admin CRUD and compared as opaque strings.
const (
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
	ActionView   = "view"
)

type Role struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Role) TableName() string {
	return "roles"
}

type Permission struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Resource  string         `gorm:"type:varchar(50);not null;uniqueIndex:ux_permissions_resource_action" json:"resource"`
	Action    string         `gorm:"type:varchar(20);not null;uniqueIndex:ux_permissions_resource_action" json:"action"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Permission) TableName() string {
	return "permissions"
}

// RolePermission links a role to a granted (resource, action) pair.
type RolePermission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RoleID       uint      `gorm:"not null;index;uniqueIndex:ux_role_permissions_pair" json:"role_id"`
	PermissionID uint      `gorm:"not null;index;uniqueIndex:ux_role_permissions_pair" json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
