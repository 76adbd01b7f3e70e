package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a back-office account. RoleID drives permission checks on admin
// routes; customers authenticate separately and carry no role.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(100);not null" json:"name"`
	Email        string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(100);not null" json:"-"`
	RoleID       uint           `gorm:"index" json:"role_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

type Customer struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"type:varchar(100);not null" json:"name"`
	Email         string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Phone         string         `gorm:"type:varchar(20)" json:"phone"`
	PasswordHash  string         `gorm:"type:varchar(100)" json:"-"`
	OAuthProvider string         `gorm:"type:varchar(30)" json:"oauth_provider,omitempty"`
	OAuthSubject  string         `gorm:"type:varchar(100);index" json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Customer) TableName() string {
	return "customers"
}

type Address struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CustomerID uint           `gorm:"not null;index" json:"customer_id"`
	Line1      string         `gorm:"type:varchar(200);not null" json:"line1"`
	Line2      string         `gorm:"type:varchar(200)" json:"line2"`
	City       string         `gorm:"type:varchar(100)" json:"city"`
	Country    string         `gorm:"type:varchar(100)" json:"country"`
	Phone      string         `gorm:"type:varchar(20)" json:"phone"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Address) TableName() string {
	return "addresses"
}
