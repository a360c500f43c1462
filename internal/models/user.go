package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a platform account (field worker, reviewer or admin)
// Standardized: Go (PascalCase) -> DB (snake_case) -> JSON (camelCase)
type User struct {
	ID                string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Username          string     `gorm:"unique;not null" json:"username"`
	Password          string     `gorm:"not null" json:"-"`
	Email             string     `gorm:"unique;not null" json:"email"`
	Name              string     `json:"name,omitempty"`
	Role              string     `gorm:"default:'farmer'" json:"role"`
	Phone             string     `json:"phone,omitempty"`
	IsActive          bool       `gorm:"default:true" json:"isActive"`
	LastLogin         *time.Time `json:"lastLogin,omitempty"`
	PreferredLanguage string     `gorm:"default:'en'" json:"preferredLanguage"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// User roles
const (
	RoleFarmer   = "farmer"
	RoleReviewer = "reviewer"
	RoleAdmin    = "admin"
)
