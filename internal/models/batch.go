package models

import (
	"time"

	"gorm.io/gorm"
)

// Batch represents a livestock batch that proof submissions are counted against
type Batch struct {
	ID           string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	OwnerID      string     `gorm:"type:uuid;not null;index" json:"ownerId"`
	InitialCount int        `gorm:"not null" json:"initialCount"`
	Breed        string     `json:"breed,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	Status       string     `gorm:"default:'active'" json:"status"`
	Notes        string     `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// TableName specifies the table name for Batch model
func (Batch) TableName() string {
	return "batches"
}
