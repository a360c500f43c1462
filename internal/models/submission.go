package models

import (
	"time"

	"gorm.io/gorm"
)

// Submission lifecycle statuses. A submission is never deleted; its
// status is the only thing that moves.
const (
	SubmissionPending  = "pending"
	SubmissionVerified = "verified"
	SubmissionFlagged  = "flagged"
	SubmissionRejected = "rejected"
)

// ProofSubmission is one dated, geotagged photographic proof of a
// livestock count for a batch. The fingerprint is a 64-bit average-hash
// of the image stored as 16 hex characters, comparable bit-for-bit
// against any other submission's fingerprint.
type ProofSubmission struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID   string `gorm:"type:uuid;not null;index" json:"userId"`
	BatchID  string `gorm:"type:uuid;not null;index" json:"batchId"`
	ImageURL string `gorm:"not null" json:"imageUrl"`

	// Fingerprint of the image content (perceptual average-hash, hex)
	ImageHash string `gorm:"not null;index" json:"imageHash"`

	// Caller-asserted capture metadata
	ClaimedAt time.Time `gorm:"not null;index" json:"claimedAt"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`

	// Tags extracted from embedded EXIF; empty when metadata is absent.
	// Empty tags never match anything (absence is neutral).
	DeviceTag string `json:"deviceTag,omitempty"`
	GPSTag    string `json:"gpsTag,omitempty"`
	ExifFound bool   `json:"exifFound"`

	TotalCount    int    `gorm:"not null" json:"totalCount"`
	DeceasedCount int    `gorm:"not null" json:"deceasedCount"`
	Notes         string `gorm:"type:text" json:"notes,omitempty"`

	Status        string     `gorm:"default:'pending';index" json:"status"`
	FlaggedReason string     `json:"flaggedReason,omitempty"`
	VerifiedBy    *string    `gorm:"type:uuid" json:"verifiedBy,omitempty"`
	VerifiedAt    *time.Time `json:"verifiedAt,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Batch *Batch `gorm:"foreignKey:BatchID" json:"batch,omitempty"`
}

// TableName specifies the table name for ProofSubmission model
func (ProofSubmission) TableName() string {
	return "proof_submissions"
}
