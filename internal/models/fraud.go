package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Finding types attached to a fraud record
const (
	FindingDuplicateImage   = "duplicate-image"
	FindingMetadataMatch    = "metadata-match"
	FindingLocationMismatch = "location-mismatch"
	FindingTimestampAnomaly = "timestamp-anomaly"
)

// Fraud record review statuses
const (
	FraudPending   = "pending"
	FraudReviewed  = "reviewed"
	FraudConfirmed = "confirmed"
	FraudDismissed = "dismissed"
)

// FraudRecord holds the detection verdict for exactly one submission.
// The submission_id unique index is what makes concurrent duplicate
// writes lose cleanly instead of duplicating records.
type FraudRecord struct {
	ID           string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SubmissionID string    `gorm:"type:uuid;not null;uniqueIndex" json:"submissionId"`
	UserID       string    `gorm:"type:uuid;not null;index" json:"userId"`
	DetectedAt   time.Time `gorm:"not null;index" json:"detectedAt"`
	Details      string    `gorm:"type:text" json:"details"`

	Status      string     `gorm:"default:'pending';index" json:"status"`
	ReviewedBy  *string    `gorm:"type:uuid" json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	ActionTaken string     `json:"actionTaken,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Findings   []Finding        `gorm:"foreignKey:FraudRecordID" json:"findings,omitempty"`
	Submission *ProofSubmission `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
	User       *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for FraudRecord model
func (FraudRecord) TableName() string {
	return "fraud_records"
}

// Finding is a single typed anomaly signal. Immutable once attached to
// a record. Per-match findings reference one prior submission and carry
// a similarity score; a timestamp-anomaly finding instead references
// the whole out-of-order set in MatchedIDs.
type Finding struct {
	ID            string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	FraudRecordID string `gorm:"type:uuid;not null;index" json:"fraudRecordId"`
	Position      int    `gorm:"not null" json:"position"`
	Type          string `gorm:"not null;index" json:"type"`

	MatchedSubmissionID *string        `gorm:"type:uuid" json:"matchedSubmissionId,omitempty"`
	MatchedIDs          datatypes.JSON `json:"matchedIds,omitempty"`
	SimilarityScore     *float64       `json:"similarityScore,omitempty"`
	Detail              string         `json:"detail,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for Finding model
func (Finding) TableName() string {
	return "findings"
}
