package fraud

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akmajay1/poultry/internal/database"
	"github.com/akmajay1/poultry/internal/models"
	"gorm.io/gorm"
)

// GormSubmissionStore implements SubmissionStore on the shared database
type GormSubmissionStore struct {
	db *database.DB
}

// NewGormSubmissionStore creates a submission store backed by GORM
func NewGormSubmissionStore(db *database.DB) *GormSubmissionStore {
	return &GormSubmissionStore{db: db}
}

func (s *GormSubmissionStore) Create(ctx context.Context, sub *models.ProofSubmission) error {
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("%w: create submission: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *GormSubmissionStore) FindRecentByActorAndBatch(ctx context.Context, userID, batchID string, since time.Time, excludeID string) ([]models.ProofSubmission, error) {
	var subs []models.ProofSubmission
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND batch_id = ? AND claimed_at >= ? AND id <> ?",
			userID, batchID, since, excludeID).
		Order("claimed_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: recent history lookup: %v", ErrStoreUnavailable, err)
	}
	return subs, nil
}

func (s *GormSubmissionStore) FindLaterInBatch(ctx context.Context, batchID string, after time.Time, excludeID string) ([]models.ProofSubmission, error) {
	var subs []models.ProofSubmission
	err := s.db.WithContext(ctx).
		Where("batch_id = ? AND claimed_at > ? AND id <> ?", batchID, after, excludeID).
		Order("claimed_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp sequence lookup: %v", ErrStoreUnavailable, err)
	}
	return subs, nil
}

func (s *GormSubmissionStore) UpdateStatus(ctx context.Context, id, status, reason string) error {
	err := s.db.WithContext(ctx).
		Model(&models.ProofSubmission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "flagged_reason": reason}).Error
	if err != nil {
		return fmt.Errorf("%w: update submission status: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *GormSubmissionStore) FindByBatch(ctx context.Context, batchID string) ([]models.ProofSubmission, error) {
	var subs []models.ProofSubmission
	err := s.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: batch listing: %v", ErrStoreUnavailable, err)
	}
	return subs, nil
}

// GormFraudRecordStore implements FraudRecordStore on the shared database
type GormFraudRecordStore struct {
	db *database.DB
}

// NewGormFraudRecordStore creates a fraud record store backed by GORM
func NewGormFraudRecordStore(db *database.DB) *GormFraudRecordStore {
	return &GormFraudRecordStore{db: db}
}

// CreateIfAbsent inserts the record and its findings in one transaction
// guarded by the submission_id unique index. A concurrent writer losing
// the race gets the surviving record back instead of an error.
func (s *GormFraudRecordStore) CreateIfAbsent(ctx context.Context, rec *models.FraudRecord) (bool, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.FraudRecord
		err := tx.Preload("Findings").
			Where("submission_id = ?", rec.SubmissionID).
			First(&existing).Error
		if err == nil {
			*rec = existing
			return errAlreadyFlagged
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(rec).Error
	})

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errAlreadyFlagged):
		return false, nil
	case isUniqueViolation(err):
		// Lost the race between our existence check and insert; the
		// other writer's record stands.
		var winner models.FraudRecord
		loadErr := s.db.WithContext(ctx).Preload("Findings").
			Where("submission_id = ?", rec.SubmissionID).
			First(&winner).Error
		if loadErr != nil {
			return false, fmt.Errorf("%w: load winning record: %v", ErrStoreUnavailable, loadErr)
		}
		*rec = winner
		return false, nil
	default:
		return false, fmt.Errorf("%w: write fraud record: %v", ErrStoreUnavailable, err)
	}
}

func (s *GormFraudRecordStore) ExistsForSubmission(ctx context.Context, submissionID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.FraudRecord{}).
		Where("submission_id = ?", submissionID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: record existence check: %v", ErrStoreUnavailable, err)
	}
	return count > 0, nil
}

func (s *GormFraudRecordStore) FindSince(ctx context.Context, cutoff time.Time) ([]models.FraudRecord, error) {
	var records []models.FraudRecord
	err := s.db.WithContext(ctx).
		Preload("Findings", func(db *gorm.DB) *gorm.DB {
			return db.Order("findings.position ASC")
		}).
		Preload("Submission").
		Preload("User").
		Where("detected_at >= ?", cutoff).
		Order("detected_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: digest lookup: %v", ErrStoreUnavailable, err)
	}
	return records, nil
}

func (s *GormFraudRecordStore) FindAll(ctx context.Context) ([]models.FraudRecord, error) {
	var records []models.FraudRecord
	err := s.db.WithContext(ctx).
		Preload("Findings", func(db *gorm.DB) *gorm.DB {
			return db.Order("findings.position ASC")
		}).
		Preload("Submission").
		Preload("User").
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: record listing: %v", ErrStoreUnavailable, err)
	}
	return records, nil
}

// isUniqueViolation detects the Postgres unique constraint error for
// the submission_id index (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}
