package fraud

import (
	"context"
	"time"

	"github.com/akmajay1/poultry/internal/models"
)

// SubmissionStore is the persisted submission history the pipeline
// reads its comparison windows from. All lookups are bounded by
// batch/actor/time filters and exclude the probe submission by identity
// (ID), never by content equality.
type SubmissionStore interface {
	Create(ctx context.Context, sub *models.ProofSubmission) error

	// FindRecentByActorAndBatch returns the actor's other submissions
	// for the batch with a claimed timestamp at or after since.
	FindRecentByActorAndBatch(ctx context.Context, userID, batchID string, since time.Time, excludeID string) ([]models.ProofSubmission, error)

	// FindLaterInBatch returns other submissions in the batch whose
	// claimed timestamp is strictly later than after, oldest first.
	FindLaterInBatch(ctx context.Context, batchID string, after time.Time, excludeID string) ([]models.ProofSubmission, error)

	// UpdateStatus transitions a submission's lifecycle status.
	UpdateStatus(ctx context.Context, id, status, reason string) error

	FindByBatch(ctx context.Context, batchID string) ([]models.ProofSubmission, error)
}

// FraudRecordStore persists detection verdicts with insert-if-absent
// semantics keyed on the submission.
type FraudRecordStore interface {
	// CreateIfAbsent writes the record unless one already exists for
	// the same submission. When the record loses that race (or one was
	// already there), the stored record is loaded into rec and created
	// is false; either way the caller holds the surviving record.
	CreateIfAbsent(ctx context.Context, rec *models.FraudRecord) (created bool, err error)

	ExistsForSubmission(ctx context.Context, submissionID string) (bool, error)

	// FindSince returns records detected at or after cutoff with their
	// findings attached, oldest first.
	FindSince(ctx context.Context, cutoff time.Time) ([]models.FraudRecord, error)

	FindAll(ctx context.Context) ([]models.FraudRecord, error)
}
