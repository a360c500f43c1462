package fraud

import (
	"context"
	"log"
	"time"

	"github.com/akmajay1/poultry/internal/imaging"
	"github.com/akmajay1/poultry/internal/models"
)

// EvaluateInput is everything the ingestion boundary hands the core:
// the raw image buffer plus the caller-asserted submission fields.
type EvaluateInput struct {
	Image         []byte
	UserID        string
	BatchID       string
	ImageURL      string
	ClaimedAt     time.Time
	Latitude      *float64
	Longitude     *float64
	TotalCount    int
	DeceasedCount int
	Notes         string
}

// EvaluateResult is the pipeline's verdict for one submission.
type EvaluateResult struct {
	Submission    *models.ProofSubmission `json:"submission"`
	Fingerprint   string                  `json:"fingerprint"`
	Metadata      imaging.Metadata        `json:"metadata"`
	Findings      []models.Finding        `json:"findings"`
	FraudRecordID string                  `json:"fraudRecordId,omitempty"`

	// CheckComplete is false when a store failure degraded the fraud
	// check to "no verdict"; the submission itself was still ingested.
	CheckComplete bool `json:"checkComplete"`
}

// Flagged reports whether the evaluation produced at least one finding.
func (r *EvaluateResult) Flagged() bool {
	return len(r.Findings) > 0
}

// Pipeline is the single evaluation entry point: it fingerprints the
// image, extracts metadata, persists the submission, runs the detector
// and writes the fraud record. Evaluations share no mutable state
// beyond the read-only geofence, so any number may run concurrently.
type Pipeline struct {
	submissions SubmissionStore
	detector    *Detector
}

// NewPipeline assembles an evaluation pipeline.
func NewPipeline(submissions SubmissionStore, detector *Detector) *Pipeline {
	return &Pipeline{submissions: submissions, detector: detector}
}

// Evaluate ingests one proof submission and runs the fraud check over
// it. An undecodable image aborts the whole evaluation (no fingerprint,
// no record, no stored submission). A failure inside the fraud check
// itself is logged and degraded to an incomplete verdict rather than
// propagated, so a legitimate submission is never rejected because the
// pipeline errored.
func (p *Pipeline) Evaluate(ctx context.Context, in EvaluateInput) (*EvaluateResult, error) {
	hash, err := imaging.Hash(in.Image)
	if err != nil {
		return nil, err
	}

	meta := imaging.ExtractMetadata(in.Image)

	sub := &models.ProofSubmission{
		UserID:        in.UserID,
		BatchID:       in.BatchID,
		ImageURL:      in.ImageURL,
		ImageHash:     hash,
		ClaimedAt:     in.ClaimedAt.UTC(),
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		DeviceTag:     meta.DeviceTag,
		GPSTag:        meta.GPSTag,
		ExifFound:     meta.Present,
		TotalCount:    in.TotalCount,
		DeceasedCount: in.DeceasedCount,
		Notes:         in.Notes,
		Status:        models.SubmissionPending,
	}

	if err := p.submissions.Create(ctx, sub); err != nil {
		return nil, err
	}

	result := &EvaluateResult{
		Submission:    sub,
		Fingerprint:   hash,
		Metadata:      meta,
		CheckComplete: true,
	}

	record, err := p.detector.Check(ctx, sub)
	if err != nil {
		log.Printf("⚠️  Fraud check incomplete for submission %s: %v", sub.ID, err)
		result.CheckComplete = false
		return result, nil
	}

	if record != nil {
		result.Findings = record.Findings
		result.FraudRecordID = record.ID
	}

	return result, nil
}
