package fraud

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/akmajay1/poultry/internal/models"
	"gorm.io/datatypes"
)

// Detector combines the geofence, similarity and timestamp-sequence
// signals into a findings list and opens a fraud record when that list
// is non-empty. Any single finding flags: the policy favors reviewer
// recall over precision, since findings feed a review queue rather than
// auto-rejecting submissions.
type Detector struct {
	submissions SubmissionStore
	records     FraudRecordStore
	engine      *SimilarityEngine
	geofence    Geofence
}

// NewDetector wires a detector over the given stores and policy values.
func NewDetector(submissions SubmissionStore, records FraudRecordStore, engine *SimilarityEngine, geofence Geofence) *Detector {
	return &Detector{
		submissions: submissions,
		records:     records,
		engine:      engine,
		geofence:    geofence,
	}
}

// Check runs every signal for an already-persisted submission, and if
// anything fired, writes the fraud record and flags the submission.
// The returned record is nil when the submission is clean. Re-checking
// a submission that is already flagged never creates a second record.
func (d *Detector) Check(ctx context.Context, sub *models.ProofSubmission) (*models.FraudRecord, error) {
	// Precondition: an earlier run may already own this submission's
	// verdict. Retried checks load that record instead of recomputing.
	exists, err := d.records.ExistsForSubmission(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		record := &models.FraudRecord{SubmissionID: sub.ID, UserID: sub.UserID}
		if _, err := d.records.CreateIfAbsent(ctx, record); err != nil {
			return nil, err
		}
		return record, nil
	}

	findings, err := d.Findings(ctx, sub)
	if err != nil {
		return nil, err
	}
	if len(findings) == 0 {
		return nil, nil
	}

	types := findingTypes(findings)
	record := &models.FraudRecord{
		SubmissionID: sub.ID,
		UserID:       sub.UserID,
		DetectedAt:   time.Now().UTC(),
		Details:      fmt.Sprintf("%d finding(s): %s", len(findings), types),
		Status:       models.FraudPending,
		Findings:     findings,
	}

	created, err := d.records.CreateIfAbsent(ctx, record)
	if err != nil {
		return nil, err
	}
	if !created {
		// A record for this submission already stands; its writer also
		// owns the status transition.
		return record, nil
	}

	if err := d.submissions.UpdateStatus(ctx, sub.ID, models.SubmissionFlagged, types); err != nil {
		return record, err
	}
	sub.Status = models.SubmissionFlagged
	sub.FlaggedReason = types

	return record, nil
}

// Findings assembles the typed anomaly signals for a submission without
// persisting anything.
func (d *Detector) Findings(ctx context.Context, sub *models.ProofSubmission) ([]models.Finding, error) {
	var findings []models.Finding

	duplicates, metadataMatches, err := d.engine.Compare(ctx, sub)
	if err != nil {
		return nil, err
	}

	for _, match := range duplicates {
		id := match.Submission.ID
		score := match.Score
		findings = append(findings, models.Finding{
			Type:                models.FindingDuplicateImage,
			MatchedSubmissionID: &id,
			SimilarityScore:     &score,
			Detail:              fmt.Sprintf("fingerprint similarity %.4f against submission %s", score, id),
		})
	}

	for _, match := range metadataMatches {
		id := match.ID
		findings = append(findings, models.Finding{
			Type:                models.FindingMetadataMatch,
			MatchedSubmissionID: &id,
			Detail:              fmt.Sprintf("identical device and GPS tags as submission %s", id),
		})
	}

	if !d.geofence.Contains(sub.Latitude, sub.Longitude) {
		findings = append(findings, models.Finding{
			Type:   models.FindingLocationMismatch,
			Detail: locationDetail(sub),
		})
	}

	later, err := d.submissions.FindLaterInBatch(ctx, sub.BatchID, sub.ClaimedAt, sub.ID)
	if err != nil {
		return nil, err
	}
	if len(later) > 0 {
		// One finding for the whole out-of-order set, not one per
		// prior submission.
		ids := make([]string, len(later))
		for i, s := range later {
			ids[i] = s.ID
		}
		payload, _ := json.Marshal(ids)
		findings = append(findings, models.Finding{
			Type:       models.FindingTimestampAnomaly,
			MatchedIDs: datatypes.JSON(payload),
			Detail:     fmt.Sprintf("%d later-dated submission(s) already on record", len(later)),
		})
	}

	for i := range findings {
		findings[i].Position = i
	}

	return findings, nil
}

func locationDetail(sub *models.ProofSubmission) string {
	if sub.Latitude == nil || sub.Longitude == nil {
		return "claimed coordinate missing"
	}
	return fmt.Sprintf("claimed coordinate %.6f,%.6f outside farm area", *sub.Latitude, *sub.Longitude)
}

func findingTypes(findings []models.Finding) string {
	types := make([]string, len(findings))
	for i, f := range findings {
		types[i] = f.Type
	}
	return strings.Join(types, ", ")
}
