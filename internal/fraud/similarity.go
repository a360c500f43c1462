package fraud

import (
	"context"
	"log"
	"time"

	"github.com/akmajay1/poultry/internal/imaging"
	"github.com/akmajay1/poultry/internal/models"
)

// Match pairs a prior submission with the fingerprint similarity score
// that put it over the duplicate threshold.
type Match struct {
	Submission models.ProofSubmission
	Score      float64
}

// SimilarityEngine compares a new submission against the bounded recent
// window of the same actor's submissions for the same batch.
type SimilarityEngine struct {
	store     SubmissionStore
	threshold float64
	window    time.Duration
}

// NewSimilarityEngine creates an engine over the given history store.
// threshold is the duplicate-image similarity floor in [0,1]; window is
// the trailing history span considered for comparisons.
func NewSimilarityEngine(store SubmissionStore, threshold float64, window time.Duration) *SimilarityEngine {
	return &SimilarityEngine{store: store, threshold: threshold, window: window}
}

// Compare returns fingerprint duplicates and exact metadata matches for
// the submission within the window. An empty history yields empty
// slices, never an error.
func (e *SimilarityEngine) Compare(ctx context.Context, sub *models.ProofSubmission) (duplicates []Match, metadataMatches []models.ProofSubmission, err error) {
	since := sub.ClaimedAt.Add(-e.window)
	candidates, err := e.store.FindRecentByActorAndBatch(ctx, sub.UserID, sub.BatchID, since, sub.ID)
	if err != nil {
		return nil, nil, err
	}

	for _, candidate := range candidates {
		score, simErr := imaging.Similarity(sub.ImageHash, candidate.ImageHash)
		if simErr != nil {
			// Stored fingerprints predating the current hash length
			// cannot be compared; skip rather than fail the check.
			log.Printf("⚠️  Skipping incomparable fingerprint on submission %s: %v", candidate.ID, simErr)
		} else if score >= e.threshold {
			duplicates = append(duplicates, Match{Submission: candidate, Score: score})
		}

		if e.metadataMatches(sub, &candidate) {
			metadataMatches = append(metadataMatches, candidate)
		}
	}

	return duplicates, metadataMatches, nil
}

// metadataMatches requires exact equality on both the device tag and
// the GPS tag. Empty tags (missing EXIF) never match: absence is
// neutral, not suspicious.
func (e *SimilarityEngine) metadataMatches(a *models.ProofSubmission, b *models.ProofSubmission) bool {
	if a.DeviceTag == "" || a.GPSTag == "" {
		return false
	}
	return a.DeviceTag == b.DeviceTag && a.GPSTag == b.GPSTag
}
