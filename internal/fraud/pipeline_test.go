package fraud

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/akmajay1/poultry/internal/imaging"
	"github.com/akmajay1/poultry/internal/models"
)

func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Pix[y*img.Stride+x] = uint8(x * 8)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func newTestPipeline(subs *memSubmissionStore, recs *memFraudRecordStore) *Pipeline {
	return NewPipeline(subs, newTestDetector(subs, recs))
}

func evaluateInput(t *testing.T) EvaluateInput {
	lat, lon := inFence()
	return EvaluateInput{
		Image:      testPNG(t),
		UserID:     "user-1",
		BatchID:    "batch-1",
		ImageURL:   "proof.png",
		ClaimedAt:  time.Now().UTC(),
		Latitude:   lat,
		Longitude:  lon,
		TotalCount: 120,
		Notes:      "evening count",
	}
}

func TestEvaluateCleanSubmission(t *testing.T) {
	subs := newMemSubmissionStore()
	recs := newMemFraudRecordStore()
	pipeline := newTestPipeline(subs, recs)

	result, err := pipeline.Evaluate(context.Background(), evaluateInput(t))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if result.Fingerprint == "" || len(result.Fingerprint) != 16 {
		t.Errorf("Expected a 16 hex character fingerprint, got %q", result.Fingerprint)
	}
	if result.Metadata.Present {
		t.Error("PNG without EXIF should report absent metadata")
	}
	if result.Flagged() {
		t.Errorf("Clean submission should have no findings, got %v", result.Findings)
	}
	if result.FraudRecordID != "" {
		t.Error("Clean submission should not reference a fraud record")
	}
	if !result.CheckComplete {
		t.Error("Check should be complete")
	}
	if result.Submission.Status != models.SubmissionPending {
		t.Errorf("Clean submission status should stay pending, got %s", result.Submission.Status)
	}
}

func TestEvaluateResubmissionFlags(t *testing.T) {
	subs := newMemSubmissionStore()
	recs := newMemFraudRecordStore()
	pipeline := newTestPipeline(subs, recs)
	ctx := context.Background()

	in := evaluateInput(t)
	if _, err := pipeline.Evaluate(ctx, in); err != nil {
		t.Fatalf("First evaluation failed: %v", err)
	}

	// Same image, same actor, same batch, an hour later
	in2 := evaluateInput(t)
	in2.ClaimedAt = in.ClaimedAt.Add(time.Hour)
	result, err := pipeline.Evaluate(ctx, in2)
	if err != nil {
		t.Fatalf("Second evaluation failed: %v", err)
	}

	if !result.Flagged() {
		t.Fatal("Resubmitted image should be flagged")
	}
	if result.FraudRecordID == "" {
		t.Error("Flagged evaluation should reference the created record")
	}
	if result.Findings[0].Type != models.FindingDuplicateImage {
		t.Errorf("Expected duplicate-image finding, got %s", result.Findings[0].Type)
	}
	if result.Submission.Status != models.SubmissionFlagged {
		t.Errorf("Flagged submission status should be flagged, got %s", result.Submission.Status)
	}
	if recs.count() != 1 {
		t.Errorf("Exactly one record expected, got %d", recs.count())
	}
}

func TestEvaluateInvalidImageAborts(t *testing.T) {
	subs := newMemSubmissionStore()
	recs := newMemFraudRecordStore()
	pipeline := newTestPipeline(subs, recs)

	in := evaluateInput(t)
	in.Image = []byte("not an image")

	_, err := pipeline.Evaluate(context.Background(), in)
	if !errors.Is(err, imaging.ErrInvalidImage) {
		t.Fatalf("Expected ErrInvalidImage, got %v", err)
	}

	// Nothing was persisted: no fingerprint, no submission, no record
	if len(subs.subs) != 0 {
		t.Error("Invalid image must not store a submission")
	}
	if recs.count() != 0 {
		t.Error("Invalid image must not create a record")
	}
}

func TestEvaluateDegradesOnStoreFailure(t *testing.T) {
	subs := newMemSubmissionStore()
	recs := newMemFraudRecordStore()
	pipeline := newTestPipeline(subs, recs)

	// History lookups fail, submission writes succeed: ingestion must
	// stand while the fraud check degrades to no verdict.
	subs.failRead = ErrStoreUnavailable

	result, err := pipeline.Evaluate(context.Background(), evaluateInput(t))
	if err != nil {
		t.Fatalf("Store failure must not propagate as an evaluation error: %v", err)
	}

	if result.CheckComplete {
		t.Error("Degraded check should report CheckComplete=false")
	}
	if result.Flagged() {
		t.Error("Degraded check should carry no findings")
	}
	if len(subs.subs) != 1 {
		t.Error("Submission itself should have been ingested")
	}
}

func TestEvaluateSubmissionStoreDown(t *testing.T) {
	subs := newMemSubmissionStore()
	recs := newMemFraudRecordStore()
	pipeline := newTestPipeline(subs, recs)

	subs.failWith = ErrStoreUnavailable

	_, err := pipeline.Evaluate(context.Background(), evaluateInput(t))
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Expected ErrStoreUnavailable, got %v", err)
	}
}
