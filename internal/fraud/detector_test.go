package fraud

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/akmajay1/poultry/internal/models"
)

func newTestDetector(subs *memSubmissionStore, recs *memFraudRecordStore) *Detector {
	engine := NewSimilarityEngine(subs, 0.85, 24*time.Hour)
	return NewDetector(subs, recs, engine, testFence)
}

func TestCheckDuplicateImageFlags(t *testing.T) {
	subs := newMemSubmissionStore()
	recs := newMemFraudRecordStore()
	detector := newTestDetector(subs, recs)
	ctx := context.Background()
	now := time.Now().UTC()

	prior := newSubmission("user-1", "batch-1", "ffffffff00000000", now.Add(-time.Hour))
	subs.Create(ctx, prior)

	probe := newSubmission("user-1", "batch-1", "ffffffff00000001", now)
	subs.Create(ctx, probe)

	record, err := detector.Check(ctx, probe)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if record == nil {
		t.Fatal("Expected a fraud record")
	}

	if record.Status != models.FraudPending {
		t.Errorf("New record should be pending, got %s", record.Status)
	}
	if len(record.Findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(record.Findings))
	}

	finding := record.Findings[0]
	if finding.Type != models.FindingDuplicateImage {
		t.Errorf("Expected duplicate-image finding, got %s", finding.Type)
	}
	if finding.MatchedSubmissionID == nil || *finding.MatchedSubmissionID != prior.ID {
		t.Error("Finding should reference the matched prior submission")
	}
	if finding.SimilarityScore == nil || *finding.SimilarityScore < 0.85 || *finding.SimilarityScore > 1.0 {
		t.Error("Similarity-based finding should carry a score in [0.85, 1.0]")
	}

	// Submission transitioned to flagged
	if stored := subs.get(probe.ID); stored.Status != models.SubmissionFlagged {
		t.Errorf("Submission should be flagged, got %s", stored.Status)
	}
}

func TestCheckTimestampAnomaly(t *testing.T) {
	subs := newMemSubmissionStore()
	recs := newMemFraudRecordStore()
	detector := newTestDetector(subs, recs)
	ctx := context.Background()
	now := time.Now().UTC()

	// Two later-dated submissions already on record. Distinct actors so
	// no window-based finding interferes; the sequence check is
	// batch-wide.
	laterA := newSubmission("user-2", "batch-1", "0000000000000000", now.Add(time.Hour))
	subs.Create(ctx, laterA)
	laterB := newSubmission("user-3", "batch-1", "ffffffffffffffff", now.Add(2*time.Hour))
	subs.Create(ctx, laterB)

	probe := newSubmission("user-1", "batch-1", "aaaaaaaaaaaaaaaa", now)
	subs.Create(ctx, probe)

	record, err := detector.Check(ctx, probe)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if record == nil {
		t.Fatal("Expected a fraud record")
	}
	if len(record.Findings) != 1 {
		t.Fatalf("Out-of-order set should produce exactly one finding, got %d", len(record.Findings))
	}

	finding := record.Findings[0]
	if finding.Type != models.FindingTimestampAnomaly {
		t.Errorf("Expected timestamp-anomaly finding, got %s", finding.Type)
	}

	var ids []string
	if err := json.Unmarshal(finding.MatchedIDs, &ids); err != nil {
		t.Fatalf("MatchedIDs should decode as a string list: %v", err)
	}
	if len(ids) != 2 || ids[0] != laterA.ID || ids[1] != laterB.ID {
		t.Errorf("Finding should list the full later-dated set in order, got %v", ids)
	}
}

func TestCheckMissingGPSProducesOneLocationFinding(t *testing.T) {
	subs := newMemSubmissionStore()
	recs := newMemFraudRecordStore()
	detector := newTestDetector(subs, recs)
	ctx := context.Background()

	probe := newSubmission("user-1", "batch-1", "ffffffff00000000", time.Now().UTC())
	probe.Latitude = nil
	probe.Longitude = nil
	subs.Create(ctx, probe)

	record, err := detector.Check(ctx, probe)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if record == nil {
		t.Fatal("Expected a fraud record")
	}
	if len(record.Findings) != 1 {
		t.Fatalf("Expected exactly one finding, got %d", len(record.Findings))
	}
	if record.Findings[0].Type != models.FindingLocationMismatch {
		t.Errorf("Expected location-mismatch finding, got %s", record.Findings[0].Type)
	}
}

func TestCheckCleanSubmission(t *testing.T) {
	subs := newMemSubmissionStore()
	recs := newMemFraudRecordStore()
	detector := newTestDetector(subs, recs)
	ctx := context.Background()

	probe := newSubmission("user-1", "batch-1", "ffffffff00000000", time.Now().UTC())
	subs.Create(ctx, probe)

	record, err := detector.Check(ctx, probe)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if record != nil {
		t.Error("Clean submission should not open a record")
	}
	if recs.count() != 0 {
		t.Errorf("No record should be persisted, found %d", recs.count())
	}
	if stored := subs.get(probe.ID); stored.Status != models.SubmissionPending {
		t.Errorf("Clean submission status should be unchanged, got %s", stored.Status)
	}
}

func TestCheckIdempotent(t *testing.T) {
	subs := newMemSubmissionStore()
	recs := newMemFraudRecordStore()
	detector := newTestDetector(subs, recs)
	ctx := context.Background()

	probe := newSubmission("user-1", "batch-1", "ffffffff00000000", time.Now().UTC())
	probe.Latitude = nil
	probe.Longitude = nil
	subs.Create(ctx, probe)

	first, err := detector.Check(ctx, probe)
	if err != nil {
		t.Fatalf("First check failed: %v", err)
	}
	second, err := detector.Check(ctx, probe)
	if err != nil {
		t.Fatalf("Second check failed: %v", err)
	}

	if recs.count() != 1 {
		t.Errorf("Re-evaluation must not create a second record, found %d", recs.count())
	}
	if first.ID != second.ID {
		t.Errorf("Both checks should resolve to the same record: %s vs %s", first.ID, second.ID)
	}
}

func TestFindingPositionsOrdered(t *testing.T) {
	subs := newMemSubmissionStore()
	recs := newMemFraudRecordStore()
	detector := newTestDetector(subs, recs)
	ctx := context.Background()
	now := time.Now().UTC()

	// Duplicate image + missing GPS + later-dated sibling at once
	prior := newSubmission("user-1", "batch-1", "ffffffff00000000", now.Add(-time.Hour))
	subs.Create(ctx, prior)
	later := newSubmission("user-2", "batch-1", "0000000000000000", now.Add(time.Hour))
	subs.Create(ctx, later)

	probe := newSubmission("user-1", "batch-1", "ffffffff00000000", now)
	probe.Latitude = nil
	probe.Longitude = nil
	subs.Create(ctx, probe)

	findings, err := detector.Findings(ctx, probe)
	if err != nil {
		t.Fatalf("Findings failed: %v", err)
	}
	if len(findings) != 3 {
		t.Fatalf("Expected 3 findings, got %d", len(findings))
	}
	for i, f := range findings {
		if f.Position != i {
			t.Errorf("Finding %d has position %d", i, f.Position)
		}
	}
}
