package fraud

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/akmajay1/poultry/internal/models"
	"github.com/google/uuid"
)

// memSubmissionStore is an in-memory SubmissionStore with the same
// filter semantics as the GORM implementation.
type memSubmissionStore struct {
	mu       sync.Mutex
	subs     map[string]*models.ProofSubmission
	failWith error // fails every operation
	failRead error // fails lookups only, writes still succeed
}

func newMemSubmissionStore() *memSubmissionStore {
	return &memSubmissionStore{subs: make(map[string]*models.ProofSubmission)}
}

func (s *memSubmissionStore) Create(ctx context.Context, sub *models.ProofSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	sub.CreatedAt = time.Now().UTC()
	clone := *sub
	s.subs[sub.ID] = &clone
	return nil
}

func (s *memSubmissionStore) FindRecentByActorAndBatch(ctx context.Context, userID, batchID string, since time.Time, excludeID string) ([]models.ProofSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	if s.failRead != nil {
		return nil, s.failRead
	}
	var out []models.ProofSubmission
	for _, sub := range s.subs {
		if sub.ID == excludeID || sub.UserID != userID || sub.BatchID != batchID {
			continue
		}
		if sub.ClaimedAt.Before(since) {
			continue
		}
		out = append(out, *sub)
	}
	sortByClaimedAt(out)
	return out, nil
}

func (s *memSubmissionStore) FindLaterInBatch(ctx context.Context, batchID string, after time.Time, excludeID string) ([]models.ProofSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	if s.failRead != nil {
		return nil, s.failRead
	}
	var out []models.ProofSubmission
	for _, sub := range s.subs {
		if sub.ID == excludeID || sub.BatchID != batchID {
			continue
		}
		if !sub.ClaimedAt.After(after) {
			continue
		}
		out = append(out, *sub)
	}
	sortByClaimedAt(out)
	return out, nil
}

func (s *memSubmissionStore) UpdateStatus(ctx context.Context, id, status, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if sub, ok := s.subs[id]; ok {
		sub.Status = status
		sub.FlaggedReason = reason
	}
	return nil
}

func (s *memSubmissionStore) FindByBatch(ctx context.Context, batchID string) ([]models.ProofSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	if s.failRead != nil {
		return nil, s.failRead
	}
	var out []models.ProofSubmission
	for _, sub := range s.subs {
		if sub.BatchID == batchID {
			out = append(out, *sub)
		}
	}
	sortByClaimedAt(out)
	return out, nil
}

func (s *memSubmissionStore) get(id string) *models.ProofSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs[id]
}

func sortByClaimedAt(subs []models.ProofSubmission) {
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].ClaimedAt.Before(subs[j].ClaimedAt)
	})
}

// memFraudRecordStore is an in-memory FraudRecordStore enforcing the
// one-record-per-submission constraint.
type memFraudRecordStore struct {
	mu       sync.Mutex
	records  map[string]*models.FraudRecord // keyed by submission ID
	failWith error
}

func newMemFraudRecordStore() *memFraudRecordStore {
	return &memFraudRecordStore{records: make(map[string]*models.FraudRecord)}
}

func (s *memFraudRecordStore) CreateIfAbsent(ctx context.Context, rec *models.FraudRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	if existing, ok := s.records[rec.SubmissionID]; ok {
		*rec = *existing
		return false, nil
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	for i := range rec.Findings {
		if rec.Findings[i].ID == "" {
			rec.Findings[i].ID = uuid.NewString()
		}
		rec.Findings[i].FraudRecordID = rec.ID
	}
	clone := *rec
	s.records[rec.SubmissionID] = &clone
	return true, nil
}

func (s *memFraudRecordStore) ExistsForSubmission(ctx context.Context, submissionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	_, ok := s.records[submissionID]
	return ok, nil
}

func (s *memFraudRecordStore) FindSince(ctx context.Context, cutoff time.Time) ([]models.FraudRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []models.FraudRecord
	for _, rec := range s.records {
		if rec.DetectedAt.Before(cutoff) {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DetectedAt.Before(out[j].DetectedAt)
	})
	return out, nil
}

func (s *memFraudRecordStore) FindAll(ctx context.Context) ([]models.FraudRecord, error) {
	return s.FindSince(ctx, time.Time{})
}

func (s *memFraudRecordStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
