package fraud

import (
	"context"
	"strings"
	"time"
)

// DigestCase is one flagged submission in a daily digest.
type DigestCase struct {
	RecordID       string `json:"recordId"`
	UserID         string `json:"userId"`
	Username       string `json:"username,omitempty"`
	SubmissionID   string `json:"submissionId"`
	DetectionTypes string `json:"detectionTypes"`
	Status         string `json:"status"`
}

// DailyDigest summarizes the fraud records opened since a cutoff.
type DailyDigest struct {
	Date        string       `json:"date"`
	TotalCases  int          `json:"totalCases"`
	Cases       []DigestCase `json:"cases"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// GenerateDigest builds the daily summary of fraud records detected at
// or after cutoff. It reads records only, never mutating their review
// status, and a day with zero cases yields an empty (not nil-fielded)
// digest.
func GenerateDigest(ctx context.Context, records FraudRecordStore, cutoff time.Time) (*DailyDigest, error) {
	found, err := records.FindSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	digest := &DailyDigest{
		Date:        now.Format("2006-01-02"),
		TotalCases:  len(found),
		Cases:       make([]DigestCase, 0, len(found)),
		GeneratedAt: now,
	}

	for _, rec := range found {
		types := make([]string, len(rec.Findings))
		for i, f := range rec.Findings {
			types[i] = f.Type
		}

		c := DigestCase{
			RecordID:       rec.ID,
			UserID:         rec.UserID,
			SubmissionID:   rec.SubmissionID,
			DetectionTypes: strings.Join(types, ", "),
			Status:         rec.Status,
		}
		if rec.User != nil {
			c.Username = rec.User.Username
		}
		digest.Cases = append(digest.Cases, c)
	}

	return digest, nil
}
