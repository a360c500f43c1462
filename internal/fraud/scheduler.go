package fraud

import (
	"context"
	"log"
	"time"
)

// DigestScheduler runs the daily digest at midnight UTC, covering the
// 24 hours before each run. It is independent of the evaluation
// pipeline and tolerates finding zero cases.
type DigestScheduler struct {
	records FraudRecordStore
	onReady func(*DailyDigest)
	stop    chan struct{}
}

// NewDigestScheduler creates a scheduler. onReady receives each
// generated digest (for logging, rendering, delivery); it may be nil.
func NewDigestScheduler(records FraudRecordStore, onReady func(*DailyDigest)) *DigestScheduler {
	return &DigestScheduler{
		records: records,
		onReady: onReady,
		stop:    make(chan struct{}),
	}
}

// Start launches the background loop.
func (s *DigestScheduler) Start() {
	go s.run()
	log.Println("✅ Digest scheduler started (daily at 00:00 UTC)")
}

// Stop terminates the background loop.
func (s *DigestScheduler) Stop() {
	close(s.stop)
}

func (s *DigestScheduler) run() {
	for {
		now := time.Now().UTC()
		next := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-timer.C:
			s.generate()
		case <-s.stop:
			timer.Stop()
			return
		}
	}
}

func (s *DigestScheduler) generate() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	digest, err := GenerateDigest(ctx, s.records, cutoff)
	if err != nil {
		log.Printf("❌ Daily digest generation failed: %v", err)
		return
	}

	log.Printf("📋 Daily fraud digest for %s: %d case(s)", digest.Date, digest.TotalCases)
	if s.onReady != nil {
		s.onReady(digest)
	}
}
