package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akmajay1/poultry/internal/config"
	"github.com/akmajay1/poultry/internal/database"
	"github.com/akmajay1/poultry/internal/fraud"
	"github.com/akmajay1/poultry/internal/handlers"
	"github.com/akmajay1/poultry/internal/metrics"
	"github.com/akmajay1/poultry/internal/models"
	"github.com/akmajay1/poultry/internal/services/report"
	ws "github.com/akmajay1/poultry/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.User{},
		&models.Batch{},
		&models.ProofSubmission{},
		&models.FraudRecord{},
		&models.Finding{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Assemble the fraud detection pipeline
	submissions := fraud.NewGormSubmissionStore(db)
	records := fraud.NewGormFraudRecordStore(db)

	engine := fraud.NewSimilarityEngine(
		submissions,
		cfg.Fraud.SimilarityThreshold,
		time.Duration(cfg.Fraud.HistoryWindowHours)*time.Hour,
	)
	geofence := fraud.Geofence{
		Latitude:  cfg.Fraud.FarmLatitude,
		Longitude: cfg.Fraud.FarmLongitude,
		Radius:    cfg.Fraud.FarmRadius,
	}
	detector := fraud.NewDetector(submissions, records, engine, geofence)
	pipeline := fraud.NewPipeline(submissions, detector)
	log.Printf("✅ Fraud pipeline ready (farm %.4f,%.4f r=%.2f°, threshold %.2f, window %dh)",
		geofence.Latitude, geofence.Longitude, geofence.Radius,
		cfg.Fraud.SimilarityThreshold, cfg.Fraud.HistoryWindowHours)

	// 5. Reviewer alert hub
	hub := ws.NewAlertHub()
	go hub.Run()

	// 6. Nightly digest scheduler (renders the printable PDF as well)
	scheduler := fraud.NewDigestScheduler(records, func(digest *fraud.DailyDigest) {
		pdf, err := report.GenerateDigestPDF(digest)
		if err != nil {
			log.Printf("❌ Digest PDF rendering failed: %v", err)
			return
		}
		path := "fraud-digest-" + digest.Date + ".pdf"
		if err := os.WriteFile(path, pdf, 0o644); err != nil {
			log.Printf("❌ Digest PDF write failed: %v", err)
			return
		}
		log.Printf("📄 Digest PDF written to %s", path)
	})
	scheduler.Start()

	// 7. HTTP router
	router := handlers.NewRouter(db, cfg, pipeline, submissions, records, hub)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: metrics.InstrumentHandler(router),
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("🚀 Server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️  HTTP shutdown error: %v", err)
	}

	if err := db.Close(); err != nil {
		log.Printf("⚠️  Database close error: %v", err)
	}

	log.Println("👋 Shutdown complete")
}
