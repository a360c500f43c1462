package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akmajay1/poultry/internal/config"
	"github.com/akmajay1/poultry/internal/database"
	"github.com/akmajay1/poultry/internal/fraud"
	"github.com/akmajay1/poultry/internal/metrics"
	"github.com/akmajay1/poultry/internal/middleware"
	ws "github.com/akmajay1/poultry/internal/websocket"
	"github.com/gorilla/mux"
)

// Router wraps the mux router and the fraud pipeline's collaborators
type Router struct {
	*mux.Router
	db          *database.DB
	cfg         *config.Config
	pipeline    *fraud.Pipeline
	submissions fraud.SubmissionStore
	records     fraud.FraudRecordStore
	hub         *ws.AlertHub
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, cfg *config.Config, pipeline *fraud.Pipeline, submissions fraud.SubmissionStore, records fraud.FraudRecordStore, hub *ws.AlertHub) *Router {
	r := &Router{
		Router:      mux.NewRouter(),
		db:          db,
		cfg:         cfg,
		pipeline:    pipeline,
		submissions: submissions,
		records:     records,
		hub:         hub,
	}

	// Health check and metrics
	r.HandleFunc("/health", r.healthCheck).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(cfg.JWTSecret))

	api.HandleFunc("/proofs", r.submitProof).Methods("POST")
	api.HandleFunc("/proofs/batch/{batchId}", r.getBatchSubmissions).Methods("GET")

	api.HandleFunc("/batches", r.listBatches).Methods("GET")
	api.HandleFunc("/batches", r.createBatch).Methods("POST")

	api.HandleFunc("/fraud/reports", r.getFraudReports).Methods("GET")
	api.HandleFunc("/fraud/digest", r.getDigest).Methods("GET")
	api.HandleFunc("/fraud/digest.pdf", r.getDigestPDF).Methods("GET")

	// Live fraud alerts for reviewer dashboards
	r.HandleFunc("/ws/alerts", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeAlerts(hub, w, req)
	})

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"reviewers": r.hub.ClientCount(),
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
