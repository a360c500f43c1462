package handlers

import (
	"net/http"
	"time"

	"github.com/akmajay1/poultry/internal/fraud"
	"github.com/akmajay1/poultry/internal/services/report"
)

// getFraudReports returns all fraud records with findings, newest first
func (r *Router) getFraudReports(w http.ResponseWriter, req *http.Request) {
	records, err := r.records.FindAll(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch fraud reports")
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// getDigest returns the daily digest for the trailing 24 hours
func (r *Router) getDigest(w http.ResponseWriter, req *http.Request) {
	digest, err := r.buildDigest(req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate digest")
		return
	}

	respondJSON(w, http.StatusOK, digest)
}

// getDigestPDF returns the daily digest rendered as a printable PDF
func (r *Router) getDigestPDF(w http.ResponseWriter, req *http.Request) {
	digest, err := r.buildDigest(req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate digest")
		return
	}

	pdf, err := report.GenerateDigestPDF(digest)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to render digest PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="fraud-digest-`+digest.Date+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func (r *Router) buildDigest(req *http.Request) (*fraud.DailyDigest, error) {
	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	if raw := req.URL.Query().Get("since"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			cutoff = parsed
		}
	}
	return fraud.GenerateDigest(req.Context(), r.records, cutoff)
}
