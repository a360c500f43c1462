package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/akmajay1/poultry/internal/fraud"
	"github.com/akmajay1/poultry/internal/imaging"
	"github.com/akmajay1/poultry/internal/metrics"
	"github.com/akmajay1/poultry/internal/middleware"
	ws "github.com/akmajay1/poultry/internal/websocket"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxImageSize = 5 << 20 // 5MB

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// submitProof ingests a proof-of-count image with its asserted fields
// and runs the fraud evaluation over it. The submission is accepted
// even when the fraud check itself fails; only an invalid image or
// missing required fields reject the request.
func (r *Router) submitProof(w http.ResponseWriter, req *http.Request) {
	userID, ok := requestUserID(req)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Invalid token claims")
		return
	}

	if err := req.ParseMultipartForm(maxImageSize + 1<<20); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	file, header, err := req.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No image provided")
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		respondError(w, http.StatusBadRequest, "File size exceeds limit. Maximum size is 5MB.")
		return
	}
	if ct := header.Header.Get("Content-Type"); !allowedImageTypes[ct] {
		respondError(w, http.StatusBadRequest, "Invalid file type. Only JPEG and PNG images are allowed.")
		return
	}

	imageData, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil || int64(len(imageData)) > maxImageSize {
		respondError(w, http.StatusBadRequest, "Could not read image")
		return
	}

	batchID := req.FormValue("batchId")
	timestampRaw := req.FormValue("timestamp")
	totalRaw := req.FormValue("totalCount")
	if batchID == "" || timestampRaw == "" || totalRaw == "" {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	claimedAt, err := time.Parse(time.RFC3339, timestampRaw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid timestamp")
		return
	}
	// Claims older than a day (or from the future) are rejected at the
	// boundary; ordering anomalies inside the window are the pipeline's
	// job, not ours.
	if age := time.Since(claimedAt); age > 24*time.Hour || age < -time.Hour {
		respondError(w, http.StatusBadRequest, "Timestamp outside the accepted window")
		return
	}

	totalCount, err := strconv.Atoi(totalRaw)
	if err != nil || totalCount < 0 {
		respondError(w, http.StatusBadRequest, "Invalid totalCount")
		return
	}
	deceasedCount := 0
	if raw := req.FormValue("deceasedCount"); raw != "" {
		if deceasedCount, err = strconv.Atoi(raw); err != nil || deceasedCount < 0 {
			respondError(w, http.StatusBadRequest, "Invalid deceasedCount")
			return
		}
	}

	// A missing or malformed coordinate is not a rejection: it flows
	// into the pipeline and surfaces as a location-mismatch finding.
	lat := parseCoordinate(req.FormValue("latitude"), 90)
	lon := parseCoordinate(req.FormValue("longitude"), 180)

	imageURL, err := r.storeImage(imageData, header.Filename)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	result, err := r.pipeline.Evaluate(req.Context(), fraud.EvaluateInput{
		Image:         imageData,
		UserID:        userID,
		BatchID:       batchID,
		ImageURL:      imageURL,
		ClaimedAt:     claimedAt,
		Latitude:      lat,
		Longitude:     lon,
		TotalCount:    totalCount,
		DeceasedCount: deceasedCount,
		Notes:         req.FormValue("notes"),
	})
	if err != nil {
		if errors.Is(err, imaging.ErrInvalidImage) {
			metrics.RecordEvaluation("invalid_image")
			respondError(w, http.StatusBadRequest, "Image could not be decoded")
			return
		}
		respondError(w, http.StatusInternalServerError, "Error submitting proof")
		return
	}

	r.recordOutcome(result)

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Proof submitted successfully",
		"evaluation": result,
		"isFlagged":  result.Flagged(),
	})
}

// recordOutcome updates metrics and pushes the reviewer alert for one
// completed evaluation.
func (r *Router) recordOutcome(result *fraud.EvaluateResult) {
	switch {
	case !result.CheckComplete:
		metrics.RecordEvaluation("incomplete")
	case result.Flagged():
		metrics.RecordEvaluation("flagged")
	default:
		metrics.RecordEvaluation("clean")
	}

	if !result.Flagged() {
		return
	}

	types := make([]string, len(result.Findings))
	for i, f := range result.Findings {
		metrics.RecordFinding(f.Type)
		types[i] = f.Type
	}

	r.hub.Broadcast(ws.FraudAlert{
		SubmissionID:  result.Submission.ID,
		FraudRecordID: result.FraudRecordID,
		UserID:        result.Submission.UserID,
		BatchID:       result.Submission.BatchID,
		FindingTypes:  types,
		DetectedAt:    time.Now().UTC(),
	})
}

// getBatchSubmissions returns all submissions for a batch
func (r *Router) getBatchSubmissions(w http.ResponseWriter, req *http.Request) {
	batchID := mux.Vars(req)["batchId"]

	subs, err := r.submissions.FindByBatch(req.Context(), batchID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch submissions")
		return
	}

	respondJSON(w, http.StatusOK, subs)
}

// storeImage writes the uploaded buffer under the configured upload dir
func (r *Router) storeImage(data []byte, originalName string) (string, error) {
	if err := os.MkdirAll(r.cfg.UploadDir, 0o755); err != nil {
		return "", err
	}

	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".jpg"
	}
	name := fmt.Sprintf("%s%s", uuid.NewString(), ext)

	if err := os.WriteFile(filepath.Join(r.cfg.UploadDir, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// parseCoordinate returns nil for missing, non-numeric or out-of-range
// values so they surface downstream as a location mismatch.
func parseCoordinate(raw string, bound float64) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < -bound || v > bound {
		return nil
	}
	return &v
}

// requestUserID extracts the authenticated user's ID from JWT claims
func requestUserID(req *http.Request) (string, bool) {
	claims, ok := req.Context().Value(middleware.UserContextKey).(jwt.MapClaims)
	if !ok {
		return "", false
	}
	id, ok := claims["id"].(string)
	return id, ok && id != ""
}
