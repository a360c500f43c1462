package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akmajay1/poultry/internal/models"
)

// listBatches returns the authenticated user's batches
func (r *Router) listBatches(w http.ResponseWriter, req *http.Request) {
	userID, ok := requestUserID(req)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Invalid token claims")
		return
	}

	var batches []models.Batch
	if err := r.db.Where("owner_id = ?", userID).Order("created_at DESC").Find(&batches).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch batches")
		return
	}

	respondJSON(w, http.StatusOK, batches)
}

// createBatch creates a new batch owned by the authenticated user
func (r *Router) createBatch(w http.ResponseWriter, req *http.Request) {
	userID, ok := requestUserID(req)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Invalid token claims")
		return
	}

	var batch models.Batch
	if err := json.NewDecoder(req.Body).Decode(&batch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if batch.Name == "" {
		respondError(w, http.StatusBadRequest, "Batch name is required")
		return
	}
	batch.OwnerID = userID

	if err := r.db.Create(&batch).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create batch")
		return
	}

	respondJSON(w, http.StatusCreated, batch)
}
