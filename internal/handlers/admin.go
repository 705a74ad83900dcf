package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ventlinehq/ventline-backend/internal/services"
	"github.com/ventlinehq/ventline-backend/internal/storage"
)

// ReviewResponse represents the response after a moderation decision
type ReviewResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GetPendingVents returns the moderation queue (newest first). Only user IDs
// in the configured moderator set may call this.
func GetPendingVents(w http.ResponseWriter, r *http.Request) {
	moderatorID := r.URL.Query().Get("moderator_id")

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	vents, err := moderation.Pending(ctx, moderatorID, limit)
	if err != nil {
		if errors.Is(err, services.ErrNotAuthorized) {
			writeReviewError(w, http.StatusForbidden, "You are not a moderator")
			return
		}
		writeReviewError(w, http.StatusInternalServerError, "Failed to fetch pending vents")
		return
	}

	ventMaps := make([]map[string]interface{}, 0, len(vents))
	for i := range vents {
		m := ventMap(&vents[i])
		// Moderators see the author so repeat offenders are recognizable
		m["author_id"] = vents[i].AuthorID
		ventMaps = append(ventMaps, m)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"vents":   ventMaps,
		"count":   len(ventMaps),
	})
}

// ReviewVent applies a moderator decision to a pending vent. The transition is
// one-shot: reviewing an already-reviewed vent returns 409 and the original
// decision stands.
func ReviewVent(w http.ResponseWriter, r *http.Request) {
	ventID := r.URL.Query().Get("id")
	if ventID == "" {
		writeReviewError(w, http.StatusBadRequest, "Vent ID is required")
		return
	}
	moderatorID := r.URL.Query().Get("moderator_id")
	if moderatorID == "" {
		writeReviewError(w, http.StatusBadRequest, "Moderator ID is required")
		return
	}
	decision := services.Decision(r.URL.Query().Get("decision"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := moderation.Review(ctx, ventID, moderatorID, decision)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAuthorized):
			writeReviewError(w, http.StatusForbidden, "You are not a moderator")
		case errors.Is(err, services.ErrInvalidDecision):
			writeReviewError(w, http.StatusBadRequest, "Decision must be 'approve' or 'reject'")
		case errors.Is(err, storage.ErrNotFound):
			writeReviewError(w, http.StatusNotFound, "Vent not found")
		case errors.Is(err, storage.ErrAlreadyReviewed):
			writeReviewError(w, http.StatusConflict, "Vent has already been reviewed")
		default:
			writeReviewError(w, http.StatusInternalServerError, "Failed to review vent")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ReviewResponse{
		Success: true,
		Message: "Vent reviewed successfully",
	})
}

func writeReviewError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ReviewResponse{
		Success: false,
		Message: message,
	})
}
