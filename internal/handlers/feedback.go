package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ventlinehq/ventline-backend/internal/database"
	"github.com/ventlinehq/ventline-backend/internal/models"
	"github.com/ventlinehq/ventline-backend/pkg/clientip"
)

// SubmitFeedbackRequest represents the request to submit feedback
type SubmitFeedbackRequest struct {
	Feedback string `json:"feedback"`
}

// SubmitFeedbackResponse represents the response after submitting feedback
type SubmitFeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GetFeedbacksResponse represents the response for getting feedbacks
type GetFeedbacksResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	Feedbacks []models.Feedback `json:"feedbacks"`
}

// SubmitFeedback handles submitting feedback about the service itself.
// Feedback rows live in PostgreSQL, separate from the vent collections.
func SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFeedbackError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Feedback == "" {
		writeFeedbackError(w, http.StatusBadRequest, "Feedback is required")
		return
	}
	if len(req.Feedback) < 10 {
		writeFeedbackError(w, http.StatusBadRequest, "Feedback must be at least 10 characters long")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// IP for analytics, not personal info
	ipAddress := clientip.RealClientIP(r)

	_, err := database.PostgresDB.ExecContext(ctx, `
		INSERT INTO feedbacks (feedback, ip_address) VALUES ($1, $2)
	`, req.Feedback, ipAddress)
	if err != nil {
		writeFeedbackError(w, http.StatusInternalServerError, "Failed to submit feedback")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SubmitFeedbackResponse{
		Success: true,
		Message: "Feedback submitted successfully. Thank you!",
	})
}

// GetFeedbacks handles getting all feedbacks (moderators only)
func GetFeedbacks(w http.ResponseWriter, r *http.Request) {
	moderatorID := r.URL.Query().Get("moderator_id")
	if !moderation.IsModerator(moderatorID) {
		writeFeedbackError(w, http.StatusForbidden, "You are not a moderator")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT id, created_at, feedback, COALESCE(ip_address, '')
		FROM feedbacks ORDER BY created_at DESC LIMIT 100
	`)
	if err != nil {
		writeFeedbackError(w, http.StatusInternalServerError, "Failed to fetch feedbacks")
		return
	}
	defer rows.Close()

	feedbacks := make([]models.Feedback, 0)
	for rows.Next() {
		var fb models.Feedback
		if err := rows.Scan(&fb.ID, &fb.CreatedAt, &fb.Feedback, &fb.IPAddress); err != nil {
			writeFeedbackError(w, http.StatusInternalServerError, "Failed to decode feedbacks")
			return
		}
		feedbacks = append(feedbacks, fb)
	}
	if err := rows.Err(); err != nil {
		writeFeedbackError(w, http.StatusInternalServerError, "Failed to fetch feedbacks")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetFeedbacksResponse{
		Success:   true,
		Feedbacks: feedbacks,
	})
}

func writeFeedbackError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(SubmitFeedbackResponse{
		Success: false,
		Message: message,
	})
}
