package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ventlinehq/ventline-backend/internal/models"
)

// CreateVentRequest represents the request to create a vent
type CreateVentRequest struct {
	Text   string `json:"text"`
	UserID string `json:"user_id,omitempty"` // Optional - anonymous callers get a generated one
}

// CreateVentResponse represents the response after creating a vent
type CreateVentResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Vent    map[string]interface{} `json:"vent,omitempty"`
}

// GetVentsResponse represents the response for the approved feed
type GetVentsResponse struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message,omitempty"`
	Vents   []map[string]interface{} `json:"vents"`
	HasMore bool                     `json:"has_more"`
	Total   int64                    `json:"total"`
}

// CreateVent is the REST fast path: any text posted here becomes a pending
// vent with the defaults (identity hidden, comments allowed, no tags), same as
// stray chat text with no session in progress.
func CreateVent(w http.ResponseWriter, r *http.Request) {
	var req CreateVentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVentError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Text == "" {
		writeVentError(w, http.StatusBadRequest, "Text is required")
		return
	}

	authorID := req.UserID
	if authorID == "" {
		authorID = "web:" + uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	vent, err := recordStore.CreateVent(ctx, &models.Vent{
		AuthorID:      authorID,
		Text:          req.Text,
		Identity:      models.IdentityHidden,
		AllowComments: true,
		Tags:          []string{},
		ApprovalState: models.ApprovalPending,
	})
	if err != nil {
		writeVentError(w, http.StatusInternalServerError, "Failed to create vent")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CreateVentResponse{
		Success: true,
		Message: "Your vent has been sent for moderation 🔥",
		Vent:    ventMap(vent),
	})
}

// GetVents returns the approved feed with pagination (newest first). Pending
// and rejected vents never appear here.
func GetVents(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	skipStr := r.URL.Query().Get("skip")

	// Parse limit (default: 20)
	limit := 20
	if limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	// Parse skip (default: 0)
	skip := 0
	if skipStr != "" {
		if parsedSkip, err := strconv.Atoi(skipStr); err == nil && parsedSkip >= 0 {
			skip = parsedSkip
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	vents, total, err := recordStore.ApprovedVents(ctx, limit, skip)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(GetVentsResponse{
			Success: false,
			Message: "Failed to fetch vents",
			Vents:   []map[string]interface{}{},
		})
		return
	}

	ventMaps := make([]map[string]interface{}, 0, len(vents))
	for i := range vents {
		ventMaps = append(ventMaps, ventMap(&vents[i]))
	}

	hasMore := int64(skip+limit) < total

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetVentsResponse{
		Success: true,
		Vents:   ventMaps,
		HasMore: hasMore,
		Total:   total,
	})
}

// ventMap is the public shape of a vent. The author_id never leaves the
// server; readers only see the chosen identity value.
func ventMap(vent *models.Vent) map[string]interface{} {
	return map[string]interface{}{
		"id":             vent.ID.Hex(),
		"text":           vent.Text,
		"identity":       vent.Identity,
		"allow_comments": vent.AllowComments,
		"tags":           vent.Tags,
		"approval_state": vent.ApprovalState,
		"created_at":     vent.CreatedAt,
	}
}

func writeVentError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(CreateVentResponse{
		Success: false,
		Message: message,
	})
}
