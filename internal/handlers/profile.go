package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// ProfileResponse represents the response for a user's profile summary
type ProfileResponse struct {
	Success             bool    `json:"success"`
	Message             string  `json:"message,omitempty"`
	Vents               int64   `json:"vents"`
	Comments            int64   `json:"comments"`
	ImpactPoints        int     `json:"impact_points"`
	CommunityAcceptance float64 `json:"community_acceptance"`
}

// GetProfile returns the caller's vent/comment counts. Counts include vents
// of every approval state; only the public feed filters on approval.
func GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ProfileResponse{
			Success: false,
			Message: "User ID is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	summary, err := profiles.Summary(ctx, userID)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ProfileResponse{
			Success: false,
			Message: "Failed to fetch profile",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ProfileResponse{
		Success:             true,
		Vents:               summary.VentCount,
		Comments:            summary.CommentCount,
		ImpactPoints:        summary.ImpactPoints,
		CommunityAcceptance: summary.CommunityAcceptance,
	})
}
