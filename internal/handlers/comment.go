package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ventlinehq/ventline-backend/internal/models"
	"github.com/ventlinehq/ventline-backend/internal/services"
	"github.com/ventlinehq/ventline-backend/internal/storage"
)

// CreateCommentRequest represents the request to comment on a vent
type CreateCommentRequest struct {
	Text     string `json:"text"`
	UserID   string `json:"user_id"`
	Identity string `json:"identity"` // "show" or "hide"; defaults to hide
}

// CommentResponse represents the response after creating a comment
type CommentResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Comment map[string]interface{} `json:"comment,omitempty"`
}

// GetCommentsResponse represents the response for listing a vent's comments
type GetCommentsResponse struct {
	Success  bool                     `json:"success"`
	Message  string                   `json:"message,omitempty"`
	Comments []map[string]interface{} `json:"comments"`
}

// CreateComment attaches a comment to an approved vent that allows comments.
// Comments publish immediately; there is no approval gate on them.
func CreateComment(w http.ResponseWriter, r *http.Request) {
	ventID := r.URL.Query().Get("vent_id")
	if ventID == "" {
		writeCommentError(w, http.StatusBadRequest, "Vent ID is required")
		return
	}

	objectID, err := primitive.ObjectIDFromHex(ventID)
	if err != nil {
		writeCommentError(w, http.StatusBadRequest, "Invalid vent ID")
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCommentError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		writeCommentError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if req.UserID == "" {
		writeCommentError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	choice := services.IdentityChoice(req.Identity)
	if req.Identity == "" {
		choice = services.ChoiceHide
	}
	identity, err := services.ResolveIdentity(choice, req.UserID)
	if err != nil {
		writeCommentError(w, http.StatusBadRequest, "Identity must be 'show' or 'hide'")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	comment, err := recordStore.CreateComment(ctx, &models.Comment{
		VentID:   objectID,
		AuthorID: req.UserID,
		Text:     req.Text,
		Identity: identity,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeCommentError(w, http.StatusNotFound, "Vent not found")
		case errors.Is(err, storage.ErrNotApproved):
			writeCommentError(w, http.StatusForbidden, "Vent has not been approved yet")
		case errors.Is(err, storage.ErrCommentsDisabled):
			writeCommentError(w, http.StatusForbidden, "Comments are disabled on this vent")
		default:
			writeCommentError(w, http.StatusInternalServerError, "Failed to create comment")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CommentResponse{
		Success: true,
		Message: "Comment added to vent ✅",
		Comment: commentMap(comment),
	})
}

// GetComments lists the comments on an approved vent, oldest first.
func GetComments(w http.ResponseWriter, r *http.Request) {
	ventID := r.URL.Query().Get("vent_id")
	if ventID == "" {
		writeCommentError(w, http.StatusBadRequest, "Vent ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Comments on unapproved vents stay invisible along with the vent.
	vent, err := recordStore.VentByID(ctx, ventID)
	if errors.Is(err, storage.ErrNotFound) {
		writeCommentError(w, http.StatusNotFound, "Vent not found")
		return
	}
	if err != nil {
		writeCommentError(w, http.StatusInternalServerError, "Failed to fetch vent")
		return
	}
	if !vent.IsApproved() {
		writeCommentError(w, http.StatusNotFound, "Vent not found")
		return
	}

	comments, err := recordStore.CommentsByVent(ctx, ventID)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(GetCommentsResponse{
			Success:  false,
			Message:  "Failed to fetch comments",
			Comments: []map[string]interface{}{},
		})
		return
	}

	commentMaps := make([]map[string]interface{}, 0, len(comments))
	for i := range comments {
		commentMaps = append(commentMaps, commentMap(&comments[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetCommentsResponse{
		Success:  true,
		Comments: commentMaps,
	})
}

// commentMap is the public shape of a comment; author_id stays server-side.
func commentMap(comment *models.Comment) map[string]interface{} {
	return map[string]interface{}{
		"id":         comment.ID.Hex(),
		"vent_id":    comment.VentID.Hex(),
		"text":       comment.Text,
		"identity":   comment.Identity,
		"created_at": comment.CreatedAt,
	}
}

func writeCommentError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(CommentResponse{
		Success: false,
		Message: message,
	})
}
