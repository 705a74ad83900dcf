package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/ventlinehq/ventline-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Vent routes
	r.Post("/api/vent", handlers.CreateVent)
	r.Get("/api/vent", handlers.GetVents)

	// Comment routes
	r.Post("/api/vent/comment", handlers.CreateComment)
	r.Get("/api/vent/comment", handlers.GetComments)

	// Profile routes
	r.Get("/api/profile", handlers.GetProfile)

	// Feedback routes
	r.Post("/api/feedback", handlers.SubmitFeedback)
	r.Get("/api/admin/feedbacks", handlers.GetFeedbacks)

	// Moderation routes
	r.Get("/api/admin/vents/pending", handlers.GetPendingVents)
	r.Put("/api/admin/vents/review", handlers.ReviewVent)

	// WebSocket endpoint for the chat submission flow
	r.Get("/ws/chat", handlers.ChatWebSocket)
}
