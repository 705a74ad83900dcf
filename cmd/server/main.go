package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/ventlinehq/ventline-backend/internal/config"
	"github.com/ventlinehq/ventline-backend/internal/database"
	"github.com/ventlinehq/ventline-backend/internal/handlers"
	"github.com/ventlinehq/ventline-backend/internal/middleware"
	"github.com/ventlinehq/ventline-backend/internal/routes"
	"github.com/ventlinehq/ventline-backend/internal/services"
	"github.com/ventlinehq/ventline-backend/internal/storage"
	"github.com/ventlinehq/ventline-backend/internal/storage/memstore"
	"github.com/ventlinehq/ventline-backend/internal/storage/mongostore"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	if len(cfg.ModeratorIDs) == 0 {
		log.Println("⚠️  WARNING: MODERATOR_IDS not set. No one can review vents; every vent stays pending.")
		log.Println("   Set it in your environment: MODERATOR_IDS=<id1>,<id2>")
	}

	// Connect to Redis (conversation drafts, profile cache, rate limits)
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to PostgreSQL (feedbacks, review audit)
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to MongoDB (vents, comments). Without a Mongo URI the server
	// falls back to an in-memory store for local development.
	var recordStore storage.RecordStore
	if cfg.MongoURI != "" {
		log.Printf("Connecting to MongoDB...")
		if err := database.Connect(cfg.MongoURI); err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer database.Disconnect()

		mongoStore := mongostore.New(database.DB)
		if err := mongoStore.EnsureIndexes(context.Background()); err != nil {
			log.Printf("⚠️  WARNING: failed to ensure MongoDB indexes: %v", err)
		} else {
			log.Println("✅ MongoDB indexes ensured")
		}
		recordStore = mongoStore
	} else {
		log.Println("⚠️  WARNING: MONGODB_URI not set. Using in-memory record store; vents will NOT survive restarts.")
		recordStore = memstore.New()
	}

	// Wire services
	sessions := services.NewRedisSessions(cfg.SessionTTL)
	conversations := services.NewConversationService(recordStore, sessions)
	moderation := services.NewModerationService(recordStore, cfg.ModeratorIDs)
	profiles := services.NewProfileService(recordStore)
	handlers.Init(recordStore, conversations, moderation, profiles)

	// Setup router
	r := chi.NewRouter()

	// Custom CORS: set headers and respond to OPTIONS with 200 so preflight never gets 403
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware)

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Setup routes
	routes.SetupRoutes(r)

	// Log registered routes for debugging
	log.Println("📋 Registered routes:")
	log.Println("  GET  /health")
	log.Println("  POST /api/vent")
	log.Println("  GET  /api/vent")
	log.Println("  POST /api/vent/comment")
	log.Println("  GET  /api/vent/comment")
	log.Println("  GET  /api/profile")
	log.Println("  POST /api/feedback")
	log.Println("  GET  /api/admin/feedbacks")
	log.Println("  GET  /api/admin/vents/pending")
	log.Println("  PUT  /api/admin/vents/review")
	log.Println("  GET  /ws/chat")

	log.Printf("🚀 Ventline backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
