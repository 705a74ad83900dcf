package handlers

import (
	"github.com/ventlinehq/ventline-backend/internal/services"
	"github.com/ventlinehq/ventline-backend/internal/storage"
)

// Package-level collaborators, wired once at startup from cmd/server.
var (
	recordStore   storage.RecordStore
	conversations *services.ConversationService
	moderation    *services.ModerationService
	profiles      *services.ProfileService
)

// Init wires the handlers to their services. Must be called before any route
// is served.
func Init(
	store storage.RecordStore,
	conv *services.ConversationService,
	mod *services.ModerationService,
	prof *services.ProfileService,
) {
	recordStore = store
	conversations = conv
	moderation = mod
	profiles = prof
}
