package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ventlinehq/ventline-backend/internal/services"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// ChatClientMessage represents messages coming from the frontend over WebSocket.
type ChatClientMessage struct {
	Type   string   `json:"type"` // "text", "button", "ping"
	Text   string   `json:"text,omitempty"`
	Action string   `json:"action,omitempty"`
	VentID string   `json:"vent_id,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// ChatServerMessage represents frames sent back to the frontend: prompts with
// the buttons now available, notices, and profile summaries.
type ChatServerMessage struct {
	Type    string                   `json:"type"` // "prompt", "notice", "profile", "error"
	Text    string                   `json:"text,omitempty"`
	Actions []services.Action        `json:"actions,omitempty"`
	Profile *services.ProfileSummary `json:"profile,omitempty"`
	VentID  string                   `json:"vent_id,omitempty"`
}

const (
	welcomeText = "Welcome to Ventline! Choose an option:"
	helpText    = "Step-by-step guide:\n" +
		"1. Press 'Start Vent' to send a vent.\n" +
		"2. Choose whether to show your identity.\n" +
		"3. Select if comments are allowed.\n" +
		"4. Your vent goes to moderation before it appears.\n" +
		"5. Browse approved vents and add comments anonymously."
	aboutText = "Ventline lets you vent safely and anonymously. Moderation keeps the space safe."
)

var mainMenu = []services.Action{
	services.ActionStartVent,
	services.ActionMyProfile,
	services.ActionCancel,
}

// userLocks serializes events per user: a single user's session behaves like a
// single-threaded state machine even if they hold multiple connections.
// Different users never contend.
var userLocks sync.Map

func lockUser(userID string) *sync.Mutex {
	mu, _ := userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// ChatWebSocket is the chat gateway. It turns socket frames into submission
// events, runs them through the conversation flow, and renders the resulting
// prompt or notice back to the client. Clients identify themselves with a
// `user_id` query parameter; anonymous connections get a generated one.
func ChatWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "anon:" + uuid.NewString()
	}

	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Greet with the main menu (the chat equivalent of /start)
	_ = conn.WriteJSON(ChatServerMessage{
		Type:    "prompt",
		Text:    welcomeText,
		Actions: mainMenu,
	})

	conn.SetReadLimit(64 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))

		var msg ChatClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "text", "button":
			handleChatEvent(context.Background(), conn, userID, msg)
		case "ping":
			// Keepalive only
		default:
			// Ignore unknown types
		}
	}
}

// handleChatEvent routes one inbound event. Profile, help and about are
// answered directly; everything else goes through the submission flow.
func handleChatEvent(ctx context.Context, conn *websocket.Conn, userID string, msg ChatClientMessage) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if msg.Type == "button" {
		switch msg.Action {
		case string(services.ActionMyProfile):
			summary, err := profiles.Summary(ctx, userID)
			if err != nil {
				_ = conn.WriteJSON(ChatServerMessage{Type: "error", Text: "Failed to load your profile. Please try again."})
				return
			}
			_ = conn.WriteJSON(ChatServerMessage{Type: "profile", Profile: summary})
			return
		case "help":
			_ = conn.WriteJSON(ChatServerMessage{Type: "notice", Text: helpText})
			return
		case "about_us":
			_ = conn.WriteJSON(ChatServerMessage{Type: "notice", Text: aboutText})
			return
		}
	}

	event := services.Event{
		UserID: userID,
		VentID: msg.VentID,
		Tags:   msg.Tags,
	}
	switch msg.Type {
	case "text":
		event.Type = services.EventText
		event.Text = msg.Text
	case "button":
		event.Type = services.EventButton
		event.Action = services.Action(msg.Action)
	}

	// Serialize events for this user so conversation transitions never
	// interleave.
	mu := lockUser(userID)
	mu.Lock()
	effect, err := conversations.HandleEvent(ctx, event)
	mu.Unlock()

	if err != nil {
		// Conversation state was left unchanged; the user can retry the step.
		text := effect.Text
		if text == "" {
			text = "Something went wrong. Please try again."
		}
		_ = conn.WriteJSON(ChatServerMessage{Type: "error", Text: text})
		return
	}

	out := ChatServerMessage{Text: effect.Text, Actions: effect.Actions}
	switch effect.Type {
	case services.EffectPrompt:
		out.Type = "prompt"
	case services.EffectCommittedVent, services.EffectCommittedComment, services.EffectCancelled:
		// Flow finished; offer the main menu again.
		out.Type = "notice"
		out.Actions = mainMenu
	default:
		out.Type = "notice"
	}
	if effect.Vent != nil {
		out.VentID = effect.Vent.ID.Hex()
	}
	if effect.Comment != nil {
		out.VentID = effect.Comment.VentID.Hex()
	}
	_ = conn.WriteJSON(out)
}
