package models

import "time"

// Feedback is free-form feedback about the service itself. Stored in
// PostgreSQL, not in the vent collections.
type Feedback struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Feedback content
	Feedback string `json:"feedback"`

	// Optional: IP address for analytics (not personal info)
	IPAddress string `json:"ip_address,omitempty"`
}
