package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL. It holds the feedbacks table and the
// moderation review audit log; vent content stays in MongoDB.
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables() error {
	queries := []string{
		// Feedbacks table (service feedback from the chat "Feedback" button)
		`CREATE TABLE IF NOT EXISTS feedbacks (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			feedback TEXT NOT NULL,
			ip_address VARCHAR(255)
		)`,

		// Review audit table (one row per moderation decision)
		`CREATE TABLE IF NOT EXISTS review_audit (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			vent_id VARCHAR(255) NOT NULL,
			moderator_id VARCHAR(255) NOT NULL,
			decision VARCHAR(50) NOT NULL
		)`,

		// Indexes for admin listing
		`CREATE INDEX IF NOT EXISTS idx_feedbacks_created_at ON feedbacks(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_review_audit_created_at ON review_audit(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_review_audit_vent_id ON review_audit(vent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_review_audit_moderator_id ON review_audit(moderator_id)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
