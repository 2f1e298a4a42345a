package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the DevCampfire schema on PostgreSQL.
func Migrate(db *sql.DB) error {
	stmts := []string{
		// Users
		`CREATE TABLE IF NOT EXISTS users (
			id              UUID PRIMARY KEY,
			github_username VARCHAR(100) UNIQUE NOT NULL,
			name            TEXT,
			email           VARCHAR(100) UNIQUE,
			image_url       TEXT,
			bio             TEXT,
			role            VARCHAR(20)  NOT NULL DEFAULT 'user',
			status          VARCHAR(20)  NOT NULL DEFAULT 'offline',
			last_active_at  TIMESTAMPTZ,
			settings        JSONB        NOT NULL DEFAULT '{}',
			created_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		// Conversations; dm_key is the canonical participant-pair key for dms
		`CREATE TABLE IF NOT EXISTS conversations (
			id          UUID PRIMARY KEY,
			type        VARCHAR(10)  NOT NULL,
			name        VARCHAR(100),
			description TEXT,
			created_by  UUID REFERENCES users(id) ON DELETE SET NULL,
			dm_key      TEXT UNIQUE,
			created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		// Participants
		`CREATE TABLE IF NOT EXISTS conversation_participants (
			id              UUID PRIMARY KEY,
			conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			user_id         UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			is_admin        BOOLEAN     NOT NULL DEFAULT FALSE,
			joined_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (conversation_id, user_id)
		)`,

		// Messages
		`CREATE TABLE IF NOT EXISTS messages (
			id              UUID PRIMARY KEY,
			conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			sender_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content         TEXT        NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// Read watermarks
		`CREATE TABLE IF NOT EXISTS conversation_reads (
			id                   UUID PRIMARY KEY,
			conversation_id      UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			user_id              UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			last_read_message_id UUID,
			updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (conversation_id, user_id)
		)`,

		// Projects
		`CREATE TABLE IF NOT EXISTS projects (
			id              UUID PRIMARY KEY,
			name            VARCHAR(100) NOT NULL,
			description     TEXT,
			type            VARCHAR(20)  NOT NULL DEFAULT 'public',
			owner_id        UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			repo_url        TEXT,
			languages       JSONB        NOT NULL DEFAULT '[]',
			conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			created_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_github_username ON users(github_username)`,
		`CREATE INDEX IF NOT EXISTS idx_users_status ON users(status)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_type ON conversations(type)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_conv_participants_user ON conversation_participants(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_conv_participants_conv ON conversation_participants(conversation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conv_created ON messages(conversation_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_reads_conv_user ON conversation_reads(conversation_id, user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
