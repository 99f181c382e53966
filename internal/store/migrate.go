package store

import (
	"context"
	"fmt"
)

// Schema statements applied in order on startup. The embedding column uses
// pgvector; 128 dims matches the face service model.
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL DEFAULT '',
		department    TEXT NOT NULL DEFAULT '',
		batch         TEXT NOT NULL DEFAULT '2',
		image_url     TEXT NOT NULL DEFAULT '',
		face_enrolled BOOLEAN NOT NULL DEFAULT FALSE,
		enrolled_at   TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS faces (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		embedding  vector(128) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id               BIGSERIAL PRIMARY KEY,
		user_id          BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		day              DATE NOT NULL,
		login_time       TIMESTAMPTZ NOT NULL,
		logout_time      TIMESTAMPTZ,
		duration_seconds BIGINT,
		UNIQUE (user_id, day)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_faces_user ON faces(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_day ON attendance(day)`,
}

// Migrate applies the schema. Statements are idempotent so repeated startups
// are safe.
func (d *DB) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := d.Client.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
