package repository

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
)

// schema is written in the common subset of Postgres and SQLite; the
// placeholders are swapped per dialect.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id           TEXT PRIMARY KEY,
		source_path  TEXT NOT NULL,
		content_hash {{BLOB}} NOT NULL UNIQUE,
		filename     TEXT NOT NULL,
		file_ext     TEXT NOT NULL,
		file_size    BIGINT NOT NULL,
		page_count   INTEGER NOT NULL DEFAULT 0,
		uploaded_at  {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS extraction_jobs (
		id              TEXT PRIMARY KEY,
		document_id     TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		kind            TEXT NOT NULL,
		format          TEXT NOT NULL,
		started_at      {{TS}} NOT NULL,
		finished_at     {{TS}},
		status          TEXT NOT NULL,
		error_message   TEXT,
		blueprint_style TEXT,
		method          TEXT,
		warning_count   INTEGER NOT NULL DEFAULT 0,
		result_json     TEXT,
		model_name      TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS extraction_jobs_document_idx ON extraction_jobs (document_id, started_at)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		job_id             TEXT NOT NULL REFERENCES extraction_jobs(id) ON DELETE CASCADE,
		seq                INTEGER NOT NULL,
		room_number        TEXT NOT NULL,
		room_name          TEXT NOT NULL,
		area_m2            DOUBLE PRECISION NOT NULL,
		counted_m2         DOUBLE PRECISION NOT NULL,
		factor             DOUBLE PRECISION NOT NULL,
		page               INTEGER NOT NULL,
		category           TEXT NOT NULL,
		extraction_pattern TEXT NOT NULL,
		factor_source      TEXT NOT NULL,
		source_text        TEXT NOT NULL,
		PRIMARY KEY (job_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS lv_positions (
		job_id          TEXT NOT NULL REFERENCES extraction_jobs(id) ON DELETE CASCADE,
		seq             INTEGER NOT NULL,
		position_number TEXT NOT NULL,
		title           TEXT NOT NULL,
		quantity        DOUBLE PRECISION,
		unit            TEXT,
		unit_price      DOUBLE PRECISION,
		total_price     DOUBLE PRECISION,
		marker          TEXT,
		page            INTEGER NOT NULL,
		confidence      DOUBLE PRECISION NOT NULL,
		source          TEXT NOT NULL,
		PRIMARY KEY (job_id, seq)
	)`,
}

func ddl(d string) []string {
	blob, ts := "BLOB", "TIMESTAMP"
	if d == dialect.Postgres {
		blob, ts = "BYTEA", "TIMESTAMPTZ"
	}
	r := strings.NewReplacer("{{BLOB}}", blob, "{{TS}}", ts)
	out := make([]string, len(schema))
	for i, s := range schema {
		out[i] = r.Replace(s)
	}
	return out
}

// Migrate creates missing tables. It is idempotent.
func Migrate(ctx context.Context, db *DB) error {
	for _, stmt := range ddl(db.Dialect) {
		if _, err := db.SQL.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
