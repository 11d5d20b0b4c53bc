package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema holds the DDL both binaries apply on startup. Idempotent, so the
// API and the ingester can race on it safely.
const schema = `
CREATE TABLE IF NOT EXISTS iocs (
	id                  BIGSERIAL PRIMARY KEY,
	name                TEXT NOT NULL UNIQUE,
	scanner             BOOLEAN NOT NULL DEFAULT FALSE,
	payload_request     BOOLEAN NOT NULL DEFAULT FALSE,
	first_seen          TIMESTAMPTZ NOT NULL,
	last_seen           TIMESTAMPTZ NOT NULL,
	days_seen           DATE[] NOT NULL DEFAULT '{}',
	number_of_days_seen INTEGER NOT NULL DEFAULT 0,
	attack_count        INTEGER NOT NULL DEFAULT 0,
	interaction_count   INTEGER NOT NULL DEFAULT 0,
	login_attempts      INTEGER NOT NULL DEFAULT 0,
	destination_ports   INTEGER[] NOT NULL DEFAULT '{}',
	ip_reputation       TEXT NOT NULL DEFAULT '',
	asn                 INTEGER,
	log4j               BOOLEAN NOT NULL DEFAULT FALSE,
	cowrie              BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS iocs_last_seen_idx ON iocs (last_seen DESC);

CREATE TABLE IF NOT EXISTS honeypots (
	id     BIGSERIAL PRIMARY KEY,
	name   TEXT NOT NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE UNIQUE INDEX IF NOT EXISTS honeypots_name_idx ON honeypots (lower(name));

CREATE TABLE IF NOT EXISTS ioc_honeypots (
	ioc_id      BIGINT NOT NULL REFERENCES iocs (id) ON DELETE CASCADE,
	honeypot_id BIGINT NOT NULL REFERENCES honeypots (id) ON DELETE CASCADE,
	PRIMARY KEY (ioc_id, honeypot_id)
);

CREATE TABLE IF NOT EXISTS statistics (
	id           UUID PRIMARY KEY,
	source       TEXT NOT NULL,
	view         TEXT NOT NULL,
	request_date TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema applies the DDL.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
