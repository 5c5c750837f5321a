package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied at startup. The partial unique index on users(role)
// enforces at most one admin row: a concurrent second admin insert
// fails with a unique violation.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id              UUID PRIMARY KEY,
    name            TEXT NOT NULL,
    age             INT NOT NULL CHECK (age >= 18),
    email           TEXT,
    mobile          CHAR(10) NOT NULL UNIQUE,
    address         TEXT NOT NULL,
    aadhar_number   CHAR(12) NOT NULL UNIQUE,
    hashed_password TEXT NOT NULL,
    role            TEXT NOT NULL DEFAULT 'voter' CHECK (role IN ('voter', 'admin')),
    is_voted        BOOLEAN NOT NULL DEFAULT FALSE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS users_single_admin_idx
    ON users (role) WHERE role = 'admin';

CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx
    ON users (email) WHERE email IS NOT NULL AND email <> '';

CREATE TABLE IF NOT EXISTS candidates (
    id         UUID PRIMARY KEY,
    name       TEXT NOT NULL,
    party      TEXT NOT NULL,
    slug       TEXT NOT NULL UNIQUE,
    age        INT NOT NULL CHECK (age >= 25),
    vote_count INT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS reviews (
    id           UUID PRIMARY KEY,
    user_id      UUID NOT NULL UNIQUE REFERENCES users(id),
    candidate_id UUID NOT NULL REFERENCES candidates(id),
    text         TEXT NOT NULL,
    sentiment    TEXT NOT NULL CHECK (sentiment IN ('positive', 'negative', 'neutral')),
    created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// EnsureSchema creates tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("database.EnsureSchema: %w", err)
	}
	return nil
}
