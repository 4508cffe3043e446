// Package postgres is the PostgreSQL persistence backend. Uniqueness of
// usernames, emails and (job seeker, job) applications is enforced by
// constraints; cascades are declared on the foreign keys.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/board-service/internal/domain"
)

// Store implements every repository interface of the service over one pool.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL,
	first_name    TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (LOWER(email));

CREATE TABLE IF NOT EXISTS job_seekers (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id     UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
	full_name   TEXT NOT NULL,
	phone       TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	skills      TEXT NOT NULL DEFAULT '',
	experience  TEXT NOT NULL DEFAULT '',
	education   TEXT NOT NULL DEFAULT '',
	bio         TEXT NOT NULL DEFAULT '',
	resume_path TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS employers (
	id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id         UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
	company_name    TEXT NOT NULL,
	contact_person  TEXT NOT NULL,
	phone           TEXT NOT NULL DEFAULT '',
	company_address TEXT NOT NULL,
	is_verified     BOOLEAN NOT NULL DEFAULT false,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS jobs (
	id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	employer_id      UUID NOT NULL REFERENCES employers(id) ON DELETE CASCADE,
	title            TEXT NOT NULL,
	department       TEXT NOT NULL,
	location         TEXT NOT NULL,
	job_type         TEXT NOT NULL CHECK (job_type IN ('full_time', 'part_time', 'contract', 'internship', 'remote')),
	experience_level TEXT NOT NULL CHECK (experience_level IN ('entry', 'mid', 'senior')),
	salary           TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL,
	requirements     TEXT NOT NULL,
	is_active        BOOLEAN NOT NULL DEFAULT true,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS jobs_active_created_idx ON jobs (is_active, created_at DESC);
CREATE INDEX IF NOT EXISTS jobs_employer_idx ON jobs (employer_id);

CREATE TABLE IF NOT EXISTS applications (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	job_seeker_id UUID NOT NULL REFERENCES job_seekers(id) ON DELETE CASCADE,
	job_id        UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
	status        TEXT NOT NULL DEFAULT 'applied' CHECK (status IN ('applied', 'viewed', 'shortlisted', 'rejected', 'hired')),
	cover_letter  TEXT NOT NULL DEFAULT '',
	applied_date  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (job_seeker_id, job_id)
);
CREATE INDEX IF NOT EXISTS applications_job_idx ON applications (job_id);
`

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable; used by health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
)

// mapError translates driver errors into domain errors. Missing rows,
// dangling references and malformed ids become domain.ErrNotFound; a unique
// violation becomes dup when it is non-nil.
func mapError(err error, op string, dup error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			if dup != nil {
				return dup
			}
		case codeForeignKeyViolation, codeInvalidText:
			return domain.ErrNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// likePattern escapes s for use inside an ILIKE '%…%' pattern.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
