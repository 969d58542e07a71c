package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS search_jobs (
		id                     TEXT        NOT NULL,
		user_id                TEXT        NOT NULL,
		kind                   TEXT        NOT NULL,
		seed                   TEXT        NOT NULL,
		status                 TEXT        NOT NULL,
		result_count           INTEGER     NOT NULL DEFAULT 0,
		emails_found_count     INTEGER     NOT NULL DEFAULT 0,
		follower_count_of_seed BIGINT      NOT NULL DEFAULT 0,
		created_at             TIMESTAMPTZ NOT NULL,
		updated_at             TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE INDEX IF NOT EXISTS search_jobs_user_created_idx ON search_jobs (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS search_results (
		job_id    TEXT        NOT NULL,
		user_id   TEXT        NOT NULL,
		kind      TEXT        NOT NULL,
		payload   JSONB       NOT NULL,
		stored_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, job_id)
	)`,
	`CREATE TABLE IF NOT EXISTS partnerships (
		id           TEXT           NOT NULL,
		user_id      TEXT           NOT NULL,
		creator_name TEXT           NOT NULL,
		video_url    TEXT           NOT NULL,
		cost_usd     NUMERIC(12, 2) NOT NULL DEFAULT 0,
		status       TEXT           NOT NULL,
		posted_date  TIMESTAMPTZ,
		platform     TEXT           NOT NULL,
		views        BIGINT         NOT NULL DEFAULT 0,
		likes        BIGINT         NOT NULL DEFAULT 0,
		comments     BIGINT         NOT NULL DEFAULT 0,
		shares       BIGINT         NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ    NOT NULL,
		updated_at   TIMESTAMPTZ    NOT NULL,
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS app_store_creds (
		user_id       TEXT PRIMARY KEY,
		app_name      TEXT        NOT NULL DEFAULT '',
		app_id        TEXT        NOT NULL DEFAULT '',
		vendor_number TEXT        NOT NULL DEFAULT '',
		issuer_id     TEXT        NOT NULL,
		key_id        TEXT        NOT NULL,
		private_key   TEXT        NOT NULL,
		verified_at   TIMESTAMPTZ,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migration step %d failed: %w", i+1, err)
		}
	}
	s.logger.Debug().Int("statements", len(schema)).Msg("Postgres schema ensured")
	return nil
}
