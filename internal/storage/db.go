package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	Pool *pgxpool.Pool
}

func NewDB(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (d *DB) Close() {
	if d != nil && d.Pool != nil {
		d.Pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS batch_jobs (
  batch_id       TEXT PRIMARY KEY,
  request_file   TEXT NOT NULL,
  provider       TEXT NOT NULL,
  description    TEXT,
  status         TEXT NOT NULL,
  raw_status     TEXT,
  output_file_id TEXT,
  error_type     TEXT,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS citations (
  run_id                 UUID NOT NULL,
  position               INT NOT NULL,
  custom_id              TEXT NOT NULL,
  docid                  TEXT NOT NULL,
  citation               TEXT,
  title                  TEXT,
  authors                TEXT[],
  year                   TEXT,
  journal                TEXT,
  publisher              TEXT,
  location               TEXT,
  volume                 TEXT,
  pages                  TEXT,
  doi                    TEXT,
  url                    TEXT,
  et_al_flag             BOOLEAN NOT NULL DEFAULT FALSE,
  non_person_author_flag BOOLEAN NOT NULL DEFAULT FALSE,
  agencies               TEXT[],
  regulation_id_numbers  TEXT[],
  created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS citations_docid_idx ON citations (docid);
`

// EnsureSchema creates the tables the pipeline writes to.
func (d *DB) EnsureSchema(ctx context.Context) error {
	if _, err := d.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
