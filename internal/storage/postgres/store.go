// Package postgres implements the durable ledger behind the projector.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"assetScope/internal/projector"
)

// Store provides Postgres persistence for the asset ledger.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS asset (
		id text PRIMARY KEY,
		name text,
		symbol text,
		decimal integer,
		owner text,
		admin text,
		issuer text,
		freezer text,
		creator text,
		min_balance numeric,
		status text NOT NULL,
		total_supply numeric,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS account (
		id text PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS asset_balance (
		id text PRIMARY KEY,
		balance numeric NOT NULL,
		status text NOT NULL,
		asset_id text NOT NULL REFERENCES asset(id),
		account_id text NOT NULL REFERENCES account(id),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS asset_balance_asset_id_idx ON asset_balance (asset_id)`,
	`CREATE INDEX IF NOT EXISTS asset_balance_account_id_idx ON asset_balance (account_id)`,
	`CREATE TABLE IF NOT EXISTS transfer (
		id text PRIMARY KEY,
		asset_id text NOT NULL REFERENCES asset(id),
		amount numeric,
		to_id text,
		from_id text,
		delegator text,
		fee numeric,
		type text NOT NULL,
		extrinsic_id text,
		success boolean NOT NULL,
		created_at timestamptz NOT NULL,
		block_hash text NOT NULL,
		block_num bigint NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS transfer_asset_id_idx ON transfer (asset_id)`,
	`CREATE INDEX IF NOT EXISTS transfer_block_num_idx ON transfer (block_num)`,
	`CREATE TABLE IF NOT EXISTS indexer_state (
		name text PRIMARY KEY,
		last_event_id text NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
}

// Migrate creates the ledger schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// InTx runs fn against a transactional ledger view. The transaction commits
// only if fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(ledger projector.Ledger) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&txLedger{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// LoadPosition returns the id of the last applied event for a name.
func (s *Store) LoadPosition(ctx context.Context, name string) (string, bool, error) {
	if name == "" {
		return "", false, fmt.Errorf("state name required")
	}
	var eventID string
	row := s.pool.QueryRow(ctx, `SELECT last_event_id FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&eventID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return eventID, true, nil
}
