package positions

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/rebalancer/internal/contracts"
	"github.com/wonny/rebalancer/pkg/logger"
)

const schemaSQL = `
CREATE SCHEMA IF NOT EXISTS trading;

CREATE TABLE IF NOT EXISTS trading.positions (
	code        TEXT PRIMARY KEY,
	cost_basis  DOUBLE PRECISION NOT NULL CHECK (cost_basis > 0),
	shares      INTEGER NOT NULL CHECK (shares > 0),
	max_price   DOUBLE PRECISION NOT NULL,
	entry_date  DATE,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PostgresStore persists positions in trading.positions
// ⭐ SSOT: Save는 DELETE + INSERT를 하나의 트랜잭션으로
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewPostgresStore creates a Postgres-backed store
func NewPostgresStore(pool *pgxpool.Pool, log *logger.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: log}
}

// EnsureSchema creates the schema and table if missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure positions schema: %w", err)
	}
	return nil
}

// Load selects all held positions
func (s *PostgresStore) Load(ctx context.Context) (map[string]contracts.Position, error) {
	query := `
		SELECT code, cost_basis, shares, max_price, entry_date
		FROM trading.positions
		ORDER BY code
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query positions: %v", ErrStoreUnreadable, err)
	}
	defer rows.Close()

	positions := make(map[string]contracts.Position)
	for rows.Next() {
		var (
			code      string
			p         contracts.Position
			entryDate *time.Time
		)
		if err := rows.Scan(&code, &p.CostBasis, &p.Shares, &p.MaxPrice, &entryDate); err != nil {
			return nil, fmt.Errorf("%w: scan position: %v", ErrStoreUnreadable, err)
		}
		if entryDate != nil {
			p.EntryDate = contracts.NewTradeDate(*entryDate)
		}

		np, err := normalize(code, p)
		if err != nil {
			return nil, err
		}
		positions[code] = np
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate positions: %v", ErrStoreUnreadable, err)
	}

	return positions, nil
}

// Save replaces the stored set with positions
func (s *PostgresStore) Save(ctx context.Context, positions map[string]contracts.Position) error {
	if err := validateAll(positions); err != nil {
		return fmt.Errorf("save positions: %w", err)
	}

	// Begin transaction
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM trading.positions"); err != nil {
		return fmt.Errorf("failed to delete old positions: %w", err)
	}

	query := `
		INSERT INTO trading.positions (code, cost_basis, shares, max_price, entry_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	batch := &pgx.Batch{}
	codes := SortedCodes(positions)
	for _, code := range codes {
		p := positions[code]
		var entryDate *time.Time
		if !p.EntryDate.IsZero() {
			d := p.EntryDate.Time
			entryDate = &d
		}
		batch.Queue(query, code, p.CostBasis, p.Shares, p.MaxPrice, entryDate)
	}

	br := tx.SendBatch(ctx, batch)
	for _, code := range codes {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert position %s: %w", code, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	// Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.WithField("count", len(positions)).Info("Positions saved to postgres")
	return nil
}
