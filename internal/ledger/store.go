package ledger

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"github.com/Natsgol/Seilor.fun/internal/domain"
)

// Store persists tokens and terminal trades in SQLite. The trades table is
// keyed by idempotency key, so a replayed execution finds its stored terminal
// result even across process restarts.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the SQLite database with WAL mode enabled.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// Single-writer deterministic persistence; same pragmas as a WAL journal.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS tokens (
			id              TEXT PRIMARY KEY,
			creator         TEXT NOT NULL,
			royalty_percent INTEGER NOT NULL,
			supply          INTEGER NOT NULL,
			name            TEXT NOT NULL DEFAULT '',
			backstory       TEXT NOT NULL DEFAULT '',
			image_url       TEXT NOT NULL DEFAULT '',
			created_at      INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokens table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			idempotency_key TEXT PRIMARY KEY,
			quote_id        TEXT NOT NULL,
			token_id        TEXT NOT NULL,
			trader          TEXT NOT NULL DEFAULT '',
			direction       INTEGER NOT NULL,
			quantity        INTEGER NOT NULL,
			gross           INTEGER NOT NULL,
			fee             INTEGER NOT NULL,
			royalty         INTEGER NOT NULL,
			net             INTEGER NOT NULL,
			status          INTEGER NOT NULL,
			reason          TEXT NOT NULL DEFAULT '',
			settlement_ref  TEXT NOT NULL DEFAULT '',
			created_at      INTEGER NOT NULL,
			updated_at      INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create trades table: %w", err)
	}

	return &Store{db: db}, nil
}

// InsertToken stores a freshly minted token.
func (s *Store) InsertToken(ctx context.Context, t *domain.Token) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tokens (id, creator, royalty_percent, supply, name, backstory, image_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Creator, t.RoyaltyPercent, t.Supply, t.Name, t.Backstory, t.ImageURL, t.CreatedUnixM,
	)
	if err != nil {
		return fmt.Errorf("failed to insert token %s: %w", t.ID, err)
	}
	return nil
}

// LoadTokens returns every token for boot-time ledger recovery.
func (s *Store) LoadTokens(ctx context.Context) ([]domain.Token, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, creator, royalty_percent, supply, name, backstory, image_url, created_at
		 FROM tokens ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.Token
	for rows.Next() {
		var t domain.Token
		if err := rows.Scan(&t.ID, &t.Creator, &t.RoyaltyPercent, &t.Supply,
			&t.Name, &t.Backstory, &t.ImageURL, &t.CreatedUnixM); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return tokens, nil
}

// SaveTrade records a terminal trade that did not move supply
// (rejected or expired).
func (s *Store) SaveTrade(ctx context.Context, tr *domain.Trade) error {
	_, err := s.db.ExecContext(ctx, insertTradeSQL, tradeArgs(tr)...)
	if err != nil {
		return fmt.Errorf("failed to insert trade %s: %w", tr.IdempotencyKey, err)
	}
	return nil
}

// SaveConfirmedTrade records a confirmed trade and the resulting supply in a
// single transaction, so the trade journal and the counter can never diverge.
func (s *Store) SaveConfirmedTrade(ctx context.Context, tr *domain.Trade, newSupply uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertTradeSQL, tradeArgs(tr)...); err != nil {
		return fmt.Errorf("failed to insert trade %s: %w", tr.IdempotencyKey, err)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE tokens SET supply = ? WHERE id = ?`, newSupply, tr.TokenID)
	if err != nil {
		return fmt.Errorf("failed to update supply for %s: %w", tr.TokenID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTokenNotFound, tr.TokenID)
	}

	return tx.Commit()
}

// GetTrade fetches a stored trade by idempotency key.
func (s *Store) GetTrade(ctx context.Context, idempotencyKey string) (*domain.Trade, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT idempotency_key, quote_id, token_id, trader, direction, quantity,
		        gross, fee, royalty, net, status, reason, settlement_ref,
		        created_at, updated_at
		 FROM trades WHERE idempotency_key = ?`, idempotencyKey)

	var tr domain.Trade
	err := row.Scan(&tr.IdempotencyKey, &tr.QuoteID, &tr.TokenID, &tr.Trader, &tr.Direction, &tr.Quantity,
		&tr.ExecGrossMicros, &tr.FeeMicros, &tr.RoyaltyMicros, &tr.NetMicros,
		&tr.Status, &tr.Reason, &tr.SettlementRef, &tr.CreatedUnixM, &tr.UpdatedUnixM)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan trade: %w", err)
	}
	return &tr, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const insertTradeSQL = `
	INSERT INTO trades (idempotency_key, quote_id, token_id, trader, direction, quantity,
	                    gross, fee, royalty, net, status, reason, settlement_ref,
	                    created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func tradeArgs(tr *domain.Trade) []any {
	return []any{
		tr.IdempotencyKey, tr.QuoteID, tr.TokenID, tr.Trader, tr.Direction, tr.Quantity,
		tr.ExecGrossMicros, tr.FeeMicros, tr.RoyaltyMicros, tr.NetMicros,
		tr.Status, tr.Reason, tr.SettlementRef, tr.CreatedUnixM, tr.UpdatedUnixM,
	}
}
