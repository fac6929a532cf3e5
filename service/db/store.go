package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/brojonat/walletdash/service/wallet"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the DDL of the tables the store reads.
//
//go:embed schema.sql
var Schema string

const (
	listTransactionsSQL = `
SELECT date, type, status, pool, in_tx_id, in_coins, out_coins
FROM transactions
WHERE wallet_address = $1
ORDER BY date DESC, id ASC
LIMIT $2`

	listBalanceSQL = `
SELECT asset, amount
FROM balances
WHERE wallet_address = $1
ORDER BY asset`

	listStakeSQL = `
SELECT pool, units
FROM stakes
WHERE wallet_address = $1 AND units > 0
ORDER BY pool`
)

// DefaultHistoryLimit caps how many transactions are read per wallet.
const DefaultHistoryLimit = 500

// Store reads wallet data from Postgres. It implements store.Source and
// never writes.
type Store struct {
	pool  *pgxpool.Pool
	limit int32
}

// NewStore creates a new Store with the given database connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, limit: DefaultHistoryLimit}
}

// Connect opens a pool for databaseURL and checks it is reachable.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	cfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// SetHistoryLimit changes how many transactions Transactions returns.
func (s *Store) SetHistoryLimit(limit int32) {
	if limit > 0 {
		s.limit = limit
	}
}

// transactionRow is one row of the transactions table.
type transactionRow struct {
	Date     pgtype.Timestamptz
	Type     string
	Status   string
	Pool     pgtype.Text
	InTxID   pgtype.Text
	InCoins  []wallet.Coin
	OutCoins []wallet.Coin
}

// Transactions returns the history of address, newest first.
func (s *Store) Transactions(ctx context.Context, address string) ([]wallet.TransactionRecord, error) {
	rows, err := s.pool.Query(ctx, listTransactionsSQL, address, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	records := []wallet.TransactionRecord{}
	for rows.Next() {
		var row transactionRow
		if err := rows.Scan(&row.Date, &row.Type, &row.Status, &row.Pool, &row.InTxID, &row.InCoins, &row.OutCoins); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		records = append(records, rowToRecord(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	return records, nil
}

// Balance returns the coins held by address. A wallet with no rows has an
// empty balance.
func (s *Store) Balance(ctx context.Context, address string) (*wallet.Balance, error) {
	rows, err := s.pool.Query(ctx, listBalanceSQL, address)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance: %w", err)
	}

	coins, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (wallet.Coin, error) {
		var c wallet.Coin
		err := row.Scan(&c.Asset, &c.Amount)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	return &wallet.Balance{Address: address, Coins: coins}, nil
}

// Stake returns the non-empty pool positions of address.
func (s *Store) Stake(ctx context.Context, address string) (*wallet.Stake, error) {
	rows, err := s.pool.Query(ctx, listStakeSQL, address)
	if err != nil {
		return nil, fmt.Errorf("failed to query stake: %w", err)
	}

	positions, err := pgx.CollectRows(rows, pgx.RowToStructByPos[wallet.StakePosition])
	if err != nil {
		return nil, fmt.Errorf("failed to read stake: %w", err)
	}

	return &wallet.Stake{Address: address, Positions: positions}, nil
}

func rowToRecord(row *transactionRow) wallet.TransactionRecord {
	return wallet.TransactionRecord{
		Date:   row.Date.Time,
		Type:   wallet.EventType(row.Type),
		Status: row.Status,
		Pool:   row.Pool.String,
		InTxID: stringPtrFromPgtext(row.InTxID),
		In:     row.InCoins,
		Out:    row.OutCoins,
	}
}

func stringPtrFromPgtext(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func pgtextFromStringPtr(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}
