// Package postgres is the pgxpool-backed Store the transfer executor and
// the account handlers run against.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerbank/transfer-engine/internal/domain/models"
	"github.com/ledgerbank/transfer-engine/internal/pkg/logging"
)

// ErrAccountNotFound indicates an account id matched no row.
var ErrAccountNotFound = errors.New("account not found")

// Store wraps a pgxpool.Pool. It satisfies transfer.DB directly (Begin),
// so the executor never depends on this package.
type Store struct {
	Pool *pgxpool.Pool
}

// New creates a connection pool from cfg and verifies connectivity.
func New(ctx context.Context, cfg *Config) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	if d, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
		poolConfig.MaxConnLifetime = d
	}
	if d, err := time.ParseDuration(cfg.ConnMaxIdleTime); err == nil {
		poolConfig.MaxConnIdleTime = d
	}
	if d, err := time.ParseDuration(cfg.HealthCheckPeriod); err == nil {
		poolConfig.HealthCheckPeriod = d
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Info("postgres connection pool created", map[string]interface{}{
		"max_conns": poolConfig.MaxConns,
		"min_conns": poolConfig.MinConns,
	})
	return &Store{Pool: pool}, nil
}

// Begin satisfies transfer.DB (and transfer.Beginner): starts a new
// transaction on the pool.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.Pool.Begin(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	u := models.User{UserID: uuid.New(), Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO users (user_id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`,
		u.UserID, u.Username, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// CreateAccount inserts a new ACTIVE account for the given owner, with an
// optional opening balance (minor units).
func (s *Store) CreateAccount(ctx context.Context, userID uuid.UUID, openingBalance int64) (models.Account, error) {
	a := models.Account{
		AccountID:      uuid.New(),
		UserID:         userID,
		Status:         models.AccountActive,
		OpeningBalance: openingBalance,
		CurrentBalance: openingBalance,
		CreatedAt:      time.Now().UTC(),
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO accounts (account_id, user_id, status, opening_balance, current_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.AccountID, a.UserID, a.Status, a.OpeningBalance, a.CurrentBalance, a.CreatedAt)
	if err != nil {
		return models.Account{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

// GetAccount fetches an account by id.
func (s *Store) GetAccount(ctx context.Context, accountID uuid.UUID) (models.Account, error) {
	var a models.Account
	err := s.Pool.QueryRow(ctx, `
		SELECT account_id, user_id, status, opening_balance, current_balance, created_at, frozen_at, terminated_at
		  FROM accounts WHERE account_id = $1`, accountID).Scan(
		&a.AccountID, &a.UserID, &a.Status, &a.OpeningBalance, &a.CurrentBalance, &a.CreatedAt, &a.FrozenAt, &a.TerminatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// SetAccountStatus transitions an account's status and stamps the
// corresponding frozen_at/terminated_at column. Used by the freeze/unfreeze
// handlers so §4.4's ACTIVE/FROZEN transitions are reachable over HTTP.
func (s *Store) SetAccountStatus(ctx context.Context, accountID uuid.UUID, status models.AccountStatus) error {
	now := time.Now().UTC()
	var err error
	switch status {
	case models.AccountFrozen:
		_, err = s.Pool.Exec(ctx, `UPDATE accounts SET status = $2, frozen_at = $3 WHERE account_id = $1`, accountID, status, now)
	case models.AccountActive:
		_, err = s.Pool.Exec(ctx, `UPDATE accounts SET status = $2, frozen_at = NULL WHERE account_id = $1`, accountID, status)
	case models.AccountTerminated:
		_, err = s.Pool.Exec(ctx, `UPDATE accounts SET status = $2, terminated_at = $3 WHERE account_id = $1`, accountID, status, now)
	default:
		return fmt.Errorf("unsupported account status transition: %s", status)
	}
	if err != nil {
		return fmt.Errorf("set account status: %w", err)
	}
	return nil
}

// Reset truncates every table. Test-only.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
		TRUNCATE TABLE audit_logs, ledger_entries, transactions, accounts, users RESTART IDENTITY CASCADE`)
	return err
}
