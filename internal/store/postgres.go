package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

const defaultPoolSize = 10

// PostgreSQL error codes the store translates into sentinels.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	if !strings.Contains(connString, "pool_max_conns") {
		cfg.MaxConns = defaultPoolSize
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// CreatePlaceholderAccount inserts a pending account whose external id is
// the placeholder sentinel for its own id.
func (s *PostgresStore) CreatePlaceholderAccount(
	ctx context.Context,
	p *domain.PlaceholderAccount,
) (*domain.Account, error) {
	id := uuid.NewString()
	scopes := p.UserSelectedScopes
	if scopes == nil {
		scopes = []string{}
	}

	args := pgx.NamedArgs{
		"id":                   id,
		"owner_user_id":        p.OwnerUserID,
		"label":                p.Label,
		"external_account_id":  domain.PlaceholderExternalID(id),
		"user_selected_scopes": scopes,
	}

	a := &domain.Account{}
	if err := scanAccount(s.pool.QueryRow(ctx, queryCreatePlaceholderAccount, args), a); err != nil {
		return nil, fmt.Errorf("creating placeholder account: %w", err)
	}
	return a, nil
}

// GetAccount retrieves an account by id.
func (s *PostgresStore) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	a := &domain.Account{}
	err := scanAccount(s.pool.QueryRow(ctx, queryGetAccount, id), a)
	if err != nil {
		return nil, translate(err, "getting account")
	}
	return a, nil
}

// ListAccounts queries accounts with optional filters, returning results and
// the total count before paging.
func (s *PostgresStore) ListAccounts(
	ctx context.Context,
	q *AccountQuery,
) ([]domain.Account, int, error) {
	if q == nil {
		q = &AccountQuery{}
	}
	dataSQL, countSQL, args := q.ToSQL()

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting accounts: %w", err)
	}

	accounts, err := s.queryAccounts(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// UpdateAccount applies u to the account in a single statement and returns
// the updated row.
func (s *PostgresStore) UpdateAccount(
	ctx context.Context,
	id string,
	u *AccountUpdate,
) (*domain.Account, error) {
	var status *string
	if u.Status != nil {
		v := string(*u.Status)
		status = &v
	}

	args := pgx.NamedArgs{
		"id":                   id,
		"label":                u.Label,
		"external_account_id":  u.ExternalAccountID,
		"external_username":    u.ExternalUsername,
		"access_token":         u.AccessToken,
		"refresh_token":        u.RefreshToken,
		"expires_at":           u.ExpiresAt,
		"granted_scopes":       u.GrantedScopes,
		"user_selected_scopes": u.UserSelectedScopes,
		"status":               status,
		"last_used_at":         u.LastUsedAt,
	}

	a := &domain.Account{}
	if err := scanAccount(s.pool.QueryRow(ctx, queryUpdateAccount, args), a); err != nil {
		return nil, translate(err, "updating account")
	}
	return a, nil
}

// DeleteAccount removes an account and, by cascade, its auth events.
func (s *PostgresStore) DeleteAccount(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, queryDeleteAccount, id)
	if err != nil {
		return translate(err, "deleting account")
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ListExpiringAccounts returns active accounts holding a refresh token whose
// access token expires before the given time, soonest first.
func (s *PostgresStore) ListExpiringAccounts(
	ctx context.Context,
	before time.Time,
	limit int,
) ([]domain.Account, error) {
	return s.queryAccounts(ctx, queryListExpiringAccounts, before, clampLimit(limit, defaultLimit, maxLimit))
}

// RecordAuthEvent appends an event to an account's audit trail.
func (s *PostgresStore) RecordAuthEvent(ctx context.Context, e *domain.AuthEvent) error {
	err := s.pool.QueryRow(ctx, queryInsertAuthEvent,
		e.AccountID, string(e.Type), e.Detail,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return translate(err, "recording auth event")
	}
	return nil
}

// ListAuthEvents returns an account's most recent events, newest first.
func (s *PostgresStore) ListAuthEvents(
	ctx context.Context,
	accountID string,
	limit int,
) ([]domain.AuthEvent, error) {
	rows, err := s.pool.Query(ctx, queryListAuthEvents,
		accountID, clampLimit(limit, defaultEventLimit, maxEventLimit))
	if err != nil {
		return nil, translate(err, "querying auth events")
	}
	defer rows.Close()

	var events []domain.AuthEvent
	for rows.Next() {
		var (
			e   domain.AuthEvent
			typ string
		)
		if err := rows.Scan(&e.ID, &e.AccountID, &typ, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning auth event: %w", err)
		}
		e.Type = domain.AuthEventType(typ)
		events = append(events, e)
	}

	return events, rows.Err()
}

// queryAccounts is a helper for multi-row account queries.
func (s *PostgresStore) queryAccounts(
	ctx context.Context,
	query string,
	args ...any,
) ([]domain.Account, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := scanAccount(rows, &a); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

// translate maps driver errors onto store sentinels.
func translate(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAccountNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, ErrExternalAccountTaken)
		case pgForeignKeyViolation, pgInvalidText:
			// Unknown account id, or an id that is not a UUID at all.
			return ErrAccountNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// scannable abstracts pgx.Row and pgx.Rows for reuse.
type scannable interface {
	Scan(dest ...any) error
}

// scanAccount scans a full account row in accountColumns order.
func scanAccount(row scannable, a *domain.Account) error {
	var status string
	if err := row.Scan(
		&a.ID, &a.OwnerUserID, &a.Label, &a.ExternalAccountID, &a.ExternalUsername,
		&a.AccessToken, &a.RefreshToken, &a.ExpiresAt, &a.GrantedScopes, &a.UserSelectedScopes,
		&status, &a.LastUsedAt, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return err
	}
	a.Status = domain.AccountStatus(status)
	return nil
}

// PendingMigrations lists embedded migrations not yet applied.
func (s *PostgresStore) PendingMigrations(ctx context.Context) ([]string, error) {
	return Pending(ctx, s.pool)
}
