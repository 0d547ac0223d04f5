package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	authdomain "github.com/myhoard/backend/internal/auth/domain"
	"github.com/myhoard/backend/internal/common/clock"
	"github.com/myhoard/backend/internal/common/db"
)

// PgTokenStore keeps token records in Postgres. The table carries unique
// indexes on access_token and refresh_token; expiry is computed from
// created_at at read time, with the cleanup sweep deleting old rows later.
type PgTokenStore struct {
	pool      *pgxpool.Pool
	keepAlive time.Duration
	clock     clock.Clock
}

func NewPgTokenStore(pool *pgxpool.Pool, keepAlive time.Duration, clk clock.Clock) *PgTokenStore {
	return &PgTokenStore{
		pool:      pool,
		keepAlive: keepAlive,
		clock:     clk,
	}
}

func (s *PgTokenStore) cutoff() time.Time {
	return s.clock.Now().Add(-s.keepAlive)
}

func (s *PgTokenStore) Insert(ctx context.Context, token authdomain.Token) error {
	start := time.Now()
	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO tokens (id, access_token, refresh_token, user_id, scope, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		token.ID,
		token.AccessToken,
		token.RefreshToken,
		token.UserID,
		token.Scope,
		token.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateToken
		}
	}
	return db.HandleExecError(err, "insert token", start)
}

func (s *PgTokenStore) FindByAccessToken(ctx context.Context, value string) (authdomain.Token, error) {
	return s.findBy(ctx, "access_token", value, "find token by access token")
}

func (s *PgTokenStore) FindByRefreshToken(ctx context.Context, value string) (authdomain.Token, error) {
	return s.findBy(ctx, "refresh_token", value, "find token by refresh token")
}

func (s *PgTokenStore) findBy(ctx context.Context, column, value, operation string) (authdomain.Token, error) {
	start := time.Now()
	row := s.pool.QueryRow(
		ctx,
		`SELECT id, access_token, refresh_token, user_id, scope, created_at
		 FROM tokens
		 WHERE `+column+` = $1 AND created_at > $2`,
		value,
		s.cutoff(),
	)

	var token authdomain.Token
	err := row.Scan(&token.ID, &token.AccessToken, &token.RefreshToken, &token.UserID, &token.Scope, &token.CreatedAt)
	if err := db.HandleQueryError(err, ErrTokenNotFound, operation, start); err != nil {
		return authdomain.Token{}, err
	}
	return token, nil
}

func (s *PgTokenStore) Update(ctx context.Context, token authdomain.Token) error {
	start := time.Now()
	res, err := s.pool.Exec(
		ctx,
		`UPDATE tokens
		 SET access_token = $2, refresh_token = $3, user_id = $4, scope = $5, created_at = $6
		 WHERE id = $1`,
		token.ID,
		token.AccessToken,
		token.RefreshToken,
		token.UserID,
		token.Scope,
		token.CreatedAt,
	)
	if err := db.HandleExecError(err, "update token", start); err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (s *PgTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	res, err := s.pool.Exec(
		ctx,
		`DELETE FROM tokens WHERE created_at <= $1`,
		s.cutoff(),
	)
	if err != nil {
		return 0, db.HandleExecError(err, "delete expired tokens", start)
	}
	db.MeasureQueryDuration("delete expired tokens", start)
	return res.RowsAffected(), nil
}
