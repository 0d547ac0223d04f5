package repository

import (
	"context"
	"errors"

	pgx "github.com/jackc/pgx/v4"

	authdomain "github.com/myhoard/backend/internal/auth/domain"
)

// TokenStore is the persistence contract the token service depends on.
// Expiry is part of the contract: a record older than the configured
// keep-alive must behave as absent in both Find methods even if a sweep has
// not physically removed it yet.
type TokenStore interface {
	// Insert fails with ErrDuplicateToken when either identifier collides
	// with a live record.
	Insert(ctx context.Context, token authdomain.Token) error
	FindByAccessToken(ctx context.Context, value string) (authdomain.Token, error)
	FindByRefreshToken(ctx context.Context, value string) (authdomain.Token, error)
	// Update replaces the record identified by token.ID.
	Update(ctx context.Context, token authdomain.Token) error
	// DeleteExpired physically removes expired records and reports how many.
	DeleteExpired(ctx context.Context) (int64, error)
}

var ErrTokenNotFound = pgx.ErrNoRows

var ErrDuplicateToken = errors.New("token identifier already exists")
