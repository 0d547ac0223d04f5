package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/myhoard/backend/internal/user/domain"
)

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByCredential(ctx context.Context, kind domain.CredentialKind, value string) (domain.User, error)
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		string(user.ID),
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PgRepository) FindByCredential(ctx context.Context, kind domain.CredentialKind, value string) (domain.User, error) {
	column := "username"
	if kind == domain.CredentialEmail {
		column = "email"
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE `+column+` = $1`,
		value,
	)

	return scanUser(row)
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`,
		string(id),
	)

	return scanUser(row)
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

var ErrUserNotFound = pgx.ErrNoRows

var ErrUserAlreadyExists = errors.New("username or email already exists")
