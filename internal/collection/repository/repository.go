package repository

import (
	"context"

	pgx "github.com/jackc/pgx/v4"

	"github.com/myhoard/backend/internal/collection/domain"
	"github.com/myhoard/backend/internal/search"
)

type CollectionRepository interface {
	Create(ctx context.Context, collection domain.Collection) error
	Update(ctx context.Context, collection domain.Collection) error
	FindByID(ctx context.Context, id string) (domain.Collection, error)
	List(ctx context.Context, query search.Predicate, sort []search.SortField) ([]domain.Collection, error)
	Delete(ctx context.Context, id string) error
}

type ItemRepository interface {
	Create(ctx context.Context, item domain.Item) error
	Update(ctx context.Context, item domain.Item) error
	FindByID(ctx context.Context, id string) (domain.Item, error)
	List(ctx context.Context, query search.Predicate, sort []search.SortField) ([]domain.Item, error)
	Delete(ctx context.Context, id string) error
}

var ErrCollectionNotFound = pgx.ErrNoRows

var ErrItemNotFound = pgx.ErrNoRows
