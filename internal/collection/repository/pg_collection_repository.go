package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/myhoard/backend/internal/collection/domain"
	commondb "github.com/myhoard/backend/internal/common/db"
	"github.com/myhoard/backend/internal/search"
)

const collectionColumns = `id, name, description, owner, public, tags, created_date, modified_date`

// PgCollectionRepository persists collections. The lowercased shadow columns
// name_lower and description_lower back case-insensitive sorting and are
// maintained on every write.
type PgCollectionRepository struct {
	pool *pgxpool.Pool
}

func NewPgCollectionRepository(pool *pgxpool.Pool) *PgCollectionRepository {
	return &PgCollectionRepository{pool: pool}
}

func (r *PgCollectionRepository) Create(ctx context.Context, collection domain.Collection) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO collections (id, name, name_lower, description, description_lower, owner, public, tags, created_date, modified_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		collection.ID,
		collection.Name,
		strings.ToLower(collection.Name),
		collection.Description,
		strings.ToLower(collection.Description),
		collection.Owner,
		collection.Public,
		collection.Tags,
		collection.CreatedDate,
		collection.ModifiedDate,
	)
	return commondb.HandleExecError(err, "create collection", start)
}

func (r *PgCollectionRepository) Update(ctx context.Context, collection domain.Collection) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE collections
		 SET name = $2, name_lower = $3, description = $4, description_lower = $5, public = $6, tags = $7, modified_date = $8
		 WHERE id = $1`,
		collection.ID,
		collection.Name,
		strings.ToLower(collection.Name),
		collection.Description,
		strings.ToLower(collection.Description),
		collection.Public,
		collection.Tags,
		collection.ModifiedDate,
	)
	if err := commondb.HandleExecError(err, "update collection", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCollectionNotFound
	}
	return nil
}

func (r *PgCollectionRepository) FindByID(ctx context.Context, id string) (domain.Collection, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE id = $1`,
		id,
	)

	collection, err := scanCollection(row)
	if err != nil {
		return domain.Collection{}, commondb.HandleQueryError(err, ErrCollectionNotFound, "find collection", start)
	}
	commondb.MeasureQueryDuration("find collection", start)
	return collection, nil
}

func (r *PgCollectionRepository) List(ctx context.Context, query search.Predicate, sort []search.SortField) ([]domain.Collection, error) {
	start := time.Now()

	where, args, err := search.CompileWhere(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile collection query: %w", err)
	}
	orderBy, err := search.CompileOrderBy(sort)
	if err != nil {
		return nil, fmt.Errorf("failed to compile collection sort: %w", err)
	}

	sql := `SELECT ` + collectionColumns + ` FROM collections WHERE ` + where
	if orderBy != "" {
		sql += " " + orderBy
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, commondb.HandleQueryError(err, ErrCollectionNotFound, "list collections", start)
	}
	defer rows.Close()

	collections := []domain.Collection{}
	for rows.Next() {
		collection, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, collection)
	}
	if err := rows.Err(); err != nil {
		return nil, commondb.HandleQueryError(err, ErrCollectionNotFound, "list collections", start)
	}

	commondb.MeasureQueryDuration("list collections", start)
	return collections, nil
}

// Delete removes the collection and its items in one transaction.
func (r *PgCollectionRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return commondb.HandleExecError(err, "delete collection", start)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM items WHERE collection = $1`, id); err != nil {
		return commondb.HandleExecError(err, "delete collection", start)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return commondb.HandleExecError(err, "delete collection", start)
	}
	if tag.RowsAffected() == 0 {
		return ErrCollectionNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return commondb.HandleExecError(err, "delete collection", start)
	}

	commondb.MeasureQueryDuration("delete collection", start)
	return nil
}

func scanCollection(row pgx.Row) (domain.Collection, error) {
	var collection domain.Collection
	err := row.Scan(
		&collection.ID,
		&collection.Name,
		&collection.Description,
		&collection.Owner,
		&collection.Public,
		&collection.Tags,
		&collection.CreatedDate,
		&collection.ModifiedDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Collection{}, ErrCollectionNotFound
		}
		return domain.Collection{}, err
	}
	return collection, nil
}
