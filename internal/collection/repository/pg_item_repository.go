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

const itemColumns = `id, name, description, location_lat, location_lng, collection, owner, created_date, modified_date`

type PgItemRepository struct {
	pool *pgxpool.Pool
}

func NewPgItemRepository(pool *pgxpool.Pool) *PgItemRepository {
	return &PgItemRepository{pool: pool}
}

func (r *PgItemRepository) Create(ctx context.Context, item domain.Item) error {
	start := time.Now()

	var lat, lng *float64
	if item.Location != nil {
		lat = &item.Location.Lat
		lng = &item.Location.Lng
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO items (id, name, name_lower, description, description_lower, location_lat, location_lng, collection, owner, created_date, modified_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		item.ID,
		item.Name,
		strings.ToLower(item.Name),
		item.Description,
		strings.ToLower(item.Description),
		lat,
		lng,
		item.Collection,
		item.Owner,
		item.CreatedDate,
		item.ModifiedDate,
	)
	return commondb.HandleExecError(err, "create item", start)
}

func (r *PgItemRepository) Update(ctx context.Context, item domain.Item) error {
	start := time.Now()

	var lat, lng *float64
	if item.Location != nil {
		lat = &item.Location.Lat
		lng = &item.Location.Lng
	}

	tag, err := r.pool.Exec(
		ctx,
		`UPDATE items
		 SET name = $2, name_lower = $3, description = $4, description_lower = $5, location_lat = $6, location_lng = $7, modified_date = $8
		 WHERE id = $1`,
		item.ID,
		item.Name,
		strings.ToLower(item.Name),
		item.Description,
		strings.ToLower(item.Description),
		lat,
		lng,
		item.ModifiedDate,
	)
	if err := commondb.HandleExecError(err, "update item", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PgItemRepository) FindByID(ctx context.Context, id string) (domain.Item, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`,
		id,
	)

	item, err := scanItem(row)
	if err != nil {
		return domain.Item{}, commondb.HandleQueryError(err, ErrItemNotFound, "find item", start)
	}
	commondb.MeasureQueryDuration("find item", start)
	return item, nil
}

func (r *PgItemRepository) List(ctx context.Context, query search.Predicate, sort []search.SortField) ([]domain.Item, error) {
	start := time.Now()

	where, args, err := search.CompileWhere(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile item query: %w", err)
	}
	orderBy, err := search.CompileOrderBy(sort)
	if err != nil {
		return nil, fmt.Errorf("failed to compile item sort: %w", err)
	}

	sql := `SELECT ` + itemColumns + ` FROM items WHERE ` + where
	if orderBy != "" {
		sql += " " + orderBy
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, commondb.HandleQueryError(err, ErrItemNotFound, "list items", start)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, commondb.HandleQueryError(err, ErrItemNotFound, "list items", start)
	}

	commondb.MeasureQueryDuration("list items", start)
	return items, nil
}

func (r *PgItemRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err := commondb.HandleExecError(err, "delete item", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (domain.Item, error) {
	var item domain.Item
	var lat, lng *float64
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&lat,
		&lng,
		&item.Collection,
		&item.Owner,
		&item.CreatedDate,
		&item.ModifiedDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Item{}, ErrItemNotFound
		}
		return domain.Item{}, err
	}
	if lat != nil && lng != nil {
		item.Location = &domain.GeoPoint{Lat: *lat, Lng: *lng}
	}
	return item, nil
}
