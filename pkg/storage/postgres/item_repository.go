package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/skillfeed/skillfeed/pkg/catalog"
)

const itemColumns = `id, seller_id, title, description, category, price, active,
image_url, address, city_name, view_count, created_at, updated_at`

type ItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Insert(ctx context.Context, item *catalog.Item) (int64, error) {
	const stmt = `INSERT INTO items
(seller_id, title, description, category, price, active, image_url, address, city_name, view_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id`

	var id int64
	err := r.db.Pool().QueryRow(ctx, stmt,
		item.SellerID, item.Title, item.Description, item.Category, item.Price,
		item.Active, item.ImageURL, item.Address, item.CityName, item.ViewCount,
		item.CreatedAt, item.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}

	return id, nil
}

func (r *ItemRepository) Update(ctx context.Context, item *catalog.Item) error {
	const stmt = `UPDATE items SET
title = $2, description = $3, category = $4, price = $5, active = $6,
image_url = $7, address = $8, city_name = $9, updated_at = $10
WHERE id = $1`

	tag, err := r.db.Pool().Exec(ctx, stmt,
		item.ID, item.Title, item.Description, item.Category, item.Price,
		item.Active, item.ImageURL, item.Address, item.CityName, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}

	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Pool().Exec(ctx, `DELETE FROM items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*catalog.Item, error) {
	stmt := fmt.Sprintf(`SELECT %s FROM items WHERE id = $1`, itemColumns)

	item, err := scanItem(r.db.Pool().QueryRow(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return item, nil
}

func (r *ItemRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*catalog.Item, error) {
	if len(ids) == 0 {
		return map[int64]*catalog.Item{}, nil
	}

	stmt := fmt.Sprintf(`SELECT %s FROM items WHERE id = ANY($1)`, itemColumns)

	rows, err := r.db.Pool().Query(ctx, stmt, ids)
	if err != nil {
		return nil, fmt.Errorf("query items by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*catalog.Item, len(ids))
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return out, nil
}

func (r *ItemRepository) ListActive(ctx context.Context) ([]*catalog.Item, error) {
	stmt := fmt.Sprintf(`SELECT %s FROM items WHERE active`, itemColumns)
	return r.queryItems(ctx, stmt)
}

func (r *ItemRepository) ListBySeller(ctx context.Context, sellerID int64) ([]*catalog.Item, error) {
	stmt := fmt.Sprintf(`SELECT %s FROM items WHERE seller_id = $1 ORDER BY created_at DESC`, itemColumns)
	return r.queryItems(ctx, stmt, sellerID)
}

func (r *ItemRepository) SearchActive(ctx context.Context, q catalog.StoreQuery) ([]*catalog.Item, int, error) {
	conds := []string{"active"}
	args := []any{}

	if q.Keyword != "" {
		args = append(args, "%"+q.Keyword+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if q.Category != "" {
		args = append(args, q.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int
	countStmt := fmt.Sprintf(`SELECT count(*) FROM items WHERE %s`, where)
	if err := r.db.Pool().QueryRow(ctx, countStmt, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	args = append(args, q.Limit, q.Offset)
	stmt := fmt.Sprintf(`SELECT %s FROM items WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		itemColumns, where, len(args)-1, len(args))

	items, err := r.queryItems(ctx, stmt, args...)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *ItemRepository) IncrementViewCount(ctx context.Context, id int64) error {
	if _, err := r.db.Pool().Exec(ctx, `UPDATE items SET view_count = view_count + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

func (r *ItemRepository) queryItems(ctx context.Context, stmt string, args ...any) ([]*catalog.Item, error) {
	rows, err := r.db.Pool().Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	out := make([]*catalog.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return out, nil
}

func scanItem(row pgx.Row) (*catalog.Item, error) {
	var item catalog.Item
	err := row.Scan(
		&item.ID, &item.SellerID, &item.Title, &item.Description, &item.Category,
		&item.Price, &item.Active, &item.ImageURL, &item.Address, &item.CityName,
		&item.ViewCount, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
