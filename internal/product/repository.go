package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists products. Every read and write other than Create is scoped
// to ownerID.
type Repository interface {
	Create(ctx context.Context, p Product) (Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Product, error)
	Get(ctx context.Context, ownerID, id string) (Product, error)
	Update(ctx context.Context, ownerID, id string, patch map[string]any) (UpdateResult, error)
	Delete(ctx context.Context, ownerID, id string) (DeleteResult, error)
	Search(ctx context.Context, ownerID, key string) ([]Product, error)
}

// PostgresRepository stores products as JSONB documents in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectProducts = `SELECT id, owner_id, fields FROM products`

// Create inserts a product record.
func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	payload, err := json.Marshal(p.Fields)
	if err != nil {
		return Product{}, fmt.Errorf("encode product: %w", err)
	}
	id := uuid.New()
	_, err = r.db.Exec(ctx, `INSERT INTO products (id, owner_id, fields, created_at)
        VALUES ($1, $2, $3::jsonb, $4)`, id, p.OwnerID, payload, time.Now().UTC())
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	p.ID = id.String()
	return p, nil
}

// ListByOwner returns every product owned by ownerID in insertion order.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]Product, error) {
	return r.query(ctx, selectProducts+` WHERE owner_id = $1 ORDER BY created_at, id`, ownerID)
}

// Get fetches a single product by identifier and owner.
func (r *PostgresRepository) Get(ctx context.Context, ownerID, id string) (Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return Product{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, selectProducts+` WHERE id = $1 AND owner_id = $2`, productID, ownerID)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update merges patch into the stored fields. Rows whose merged document equals the
// stored one count as matched but not modified.
func (r *PostgresRepository) Update(ctx context.Context, ownerID, id string, patch map[string]any) (UpdateResult, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return UpdateResult{}, nil
	}
	payload, err := json.Marshal(patch)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("encode patch: %w", err)
	}
	const query = `
        WITH target AS (
            SELECT id, fields FROM products WHERE id = $1 AND owner_id = $2 FOR UPDATE
        ), changed AS (
            UPDATE products p
            SET fields = t.fields || $3::jsonb, updated_at = now()
            FROM target t
            WHERE p.id = t.id AND (t.fields || $3::jsonb) <> t.fields
            RETURNING p.id
        )
        SELECT (SELECT count(*) FROM target), (SELECT count(*) FROM changed)`
	var res UpdateResult
	if err := r.db.QueryRow(ctx, query, productID, ownerID, payload).Scan(&res.Matched, &res.Modified); err != nil {
		return UpdateResult{}, fmt.Errorf("update product: %w", err)
	}
	return res, nil
}

// Delete removes a product by identifier and owner.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) (DeleteResult, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return DeleteResult{}, nil
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1 AND owner_id = $2`, productID, ownerID)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete product: %w", err)
	}
	return DeleteResult{Deleted: cmd.RowsAffected()}, nil
}

// Search matches name, company or category case-insensitively as a literal substring.
func (r *PostgresRepository) Search(ctx context.Context, ownerID, key string) ([]Product, error) {
	query := selectProducts + ` WHERE owner_id = $1 AND ` + searchCondition(2) + ` ORDER BY created_at, id`
	return r.query(ctx, query, ownerID, "%"+escapeLike(key)+"%")
}

// searchCondition matches the pattern in placeholder $param against the string
// values of searchFields. Numbers and booleans never match, as in the other stores.
func searchCondition(param int) string {
	conds := make([]string, 0, len(searchFields))
	for _, f := range searchFields {
		conds = append(conds, fmt.Sprintf("(jsonb_typeof(fields->'%[1]s') = 'string' AND fields->>'%[1]s' ILIKE $%[2]d)", f, param))
	}
	return "(" + strings.Join(conds, " OR ") + ")"
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	return products, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		id  uuid.UUID
		p   Product
		raw []byte
	)
	if err := row.Scan(&id, &p.OwnerID, &raw); err != nil {
		return Product{}, err
	}
	if err := json.Unmarshal(raw, &p.Fields); err != nil {
		return Product{}, err
	}
	p.ID = id.String()
	return p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
