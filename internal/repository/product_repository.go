package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"product-manager/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, date, manufacture_phone, manufacture_email, count`

// PostgresProductRepository is the primary product store.
type PostgresProductRepository struct {
	db     DBTX
	logger zerolog.Logger
}

var _ ProductStoreAdapter = (*PostgresProductRepository)(nil)
var _ PrimaryReader = (*PostgresProductRepository)(nil)

// NewPostgresProductRepository creates a PostgreSQL-backed product store.
func NewPostgresProductRepository(db DBTX, logger zerolog.Logger) *PostgresProductRepository {
	return &PostgresProductRepository{
		db:     db,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// WithTx returns a copy of the repository bound to tx.
func (r *PostgresProductRepository) WithTx(tx pgx.Tx) *PostgresProductRepository {
	return &PostgresProductRepository{db: tx, logger: r.logger}
}

// Get retrieves a single product by its ID.
func (r *PostgresProductRepository) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetMany retrieves the products matching ids. Unknown ids are skipped.
func (r *PostgresProductRepository) GetMany(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY date, id`
	return r.queryProducts(ctx, "by ids", query, ids)
}

// Add inserts a product. A nil id is replaced with a fresh one.
func (r *PostgresProductRepository) Add(ctx context.Context, product model.Product) (*model.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Date,
		product.ManufacturePhone,
		product.ManufactureEmail,
		product.Count,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.NewConflictError("product %s already exists", product.ID)
		}
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to insert product")
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	r.logger.Debug().Str("product_id", product.ID.String()).Msg("product created")

	return &product, nil
}

// AddMany inserts products in a single batch. It is atomic only when the
// repository is bound to a transaction.
func (r *PostgresProductRepository) AddMany(ctx context.Context, products []model.Product) ([]model.Product, error) {
	added := make([]model.Product, 0, len(products))
	if len(products) == 0 {
		return added, nil
	}

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		batch.Queue(query, p.ID, p.Name, p.Date, p.ManufacturePhone, p.ManufactureEmail, p.Count)
		added = append(added, p)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := range added {
		if _, err := results.Exec(); err != nil {
			if isUniqueViolation(err) {
				return nil, model.NewConflictError("product %s already exists", added[i].ID)
			}
			r.logger.Error().
				Err(err).
				Str("product_id", added[i].ID.String()).
				Msg("failed to insert product in batch")
			return nil, fmt.Errorf("failed to insert product: %w", err)
		}
	}

	r.logger.Debug().Int("count", len(added)).Msg("products created")

	return added, nil
}

// Update overwrites the mutable fields of a product. The id and date are kept.
// It returns nil when no row has the product's id.
func (r *PostgresProductRepository) Update(ctx context.Context, product model.Product) (*model.Product, error) {
	query := `
		UPDATE products
		SET name = $2, manufacture_phone = $3, manufacture_email = $4, count = $5
		WHERE id = $1
		RETURNING ` + productColumns

	p, err := scanProduct(r.db.QueryRow(ctx, query,
		product.ID,
		product.Name,
		product.ManufacturePhone,
		product.ManufactureEmail,
		product.Count,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", product.ID.String()).Msg("product to update not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return p, nil
}

// Delete removes a product and reports whether a row was removed.
func (r *PostgresProductRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteMany removes the given products and reports whether any row was removed.
func (r *PostgresProductRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return false, nil
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to delete products")
		return false, fmt.Errorf("failed to delete products: %w", err)
	}

	r.logger.Debug().
		Int("requested", len(ids)).
		Int64("removed", tag.RowsAffected()).
		Msg("products deleted")

	return tag.RowsAffected() > 0, nil
}

// FindByName returns products whose name equals the trimmed input.
func (r *PostgresProductRepository) FindByName(ctx context.Context, name string) ([]model.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1 ORDER BY date, id`
	return r.queryProducts(ctx, "by name", query, name)
}

// FindByManufacturer returns products whose manufacturer email equals the trimmed input.
func (r *PostgresProductRepository) FindByManufacturer(ctx context.Context, email string) ([]model.Product, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE manufacture_email = $1 ORDER BY date, id`
	return r.queryProducts(ctx, "by manufacturer", query, email)
}

// ListAll returns every product ordered by date.
func (r *PostgresProductRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY date, id`
	return r.queryProducts(ctx, "all", query)
}

func (r *PostgresProductRepository) queryProducts(ctx context.Context, what, query string, args ...any) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("query", what).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products %s: %w", what, err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Date, &p.ManufacturePhone, &p.ManufactureEmail, &p.Count)
	if err != nil {
		return nil, err
	}
	p.Date = p.Date.UTC()
	return &p, nil
}
