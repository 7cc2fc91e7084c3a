package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the master brand catalog.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Brand, int, error)
	Get(ctx context.Context, id int64) (Brand, error)
	GetByNumber(ctx context.Context, brandNumber string, sizeML int) (Brand, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]Brand, error)
	Create(ctx context.Context, brand Brand) (Brand, error)
	Update(ctx context.Context, id int64, brand Brand) error
	Search(ctx context.Context, query string, limit int) ([]Brand, error)
}

type repo struct {
	db *pgxpool.Pool
}

// NewRepository creates a new catalog repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repo{db: db}
}

const brandColumns = `id, brand_number, name, kind, pack_type, pack_quantity, size_ml, mrp, invoice_price, special_margin, special_excise_cess, created_at, updated_at`

func scanBrand(row pgx.Row) (Brand, error) {
	var b Brand
	err := row.Scan(&b.ID, &b.BrandNumber, &b.Name, &b.Kind, &b.PackType, &b.PackQuantity, &b.SizeML,
		&b.MRP, &b.InvoicePrice, &b.SpecialMargin, &b.SpecialExciseCess, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *repo) List(ctx context.Context, filter ListFilter) ([]Brand, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		where += fmt.Sprintf(` AND kind = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(` AND (brand_number ILIKE $%d OR name ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM master_brands`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	query := `SELECT ` + brandColumns + ` FROM master_brands` + where +
		fmt.Sprintf(` ORDER BY brand_number, size_ml LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var brands []Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, 0, err
		}
		brands = append(brands, b)
	}
	return brands, total, rows.Err()
}

func (r *repo) Get(ctx context.Context, id int64) (Brand, error) {
	b, err := scanBrand(r.db.QueryRow(ctx, `SELECT `+brandColumns+` FROM master_brands WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Brand{}, ErrBrandNotFound
	}
	return b, err
}

func (r *repo) GetByNumber(ctx context.Context, brandNumber string, sizeML int) (Brand, error) {
	b, err := scanBrand(r.db.QueryRow(ctx, `SELECT `+brandColumns+` FROM master_brands WHERE brand_number = $1 AND size_ml = $2`, brandNumber, sizeML))
	if errors.Is(err, pgx.ErrNoRows) {
		return Brand{}, ErrBrandNotFound
	}
	return b, err
}

func (r *repo) GetMany(ctx context.Context, ids []int64) (map[int64]Brand, error) {
	if len(ids) == 0 {
		return map[int64]Brand{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+brandColumns+` FROM master_brands WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brands := make(map[int64]Brand, len(ids))
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, err
		}
		brands[b.ID] = b
	}
	return brands, rows.Err()
}

func (r *repo) Create(ctx context.Context, brand Brand) (Brand, error) {
	query := `INSERT INTO master_brands (brand_number, name, kind, pack_type, pack_quantity, size_ml, mrp, invoice_price, special_margin, special_excise_cess, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query,
		brand.BrandNumber, brand.Name, brand.Kind, brand.PackType, brand.PackQuantity, brand.SizeML,
		brand.MRP, brand.InvoicePrice, brand.SpecialMargin, brand.SpecialExciseCess, now, now,
	).Scan(&brand.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Brand{}, ErrDuplicateBrand
		}
		return Brand{}, err
	}
	brand.CreatedAt = now
	brand.UpdatedAt = now
	return brand, nil
}

func (r *repo) Update(ctx context.Context, id int64, brand Brand) error {
	query := `UPDATE master_brands SET name = $1, kind = $2, pack_type = $3, pack_quantity = $4, size_ml = $5,
	          mrp = $6, invoice_price = $7, special_margin = $8, special_excise_cess = $9, updated_at = $10
	          WHERE id = $11`
	tag, err := r.db.Exec(ctx, query,
		brand.Name, brand.Kind, brand.PackType, brand.PackQuantity, brand.SizeML,
		brand.MRP, brand.InvoicePrice, brand.SpecialMargin, brand.SpecialExciseCess, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBrandNotFound
	}
	return nil
}

func (r *repo) Search(ctx context.Context, query string, limit int) ([]Brand, error) {
	if limit <= 0 {
		limit = 25
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+brandColumns+` FROM master_brands
		 WHERE brand_number ILIKE $1 OR name ILIKE $2
		 ORDER BY brand_number, size_ml LIMIT $3`,
		query+"%", "%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}
