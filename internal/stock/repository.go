package stock

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/platform/db"
)

// Repository persists daily stock data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	GetDailyForUpdate(ctx context.Context, shopID, brandID int64, date time.Time) (DailyRecord, error)
	InsertDaily(ctx context.Context, rec DailyRecord) (int64, error)
	UpdateDaily(ctx context.Context, rec DailyRecord) error
	InsertShift(ctx context.Context, rec ShiftRecord) (int64, error)
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const dailyColumns = `id, shop_id, brand_id, business_date, opening_bottles, received_bottles, closing_bottles, markup, updated_at`

func scanDaily(row pgx.Row) (DailyRecord, error) {
	var rec DailyRecord
	err := row.Scan(&rec.ID, &rec.ShopID, &rec.BrandID, &rec.BusinessDate,
		&rec.Opening, &rec.Received, &rec.Closing, &rec.Markup, &rec.UpdatedAt)
	return rec, err
}

// ListDaily returns every record for a shop on a business date.
func (r *Repository) ListDaily(ctx context.Context, shopID int64, date time.Time) ([]DailyRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+dailyColumns+` FROM daily_stock WHERE shop_id = $1 AND business_date = $2 ORDER BY brand_id`,
		shopID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []DailyRecord
	for rows.Next() {
		rec, err := scanDaily(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// ListShifts returns transfer legs touching the shop within a date range.
func (r *Repository) ListShifts(ctx context.Context, shopID int64, from, to time.Time) ([]ShiftRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, shop_id, peer_shop_id, brand_id, qty_bottles, supplier_name, supplier_code, business_date, posted_at
		 FROM stock_shifts
		 WHERE shop_id = $1 AND business_date BETWEEN $2 AND $3
		 ORDER BY posted_at DESC`,
		shopID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []ShiftRecord
	for rows.Next() {
		var rec ShiftRecord
		if err := rows.Scan(&rec.ID, &rec.Code, &rec.ShopID, &rec.PeerShopID, &rec.BrandID,
			&rec.QtyBottles, &rec.SupplierName, &rec.SupplierCode, &rec.BusinessDate, &rec.PostedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// CarryForward seeds the next business date's opening stock from the closing
// counts of the given date. Records already present for the next date are
// left untouched, making the rollover job safe to re-run.
func (r *Repository) CarryForward(ctx context.Context, date time.Time) (int64, error) {
	next := date.AddDate(0, 0, 1)
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO daily_stock (shop_id, brand_id, business_date, opening_bottles, received_bottles, closing_bottles, markup, updated_at)
		 SELECT shop_id, brand_id, $1, COALESCE(closing_bottles, opening_bottles + received_bottles), 0, NULL, markup, NOW()
		 FROM daily_stock
		 WHERE business_date = $2
		 ON CONFLICT (shop_id, brand_id, business_date) DO NOTHING`,
		next, date)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *txRepo) GetDailyForUpdate(ctx context.Context, shopID, brandID int64, date time.Time) (DailyRecord, error) {
	rec, err := scanDaily(t.tx.QueryRow(ctx,
		`SELECT `+dailyColumns+` FROM daily_stock WHERE shop_id = $1 AND brand_id = $2 AND business_date = $3 FOR UPDATE`,
		shopID, brandID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return DailyRecord{}, ErrRecordNotFound
	}
	return rec, err
}

func (t *txRepo) InsertDaily(ctx context.Context, rec DailyRecord) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO daily_stock (shop_id, brand_id, business_date, opening_bottles, received_bottles, closing_bottles, markup, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING id`,
		rec.ShopID, rec.BrandID, rec.BusinessDate, rec.Opening, rec.Received, rec.Closing, rec.Markup).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyOnboarded
		}
		return 0, err
	}
	return id, nil
}

func (t *txRepo) UpdateDaily(ctx context.Context, rec DailyRecord) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE daily_stock SET opening_bottles = $1, received_bottles = $2, closing_bottles = $3, markup = $4, updated_at = NOW() WHERE id = $5`,
		rec.Opening, rec.Received, rec.Closing, rec.Markup, rec.ID)
	return err
}

func (t *txRepo) InsertShift(ctx context.Context, rec ShiftRecord) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO stock_shifts (code, shop_id, peer_shop_id, brand_id, qty_bottles, supplier_name, supplier_code, business_date, posted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		rec.Code, rec.ShopID, rec.PeerShopID, rec.BrandID, rec.QtyBottles,
		rec.SupplierName, rec.SupplierCode, rec.BusinessDate, rec.PostedAt).Scan(&id)
	return id, err
}
