package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads per-day stock movements.
type Repository interface {
	MovementsForDate(ctx context.Context, shopID int64, date time.Time) ([]DayMovement, error)
}

type repo struct {
	db *pgxpool.Pool
}

// NewRepository creates a reports repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repo{db: db}
}

// MovementsForDate returns received and sold bottle counts per brand.
// Rows without a closing count contribute zero sales for the day.
func (r *repo) MovementsForDate(ctx context.Context, shopID int64, date time.Time) ([]DayMovement, error) {
	rows, err := r.db.Query(ctx,
		`SELECT brand_id,
		        received_bottles,
		        CASE WHEN closing_bottles IS NULL THEN 0
		             ELSE opening_bottles + received_bottles - closing_bottles END
		 FROM daily_stock
		 WHERE shop_id = $1 AND business_date = $2`,
		shopID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []DayMovement
	for rows.Next() {
		var m DayMovement
		if err := rows.Scan(&m.BrandID, &m.Received, &m.Sold); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
