package estimate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists estimate drafts. Lines and totals are stored as JSONB
// since drafts are read back whole, never queried by line.
type Repository interface {
	Save(ctx context.Context, est Estimate) (Estimate, error)
	Get(ctx context.Context, shopID, id int64) (Estimate, error)
	List(ctx context.Context, shopID int64, limit int) ([]Estimate, error)
}

type repo struct {
	db *pgxpool.Pool
}

// NewRepository creates an estimate repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repo{db: db}
}

func (r *repo) Save(ctx context.Context, est Estimate) (Estimate, error) {
	linesJSON, err := json.Marshal(est.Lines)
	if err != nil {
		return Estimate{}, err
	}
	totalsJSON, err := json.Marshal(est.Totals)
	if err != nil {
		return Estimate{}, err
	}
	now := time.Now()
	err = r.db.QueryRow(ctx,
		`INSERT INTO estimate_drafts (shop_id, ten_times_lifted, lines, totals, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		est.ShopID, est.TenTimesLifted, linesJSON, totalsJSON, now).Scan(&est.ID)
	if err != nil {
		return Estimate{}, err
	}
	est.CreatedAt = now
	return est, nil
}

func (r *repo) Get(ctx context.Context, shopID, id int64) (Estimate, error) {
	var (
		est        Estimate
		linesJSON  []byte
		totalsJSON []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, shop_id, ten_times_lifted, lines, totals, created_at FROM estimate_drafts WHERE id = $1 AND shop_id = $2`,
		id, shopID).Scan(&est.ID, &est.ShopID, &est.TenTimesLifted, &linesJSON, &totalsJSON, &est.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Estimate{}, ErrEstimateNotFound
	}
	if err != nil {
		return Estimate{}, err
	}
	if err := json.Unmarshal(linesJSON, &est.Lines); err != nil {
		return Estimate{}, err
	}
	if err := json.Unmarshal(totalsJSON, &est.Totals); err != nil {
		return Estimate{}, err
	}
	return est, nil
}

func (r *repo) List(ctx context.Context, shopID int64, limit int) ([]Estimate, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, shop_id, ten_times_lifted, lines, totals, created_at FROM estimate_drafts
		 WHERE shop_id = $1 ORDER BY created_at DESC LIMIT $2`,
		shopID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var estimates []Estimate
	for rows.Next() {
		var (
			est        Estimate
			linesJSON  []byte
			totalsJSON []byte
		)
		if err := rows.Scan(&est.ID, &est.ShopID, &est.TenTimesLifted, &linesJSON, &totalsJSON, &est.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(linesJSON, &est.Lines); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(totalsJSON, &est.Totals); err != nil {
			return nil, err
		}
		estimates = append(estimates, est)
	}
	return estimates, rows.Err()
}
