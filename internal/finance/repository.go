package finance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists income and expense entries.
type Repository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)
	Update(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, shopID, id int64) error
	Get(ctx context.Context, shopID, id int64) (Entry, error)
	ListByRange(ctx context.Context, shopID int64, from, to time.Time) ([]Entry, error)
	SummarizeByRange(ctx context.Context, shopID int64, from, to time.Time) ([]DaySummary, error)
}

type repo struct {
	db *pgxpool.Pool
}

// NewRepository creates a finance repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repo{db: db}
}

const entryColumns = `id, shop_id, entry_type, business_date, category, amount, description, created_at, updated_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.ShopID, &e.Type, &e.BusinessDate, &e.Category, &e.Amount, &e.Description, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *repo) Create(ctx context.Context, entry Entry) (Entry, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO income_expense_entries (shop_id, entry_type, business_date, category, amount, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		entry.ShopID, entry.Type, entry.BusinessDate, entry.Category, entry.Amount, entry.Description, now, now).Scan(&entry.ID)
	if err != nil {
		return Entry{}, err
	}
	entry.CreatedAt = now
	entry.UpdatedAt = now
	return entry, nil
}

func (r *repo) Update(ctx context.Context, entry Entry) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE income_expense_entries SET entry_type = $1, business_date = $2, category = $3, amount = $4, description = $5, updated_at = NOW()
		 WHERE id = $6 AND shop_id = $7`,
		entry.Type, entry.BusinessDate, entry.Category, entry.Amount, entry.Description, entry.ID, entry.ShopID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, shopID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM income_expense_entries WHERE id = $1 AND shop_id = $2`, id, shopID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *repo) Get(ctx context.Context, shopID, id int64) (Entry, error) {
	e, err := scanEntry(r.db.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM income_expense_entries WHERE id = $1 AND shop_id = $2`, id, shopID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	return e, err
}

func (r *repo) ListByRange(ctx context.Context, shopID int64, from, to time.Time) ([]Entry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+entryColumns+` FROM income_expense_entries
		 WHERE shop_id = $1 AND business_date BETWEEN $2 AND $3
		 ORDER BY business_date, id`,
		shopID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repo) SummarizeByRange(ctx context.Context, shopID int64, from, to time.Time) ([]DaySummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT business_date,
		        COALESCE(SUM(amount) FILTER (WHERE entry_type = 'INCOME'), 0),
		        COALESCE(SUM(amount) FILTER (WHERE entry_type = 'EXPENSE'), 0)
		 FROM income_expense_entries
		 WHERE shop_id = $1 AND business_date BETWEEN $2 AND $3
		 GROUP BY business_date
		 ORDER BY business_date`,
		shopID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []DaySummary
	for rows.Next() {
		var s DaySummary
		if err := rows.Scan(&s.BusinessDate, &s.TotalIncome, &s.TotalExpense); err != nil {
			return nil, err
		}
		s.Net = s.TotalIncome.Sub(s.TotalExpense)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
