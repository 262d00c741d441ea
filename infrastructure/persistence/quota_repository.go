package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// QuotaLogRepository keeps an append-only record of upstream API unit costs.
type QuotaLogRepository struct {
	db *sql.DB
}

func NewQuotaLogRepository(db *sql.DB) *QuotaLogRepository { return &QuotaLogRepository{db: db} }

func (r *QuotaLogRepository) Record(ctx context.Context, endpoint string, units int) error {
	if r.db == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO quota_log (endpoint, units, created_at) VALUES ($1,$2,$3)`,
		endpoint, units, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record quota: %w", err)
	}
	return nil
}

func (r *QuotaLogRepository) UsageSince(ctx context.Context, since time.Time) (int, error) {
	if r.db == nil {
		return 0, nil
	}
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(units) FROM quota_log WHERE created_at >= $1`, since).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum quota usage: %w", err)
	}
	return int(total.Int64), nil
}
