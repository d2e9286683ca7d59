package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/shaharz/negishscan/internal/domain/advice"
)

type AdviceRepository struct {
	db *sql.DB
}

func NewAdviceRepository(db *sql.DB) *AdviceRepository { return &AdviceRepository{db: db} }

func (r *AdviceRepository) Save(ctx context.Context, a *domain.Summary) error {
	const q = `
INSERT INTO remediation_summaries (id, scan_id, url, result, created_at)
VALUES (?,?,?,?,?);
`
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, a.ID, stringOrDash(a.ScanID), a.URL, a.Result, created)
	return err
}

func (r *AdviceRepository) LatestByScan(ctx context.Context, scanID string) (*domain.Summary, error) {
	const q = `
SELECT id, scan_id, url, result, created_at
FROM remediation_summaries
WHERE scan_id=?
ORDER BY created_at DESC LIMIT 1;
`
	var a domain.Summary
	err := r.db.QueryRowContext(ctx, q, scanID).Scan(&a.ID, &a.ScanID, &a.URL, &a.Result, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
