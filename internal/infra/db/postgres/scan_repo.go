package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	domain "github.com/shaharz/negishscan/internal/domain/scans"
)

type ScanRepository struct{ db *sql.DB }

func NewScanRepository(db *sql.DB) *ScanRepository { return &ScanRepository{db: db} }

// Save insert/update Scan record
func (r *ScanRepository) Save(ctx context.Context, s *domain.Scan) error {
	const q = `
INSERT INTO accessibility_scans
(id, url, scanned_at, standard, locale, status, score,
 critical, serious, moderate, minor, issues_total,
 risk_tier, risk_reason_key, risk_fine_range,
 issues_json, coverage_json, next_steps_json, duration_ms)
VALUES ($1,$2,$3,$4,$5,$6,$7,
        $8,$9,$10,$11,$12,
        $13,$14,$15,
        $16,$17,$18,$19)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 score = EXCLUDED.score,
 critical = EXCLUDED.critical,
 serious = EXCLUDED.serious,
 moderate = EXCLUDED.moderate,
 minor = EXCLUDED.minor,
 issues_total = EXCLUDED.issues_total,
 risk_tier = EXCLUDED.risk_tier,
 risk_reason_key = EXCLUDED.risk_reason_key,
 risk_fine_range = EXCLUDED.risk_fine_range,
 issues_json = EXCLUDED.issues_json,
 coverage_json = EXCLUDED.coverage_json,
 next_steps_json = EXCLUDED.next_steps_json,
 duration_ms = EXCLUDED.duration_ms;`

	status := stringOrDash(string(s.Status))
	scanned := s.Timestamp
	if scanned.IsZero() {
		scanned = time.Now()
	}
	issues, err := json.Marshal(s.Issues)
	if err != nil {
		return err
	}
	coverage, err := json.Marshal(s.Coverage)
	if err != nil {
		return err
	}
	nextSteps, err := json.Marshal(s.NextSteps)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, q,
		s.ID, s.URL, scanned, s.Standard, s.Locale, status, s.Score,
		s.Summary.Critical, s.Summary.Serious, s.Summary.Moderate, s.Summary.Minor, s.Summary.Total,
		s.Risk.Tier, s.Risk.ReasonKey, s.Risk.FineRange,
		issues, coverage, nextSteps, s.DurationMS,
	)
	return err
}

const scanColumns = `
SELECT id, url, scanned_at, standard, locale, status, score,
       critical, serious, moderate, minor, issues_total,
       risk_tier, risk_reason_key, risk_fine_range,
       issues_json, coverage_json, next_steps_json, duration_ms
FROM accessibility_scans`

// Get by ID
func (r *ScanRepository) Get(ctx context.Context, id domain.ScanID) (*domain.Scan, error) {
	row := r.db.QueryRowContext(ctx, scanColumns+`
WHERE id=$1 LIMIT 1;`, id)
	s, err := scanRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return s, err
}

// Latest scans, newest first
func (r *ScanRepository) Latest(ctx context.Context, limit int) ([]*domain.Scan, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, scanColumns+`
ORDER BY scanned_at DESC LIMIT $1;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Scan
	for rows.Next() {
		s, err := scanRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Summary counts scan results since N days
func (r *ScanRepository) Summary(ctx context.Context, sinceDays int) (int, int, int, int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cut := time.Now().AddDate(0, 0, -sinceDays)

	const q = `
SELECT COUNT(*),
       COALESCE(SUM(critical),0),
       COALESCE(SUM(serious),0),
       COALESCE(SUM(moderate),0)
FROM accessibility_scans
WHERE scanned_at >= $1;`
	var t, c, se, m int
	if err := r.db.QueryRowContext(ctx, q, cut).Scan(&t, &c, &se, &m); err != nil {
		return 0, 0, 0, 0, err
	}
	return t, c, se, m, nil
}

func scanRow(scan func(dest ...any) error) (*domain.Scan, error) {
	var s domain.Scan
	var crit, ser, mod, min, tot int
	var issues, coverage, nextSteps []byte
	if err := scan(
		&s.ID, &s.URL, &s.Timestamp, &s.Standard, &s.Locale, &s.Status, &s.Score,
		&crit, &ser, &mod, &min, &tot,
		&s.Risk.Tier, &s.Risk.ReasonKey, &s.Risk.FineRange,
		&issues, &coverage, &nextSteps, &s.DurationMS,
	); err != nil {
		return nil, err
	}
	s.Summary = domain.IssueSummary{Critical: crit, Serious: ser, Moderate: mod, Minor: min, Total: tot}
	if len(issues) > 0 {
		if err := json.Unmarshal(issues, &s.Issues); err != nil {
			return nil, err
		}
	}
	if len(coverage) > 0 {
		if err := json.Unmarshal(coverage, &s.Coverage); err != nil {
			return nil, err
		}
	}
	if len(nextSteps) > 0 {
		if err := json.Unmarshal(nextSteps, &s.NextSteps); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
