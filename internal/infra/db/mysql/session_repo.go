package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/shaharz/negishscan/internal/domain/payments"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// SaveSession insert/update a payment session
func (r *SessionRepository) SaveSession(ctx context.Context, s *domain.Session) error {
	const q = `
INSERT INTO payment_sessions
(id, scan_id, url, email, amount, status, process_id, payment_url, token, demo_mode, created_at, completed_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status), process_id=VALUES(process_id), payment_url=VALUES(payment_url),
 token=VALUES(token), completed_at=VALUES(completed_at);
`
	var completed sql.NullTime
	if !s.CompletedAt.IsZero() {
		completed = sql.NullTime{Time: s.CompletedAt, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, q,
		s.ID, s.ScanID, s.URL, s.Email, s.Amount, stringOrDash(string(s.Status)),
		s.ProcessID, s.PaymentURL, s.Token, s.DemoMode, s.CreatedAt, completed,
	)
	return err
}

// GetSession by id; returns (nil, nil) when unknown
func (r *SessionRepository) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	const q = `
SELECT id, scan_id, url, email, amount, status, process_id, payment_url, token, demo_mode, created_at, completed_at
FROM payment_sessions
WHERE id=? LIMIT 1;
`
	var s domain.Session
	var completed sql.NullTime
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.ScanID, &s.URL, &s.Email, &s.Amount, &s.Status,
		&s.ProcessID, &s.PaymentURL, &s.Token, &s.DemoMode, &s.CreatedAt, &completed,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if completed.Valid {
		s.CompletedAt = completed.Time
	}
	return &s, nil
}

// SaveToken stores a freshly issued download token
func (r *SessionRepository) SaveToken(ctx context.Context, t *domain.DownloadToken) error {
	const q = `
INSERT INTO download_tokens (value, session_id, expires_at, consumed)
VALUES (?,?,?,?)
ON DUPLICATE KEY UPDATE consumed=VALUES(consumed);
`
	_, err := r.db.ExecContext(ctx, q, t.Value, t.SessionID, t.ExpiresAt, t.Consumed)
	return err
}

// GetToken by value; returns (nil, nil) when unknown
func (r *SessionRepository) GetToken(ctx context.Context, value string) (*domain.DownloadToken, error) {
	const q = `
SELECT value, session_id, expires_at, consumed
FROM download_tokens WHERE value=? LIMIT 1;
`
	var t domain.DownloadToken
	err := r.db.QueryRowContext(ctx, q, value).Scan(&t.Value, &t.SessionID, &t.ExpiresAt, &t.Consumed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ConsumeToken marks a token used. The WHERE guard keeps it single-use even
// when two downloads race.
func (r *SessionRepository) ConsumeToken(ctx context.Context, value string) error {
	const q = `UPDATE download_tokens SET consumed=1 WHERE value=? AND consumed=0;`
	res, err := r.db.ExecContext(ctx, q, value)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTokenInvalid
	}
	return nil
}

// DeleteExpiredSessions removes sessions past their TTL and their tokens
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context) (int, error) {
	cut := time.Now().Add(-domain.SessionTTL)

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM download_tokens WHERE session_id IN (SELECT id FROM payment_sessions WHERE created_at < ?);`, cut); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM payment_sessions WHERE created_at < ?;`, cut)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
