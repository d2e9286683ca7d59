package memory

import (
	"context"
	"sync"
	"time"

	domain "github.com/shaharz/negishscan/internal/domain/payments"
)

// SessionRepository is the in-memory payment store used for local runs
// and tests.
type SessionRepository struct {
	mu       sync.Mutex
	sessions map[domain.SessionID]*domain.Session
	tokens   map[string]*domain.DownloadToken
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[domain.SessionID]*domain.Session),
		tokens:   make(map[string]*domain.DownloadToken),
	}
}

func (r *SessionRepository) SaveSession(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *SessionRepository) GetSession(_ context.Context, id domain.SessionID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *SessionRepository) SaveToken(_ context.Context, t *domain.DownloadToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tokens[t.Value] = &cp
	return nil
}

func (r *SessionRepository) GetToken(_ context.Context, value string) (*domain.DownloadToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[value]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *SessionRepository) ConsumeToken(_ context.Context, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[value]
	if !ok || t.Consumed {
		return domain.ErrTokenInvalid
	}
	t.Consumed = true
	return nil
}

func (r *SessionRepository) DeleteExpiredSessions(_ context.Context) (int, error) {
	cut := time.Now().Add(-domain.SessionTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for id, s := range r.sessions {
		if s.CreatedAt.Before(cut) {
			if s.Token != "" {
				delete(r.tokens, s.Token)
			}
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}
