package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/shaharz/negishscan/internal/domain/scans"
)

// ScanRepository is the in-memory store used for local runs and tests.
type ScanRepository struct {
	mu    sync.RWMutex
	scans map[domain.ScanID]*domain.Scan
}

func NewScanRepository() *ScanRepository {
	return &ScanRepository{scans: make(map[domain.ScanID]*domain.Scan)}
}

func (r *ScanRepository) Save(_ context.Context, s *domain.Scan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.scans[s.ID] = &cp
	return nil
}

func (r *ScanRepository) Get(_ context.Context, id domain.ScanID) (*domain.Scan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *ScanRepository) Latest(_ context.Context, limit int) ([]*domain.Scan, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Scan, 0, len(r.scans))
	for _, s := range r.scans {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ScanRepository) Summary(_ context.Context, sinceDays int) (int, int, int, int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cut := time.Now().AddDate(0, 0, -sinceDays)

	r.mu.RLock()
	defer r.mu.RUnlock()
	var t, c, se, m int
	for _, s := range r.scans {
		if s.Timestamp.Before(cut) {
			continue
		}
		t++
		c += s.Summary.Critical
		se += s.Summary.Serious
		m += s.Summary.Moderate
	}
	return t, c, se, m, nil
}
