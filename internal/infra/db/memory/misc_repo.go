package memory

import (
	"context"
	"sync"

	advicedomain "github.com/shaharz/negishscan/internal/domain/advice"
	"github.com/shaharz/negishscan/internal/domain/scanerrors"
)

// AdviceRepository keeps remediation summaries in memory.
type AdviceRepository struct {
	mu        sync.Mutex
	summaries []*advicedomain.Summary
}

func NewAdviceRepository() *AdviceRepository { return &AdviceRepository{} }

func (r *AdviceRepository) Save(_ context.Context, a *advicedomain.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.summaries = append(r.summaries, &cp)
	return nil
}

func (r *AdviceRepository) LatestByScan(_ context.Context, scanID string) (*advicedomain.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.summaries) - 1; i >= 0; i-- {
		if r.summaries[i].ScanID == scanID {
			cp := *r.summaries[i]
			return &cp, nil
		}
	}
	return nil, nil
}

// ScanErrorRepository keeps scan failure entries in memory.
type ScanErrorRepository struct {
	mu      sync.Mutex
	entries []*scanerrors.ScanError
}

func NewScanErrorRepository() *ScanErrorRepository { return &ScanErrorRepository{} }

func (r *ScanErrorRepository) Save(_ context.Context, e *scanerrors.ScanError) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	cp.ID = int64(len(r.entries) + 1)
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *ScanErrorRepository) ListByScan(_ context.Context, scanID string, limit int) ([]*scanerrors.ScanError, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*scanerrors.ScanError
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].ScanID == scanID {
			cp := *r.entries[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}
