package advice

import (
	"context"

	"github.com/shaharz/negishscan/internal/domain/scans"
)

// Client produces a remediation summary for a finished scan.
type Client interface {
	Summarize(ctx context.Context, s *scans.Scan) (string, error)
}

// Repository port for persisting and querying summaries
type Repository interface {
	Save(ctx context.Context, a *Summary) error
	LatestByScan(ctx context.Context, scanID string) (*Summary, error)
}
