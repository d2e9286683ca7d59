package advice

import (
	"context"
	"time"

	"github.com/google/uuid"

	domain "github.com/shaharz/negishscan/internal/domain/advice"
	"github.com/shaharz/negishscan/internal/domain/scans"
)

type Service struct {
	client domain.Client
	repo   domain.Repository
}

func NewService(client domain.Client, repo domain.Repository) *Service {
	return &Service{client: client, repo: repo}
}

// SummarizeAndStore asks the model for a remediation summary and persists
// it keyed by scan id so a later render of the same report reuses it.
func (s *Service) SummarizeAndStore(ctx context.Context, scan *scans.Scan) (*domain.Summary, error) {
	if existing, err := s.repo.LatestByScan(ctx, string(scan.ID)); err == nil && existing != nil {
		return existing, nil
	}

	result, err := s.client.Summarize(ctx, scan)
	if err != nil {
		return nil, err
	}

	sum := &domain.Summary{
		ID:        domain.SummaryID(uuid.NewString()),
		ScanID:    string(scan.ID),
		URL:       scan.URL,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Save(ctx, sum); err != nil {
		return nil, err
	}
	return sum, nil
}

// LatestByScan returns the stored summary for a scan, if any.
func (s *Service) LatestByScan(ctx context.Context, scanID string) (*domain.Summary, error) {
	return s.repo.LatestByScan(ctx, scanID)
}
