package scans

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shaharz/negishscan/internal/application"
	domain "github.com/shaharz/negishscan/internal/domain/scans"
	"github.com/shaharz/negishscan/internal/domain/scanerrors"
)

// Service implements the scan use-cases. Safe for concurrent use.
type Service struct {
	Repo     domain.Repository
	Prober   domain.Prober
	Renderer domain.Renderer
	Mailer   domain.Mailer
	Failures scanerrors.Repository
	Clock    application.Clock
}

// EvaluateCommand carries one scan submission.
type EvaluateCommand struct {
	URL      string
	Standard domain.Standard
	Locale   domain.Locale
}

func (c *EvaluateCommand) defaults() {
	if c.Standard == "" {
		c.Standard = domain.StandardIL5568
	}
	if c.Locale == "" {
		c.Locale = domain.LocaleHebrew
	}
}

// Evaluate runs the external probe against the page, derives the score and
// the legal-exposure tier from the findings, and persists the result.
func (s *Service) Evaluate(ctx context.Context, cmd EvaluateCommand) (*domain.Scan, error) {
	cmd.defaults()
	now := s.Clock.Now()
	id := newScanID()

	res, err := s.Prober.Probe(ctx, domain.ScanRequest{
		URL:      cmd.URL,
		Standard: cmd.Standard,
		Locale:   cmd.Locale,
	})
	if err != nil {
		s.recordFailure(string(id), cmd.URL, "probe", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrProbeFailed, err)
	}

	summary := domain.Summarize(res.Issues)
	score := domain.ComputeScore(summary)

	scan := &domain.Scan{
		ID:         id,
		URL:        cmd.URL,
		Timestamp:  now,
		Standard:   cmd.Standard,
		Locale:     cmd.Locale,
		Status:     domain.StatusSuccess,
		Score:      score,
		Summary:    summary,
		Risk:       domain.ClassifyRisk(score, summary),
		Issues:     res.Issues,
		Coverage:   domain.CoverageInfo(cmd.Locale),
		NextSteps:  domain.NextSteps(score, cmd.Locale),
		DurationMS: res.DurationMS,
	}

	if err := s.Repo.Save(ctx, scan); err != nil {
		return nil, err
	}
	return scan, nil
}

// EvaluateDocument is the non-payment-gated variant: scan and hand back the
// rendered report in one round trip. The document path is the slow one, so
// callers give it the longer timeout.
func (s *Service) EvaluateDocument(ctx context.Context, cmd EvaluateCommand) (*domain.Scan, []byte, error) {
	scan, err := s.Evaluate(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.Renderer.Render(ctx, scan)
	if err != nil {
		s.recordFailure(string(scan.ID), scan.URL, "render", err)
		return scan, nil, err
	}
	return scan, doc, nil
}

// SendReportCommand requests email delivery of a report.
type SendReportCommand struct {
	URL    string
	ScanID string
	Email  string
}

// SendReport renders a report and mails it. When a scan id is supplied the
// stored result is reused; otherwise the page is evaluated afresh.
func (s *Service) SendReport(ctx context.Context, cmd SendReportCommand) (*domain.Scan, error) {
	var scan *domain.Scan
	var err error

	if cmd.ScanID != "" {
		scan, err = s.Repo.Get(ctx, domain.ScanID(cmd.ScanID))
		if err != nil {
			return nil, err
		}
	}
	if scan == nil {
		scan, err = s.Evaluate(ctx, EvaluateCommand{URL: cmd.URL})
		if err != nil {
			return nil, err
		}
	}

	doc, err := s.Renderer.Render(ctx, scan)
	if err != nil {
		s.recordFailure(string(scan.ID), scan.URL, "render", err)
		return nil, err
	}
	if err := s.Mailer.SendReport(ctx, cmd.Email, scan, doc); err != nil {
		s.recordFailure(string(scan.ID), scan.URL, "email", err)
		return nil, err
	}
	return scan, nil
}

// Get fetches 1 scan by id
func (s *Service) Get(ctx context.Context, id domain.ScanID) (*domain.Scan, error) {
	return s.Repo.Get(ctx, id)
}

// Latest fetches the N most recent scans
func (s *Service) Latest(ctx context.Context, limit int) ([]*domain.Scan, error) {
	return s.Repo.Latest(ctx, limit)
}

// Summary aggregates scan results over the last N days
func (s *Service) Summary(ctx context.Context, sinceDays int) (map[string]any, error) {
	total, critical, serious, moderate, err := s.Repo.Summary(ctx, sinceDays)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total_scans": total,
		"critical":    critical,
		"serious":     serious,
		"moderate":    moderate,
	}, nil
}

func (s *Service) recordFailure(scanID, url, phase string, cause error) {
	if s.Failures == nil {
		return
	}
	_ = s.Failures.Save(context.Background(), &scanerrors.ScanError{
		ScanID:    scanID,
		URL:       url,
		Phase:     phase,
		Message:   cause.Error(),
		CreatedAt: time.Now().UTC(),
	})
}

func newScanID() domain.ScanID {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return domain.ScanID("scan_" + hex[:12])
}
