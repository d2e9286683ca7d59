package scans

import "context"

// Repository port (interface for persistence)
type Repository interface {
	Save(ctx context.Context, s *Scan) error
	Get(ctx context.Context, id ScanID) (*Scan, error)
	Latest(ctx context.Context, limit int) ([]*Scan, error)
	Summary(ctx context.Context, sinceDays int) (int, int, int, int, error)
}

// ProbeResult is the raw output of the external analyzer: issue lists only.
// Scoring and risk classification happen on our side.
type ProbeResult struct {
	Issues     []Issue
	DurationMS int64
}

// Prober port: the external DOM accessibility analyzer plus scripted
// interaction checks. Detection itself lives outside this service.
type Prober interface {
	Probe(ctx context.Context, req ScanRequest) (ProbeResult, error)
}

// Renderer port: the document engine that lays out a finished report.
type Renderer interface {
	Render(ctx context.Context, s *Scan) ([]byte, error)
}

// Mailer port: outbound report delivery by email.
type Mailer interface {
	SendReport(ctx context.Context, to string, s *Scan, document []byte) error
}
