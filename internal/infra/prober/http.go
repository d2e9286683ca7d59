package prober

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	domain "github.com/shaharz/negishscan/internal/domain/scans"
)

// Prober calls the external analyzer service: a headless browser running
// the DOM accessibility engine plus scripted interaction checks. Issue
// detection lives entirely on that side; we only consume its findings.
type Prober struct {
	Endpoint   string
	HTTPClient *http.Client
}

func New(endpoint string) *Prober {
	return &Prober{
		Endpoint: endpoint,
		// page load + probe run can legitimately take a while
		HTTPClient: &http.Client{Timeout: 55 * time.Second},
	}
}

// Health checks the analyzer's own health endpoint.
func (p *Prober) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("analyzer returned %d", resp.StatusCode)
	}
	return nil
}

type probeResponse struct {
	Issues     []domain.Issue `json:"issues"`
	DurationMS int64          `json:"duration_ms"`
}

func (p *Prober) Probe(ctx context.Context, req domain.ScanRequest) (domain.ProbeResult, error) {
	start := time.Now()

	body, err := json.Marshal(req)
	if err != nil {
		return domain.ProbeResult{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint+"/probe", bytes.NewReader(body))
	if err != nil {
		return domain.ProbeResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTPClient.Do(httpReq)
	if err != nil {
		return domain.ProbeResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.ProbeResult{}, fmt.Errorf("analyzer returned %d", resp.StatusCode)
	}

	var pr probeResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return domain.ProbeResult{}, err
	}
	if pr.DurationMS == 0 {
		pr.DurationMS = time.Since(start).Milliseconds()
	}
	return domain.ProbeResult{Issues: pr.Issues, DurationMS: pr.DurationMS}, nil
}
