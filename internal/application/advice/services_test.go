package advice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/shaharz/negishscan/internal/domain/advice"
	"github.com/shaharz/negishscan/internal/domain/scans"
	"github.com/shaharz/negishscan/internal/infra/db/memory"
)

type countingClient struct {
	calls int
	err   error
}

func (c *countingClient) Summarize(_ context.Context, _ *scans.Scan) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return `{"executive_summary":"fix the images"}`, nil
}

func TestSummarizeAndStoreReusesExisting(t *testing.T) {
	client := &countingClient{}
	svc := NewService(client, memory.NewAdviceRepository())
	scan := &scans.Scan{ID: "scan_1", URL: "https://example.co.il"}

	first, err := svc.SummarizeAndStore(context.Background(), scan)
	require.NoError(t, err)
	assert.Equal(t, "scan_1", first.ScanID)
	assert.Equal(t, 1, client.calls)

	second, err := svc.SummarizeAndStore(context.Background(), scan)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "stored summary is reused")
	assert.Equal(t, 1, client.calls, "model is not asked twice for one scan")
}

func TestSummarizeAndStorePropagatesQuotaError(t *testing.T) {
	client := &countingClient{err: domain.ErrQuotaExceeded}
	svc := NewService(client, memory.NewAdviceRepository())

	_, err := svc.SummarizeAndStore(context.Background(), &scans.Scan{ID: "scan_1"})
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)
}
