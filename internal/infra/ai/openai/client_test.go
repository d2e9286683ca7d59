package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/shaharz/negishscan/internal/domain/advice"
	"github.com/shaharz/negishscan/internal/domain/scans"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: "gpt-4o"}
}

func TestSummarizeMapsQuotaExhaustion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`)
	})

	_, err := c.Summarize(context.Background(), &scans.Scan{ID: "scan_1", URL: "https://example.co.il"})
	require.ErrorIs(t, err, advice.ErrQuotaExceeded)
}

func TestSummarizeKeepsOtherProviderErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"upstream exploded","type":"server_error"}}`)
	})

	_, err := c.Summarize(context.Background(), &scans.Scan{ID: "scan_1", URL: "https://example.co.il"})
	require.Error(t, err)
	require.NotErrorIs(t, err, advice.ErrQuotaExceeded)
}
