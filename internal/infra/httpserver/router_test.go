package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharz/negishscan/internal/application"
	appadvice "github.com/shaharz/negishscan/internal/application/advice"
	apppayments "github.com/shaharz/negishscan/internal/application/payments"
	appscans "github.com/shaharz/negishscan/internal/application/scans"
	advicedomain "github.com/shaharz/negishscan/internal/domain/advice"
	paydomain "github.com/shaharz/negishscan/internal/domain/payments"
	domain "github.com/shaharz/negishscan/internal/domain/scans"
	"github.com/shaharz/negishscan/internal/infra/db/memory"
	"github.com/shaharz/negishscan/internal/middleware"
)

type fakeProber struct{ issues []domain.Issue }

func (p fakeProber) Probe(_ context.Context, _ domain.ScanRequest) (domain.ProbeResult, error) {
	return domain.ProbeResult{Issues: p.issues, DurationMS: 900}, nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(_ context.Context, _ *domain.Scan) ([]byte, error) {
	return []byte("%PDF-1.7 report"), nil
}

type fakeMailer struct{}

func (fakeMailer) SendReport(_ context.Context, _ string, _ *domain.Scan, _ []byte) error {
	return nil
}

// autoPayGateway treats every session as paid, like the demo-mode path.
type autoPayGateway struct{}

func (autoPayGateway) CreateProcess(_ context.Context, s *paydomain.Session) (paydomain.GatewayResult, error) {
	return paydomain.GatewayResult{
		PaymentURL: "https://provider.example/pay/" + string(s.ID),
		ProcessID:  "proc_1",
	}, nil
}
func (autoPayGateway) VerifyProcess(_ context.Context, _ *paydomain.Session) (bool, error) {
	return true, nil
}
func (autoPayGateway) DemoMode() bool { return true }

func newTestServer(t *testing.T, issues []domain.Issue) *httptest.Server {
	t.Helper()
	scanRepo := memory.NewScanRepository()

	scansSvc := &appscans.Service{
		Repo:     scanRepo,
		Prober:   fakeProber{issues: issues},
		Renderer: fakeRenderer{},
		Mailer:   fakeMailer{},
		Failures: memory.NewScanErrorRepository(),
		Clock:    application.SystemClock{},
	}
	paymentsSvc := &apppayments.Service{
		Repo:      memory.NewSessionRepository(),
		Gateway:   autoPayGateway{},
		Scans:     scanRepo,
		Renderer:  fakeRenderer{},
		Documents: memory.NewDocumentStore(),
		Clock:     application.SystemClock{},
		Amount:    79,
	}

	srv := httptest.NewServer(NewRouter(scansSvc, paymentsSvc, nil, "secret", nil))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestScanEndpoint(t *testing.T) {
	srv := newTestServer(t, []domain.Issue{
		{Rule: "image-alt", Impact: "critical"},
		{Rule: "color-contrast", Impact: "serious"},
	})

	resp := postJSON(t, srv.URL+"/api/v1/scan", map[string]string{"url": "https://example.co.il"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var scan struct {
		ScanID string `json:"scan_id"`
		Score  int    `json:"score"`
		Risk   struct {
			Level string `json:"level"`
		} `json:"legal_risk"`
	}
	decode(t, resp, &scan)
	assert.NotEmpty(t, scan.ScanID)
	assert.Equal(t, 85, scan.Score)
	assert.Equal(t, "LOW", scan.Risk.Level)
}

func TestScanEndpointRejectsBadInput(t *testing.T) {
	srv := newTestServer(t, nil)

	cases := []map[string]string{
		{"url": ""},
		{"url": "ftp://example.co.il"},
		{"url": "http://localhost/admin"},
		{"url": "http://192.168.1.1/"},
		{"url": "https://example.co.il", "standard": "WCAG_1_0"},
		{"url": "https://example.co.il", "locale": "fr"},
	}
	for _, body := range cases {
		resp := postJSON(t, srv.URL+"/api/v1/scan", body)
		var errBody map[string]string
		decode(t, resp, &errBody)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %v", body)
		assert.NotEmpty(t, errBody["error"])
	}
}

func TestPaymentRoundTrip(t *testing.T) {
	srv := newTestServer(t, nil)

	// scan first so the session has a stored result to render
	resp := postJSON(t, srv.URL+"/api/v1/scan", map[string]string{"url": "https://example.co.il"})
	var scan struct {
		ScanID string `json:"scan_id"`
	}
	decode(t, resp, &scan)

	resp = postJSON(t, srv.URL+"/api/v1/payment/create", map[string]string{
		"url":     "https://example.co.il",
		"email":   "buyer@example.co.il",
		"scan_id": scan.ScanID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created struct {
		SessionID  string `json:"session_id"`
		PaymentURL string `json:"payment_url"`
	}
	decode(t, resp, &created)
	require.NotEmpty(t, created.SessionID)
	assert.Contains(t, created.PaymentURL, created.SessionID)

	resp = postJSON(t, srv.URL+"/api/v1/payment/verify", map[string]string{
		"session_id": created.SessionID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var verified struct {
		Status string `json:"status"`
		Token  string `json:"pdf_token"`
	}
	decode(t, resp, &verified)
	assert.Equal(t, "completed", verified.Status)
	require.NotEmpty(t, verified.Token)

	// first download succeeds and names the file after the scan
	dresp, err := http.Get(srv.URL + "/api/v1/payment/download/" + verified.Token)
	require.NoError(t, err)
	dresp.Body.Close()
	assert.Equal(t, http.StatusOK, dresp.StatusCode)
	assert.Equal(t, "application/pdf", dresp.Header.Get("Content-Type"))
	assert.Contains(t, dresp.Header.Get("Content-Disposition"), scan.ScanID)

	// second download is gone: the token was consumed
	dresp, err = http.Get(srv.URL + "/api/v1/payment/download/" + verified.Token)
	require.NoError(t, err)
	dresp.Body.Close()
	assert.Equal(t, http.StatusGone, dresp.StatusCode)
}

func TestPaymentWebhook(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/v1/payment/create", map[string]string{
		"url":   "https://example.co.il",
		"email": "buyer@example.co.il",
	})
	var created struct {
		SessionID string `json:"session_id"`
	}
	decode(t, resp, &created)

	resp = postJSON(t, srv.URL+"/api/v1/payment/webhook", map[string]any{
		"status":       "1",
		"customFields": map[string]string{"cField1": created.SessionID},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hooked struct {
		Handled bool `json:"handled"`
	}
	decode(t, resp, &hooked)
	assert.True(t, hooked.Handled)

	// status now reflects the webhook completion
	sresp, err := http.Get(srv.URL + "/api/v1/payment/status?session_id=" + created.SessionID)
	require.NoError(t, err)
	var status struct {
		Status string `json:"status"`
		Token  string `json:"pdf_token"`
	}
	decode(t, sresp, &status)
	assert.Equal(t, "completed", status.Status)
	assert.NotEmpty(t, status.Token)
}

func TestUnknownSessionIs404(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := postJSON(t, srv.URL+"/api/v1/payment/verify", map[string]string{
		"session_id": "pay_missing",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminRoutesRequireKey(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/scans/latest")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/scans/latest", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// quotaClient simulates an AI provider that is out of quota.
type quotaClient struct{}

func (quotaClient) Summarize(_ context.Context, _ *domain.Scan) (string, error) {
	return "", fmt.Errorf("chat completion: %w", advicedomain.ErrQuotaExceeded)
}

func TestAdviceEndpointReportsQuotaExhaustion(t *testing.T) {
	scanRepo := memory.NewScanRepository()
	scansSvc := &appscans.Service{
		Repo: scanRepo, Prober: fakeProber{}, Renderer: fakeRenderer{},
		Mailer: fakeMailer{}, Failures: memory.NewScanErrorRepository(),
		Clock: application.SystemClock{},
	}
	paymentsSvc := &apppayments.Service{
		Repo: memory.NewSessionRepository(), Gateway: autoPayGateway{}, Scans: scanRepo,
		Renderer: fakeRenderer{}, Documents: memory.NewDocumentStore(),
		Clock: application.SystemClock{}, Amount: 79,
	}
	adviceSvc := appadvice.NewService(quotaClient{}, memory.NewAdviceRepository())
	srv := httptest.NewServer(NewRouter(scansSvc, paymentsSvc, adviceSvc, "secret", nil))
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/v1/scan", map[string]string{"url": "https://example.co.il"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var scan struct {
		ScanID string `json:"scan_id"`
	}
	decode(t, resp, &scan)
	require.NotEmpty(t, scan.ScanID)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/scans/"+scan.ScanID+"/advice", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	var errBody map[string]string
	decode(t, resp, &errBody)
	assert.Contains(t, errBody["error"], "quota")
}

func TestSendReportEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/v1/send-report", map[string]string{
		"url":   "https://example.co.il",
		"email": "buyer@example.co.il",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sent struct {
		Status string `json:"status"`
		ScanID string `json:"scan_id"`
	}
	decode(t, resp, &sent)
	assert.Equal(t, "sent", sent.Status)
	assert.NotEmpty(t, sent.ScanID)

	// email is mandatory for this delivery mode
	resp = postJSON(t, srv.URL+"/api/v1/send-report", map[string]string{
		"url": "https://example.co.il",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// failing dependency flips the aggregate check to 503
	scanRepo := memory.NewScanRepository()
	scansSvc := &appscans.Service{
		Repo: scanRepo, Prober: fakeProber{}, Renderer: fakeRenderer{},
		Mailer: fakeMailer{}, Clock: application.SystemClock{},
	}
	paymentsSvc := &apppayments.Service{
		Repo: memory.NewSessionRepository(), Gateway: autoPayGateway{}, Scans: scanRepo,
		Renderer: fakeRenderer{}, Documents: memory.NewDocumentStore(),
		Clock: application.SystemClock{}, Amount: 79,
	}
	failing := NewRouter(scansSvc, paymentsSvc, nil, "", map[string]middleware.HealthChecker{
		"analyzer": middleware.CheckerFunc(func(context.Context) error {
			return context.DeadlineExceeded
		}),
	})
	unhealthy := httptest.NewServer(failing)
	defer unhealthy.Close()

	resp, err = http.Get(unhealthy.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var health struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "unhealthy", health.Status)
}
