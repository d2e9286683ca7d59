package flow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipelineServer fakes the whole server side: scan, payment session
// creation, verification, and one-time token download.
type pipelineServer struct {
	*httptest.Server

	verifyStatus string // answer for /payment/verify
	tokenSpent   atomic.Bool
	createCalls  atomic.Int32
}

func newPipelineServer(t *testing.T) *pipelineServer {
	t.Helper()
	ps := &pipelineServer{verifyStatus: "completed"}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/scan", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(Result{
			ScanID: "scan_e2e",
			URL:    req.URL,
			Score:  58,
			Risk:   Risk{Tier: "MEDIUM", ReasonKey: "risk.medium"},
		})
	})
	mux.HandleFunc("POST /api/v1/payment/create", func(w http.ResponseWriter, r *http.Request) {
		ps.createCalls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"session_id":  "pay_e2e",
			"payment_url": "https://provider.example/pay/e2e",
			"demo_mode":   true,
		})
	})
	mux.HandleFunc("POST /api/v1/payment/verify", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string `json:"session_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pay_e2e", req.SessionID)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    ps.verifyStatus,
			"pdf_token": "tok_e2e",
		})
	})
	mux.HandleFunc("GET /api/v1/payment/download/{token}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("token") != "tok_e2e" || !ps.tokenSpent.CompareAndSwap(false, true) {
			w.WriteHeader(http.StatusGone)
			json.NewEncoder(w).Encode(map[string]string{"detail": "token expired or already used"})
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="accessibility-report-scan_e2e.pdf"`)
		w.Write([]byte("%PDF-1.7 report"))
	})

	ps.Server = httptest.NewServer(mux)
	t.Cleanup(ps.Close)
	return ps
}

func TestFlowHappyPath(t *testing.T) {
	srv := newPipelineServer(t)

	var saved string
	f := New(srv.URL, DeliveryPaid, NewMemorySessionStore(), func(filename string, doc []byte) error {
		saved = filename
		return nil
	})

	ctx := context.Background()

	res, _, err := f.Scan(ctx, "example.co.il")
	require.NoError(t, err)
	assert.Equal(t, "scan_e2e", res.ScanID)
	assert.Equal(t, StateResults, f.State())

	f.OpenPurchase()
	effects := f.StartPurchase(ctx, "buyer@example.co.il")
	require.Len(t, effects, 1)
	assert.Equal(t, "https://provider.example/pay/e2e", effects[0].(Redirect).URL)
	assert.Equal(t, StateProcessing, f.State())

	// return from the provider with no cancellation parameter
	clean, effects, err := f.HandleReturn(ctx, srv.URL+"/results")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/results", clean)
	assert.Equal(t, StateSuccess, f.State())

	var token string
	for _, eff := range effects {
		if e, ok := eff.(EnableDownload); ok {
			token = e.Token
		}
	}
	require.Equal(t, "tok_e2e", token)

	require.NoError(t, f.Download(ctx, token))
	assert.Equal(t, "accessibility-report-scan_e2e.pdf", saved)

	// session was cleared after success, so a reload resumes nothing
	_, effects, err = f.HandleReturn(ctx, srv.URL+"/results")
	require.NoError(t, err)
	assert.Empty(t, effects, "no verification should rerun")
	assert.Equal(t, StateSuccess, f.State())
}

func TestFlowTokenIsSingleUse(t *testing.T) {
	srv := newPipelineServer(t)
	srv.tokenSpent.Store(true) // already redeemed

	f := New(srv.URL, DeliveryPaid, NewMemorySessionStore(), func(string, []byte) error { return nil })

	err := f.Download(context.Background(), "tok_e2e")
	require.Error(t, err)
	assert.Equal(t, KindTokenInvalid, KindOf(err))
}

func TestFlowCancelledReturnConsumedOnce(t *testing.T) {
	srv := newPipelineServer(t)
	f := New(srv.URL, DeliveryPaid, NewMemorySessionStore(), func(string, []byte) error { return nil })
	ctx := context.Background()

	_, _, err := f.Scan(ctx, "example.co.il")
	require.NoError(t, err)
	f.OpenPurchase()
	f.StartPurchase(ctx, "buyer@example.co.il")
	require.Equal(t, StateProcessing, f.State())

	clean, effects, err := f.HandleReturn(ctx, srv.URL+"/results?payment=cancelled&tab=1")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, f.State())
	assert.NotContains(t, clean, "payment=cancelled")
	assert.Contains(t, clean, "tab=1", "unrelated parameters survive")

	var notices, strips int
	for _, eff := range effects {
		switch eff.(type) {
		case ShowNotice:
			notices++
		case StripQueryParam:
			strips++
		}
	}
	assert.Equal(t, 1, notices)
	assert.Equal(t, 1, strips)

	// a reload of the clean URL shows nothing: the parameter was consumed
	// and the session cleared
	_, effects, err = f.HandleReturn(ctx, clean)
	require.NoError(t, err)
	for _, eff := range effects {
		_, isNotice := eff.(ShowNotice)
		assert.False(t, isNotice, "cancellation notice must not repeat")
	}
}

func TestFlowVerifyFailureRollsBack(t *testing.T) {
	srv := newPipelineServer(t)
	srv.verifyStatus = "pending"

	f := New(srv.URL, DeliveryPaid, NewMemorySessionStore(), func(string, []byte) error { return nil })
	ctx := context.Background()

	_, _, err := f.Scan(ctx, "example.co.il")
	require.NoError(t, err)
	f.OpenPurchase()
	f.StartPurchase(ctx, "buyer@example.co.il")

	_, _, err = f.HandleReturn(ctx, srv.URL+"/results")
	require.Error(t, err)
	assert.Equal(t, StateCtaCard, f.State(), "failure restores the purchase form")
}

func TestFlowModeEnforcement(t *testing.T) {
	srv := newPipelineServer(t)
	f := New(srv.URL, DeliveryPaid, NewMemorySessionStore(), func(string, []byte) error { return nil })
	ctx := context.Background()

	_, _, err := f.Scan(ctx, "example.co.il")
	require.NoError(t, err)

	// a paid flow cannot hand out the document for free
	err = f.DeliverDirect(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delivery mode")

	err = f.DeliverEmail(ctx, "buyer@example.co.il")
	require.Error(t, err)

	// and a direct flow cannot open payment sessions
	direct := New(srv.URL, DeliveryDirect, NewMemorySessionStore(), func(string, []byte) error { return nil })
	_, _, err = direct.Scan(ctx, "example.co.il")
	require.NoError(t, err)
	effects := direct.StartPurchase(ctx, "buyer@example.co.il")
	require.Len(t, effects, 1)
	_, isErr := effects[0].(ShowError)
	assert.True(t, isErr)
	assert.Zero(t, srv.createCalls.Load())
}

func TestFlowPurchaseGuards(t *testing.T) {
	srv := newPipelineServer(t)
	f := New(srv.URL, DeliveryPaid, NewMemorySessionStore(), func(string, []byte) error { return nil })
	ctx := context.Background()

	// purchase before any scan
	_, _, err := f.Scan(ctx, "example.co.il")
	require.NoError(t, err)
	f.OpenPurchase()

	effects := f.StartPurchase(ctx, "   ")
	require.Len(t, effects, 1)
	assert.Equal(t, KindMissingEmail, KindOf(effects[0].(ShowError).Err))
	assert.Equal(t, StateCtaCard, f.State())
	assert.Zero(t, srv.createCalls.Load(), "no session call when the guard fails")
}
