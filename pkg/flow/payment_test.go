package flow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentCreatePersistsBeforeReturning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"session_id":"pay_1","payment_url":"https://provider.example/pay/1"}`))
	}))
	defer srv.Close()

	store := NewMemorySessionStore()
	pc := NewPaymentClient(NewTransport(srv.URL), store)

	sess, err := pc.Create(context.Background(), "https://example.co.il", "buyer@example.co.il", "scan_1")
	require.NoError(t, err)
	assert.Equal(t, "pay_1", sess.ID)

	persisted, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "pay_1", persisted.ID)
	assert.Equal(t, "https://example.co.il", persisted.ScanURL)
	assert.Equal(t, "buyer@example.co.il", persisted.Email)
}

func TestPaymentCreateServerFailureBecomesSessionCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"Payment gateway unavailable. Please try again."}`))
	}))
	defer srv.Close()

	pc := NewPaymentClient(NewTransport(srv.URL), NewMemorySessionStore())
	_, err := pc.Create(context.Background(), "https://example.co.il", "buyer@example.co.il", "")
	require.Error(t, err)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindSessionCreate, fe.Kind)
	assert.Equal(t, "Payment gateway unavailable. Please try again.", fe.Message)
}

// A timeout during session creation stays a timeout so the UI offers a
// retry instead of blaming the payment provider.
func TestPaymentCreateTimeoutStaysTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	tr := NewTransport(srv.URL)
	// shrink the deadline through the context rather than the constant
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	pc := NewPaymentClient(tr, NewMemorySessionStore())
	_, err := pc.Create(ctx, "https://example.co.il", "buyer@example.co.il", "")
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestPaymentCreateIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"session_id":"pay_1"}`)) // no payment_url
	}))
	defer srv.Close()

	pc := NewPaymentClient(NewTransport(srv.URL), NewMemorySessionStore())
	_, err := pc.Create(context.Background(), "https://example.co.il", "buyer@example.co.il", "")
	require.Error(t, err)
	assert.Equal(t, KindSessionCreate, KindOf(err))
}
