package grow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/shaharz/negishscan/internal/domain/payments"
)

func testClient(providerURL string) *Client {
	c := New("key", "user", "page123", true, "https://negishscan.co.il/", "https://api.negishscan.co.il")
	c.baseURL = providerURL
	return c
}

func TestCreateProcess(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/light/server/1.0/createPaymentProcess", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": 1,
			"data":   map[string]any{"url": "https://sandbox.meshulam.co.il/pay/xyz", "processId": "proc_9"},
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	res, err := c.CreateProcess(context.Background(), &domain.Session{
		ID:     "pay_abc",
		URL:    "https://example.co.il",
		Email:  "buyer@example.co.il",
		Amount: 79,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://sandbox.meshulam.co.il/pay/xyz", res.PaymentURL)
	assert.Equal(t, "proc_9", res.ProcessID)

	assert.Equal(t, "page123", gotForm["pageCode"])
	assert.Equal(t, "79", gotForm["sum"])
	assert.Equal(t, "pay_abc", gotForm["cField1"], "session id rides along for the webhook")
	assert.Equal(t, "https://negishscan.co.il/?payment=cancelled", gotForm["cancelUrl"])
	assert.Equal(t, "https://api.negishscan.co.il/api/v1/payment/webhook", gotForm["invoiceNotifyUrl"])
	assert.Contains(t, gotForm["successUrl"], "session_id=pay_abc")
}

func TestCreateProcessProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": 0,
			"err":    map[string]any{"message": "invalid page code"},
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.CreateProcess(context.Background(), &domain.Session{ID: "pay_abc", Amount: 79})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid page code")
}

func TestCreateProcessUnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.CreateProcess(context.Background(), &domain.Session{ID: "pay_abc", Amount: 79})
	require.ErrorIs(t, err, domain.ErrGatewayUnavailable)
}

func TestVerifyProcess(t *testing.T) {
	status := 1
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/light/server/1.0/getPaymentProcessInfo", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "proc_9", r.PostForm.Get("processId"))
		json.NewEncoder(w).Encode(map[string]any{
			"status": 1,
			"data":   map[string]any{"transactionStatus": status},
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)

	paid, err := c.VerifyProcess(context.Background(), &domain.Session{ID: "pay_abc", ProcessID: "proc_9"})
	require.NoError(t, err)
	assert.True(t, paid)

	status = 0
	paid, err = c.VerifyProcess(context.Background(), &domain.Session{ID: "pay_abc", ProcessID: "proc_9"})
	require.NoError(t, err)
	assert.False(t, paid)

	// a session that never reached the provider cannot be paid
	paid, err = c.VerifyProcess(context.Background(), &domain.Session{ID: "pay_abc"})
	require.NoError(t, err)
	assert.False(t, paid)
}

func TestDemoMode(t *testing.T) {
	c := New("", "", "", false, "https://negishscan.co.il", "https://api.negishscan.co.il")
	require.True(t, c.DemoMode())

	res, err := c.CreateProcess(context.Background(), &domain.Session{ID: "pay_demo"})
	require.NoError(t, err)
	assert.Contains(t, res.PaymentURL, "session_id=pay_demo")
	assert.Contains(t, res.PaymentURL, "demo=1")

	paid, err := c.VerifyProcess(context.Background(), &domain.Session{ID: "pay_demo"})
	require.NoError(t, err)
	assert.True(t, paid, "demo sessions always verify")
}
