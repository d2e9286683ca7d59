package grow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/shaharz/negishscan/internal/domain/payments"
)

const (
	sandboxBase    = "https://sandbox.meshulam.co.il"
	productionBase = "https://secure.meshulam.co.il"
)

// Client talks to the Grow (Meshulam) hosted-payment API. When no page
// code is configured it runs in demo mode: every payment auto-succeeds
// without contacting the provider, and sessions are flagged accordingly.
type Client struct {
	APIKey      string
	UserID      string
	PageCode    string
	Sandbox     bool
	FrontendURL string
	BackendURL  string

	HTTPClient *http.Client
	// overridable in tests
	baseURL string
}

func New(apiKey, userID, pageCode string, sandbox bool, frontendURL, backendURL string) *Client {
	base := productionBase
	if sandbox {
		base = sandboxBase
	}
	return &Client{
		APIKey:      apiKey,
		UserID:      userID,
		PageCode:    pageCode,
		Sandbox:     sandbox,
		FrontendURL: strings.TrimRight(frontendURL, "/"),
		BackendURL:  strings.TrimRight(backendURL, "/"),
		HTTPClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     base,
	}
}

// DemoMode reports whether real payments are configured.
func (c *Client) DemoMode() bool { return c.PageCode == "" }

type apiEnvelope struct {
	Status int `json:"status"`
	Err    struct {
		Message string `json:"message"`
	} `json:"err"`
	Data struct {
		URL               string `json:"url"`
		ProcessID         string `json:"processId"`
		TransactionStatus int    `json:"transactionStatus"`
	} `json:"data"`
}

// CreateProcess opens a hosted payment page for the session. In demo mode
// it returns a success-page URL directly.
func (c *Client) CreateProcess(ctx context.Context, s *domain.Session) (domain.GatewayResult, error) {
	if c.DemoMode() {
		return domain.GatewayResult{
			PaymentURL: fmt.Sprintf("%s/payment-success.html?session_id=%s&demo=1", c.FrontendURL, s.ID),
		}, nil
	}

	successURL := fmt.Sprintf("%s/payment-success.html?session_id=%s", c.FrontendURL, s.ID)
	cancelURL := c.FrontendURL + "/?payment=cancelled"
	webhookURL := c.BackendURL + "/api/v1/payment/webhook"

	form := url.Values{
		"pageCode":         {c.PageCode},
		"userId":           {c.UserID},
		"apiKey":           {c.APIKey},
		"sum":              {fmt.Sprintf("%d", s.Amount)},
		"description":      {"דוח נגישות – " + truncate(s.URL, 60)},
		"successUrl":       {successURL},
		"cancelUrl":        {cancelURL},
		"invoiceNotifyUrl": {webhookURL},
		"cField1":          {string(s.ID)},
		"pageField[email]": {s.Email},
	}

	var env apiEnvelope
	if err := c.post(ctx, "/api/light/server/1.0/createPaymentProcess", form, &env); err != nil {
		return domain.GatewayResult{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	if env.Status != 1 {
		msg := env.Err.Message
		if msg == "" {
			msg = "unknown provider error"
		}
		return domain.GatewayResult{}, fmt.Errorf("provider rejected payment: %s", msg)
	}
	return domain.GatewayResult{PaymentURL: env.Data.URL, ProcessID: env.Data.ProcessID}, nil
}

// VerifyProcess asks the provider whether the buyer completed payment.
// Demo-mode sessions always verify.
func (c *Client) VerifyProcess(ctx context.Context, s *domain.Session) (bool, error) {
	if c.DemoMode() {
		return true, nil
	}
	if s.ProcessID == "" {
		return false, nil
	}

	form := url.Values{
		"pageCode":  {c.PageCode},
		"userId":    {c.UserID},
		"apiKey":    {c.APIKey},
		"processId": {s.ProcessID},
	}

	var env apiEnvelope
	if err := c.post(ctx, "/api/light/server/1.0/getPaymentProcessInfo", form, &env); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	if env.Status != 1 {
		return false, nil
	}
	return env.Data.TransactionStatus == 1, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("provider returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
