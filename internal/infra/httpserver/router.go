package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appadvice "github.com/shaharz/negishscan/internal/application/advice"
	apppayments "github.com/shaharz/negishscan/internal/application/payments"
	appscans "github.com/shaharz/negishscan/internal/application/scans"
	advicedomain "github.com/shaharz/negishscan/internal/domain/advice"
	paydomain "github.com/shaharz/negishscan/internal/domain/payments"
	domain "github.com/shaharz/negishscan/internal/domain/scans"
	"github.com/shaharz/negishscan/internal/middleware"
)

type Router struct {
	scansSvc    *appscans.Service
	paymentsSvc *apppayments.Service
	adviceSvc   *appadvice.Service
	adminKey    string
}

func NewRouter(scansSvc *appscans.Service, paymentsSvc *apppayments.Service, adviceSvc *appadvice.Service, adminKey string, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{scansSvc: scansSvc, paymentsSvc: paymentsSvc, adviceSvc: adviceSvc, adminKey: adminKey}
	mux := chi.NewRouter()

	// the purchase flow runs on a separate origin and follows a redirect
	// round trip, so the API stays permissive
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(10, 1))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/health/live", middleware.LivenessHandler)

	mux.Route("/api/v1", func(rt chi.Router) {
		rt.Post("/scan", r.wrap(r.handleScan))
		rt.Post("/scan/pdf", r.wrap(r.handleScanDocument))
		rt.Post("/send-report", r.wrap(r.handleSendReport))

		rt.Post("/payment/create", r.wrap(r.handlePaymentCreate))
		rt.Post("/payment/verify", r.wrap(r.handlePaymentVerify))
		rt.Get("/payment/status", r.wrap(r.handlePaymentStatus))
		rt.Post("/payment/webhook", r.wrap(r.handlePaymentWebhook))
		rt.Get("/payment/download/{token}", r.wrap(r.handleDownload))

		rt.Group(func(admin chi.Router) {
			admin.Use(middleware.AdminKeyAuth(r.adminKey))
			admin.Get("/scans/latest", r.wrap(r.handleLatest))
			admin.Get("/scans/{id}", r.wrap(r.handleGet))
			admin.Get("/summary", r.wrap(r.handleSummary))
			admin.Post("/scans/{id}/advice", r.wrap(r.handleAdvice))
			admin.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
				middleware.MetricsHandler(w, req)
			})
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequestError marks client mistakes so wrap can map them to 400.
type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return badRequestError{msg: fmt.Sprintf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var br badRequestError
		switch {
		case errors.As(err, &br):
			writeError(w, http.StatusBadRequest, br.msg)
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, paydomain.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, paydomain.ErrTokenInvalid):
			writeError(w, http.StatusGone, err.Error())
		case errors.Is(err, paydomain.ErrGatewayUnavailable):
			writeError(w, http.StatusBadGateway, "Payment gateway unavailable. Please try again.")
		case errors.Is(err, advicedomain.ErrQuotaExceeded):
			writeError(w, http.StatusTooManyRequests, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

// writeError keeps the body shape every client parses: {"error": "..."}
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// POST /api/v1/scan
// Body: {"url": "...", "standard": "IL_5568", "locale": "he"}
func (r *Router) handleScan(w http.ResponseWriter, req *http.Request) error {
	cmd, err := decodeScanCommand(req)
	if err != nil {
		return err
	}
	middleware.IncrementScans()
	scan, err := r.scansSvc.Evaluate(req.Context(), cmd)
	if err != nil {
		middleware.IncrementScansFailed()
		return err
	}
	return writeJSON(w, scan)
}

// POST /api/v1/scan/pdf is the non-payment-gated variant: scan and return
// the document in one call.
func (r *Router) handleScanDocument(w http.ResponseWriter, req *http.Request) error {
	cmd, err := decodeScanCommand(req)
	if err != nil {
		return err
	}
	middleware.IncrementScans()
	scan, doc, err := r.scansSvc.EvaluateDocument(req.Context(), cmd)
	if err != nil {
		middleware.IncrementScansFailed()
		return err
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=accessibility-report-%s.pdf", scan.ID))
	_, err = w.Write(doc)
	return err
}

// POST /api/v1/send-report
// Body: {"url": "...", "scan_id": "...", "email": "..."}
func (r *Router) handleSendReport(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		URL    string `json:"url"`
		ScanID string `json:"scan_id"`
		Email  string `json:"email"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid request body")
	}
	if err := middleware.ValidateEmail(body.Email); err != nil {
		return badRequest("%v", err)
	}
	if body.ScanID == "" {
		if err := middleware.ValidateURL(body.URL); err != nil {
			return badRequest("%v", err)
		}
	}

	scan, err := r.scansSvc.SendReport(req.Context(), appscans.SendReportCommand{
		URL:    body.URL,
		ScanID: body.ScanID,
		Email:  body.Email,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{
		"status":  "sent",
		"scan_id": scan.ID,
		"email":   body.Email,
	})
}

// POST /api/v1/payment/create
// Body: {"url": "...", "email": "...", "scan_id": "..."}
func (r *Router) handlePaymentCreate(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		URL    string `json:"url"`
		Email  string `json:"email"`
		ScanID string `json:"scan_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid request body")
	}
	if err := middleware.ValidateEmail(body.Email); err != nil {
		return badRequest("%v", err)
	}
	if err := middleware.ValidateURL(body.URL); err != nil {
		return badRequest("%v", err)
	}

	sess, err := r.paymentsSvc.CreateSession(req.Context(), apppayments.CreateSessionCommand{
		URL:    body.URL,
		Email:  body.Email,
		ScanID: body.ScanID,
	})
	if err != nil {
		return err
	}
	middleware.IncrementPaymentsCreated()
	return writeJSON(w, map[string]any{
		"session_id":  sess.ID,
		"payment_url": sess.PaymentURL,
		"demo_mode":   sess.DemoMode,
	})
}

// POST /api/v1/payment/verify
// Body: {"session_id": "..."}
func (r *Router) handlePaymentVerify(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid request body")
	}
	return r.verifyAndRespond(w, req, body.SessionID)
}

// GET /api/v1/payment/status?session_id=
func (r *Router) handlePaymentStatus(w http.ResponseWriter, req *http.Request) error {
	return r.verifyAndRespond(w, req, req.URL.Query().Get("session_id"))
}

func (r *Router) verifyAndRespond(w http.ResponseWriter, req *http.Request, sessionID string) error {
	if sessionID == "" {
		return badRequest("session_id is required")
	}
	sess, err := r.paymentsSvc.VerifySession(req.Context(), paydomain.SessionID(sessionID))
	if err != nil {
		return err
	}
	if sess.Status == paydomain.StatusCompleted {
		middleware.IncrementPaymentsCompleted()
	}
	return writeJSON(w, map[string]any{
		"status":    sess.Status,
		"pdf_token": sess.Token,
		"email":     sess.Email,
		"scan_url":  sess.URL,
		"demo_mode": sess.DemoMode,
	})
}

// POST /api/v1/payment/webhook handles the provider's server-to-server
// confirmation. The session id rides in the cField1 custom field.
func (r *Router) handlePaymentWebhook(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Status       string `json:"status"`
		CustomFields struct {
			CField1 string `json:"cField1"`
		} `json:"customFields"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid webhook body")
	}
	if body.CustomFields.CField1 == "" {
		return badRequest("missing session reference")
	}

	ok, err := r.paymentsSvc.HandleCallback(req.Context(),
		paydomain.SessionID(body.CustomFields.CField1), body.Status)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"handled": ok})
}

// GET /api/v1/payment/download/{token} is single use; the token dies with
// the successful response.
func (r *Router) handleDownload(w http.ResponseWriter, req *http.Request) error {
	token := chi.URLParam(req, "token")
	doc, filename, err := r.paymentsSvc.Redeem(req.Context(), token)
	if err != nil {
		return err
	}
	middleware.IncrementTokensRedeemed()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	_, err = w.Write(doc)
	return err
}

// GET /api/v1/scans/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.scansSvc.Latest(req.Context(), limit)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /api/v1/scans/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	scan, err := r.scansSvc.Get(req.Context(), domain.ScanID(chi.URLParam(req, "id")))
	if err != nil {
		return err
	}
	return writeJSON(w, scan)
}

// GET /api/v1/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))
	summary, err := r.scansSvc.Summary(req.Context(), days)
	if err != nil {
		return err
	}
	return writeJSON(w, summary)
}

// POST /api/v1/scans/{id}/advice generates (or fetches) the AI remediation
// summary for a stored scan.
func (r *Router) handleAdvice(w http.ResponseWriter, req *http.Request) error {
	if r.adviceSvc == nil {
		return badRequest("advice is not configured")
	}
	scan, err := r.scansSvc.Get(req.Context(), domain.ScanID(chi.URLParam(req, "id")))
	if err != nil {
		return err
	}
	sum, err := r.adviceSvc.SummarizeAndStore(req.Context(), scan)
	if err != nil {
		return err
	}
	return writeJSON(w, sum)
}

func decodeScanCommand(req *http.Request) (appscans.EvaluateCommand, error) {
	var body struct {
		URL      string `json:"url"`
		Standard string `json:"standard"`
		Locale   string `json:"locale"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return appscans.EvaluateCommand{}, badRequest("invalid request body")
	}
	if err := middleware.ValidateURL(body.URL); err != nil {
		return appscans.EvaluateCommand{}, badRequest("%v", err)
	}
	if err := middleware.ValidateStandard(body.Standard); err != nil {
		return appscans.EvaluateCommand{}, badRequest("%v", err)
	}
	if err := middleware.ValidateLocale(body.Locale); err != nil {
		return appscans.EvaluateCommand{}, badRequest("%v", err)
	}
	return appscans.EvaluateCommand{
		URL:      body.URL,
		Standard: domain.Standard(body.Standard),
		Locale:   domain.Locale(body.Locale),
	}, nil
}
