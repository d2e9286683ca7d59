package payments

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/shaharz/negishscan/internal/application"
	domain "github.com/shaharz/negishscan/internal/domain/payments"
	"github.com/shaharz/negishscan/internal/domain/scans"
)

// Service implements the purchase use-cases: open a session, confirm it,
// and exchange its one-time token for the rendered document.
type Service struct {
	Repo      domain.Repository
	Gateway   domain.Gateway
	Scans     scans.Repository
	Renderer  scans.Renderer
	Documents domain.DocumentStore
	Clock     application.Clock
	Amount    int
}

// CreateSessionCommand opens one purchase attempt.
type CreateSessionCommand struct {
	URL    string
	Email  string
	ScanID string
}

// CreateSession registers a pending session with the provider and returns
// the hosted payment page the buyer must be redirected to.
func (s *Service) CreateSession(ctx context.Context, cmd CreateSessionCommand) (*domain.Session, error) {
	s.sweep(ctx)

	sess := &domain.Session{
		ID:        domain.SessionID("pay_" + randomHex(6)),
		ScanID:    cmd.ScanID,
		URL:       cmd.URL,
		Email:     cmd.Email,
		Amount:    s.Amount,
		Status:    domain.StatusPending,
		DemoMode:  s.Gateway.DemoMode(),
		CreatedAt: s.Clock.Now(),
	}

	res, err := s.Gateway.CreateProcess(ctx, sess)
	if err != nil {
		return nil, err
	}
	sess.PaymentURL = res.PaymentURL
	sess.ProcessID = res.ProcessID

	if err := s.Repo.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	log.Printf("payment session created: id=%s email=%s demo=%v", sess.ID, sess.Email, sess.DemoMode)
	return sess, nil
}

// VerifySession confirms payment with the provider. Idempotent: a session
// that already completed returns its existing token and is never
// re-verified, so repeated calls cannot double-charge or double-issue.
func (s *Service) VerifySession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	sess, err := s.Repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domain.ErrSessionNotFound
	}
	if sess.Status == domain.StatusCompleted && sess.Token != "" {
		return sess, nil
	}

	paid, err := s.Gateway.VerifyProcess(ctx, sess)
	if err != nil {
		return nil, err
	}
	if !paid {
		return sess, nil
	}
	if err := s.complete(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// HandleCallback processes the provider's server-to-server confirmation.
// A "1" status completes the session; anything else is recorded and
// ignored. Shares the completion path with VerifySession, so a webhook
// racing a verify still issues exactly one token.
func (s *Service) HandleCallback(ctx context.Context, id domain.SessionID, statusCode string) (bool, error) {
	sess, err := s.Repo.GetSession(ctx, id)
	if err != nil {
		return false, err
	}
	if sess == nil {
		log.Printf("callback for unknown session: %s", id)
		return false, nil
	}
	if statusCode != "1" {
		log.Printf("callback non-success status %q for %s", statusCode, id)
		return false, nil
	}
	if sess.Status == domain.StatusCompleted {
		return true, nil
	}
	if err := s.complete(ctx, sess); err != nil {
		return false, err
	}
	return true, nil
}

// Redeem exchanges a download token for the finished document. The token
// is consumed on success; a second redemption fails with ErrTokenInvalid.
func (s *Service) Redeem(ctx context.Context, tokenValue string) ([]byte, string, error) {
	tok, err := s.Repo.GetToken(ctx, tokenValue)
	if err != nil {
		return nil, "", err
	}
	if tok == nil || !tok.Usable(s.Clock.Now()) {
		return nil, "", domain.ErrTokenInvalid
	}

	sess, err := s.Repo.GetSession(ctx, tok.SessionID)
	if err != nil {
		return nil, "", err
	}
	if sess == nil || sess.Status != domain.StatusCompleted {
		return nil, "", domain.ErrTokenInvalid
	}

	doc, err := s.document(ctx, sess)
	if err != nil {
		return nil, "", err
	}
	if err := s.Repo.ConsumeToken(ctx, tokenValue); err != nil {
		return nil, "", err
	}

	name := fmt.Sprintf("accessibility-report-%s.pdf", sess.ScanID)
	return doc, name, nil
}

// complete advances a pending session and binds its one-time token.
func (s *Service) complete(ctx context.Context, sess *domain.Session) error {
	now := s.Clock.Now()
	token := randomToken()
	sess.Complete(token, now)

	if err := s.Repo.SaveToken(ctx, &domain.DownloadToken{
		Value:     token,
		SessionID: sess.ID,
		ExpiresAt: now.Add(domain.TokenTTL),
	}); err != nil {
		return err
	}
	if err := s.Repo.SaveSession(ctx, sess); err != nil {
		// a token pointing at a still-pending session can never be
		// redeemed, so kill it rather than leak it
		if cerr := s.Repo.ConsumeToken(ctx, token); cerr != nil {
			log.Printf("token cleanup after failed session save for %s: %v", sess.ID, cerr)
		}
		return err
	}
	log.Printf("payment verified: %s | token issued", sess.ID)
	return nil
}

// document returns the rendered report for a session, rendering at most
// once: the first render is cached in the document store.
func (s *Service) document(ctx context.Context, sess *domain.Session) ([]byte, error) {
	key := string(sess.ID)
	if doc, err := s.Documents.Get(ctx, key); err == nil && len(doc) > 0 {
		return doc, nil
	}

	scan, err := s.Scans.Get(ctx, scans.ScanID(sess.ScanID))
	if err != nil {
		return nil, err
	}
	doc, err := s.Renderer.Render(ctx, scan)
	if err != nil {
		return nil, err
	}
	if _, err := s.Documents.Put(ctx, key, doc); err != nil {
		log.Printf("document cache write failed for %s: %v", sess.ID, err)
	}
	return doc, nil
}

// sweep drops sessions past their TTL. Best effort, mirrors the create path.
func (s *Service) sweep(ctx context.Context) {
	if n, err := s.Repo.DeleteExpiredSessions(ctx); err == nil && n > 0 {
		log.Printf("cleaned up %d expired payment sessions", n)
	}
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func randomToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
