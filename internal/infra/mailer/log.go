package mailer

import (
	"context"
	"log"

	domain "github.com/shaharz/negishscan/internal/domain/scans"
)

// LogMailer is the development stand-in for the outbound email transport.
// It acknowledges delivery without sending anything; the real transport
// sits behind the same port.
type LogMailer struct{}

func (LogMailer) SendReport(_ context.Context, to string, s *domain.Scan, document []byte) error {
	log.Printf("report mailed: to=%s scan=%s url=%s bytes=%d", to, s.ID, s.URL, len(document))
	return nil
}
