package payments

import "context"

// Repository port for sessions and their download tokens.
type Repository interface {
	SaveSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id SessionID) (*Session, error)
	SaveToken(ctx context.Context, t *DownloadToken) error
	GetToken(ctx context.Context, value string) (*DownloadToken, error)
	ConsumeToken(ctx context.Context, value string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// GatewayResult is the provider's answer to a create call.
type GatewayResult struct {
	PaymentURL string
	ProcessID  string
}

// Gateway port: the external payment provider. CreateProcess opens a hosted
// payment page; VerifyProcess confirms whether the buyer actually paid.
type Gateway interface {
	CreateProcess(ctx context.Context, s *Session) (GatewayResult, error)
	VerifyProcess(ctx context.Context, s *Session) (bool, error)
	DemoMode() bool
}

// DocumentStore port: durable cache for rendered report documents so a
// verify/download retry never re-renders.
type DocumentStore interface {
	Put(ctx context.Context, key string, document []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}
