package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/shaharz/negishscan/internal/domain/payments"
)

func TestConsumeTokenIsSingleUse(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveToken(ctx, &domain.DownloadToken{
		Value:     "tok_1",
		SessionID: "pay_1",
		ExpiresAt: time.Now().Add(domain.TokenTTL),
	}))

	require.NoError(t, repo.ConsumeToken(ctx, "tok_1"))

	err := repo.ConsumeToken(ctx, "tok_1")
	require.ErrorIs(t, err, domain.ErrTokenInvalid)

	err = repo.ConsumeToken(ctx, "tok_unknown")
	require.ErrorIs(t, err, domain.ErrTokenInvalid)

	tok, err := repo.GetToken(ctx, "tok_1")
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.True(t, tok.Consumed)
}

func TestDeleteExpiredSessions(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, &domain.Session{
		ID:        "pay_old",
		Token:     "tok_old",
		CreatedAt: time.Now().Add(-domain.SessionTTL - time.Minute),
	}))
	require.NoError(t, repo.SaveToken(ctx, &domain.DownloadToken{
		Value: "tok_old", SessionID: "pay_old",
	}))
	require.NoError(t, repo.SaveSession(ctx, &domain.Session{
		ID:        "pay_fresh",
		CreatedAt: time.Now(),
	}))

	n, err := repo.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	gone, err := repo.GetSession(ctx, "pay_old")
	require.NoError(t, err)
	assert.Nil(t, gone)

	// the expired session's token dies with it
	tok, err := repo.GetToken(ctx, "tok_old")
	require.NoError(t, err)
	assert.Nil(t, tok)

	kept, err := repo.GetSession(ctx, "pay_fresh")
	require.NoError(t, err)
	require.NotNil(t, kept)
}
