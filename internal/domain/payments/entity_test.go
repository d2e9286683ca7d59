package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionCompleteIsIdempotent(t *testing.T) {
	s := &Session{ID: "pay_1", Status: StatusPending}
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s.Complete("tok_a", first)
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Equal(t, "tok_a", s.Token)
	assert.Equal(t, first, s.CompletedAt)

	// a second completion must not rebind the token
	s.Complete("tok_b", first.Add(time.Minute))
	assert.Equal(t, "tok_a", s.Token)
	assert.Equal(t, first, s.CompletedAt)
}

func TestDownloadTokenUsable(t *testing.T) {
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tok := &DownloadToken{Value: "tok", ExpiresAt: issued.Add(TokenTTL)}

	assert.True(t, tok.Usable(issued))
	assert.True(t, tok.Usable(issued.Add(TokenTTL-time.Second)))
	assert.False(t, tok.Usable(issued.Add(TokenTTL)), "expiry instant itself is unusable")

	tok.Consumed = true
	assert.False(t, tok.Usable(issued))
}
