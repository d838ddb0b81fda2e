package invocation

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"aitools/internal/domain"
)

// TokenSource mints submission tokens. Tokens must be unique per source.
type TokenSource interface {
	Next() domain.Token
}

// ulidSource mints monotonic ULIDs so tokens also sort in submission order.
type ulidSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewTokenSource returns a goroutine-safe ULID token source.
func NewTokenSource() TokenSource {
	return &ulidSource{
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (s *ulidSource) Next() domain.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Token(ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String())
}
