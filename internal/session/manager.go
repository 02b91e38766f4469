package session

import (
	"errors"
	"time"

	"admin-console/internal/token"

	"github.com/gin-gonic/gin"
)

// Manager orchestrates the token codec and the cookie store.
//
// Session lifecycle: Issue moves a principal from unauthenticated to
// authenticated; Destroy or TTL expiry moves it back. There is no pending
// state: sign-in is a single request/response, and an expired token simply
// fails closed on the next read.
type Manager struct {
	codec *token.Codec
	store *CookieStore
	ttl   time.Duration
}

func NewManager(codec *token.Codec, store *CookieStore, ttl time.Duration) (*Manager, error) {
	if codec == nil || store == nil {
		return nil, errors.New("codec and store are required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be > 0")
	}
	return &Manager{codec: codec, store: store, ttl: ttl}, nil
}

// Issue encrypts the identity and persists the full fragment set.
func (m *Manager) Issue(c *gin.Context, id token.Identity) error {
	tok, err := m.codec.Encrypt(id, m.ttl)
	if err != nil {
		return err
	}
	m.store.Write(c, tok)
	return nil
}

// Current returns the authenticated identity for this request, or ok=false
// when there is none: no cookies, no reachable storage, or a token that
// fails verification. The caller cannot tell those apart.
func (m *Manager) Current(c *gin.Context) (token.Identity, bool) {
	tok := m.store.Read(c)
	if tok == "" {
		return token.Identity{}, false
	}
	return m.codec.Decrypt(tok)
}

// Destroy deletes every session fragment. Safe to call without a session.
func (m *Manager) Destroy(c *gin.Context) {
	m.store.Clear(c)
}
