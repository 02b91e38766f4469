package token

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec encrypts an identity into a signed, time-bounded token string and
// verifies tokens back into identities.
//
// Failure policy: Decrypt returns ok=false for every bad-token condition
// (tampered signature, foreign algorithm, elapsed TTL, malformed structure)
// without telling the caller which check failed. Callers treat ok=false as
// "no session"; the reason is logged at debug level only.
type Codec struct {
	secret []byte
	log    *slog.Logger

	// clock is injectable for deterministic expiry tests.
	clock func() time.Time
}

func NewCodec(secret string, log *slog.Logger) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Codec{secret: []byte(secret), log: log, clock: time.Now}, nil
}

// Encrypt serializes and signs the identity with an expiry of now+ttl.
// The signing algorithm identifier is recorded in the token header, and
// Decrypt refuses any other algorithm.
func (c *Codec) Encrypt(id Identity, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("ttl must be > 0")
	}
	now := c.clock()
	cl := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Identity: id,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	return t.SignedString(c.secret)
}

// Decrypt verifies signature, algorithm, and expiry before returning any
// identity field. There is no partially-trusted result: either the full
// original identity comes back, or ok is false.
func (c *Codec) Decrypt(tok string) (Identity, bool) {
	if tok == "" {
		return Identity{}, false
	}

	var cl claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.clock),
	)
	if _, err := parser.ParseWithClaims(tok, &cl, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}); err != nil {
		c.log.Debug("session token rejected", "err", err)
		return Identity{}, false
	}
	if cl.Identity.ID == "" {
		c.log.Debug("session token rejected", "err", "identity id missing")
		return Identity{}, false
	}
	return cl.Identity, true
}
