package gateway

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Signer derives a fresh reference and signature for every outbound call.
//
// The signature binds the reference, the operation name, and the shared
// secret; the gateway recomputes it on its side. The secret is process-wide,
// read-only, and never leaves the process.
type Signer struct {
	secret string
}

func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("gateway secret is required")
	}
	return &Signer{secret: secret}, nil
}

// Reference returns a per-call nonce. Two concurrent calls never share one.
func (s *Signer) Reference() string {
	return uuid.NewString()
}

// Signature computes SHA-256(reference || operation || secret) as uppercase
// hex. Deterministic for a fixed input triple.
func (s *Signer) Signature(reference, operation string) string {
	sum := sha256.Sum256([]byte(reference + operation + s.secret))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
