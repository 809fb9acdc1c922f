package crypto

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt work factor
	DefaultCost = 12

	// SecretByteLength is the entropy of a generated client secret
	SecretByteLength = 32

	// VerificationCodeByteLength is the entropy of an uplift verification code
	VerificationCodeByteLength = 24
)

var (
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	randomRead                 = rand.Read
)

// GenerateClientSecret returns a new random URL-safe client secret
func GenerateClientSecret() (string, error) {
	return generateURLSafeToken(SecretByteLength)
}

// GenerateVerificationCode returns a random URL-safe uplift verification code
func GenerateVerificationCode() (string, error) {
	return generateURLSafeToken(VerificationCodeByteLength)
}

// GenerateHexToken returns a random hex token of length*2 characters;
// used for client IDs and server tokens.
func GenerateHexToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// SecretHint returns the truncated display hint for a plaintext secret
func SecretHint(secret string) string {
	if len(secret) <= 4 {
		return secret
	}
	return secret[len(secret)-4:]
}

func generateURLSafeToken(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// Hasher hashes and verifies client secrets with bcrypt. Hashing is
// CPU-bound, so work is funneled through a bounded pool to keep a burst of
// secret generation from starving request handling.
type Hasher struct {
	cost int
	sem  chan struct{}
}

// NewHasher creates a Hasher with the given work factor and pool size.
// Out-of-range values fall back to defaults.
func NewHasher(cost, poolSize int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	if poolSize < 1 {
		poolSize = 4
	}
	return &Hasher{
		cost: cost,
		sem:  make(chan struct{}, poolSize),
	}
}

// Hash computes the bcrypt hash of a secret, waiting for a pool slot first
func (h *Hasher) Hash(ctx context.Context, secret string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	bytes, err := bcryptGenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(bytes), nil
}

// Compare reports whether secret matches hash. bcrypt's comparison is
// constant-time-equivalent; no detail about the mismatch is surfaced.
func (h *Hasher) Compare(ctx context.Context, hash, secret string) bool {
	if err := h.acquire(ctx); err != nil {
		return false
	}
	defer h.release()

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

func (h *Hasher) acquire(ctx context.Context) error {
	select {
	case h.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hasher) release() {
	<-h.sem
}
