package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// ErrInvalidCredential is returned for every failed verification.
// Wrong value, expired and never-issued are deliberately
// indistinguishable to the caller.
var ErrInvalidCredential = errors.New("invalid or expired credential")

// DefaultOTPTTL and DefaultTokenTTL are the issuance lifetimes used
// when the config leaves them unset.
const (
	DefaultOTPTTL   = 10 * time.Minute
	DefaultTokenTTL = 15 * time.Minute
)

// Store keeps short-lived single-use secrets (signup OTPs, password
// reset OTPs and link tokens) keyed by subject. Entries expire after
// the store's TTL; the underlying cache checks expiry lazily on read
// and its janitor sweeps stale entries for memory hygiene. The mutex
// serializes issue/verify on the store so a verify never races a
// concurrent re-issue, and verify-then-delete is atomic.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	cache    *cache.Cache
	generate func() (string, error)
}

// NewOTPStore creates a store issuing 6-digit numeric codes.
func NewOTPStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return newStore(ttl, generateOTP)
}

// NewTokenStore creates a store issuing 32-byte hex link tokens.
func NewTokenStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return newStore(ttl, generateToken)
}

func newStore(ttl time.Duration, generate func() (string, error)) *Store {
	return &Store{
		ttl:      ttl,
		cache:    cache.New(ttl, 2*ttl),
		generate: generate,
	}
}

// Issue generates a fresh secret for the subject and returns it for
// delivery. Any prior pending secret for the same subject is
// overwritten: only the latest issuance verifies.
func (s *Store) Issue(subject string) (string, error) {
	secret, err := s.generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate credential: %w", err)
	}
	s.mu.Lock()
	s.cache.Set(subject, secret, s.ttl)
	s.mu.Unlock()
	return secret, nil
}

// Verify checks the candidate against the subject's pending secret.
// On success the secret is deleted; a credential verifies exactly
// once. Every failure mode returns ErrInvalidCredential.
func (s *Store) Verify(subject, candidate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, found := s.cache.Get(subject)
	if !found {
		return ErrInvalidCredential
	}
	secret, ok := v.(string)
	if !ok || subtle.ConstantTimeCompare([]byte(secret), []byte(candidate)) != 1 {
		return ErrInvalidCredential
	}
	s.cache.Delete(subject)
	return nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
