package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	s := NewOTPStore(time.Minute)

	code, err := s.Issue("x@y.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	assert.NoError(t, s.Verify("x@y.com", code))
}

func TestVerifyIsSingleUse(t *testing.T) {
	s := NewOTPStore(time.Minute)

	code, err := s.Issue("x@y.com")
	require.NoError(t, err)

	require.NoError(t, s.Verify("x@y.com", code))

	// The first successful verification consumed the code.
	assert.ErrorIs(t, s.Verify("x@y.com", code), ErrInvalidCredential)
}

func TestVerifyWrongValue(t *testing.T) {
	s := NewOTPStore(time.Minute)

	code, err := s.Issue("x@y.com")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Verify("x@y.com", "000000"), ErrInvalidCredential)

	// A failed attempt does not consume the credential.
	assert.NoError(t, s.Verify("x@y.com", code))
}

func TestVerifyUnknownSubject(t *testing.T) {
	s := NewOTPStore(time.Minute)
	assert.ErrorIs(t, s.Verify("nobody@y.com", "123456"), ErrInvalidCredential)
}

func TestVerifyAfterExpiry(t *testing.T) {
	s := NewOTPStore(10 * time.Millisecond)

	code, err := s.Issue("x@y.com")
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	assert.ErrorIs(t, s.Verify("x@y.com", code), ErrInvalidCredential)
}

func TestReissueInvalidatesPrevious(t *testing.T) {
	s := NewOTPStore(time.Minute)

	first, err := s.Issue("x@y.com")
	require.NoError(t, err)
	second, err := s.Issue("x@y.com")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, s.Verify("x@y.com", first), ErrInvalidCredential)
	}
	assert.NoError(t, s.Verify("x@y.com", second))
}

func TestSubjectsAreIndependent(t *testing.T) {
	s := NewOTPStore(time.Minute)

	a, err := s.Issue("a@y.com")
	require.NoError(t, err)
	b, err := s.Issue("b@y.com")
	require.NoError(t, err)

	assert.NoError(t, s.Verify("b@y.com", b))
	assert.NoError(t, s.Verify("a@y.com", a))
}

func TestTokenStoreFormat(t *testing.T) {
	s := NewTokenStore(time.Minute)

	token, err := s.Issue("student:x@y.com")
	require.NoError(t, err)
	assert.Len(t, token, 64) // 32 random bytes, hex encoded

	assert.NoError(t, s.Verify("student:x@y.com", token))
	assert.ErrorIs(t, s.Verify("student:x@y.com", token), ErrInvalidCredential)
}
