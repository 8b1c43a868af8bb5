package objstore

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	now := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)
	s := NewSigner("https://files.example.test/", "ppm-documents", "secret", 15*time.Minute).
		WithClock(func() time.Time { return now })
	org := uuid.New()

	signed, err := s.Sign(org, "org/charter v2.pdf")
	require.NoError(t, err)
	assert.Equal(t, now.Add(15*time.Minute), signed.ExpiresAt)

	u, err := url.Parse(signed.URL)
	require.NoError(t, err)
	assert.Equal(t, "files.example.test", u.Host)
	assert.Equal(t, "/ppm-documents/org/charter v2.pdf", u.Path)

	claims, err := s.Verify(u.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, "org/charter v2.pdf", claims.Key)
	assert.Equal(t, org, claims.OrganizationID)
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	now := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)
	s := NewSigner("https://files.example.test", "ppm-documents", "secret", time.Minute).
		WithClock(func() time.Time { return now })
	signed, err := s.Sign(uuid.New(), "a.pdf")
	require.NoError(t, err)
	u, err := url.Parse(signed.URL)
	require.NoError(t, err)
	token := u.Query().Get("token")

	later := s.WithClock(func() time.Time { return now.Add(2 * time.Minute) })
	_, err = later.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidURLToken)

	otherSecret := NewSigner("https://files.example.test", "ppm-documents", "other", time.Minute).
		WithClock(func() time.Time { return now })
	_, err = otherSecret.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidURLToken)

	otherBucket := NewSigner("https://files.example.test", "archive", "secret", time.Minute).
		WithClock(func() time.Time { return now })
	_, err = otherBucket.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidURLToken)
}

func TestSignRejectsEmptyKey(t *testing.T) {
	_, err := NewSigner("https://files.example.test", "b", "s", time.Minute).Sign(uuid.New(), "")
	assert.Error(t, err)
}
