// Package objstore issues time limited download links for documents kept in
// an external object store. The storage gateway calls Verify before serving.
package objstore

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidURLToken = errors.New("invalid or expired download token")

type Claims struct {
	Bucket         string    `json:"b"`
	Key            string    `json:"k"`
	OrganizationID uuid.UUID `json:"o"`
	jwt.RegisteredClaims
}

type Signer struct {
	baseURL string
	bucket  string
	secret  []byte
	expiry  time.Duration
	now     func() time.Time
}

func NewSigner(baseURL, bucket, secret string, expiry time.Duration) *Signer {
	return &Signer{
		baseURL: strings.TrimRight(baseURL, "/"),
		bucket:  bucket,
		secret:  []byte(secret),
		expiry:  expiry,
		now:     time.Now,
	}
}

// WithClock returns a copy of s using now as the signing time.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	c := *s
	c.now = now
	return &c
}

// SignedURL is a download link and the time it stops working.
type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Sign returns a download URL for key owned by org.
func (s *Signer) Sign(org uuid.UUID, key string) (SignedURL, error) {
	if key == "" {
		return SignedURL{}, errors.New("empty object key")
	}
	issued := s.now()
	expires := issued.Add(s.expiry)
	claims := &Claims{
		Bucket:         s.bucket,
		Key:            key,
		OrganizationID: org,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return SignedURL{}, fmt.Errorf("sign download token: %w", err)
	}
	u := fmt.Sprintf("%s/%s/%s?token=%s", s.baseURL, url.PathEscape(s.bucket), escapeKey(key), url.QueryEscape(token))
	return SignedURL{URL: u, ExpiresAt: expires.Truncate(time.Second)}, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return strings.Join(parts, "/")
}

// Verify checks a token produced by Sign and returns its claims.
func (s *Signer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURLToken, err)
	}
	if claims.Bucket != s.bucket {
		return nil, ErrInvalidURLToken
	}
	return claims, nil
}
