package util

import (
	"errors"
	"fmt"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/pkg/config"
	"github.com/ppmlab/atlas/pkg/logutils"
)

var ErrTokenExpired = errors.New("token expired")

type (
	JWTClaims struct {
		UserID         uuid.UUID      `json:"ui"`
		OrganizationID uuid.UUID      `json:"oi"`
		Email          string         `json:"em"`
		Role           model.UserRole `json:"ro"`
		jwt.RegisteredClaims
	}
	// JWTMessage is the identity carried by a token and stored on the request context.
	JWTMessage struct {
		UserID         uuid.UUID      `json:"userId"`
		OrganizationID uuid.UUID      `json:"organizationId"`
		Email          string         `json:"email"`
		Role           model.UserRole `json:"role"`
	}
)

type TokenManager struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	now             func() time.Time
}

var (
	once     sync.Once
	tokenMgr *TokenManager
)

func GetTokenMgr() *TokenManager {
	once.Do(func() {
		tokenConfig := config.NewTokenConf()
		tokenMgr = NewTokenManager(tokenConfig)
	})
	return tokenMgr
}

func NewTokenManager(conf *config.TokenConf) *TokenManager {
	return &TokenManager{
		accessSecret:    []byte(conf.AccessTokenSecret),
		refreshSecret:   []byte(conf.RefreshTokenSecret),
		accessTokenTTL:  conf.AccessTokenTTL,
		refreshTokenTTL: conf.RefreshTokenTTL,
		now:             time.Now,
	}
}

// WithClock returns a copy using now as the time source for issuing and checking.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	c := *tm
	c.now = now
	return &c
}

func (tm *TokenManager) createToken(msg *JWTMessage, secret []byte, ttl time.Duration) (string, error) {
	issuedAt := tm.now()
	claims := &JWTClaims{
		UserID:         msg.UserID,
		OrganizationID: msg.OrganizationID,
		Email:          msg.Email,
		Role:           msg.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// CreateTokens creates a new access token and a new refresh token
func (tm *TokenManager) CreateTokens(msg *JWTMessage) (
	accessToken string, refreshToken string, err error) {
	accessToken, err = tm.createToken(msg, tm.accessSecret, tm.accessTokenTTL)
	if err != nil {
		logutils.Log.Error(err)
		return "", "", err
	}
	refreshToken, err = tm.createToken(msg, tm.refreshSecret, tm.refreshTokenTTL)
	if err != nil {
		logutils.Log.Error(err)
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// CheckToken validates an access token.
func (tm *TokenManager) CheckToken(requestToken string) (JWTMessage, error) {
	return tm.check(requestToken, tm.accessSecret)
}

// CheckRefreshToken validates a refresh token. Access tokens are rejected
// because they are signed with a different secret.
func (tm *TokenManager) CheckRefreshToken(requestToken string) (JWTMessage, error) {
	return tm.check(requestToken, tm.refreshSecret)
}

func (tm *TokenManager) check(requestToken string, secret []byte) (JWTMessage, error) {
	claims := JWTClaims{}
	_, err := jwt.ParseWithClaims(requestToken, &claims, func(_ *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return JWTMessage{}, ErrTokenExpired
	}
	if err != nil {
		return JWTMessage{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.OrganizationID == uuid.Nil || claims.UserID == uuid.Nil {
		return JWTMessage{}, errors.New("token carries no identity")
	}
	return JWTMessage{
		UserID:         claims.UserID,
		OrganizationID: claims.OrganizationID,
		Email:          claims.Email,
		Role:           claims.Role,
	}, nil
}
