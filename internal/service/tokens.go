package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/crushd/backend/internal/config"
	"github.com/crushd/backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity bundle signed into both token kinds.
type Claims struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies the access/refresh pair. Access and refresh
// tokens are signed with independent secrets so a leaked access secret cannot
// forge refresh tokens.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(cfg config.AuthConfig) (*TokenIssuer, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}
	if cfg.JWTRefreshSecret == "" {
		return nil, fmt.Errorf("%w: JWT_REFRESH_SECRET is required", ErrMisconfigured)
	}

	accessTTL, err := time.ParseDuration(cfg.AccessExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_ACCESS_EXPIRY", ErrMisconfigured)
	}
	refreshTTL, err := time.ParseDuration(cfg.RefreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_REFRESH_EXPIRY", ErrMisconfigured)
	}

	return &TokenIssuer{
		accessSecret:  []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

func (t *TokenIssuer) RefreshTTL() time.Duration {
	return t.refreshTTL
}

// Issue signs a fresh pair for the given account.
func (t *TokenIssuer) Issue(user *model.User) (model.TokenPair, error) {
	access, err := t.sign(user, t.accessSecret, t.accessTTL)
	if err != nil {
		return model.TokenPair{}, err
	}
	refresh, err := t.sign(user, t.refreshSecret, t.refreshTTL)
	if err != nil {
		return model.TokenPair{}, err
	}
	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenIssuer) sign(user *model.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccess validates an access token and returns its claims.
func (t *TokenIssuer) VerifyAccess(token string) (*Claims, error) {
	return t.verify(token, t.accessSecret)
}

// VerifyRefresh validates a refresh token against the refresh secret.
func (t *TokenIssuer) VerifyRefresh(token string) (*Claims, error) {
	return t.verify(token, t.refreshSecret)
}

func (t *TokenIssuer) verify(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
