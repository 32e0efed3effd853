package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/nightstudy-service/internal/domain"
)

// TokenKind distinguishes the two halves of a token pair.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken covers malformed, badly signed, expired and wrong-kind tokens alike.
var ErrInvalidToken = errors.New("invalid token")

// Claims describes the JWT payload. Role is only present on access tokens.
type Claims struct {
	SubjectID string       `json:"id"`
	Role      *domain.Role `json:"role,omitempty"`
	Kind      TokenKind    `json:"token_type"`
	jwt.RegisteredClaims
}

// Identity returns the subject and role carried by an access token.
func (c *Claims) Identity() domain.Identity {
	id := domain.Identity{SubjectID: c.SubjectID}
	if c.Role != nil {
		id.Role = *c.Role
	}
	return id
}

// CodecConfig is everything the codec needs; it holds no other state.
type CodecConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Now defaults to time.Now. Tests swap it to move the clock.
	Now func() time.Time
}

// TokenCodec signs and verifies session tokens with a single HS256 secret.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenCodec builds a codec. A missing secret is a configuration error.
func NewTokenCodec(cfg CodecConfig) (*TokenCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token codec: empty signing secret")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenCodec{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
	}, nil
}

// TTL returns the lifetime of tokens of the given kind.
func (tc *TokenCodec) TTL(kind TokenKind) time.Duration {
	if kind == TokenRefresh {
		return tc.refreshTTL
	}
	return tc.accessTTL
}

// Issue signs a token of the given kind for identity.
func (tc *TokenCodec) Issue(identity domain.Identity, kind TokenKind) (string, error) {
	if kind != TokenAccess && kind != TokenRefresh {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}
	now := tc.now()
	claims := &Claims{
		SubjectID: identity.SubjectID,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.TTL(kind))),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	if kind == TokenAccess {
		role := identity.Role
		claims.Role = &role
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tc.secret)
}

// Verify checks signature, expiry and kind. Every failure is ErrInvalidToken.
func (tc *TokenCodec) Verify(tokenStr string, kind TokenKind) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tc.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind || claims.SubjectID == "" {
		return nil, ErrInvalidToken
	}
	if kind == TokenAccess && claims.Role == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
