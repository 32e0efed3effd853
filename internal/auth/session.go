package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/nightstudy-service/internal/domain"
)

var (
	// ErrRevokedToken means the token is in the blacklist.
	ErrRevokedToken = errors.New("token revoked")
	// ErrExpiredOrInvalidSession is the refresh-path failure.
	ErrExpiredOrInvalidSession = errors.New("session expired or invalid")
	// ErrStorageUnavailable wraps Data Store faults on issuance and revocation.
	ErrStorageUnavailable = errors.New("session storage unavailable")
)

// RevocationStore is the durable blacklist. Lookups match the access column OR the
// refresh column, so a pair may be queried with only one half filled in.
//
// IsRevoked must fail closed: if the store cannot answer it reports true.
type RevocationStore interface {
	EnsureSchema(ctx context.Context) error
	Revoke(ctx context.Context, pair domain.TokenPair) error
	IsRevoked(ctx context.Context, pair domain.TokenPair) bool
}

// SessionOptions tunes SessionManager policy.
type SessionOptions struct {
	// EnforceAccessRevocation makes VerifyAccess consult the store too. Off by
	// default: access tokens are checked cryptographically and revocation is
	// enforced when refreshing.
	EnforceAccessRevocation bool
}

// SessionManager is the single entry point for session lifecycle events.
type SessionManager struct {
	codec *TokenCodec
	store RevocationStore
	opts  SessionOptions
}

// NewSessionManager composes a codec and a revocation store.
func NewSessionManager(codec *TokenCodec, store RevocationStore, opts SessionOptions) *SessionManager {
	return &SessionManager{codec: codec, store: store, opts: opts}
}

// Codec exposes the underlying codec.
func (m *SessionManager) Codec() *TokenCodec {
	return m.codec
}

// Issue mints a fresh access/refresh pair for identity.
func (m *SessionManager) Issue(identity domain.Identity) (domain.TokenPair, error) {
	if identity.SubjectID == "" || !identity.Role.Valid() {
		return domain.TokenPair{}, fmt.Errorf("issue session: malformed identity %+v", identity)
	}
	access, err := m.codec.Issue(identity, TokenAccess)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := m.codec.Issue(identity, TokenRefresh)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess returns the claims of a usable access token, or ErrInvalidToken /
// ErrRevokedToken. The signature check runs first so bad tokens never reach storage.
func (m *SessionManager) VerifyAccess(ctx context.Context, token string) (*Claims, error) {
	claims, err := m.codec.Verify(token, TokenAccess)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if m.opts.EnforceAccessRevocation && m.store.IsRevoked(ctx, domain.TokenPair{AccessToken: token}) {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// RefreshSubject verifies a refresh token and reports whose it is, so the caller
// can load that subject's current identity before calling Refresh.
func (m *SessionManager) RefreshSubject(token string) (string, error) {
	claims, err := m.codec.Verify(token, TokenRefresh)
	if err != nil {
		return "", ErrExpiredOrInvalidSession
	}
	return claims.SubjectID, nil
}

// Refresh mints a new access token from a refresh token. The new token carries the
// role in identity, not whatever role was current at login, so role changes apply
// without a fresh login. Both ErrExpiredOrInvalidSession and, for blacklisted
// tokens, ErrRevokedToken are matched by errors.Is.
func (m *SessionManager) Refresh(ctx context.Context, refreshToken string, identity domain.Identity) (string, error) {
	claims, err := m.codec.Verify(refreshToken, TokenRefresh)
	if err != nil {
		return "", ErrExpiredOrInvalidSession
	}
	if claims.SubjectID != identity.SubjectID {
		return "", ErrExpiredOrInvalidSession
	}
	if m.store.IsRevoked(ctx, domain.TokenPair{RefreshToken: refreshToken}) {
		return "", fmt.Errorf("%w: %w", ErrExpiredOrInvalidSession, ErrRevokedToken)
	}
	if !identity.Role.Valid() {
		return "", fmt.Errorf("refresh: malformed identity %+v", identity)
	}
	access, err := m.codec.Issue(identity, TokenAccess)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return access, nil
}

// RevokeSession blacklists both halves of pair. Repeating it is harmless.
func (m *SessionManager) RevokeSession(ctx context.Context, pair domain.TokenPair) error {
	if pair.AccessToken == "" && pair.RefreshToken == "" {
		return nil
	}
	if err := m.store.Revoke(ctx, pair); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}
