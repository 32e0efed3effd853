package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/nightstudy-service/internal/domain"
)

// memoryRevocationStore mirrors the SQL store: append-only rows, OR lookup,
// fail closed when broken.
type memoryRevocationStore struct {
	mu     sync.Mutex
	rows   []domain.TokenPair
	broken bool
}

func (s *memoryRevocationStore) EnsureSchema(context.Context) error { return nil }

func (s *memoryRevocationStore) Revoke(_ context.Context, pair domain.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return errors.New("connection refused")
	}
	s.rows = append(s.rows, pair)
	return nil
}

func (s *memoryRevocationStore) IsRevoked(_ context.Context, pair domain.TokenPair) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return true
	}
	for _, row := range s.rows {
		if (pair.AccessToken != "" && row.AccessToken == pair.AccessToken) ||
			(pair.RefreshToken != "" && row.RefreshToken == pair.RefreshToken) {
			return true
		}
	}
	return false
}

func newTestSessions(t *testing.T, opts SessionOptions) (*SessionManager, *memoryRevocationStore, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Now()}
	store := &memoryRevocationStore{}
	return NewSessionManager(newTestCodec(t, clock), store, opts), store, clock
}

func TestIssueThenVerifyAccess(t *testing.T) {
	sessions, _, _ := newTestSessions(t, SessionOptions{})
	ctx := context.Background()

	for _, role := range []domain.Role{domain.RoleStudent, domain.RoleAdmin, domain.RoleCheckout} {
		identity := domain.Identity{SubjectID: "S1234567", Role: role}
		pair, err := sessions.Issue(identity)
		require.NoError(t, err)

		claims, err := sessions.VerifyAccess(ctx, pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, identity, claims.Identity())
	}
}

func TestIssueRejectsMalformedIdentity(t *testing.T) {
	sessions, _, _ := newTestSessions(t, SessionOptions{})

	_, err := sessions.Issue(domain.Identity{Role: domain.RoleStudent})
	require.Error(t, err)
	_, err = sessions.Issue(domain.Identity{SubjectID: "S1234567", Role: domain.Role(7)})
	require.Error(t, err)
}

func TestVerifyAccessExpired(t *testing.T) {
	sessions, _, clock := newTestSessions(t, SessionOptions{})
	pair, err := sessions.Issue(domain.Identity{SubjectID: "S1234567"})
	require.NoError(t, err)

	clock.Advance(time.Hour + time.Second)
	_, err = sessions.VerifyAccess(context.Background(), pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshUsesCurrentRole(t *testing.T) {
	sessions, _, _ := newTestSessions(t, SessionOptions{})
	ctx := context.Background()

	pair, err := sessions.Issue(domain.Identity{SubjectID: "S1234567", Role: domain.RoleStudent})
	require.NoError(t, err)

	access, err := sessions.Refresh(ctx, pair.RefreshToken, domain.Identity{SubjectID: "S1234567", Role: domain.RoleCheckout})
	require.NoError(t, err)

	claims, err := sessions.VerifyAccess(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCheckout, claims.Identity().Role)
}

func TestRefreshRejectsOtherSubject(t *testing.T) {
	sessions, _, _ := newTestSessions(t, SessionOptions{})

	pair, err := sessions.Issue(domain.Identity{SubjectID: "S1234567"})
	require.NoError(t, err)

	_, err = sessions.Refresh(context.Background(), pair.RefreshToken, domain.Identity{SubjectID: "S7654321"})
	require.ErrorIs(t, err, ErrExpiredOrInvalidSession)
}

func TestRefreshWithAccessTokenFails(t *testing.T) {
	sessions, _, _ := newTestSessions(t, SessionOptions{})

	pair, err := sessions.Issue(domain.Identity{SubjectID: "S1234567"})
	require.NoError(t, err)

	_, err = sessions.Refresh(context.Background(), pair.AccessToken, domain.Identity{SubjectID: "S1234567"})
	require.ErrorIs(t, err, ErrExpiredOrInvalidSession)
}

func TestRefreshAfterSevenDaysFails(t *testing.T) {
	sessions, _, clock := newTestSessions(t, SessionOptions{})
	identity := domain.Identity{SubjectID: "S1234567"}

	pair, err := sessions.Issue(identity)
	require.NoError(t, err)

	clock.Advance(7*24*time.Hour + time.Second)
	_, err = sessions.Refresh(context.Background(), pair.RefreshToken, identity)
	require.ErrorIs(t, err, ErrExpiredOrInvalidSession)

	_, err = sessions.RefreshSubject(pair.RefreshToken)
	require.ErrorIs(t, err, ErrExpiredOrInvalidSession)
}

func TestRevokedRefreshTokenCannotRefresh(t *testing.T) {
	sessions, _, _ := newTestSessions(t, SessionOptions{})
	ctx := context.Background()
	identity := domain.Identity{SubjectID: "S1234567"}

	pair, err := sessions.Issue(identity)
	require.NoError(t, err)
	require.NoError(t, sessions.RevokeSession(ctx, pair))

	_, err = sessions.Refresh(ctx, pair.RefreshToken, identity)
	require.ErrorIs(t, err, ErrExpiredOrInvalidSession)
	require.ErrorIs(t, err, ErrRevokedToken)
}

func TestRevokeTwiceIsHarmless(t *testing.T) {
	sessions, store, _ := newTestSessions(t, SessionOptions{})
	ctx := context.Background()

	pair, err := sessions.Issue(domain.Identity{SubjectID: "S1234567"})
	require.NoError(t, err)

	require.NoError(t, sessions.RevokeSession(ctx, pair))
	require.NoError(t, sessions.RevokeSession(ctx, pair))
	assert.Len(t, store.rows, 2)
}

func TestRevokeSurfacesStorageFailure(t *testing.T) {
	sessions, store, _ := newTestSessions(t, SessionOptions{})
	store.broken = true

	pair, err := sessions.Issue(domain.Identity{SubjectID: "S1234567"})
	require.NoError(t, err)

	err = sessions.RevokeSession(context.Background(), pair)
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestRefreshFailsClosedWhenStoreIsDown(t *testing.T) {
	sessions, store, _ := newTestSessions(t, SessionOptions{})
	identity := domain.Identity{SubjectID: "S1234567"}

	pair, err := sessions.Issue(identity)
	require.NoError(t, err)
	store.broken = true

	_, err = sessions.Refresh(context.Background(), pair.RefreshToken, identity)
	require.ErrorIs(t, err, ErrExpiredOrInvalidSession)
}

// Logging out blacklists the pair, but the access token keeps verifying until it
// expires because access checks are cryptographic only. Refresh is what stops.
func TestLogoutLeavesAccessTokenUsableUntilExpiry(t *testing.T) {
	sessions, _, clock := newTestSessions(t, SessionOptions{})
	ctx := context.Background()
	identity := domain.Identity{SubjectID: "S1234567", Role: domain.RoleStudent}

	p1, err := sessions.Issue(identity)
	require.NoError(t, err)
	require.NoError(t, sessions.RevokeSession(ctx, p1))

	_, err = sessions.VerifyAccess(ctx, p1.AccessToken)
	require.NoError(t, err)

	_, err = sessions.Refresh(ctx, p1.RefreshToken, identity)
	require.ErrorIs(t, err, ErrExpiredOrInvalidSession)

	clock.Advance(time.Hour + time.Second)
	_, err = sessions.VerifyAccess(ctx, p1.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestEnforcedAccessRevocation(t *testing.T) {
	sessions, store, _ := newTestSessions(t, SessionOptions{EnforceAccessRevocation: true})
	ctx := context.Background()

	p1, err := sessions.Issue(domain.Identity{SubjectID: "S1234567"})
	require.NoError(t, err)
	p2, err := sessions.Issue(domain.Identity{SubjectID: "S1234567"})
	require.NoError(t, err)
	require.NoError(t, sessions.RevokeSession(ctx, p1))

	_, err = sessions.VerifyAccess(ctx, p1.AccessToken)
	require.ErrorIs(t, err, ErrRevokedToken)
	_, err = sessions.VerifyAccess(ctx, p2.AccessToken)
	require.NoError(t, err)

	store.broken = true
	_, err = sessions.VerifyAccess(ctx, p2.AccessToken)
	require.ErrorIs(t, err, ErrRevokedToken)
}
