package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/nightstudy-service/internal/domain"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCodec(t *testing.T, clock *testClock) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(CodecConfig{Secret: "abcdefghijklmnopqrstuvwxyz123456", Now: clock.Now})
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodecRequiresSecret(t *testing.T) {
	_, err := NewTokenCodec(CodecConfig{})
	require.Error(t, err)
}

func TestIssueAndVerifyAccess(t *testing.T) {
	clock := &testClock{now: time.Now()}
	codec := newTestCodec(t, clock)
	identity := domain.Identity{SubjectID: "S1000001", Role: domain.RoleCheckout}

	token, err := codec.Issue(identity, TokenAccess)
	require.NoError(t, err)

	claims, err := codec.Verify(token, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, identity, claims.Identity())
	assert.Equal(t, TokenAccess, claims.Kind)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, clock.now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestStudentRoleSurvivesEncoding(t *testing.T) {
	clock := &testClock{now: time.Now()}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue(domain.Identity{SubjectID: "S1000001", Role: domain.RoleStudent}, TokenAccess)
	require.NoError(t, err)

	claims, err := codec.Verify(token, TokenAccess)
	require.NoError(t, err)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.RoleStudent, *claims.Role)
}

func TestRefreshTokenCarriesNoRole(t *testing.T) {
	clock := &testClock{now: time.Now()}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue(domain.Identity{SubjectID: "S1000001", Role: domain.RoleAdmin}, TokenRefresh)
	require.NoError(t, err)

	claims, err := codec.Verify(token, TokenRefresh)
	require.NoError(t, err)
	assert.Nil(t, claims.Role)
	assert.Equal(t, "S1000001", claims.SubjectID)
	assert.Equal(t, clock.now.Add(7*24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestAccessTokenExpiresAfterOneHour(t *testing.T) {
	clock := &testClock{now: time.Now()}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue(domain.Identity{SubjectID: "S1000001"}, TokenAccess)
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, err = codec.Verify(token, TokenAccess)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = codec.Verify(token, TokenAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenExpiresAfterSevenDays(t *testing.T) {
	clock := &testClock{now: time.Now()}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue(domain.Identity{SubjectID: "S1000001"}, TokenRefresh)
	require.NoError(t, err)

	clock.Advance(6 * 24 * time.Hour)
	_, err = codec.Verify(token, TokenRefresh)
	require.NoError(t, err)

	clock.Advance(24*time.Hour + time.Second)
	_, err = codec.Verify(token, TokenRefresh)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	clock := &testClock{now: time.Now()}
	codec := newTestCodec(t, clock)
	identity := domain.Identity{SubjectID: "S1000001", Role: domain.RoleAdmin}

	access, err := codec.Issue(identity, TokenAccess)
	require.NoError(t, err)
	refresh, err := codec.Issue(identity, TokenRefresh)
	require.NoError(t, err)

	_, err = codec.Verify(access, TokenRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = codec.Verify(refresh, TokenAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignOrMalformedTokens(t *testing.T) {
	clock := &testClock{now: time.Now()}
	codec := newTestCodec(t, clock)
	other, err := NewTokenCodec(CodecConfig{Secret: "another-secret-another-secret-00", Now: clock.Now})
	require.NoError(t, err)

	foreign, err := other.Issue(domain.Identity{SubjectID: "S1000001"}, TokenAccess)
	require.NoError(t, err)

	for _, token := range []string{foreign, "", "not.a.jwt", "a.b"} {
		_, err := codec.Verify(token, TokenAccess)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestIssueProducesDistinctTokensWithinTheSameSecond(t *testing.T) {
	clock := &testClock{now: time.Now()}
	codec := newTestCodec(t, clock)
	identity := domain.Identity{SubjectID: "S1000001"}

	a, err := codec.Issue(identity, TokenRefresh)
	require.NoError(t, err)
	b, err := codec.Issue(identity, TokenRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
