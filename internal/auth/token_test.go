package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/dbgate/internal/common"
)

func newTestTokens(t *testing.T, ttl time.Duration) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager("super-secret", "HS256", "dbgate", ttl)
	require.NoError(t, err)
	return tm
}

func TestIssueThenDecode(t *testing.T) {
	tm := newTestTokens(t, time.Hour)

	tok, err := tm.Issue(7, "alice")
	require.NoError(t, err)

	claims, err := tm.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, int64(7), claims.UserID)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestDecode_Expired(t *testing.T) {
	tm := newTestTokens(t, time.Minute)
	issuedAt := time.Now()
	tm.now = func() time.Time { return issuedAt }

	tok, err := tm.Issue(1, "alice")
	require.NoError(t, err)

	tm.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = tm.Decode(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestDecode_Invalid(t *testing.T) {
	tm := newTestTokens(t, time.Hour)
	tok, err := tm.Issue(1, "alice")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	otherKey, err := NewTokenManager("other-secret", "HS256", "dbgate", time.Hour)
	require.NoError(t, err)
	foreign, err := otherKey.Issue(1, "alice")
	require.NoError(t, err)

	otherAlg, err := NewTokenManager("super-secret", "HS512", "dbgate", time.Hour)
	require.NoError(t, err)
	wrongAlg, err := otherAlg.Issue(1, "alice")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"altered signature", tampered},
		{"wrong key", foreign},
		{"wrong algorithm", wrongAlg},
		{"garbage", "not.a.jwt"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tm.Decode(tt.token)
			assert.ErrorIs(t, err, common.ErrTokenInvalid)
			assert.NotErrorIs(t, err, common.ErrTokenExpired)
		})
	}
}

func TestDecode_NoneAlgorithmRejected(t *testing.T) {
	tm := newTestTokens(t, time.Hour)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "dbgate",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.Decode(tok)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestNewTokenManager_RejectsNonHMAC(t *testing.T) {
	_, err := NewTokenManager("k", "RS256", "dbgate", time.Hour)
	require.Error(t, err)
	_, err = NewTokenManager("k", "nope", "dbgate", time.Hour)
	require.Error(t, err)
}
