package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"friendlink/internal/clock"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(clk clock.Clock) *TokenIssuer {
	return NewTokenIssuer(Options{
		Secret:     "test-secret",
		Issuer:     "friendlink-test",
		AccessTTL:  5 * time.Minute,
		RefreshTTL: time.Hour,
	}, clk, nil)
}

func TestIssueAndParse(t *testing.T) {
	clk := clock.NewManual(time.Now().UTC())
	issuer := newTestIssuer(clk)

	pair, err := issuer.Issue(42)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	claims, err := issuer.ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)

	refresh, err := issuer.ParseRefresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, uint(42), refresh.UserID)
}

func TestParseRejectsWrongType(t *testing.T) {
	issuer := newTestIssuer(clock.NewManual(time.Now().UTC()))
	pair, err := issuer.Issue(1)
	require.NoError(t, err)

	_, err = issuer.ParseAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = issuer.ParseRefresh(context.Background(), pair.Access)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestParseRejectsExpiredAndForeign(t *testing.T) {
	clk := clock.NewManual(time.Now().UTC())
	issuer := newTestIssuer(clk)
	pair, err := issuer.Issue(1)
	require.NoError(t, err)

	other := NewTokenIssuer(Options{Secret: "other", Issuer: "friendlink-test", AccessTTL: time.Minute, RefreshTTL: time.Minute}, clk, nil)
	_, err = other.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	clk.Advance(6 * time.Minute)
	_, err = issuer.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshRotatesAndRevokes(t *testing.T) {
	clk := clock.NewManual(time.Now().UTC())
	issuer := newTestIssuer(clk)
	ctx := context.Background()

	pair, err := issuer.Issue(9)
	require.NoError(t, err)

	clk.Advance(time.Second)
	next, err := issuer.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	claims, err := issuer.ParseAccess(next.Access)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)

	_, err = issuer.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	require.NoError(t, issuer.Revoke(ctx, next.Refresh))
	_, err = issuer.ParseRefresh(ctx, next.Refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestMemoryDenylistExpires(t *testing.T) {
	clk := clock.NewManual(time.Now().UTC())
	d := NewMemoryDenylist(clk)
	ctx := context.Background()

	require.NoError(t, d.Add(ctx, "jti-1", time.Minute))
	ok, err := d.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	clk.Advance(time.Minute)
	ok, err = d.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJWTMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := newTestIssuer(clock.NewManual(time.Now().UTC()))
	pair, err := issuer.Issue(5)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", JWT(issuer), func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"refresh token", "Bearer " + pair.Refresh, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid", "Bearer " + pair.Access, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
