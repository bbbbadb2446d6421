package tokenstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func jwtExpiringIn(t *testing.T, d time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(fixedNow.Add(d))}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return signed
}

func newCtx(cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestCookie_ReadsExistingToken(t *testing.T) {
	c, rec := newCtx(&http.Cookie{Name: "token", Value: "abc"})
	store := NewCookie(c, CookieOptions{Name: "token"}, clock)

	token, ok := store.Token(context.Background())
	require.NoError(t, c.NoContent(http.StatusOK))

	assert.True(t, ok)
	assert.Equal(t, "abc", token)
	assert.Nil(t, responseCookie(rec, "token"), "untouched store must not rewrite the cookie")
}

func TestCookie_SetTokenWritesOnCommit(t *testing.T) {
	c, rec := newCtx()
	store := NewCookie(c, CookieOptions{Name: "token"}, clock)

	require.NoError(t, store.SetToken(context.Background(), "opaque"))
	token, _ := store.Token(context.Background())
	assert.Equal(t, "opaque", token)
	require.NoError(t, c.NoContent(http.StatusOK))

	ck := responseCookie(rec, "token")
	require.NotNil(t, ck)
	assert.Equal(t, "opaque", ck.Value)
	assert.Equal(t, int(DefaultTTL.Seconds()), ck.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.True(t, ck.HttpOnly)
}

func TestCookie_ExpiryCappedByJWT(t *testing.T) {
	c, rec := newCtx()
	store := NewCookie(c, CookieOptions{Name: "token"}, clock)

	require.NoError(t, store.SetToken(context.Background(), jwtExpiringIn(t, 2*time.Hour)))
	require.NoError(t, c.NoContent(http.StatusOK))

	ck := responseCookie(rec, "token")
	require.NotNil(t, ck)
	assert.Equal(t, int((2 * time.Hour).Seconds()), ck.MaxAge)
}

func TestCookie_ClearExpiresCookie(t *testing.T) {
	c, rec := newCtx(&http.Cookie{Name: "token", Value: "abc"})
	store := NewCookie(c, CookieOptions{Name: "token"}, clock)

	require.NoError(t, store.ClearToken(context.Background()))
	_, ok := store.Token(context.Background())
	assert.False(t, ok)
	require.NoError(t, c.NoContent(http.StatusOK))

	ck := responseCookie(rec, "token")
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)
	assert.Equal(t, -1, ck.MaxAge)
}

func TestCookie_LastWriteWins(t *testing.T) {
	c, rec := newCtx()
	store := NewCookie(c, CookieOptions{Name: "token"}, clock)

	require.NoError(t, store.SetToken(context.Background(), "first"))
	require.NoError(t, store.ClearToken(context.Background()))
	require.NoError(t, store.SetToken(context.Background(), "second"))
	require.NoError(t, c.NoContent(http.StatusOK))

	ck := responseCookie(rec, "token")
	require.NotNil(t, ck)
	assert.Equal(t, "second", ck.Value)
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestExpiresAt(t *testing.T) {
	assert.Equal(t, fixedNow.Add(DefaultTTL), expiresAt("not-a-jwt", fixedNow, 0))
	assert.Equal(t, fixedNow.Add(time.Hour), expiresAt("not-a-jwt", fixedNow, time.Hour))
	long := jwtExpiringIn(t, 90*24*time.Hour)
	assert.Equal(t, fixedNow.Add(DefaultTTL), expiresAt(long, fixedNow, DefaultTTL))
}
