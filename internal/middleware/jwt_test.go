package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luciamoran/table-reservation/internal/utils"
)

const testSecret = "unit-test-secret"

// runJWT pushes a request with the given Authorization header through
// JWTAuth and reports what happened downstream.
func runJWT(t *testing.T, authorization string) (inner echo.Context, rec *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/reservations", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTAuth(testSecret)(func(c echo.Context) error {
		inner = c
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return inner, rec
}

func TestJWTAuth_RoundTrip(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "CUSTOMER", 5)
	require.NoError(t, err)

	inner, rec := runJWT(t, "Bearer "+tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, inner)

	assert.Equal(t, uint64(42), inner.Get("user_id"))
	assert.Equal(t, "CUSTOMER", inner.Get("role"))

	uid, ok := UserIDFrom(inner.Request().Context())
	assert.True(t, ok)
	assert.Equal(t, uint64(42), uid)
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	inner, rec := runJWT(t, "")
	assert.Nil(t, inner, "handler must not run")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("some-other-secret", 42, "CUSTOMER", 5)
	require.NoError(t, err)

	inner, rec := runJWT(t, "Bearer "+tok.Token)
	assert.Nil(t, inner)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_Garbage(t *testing.T) {
	inner, rec := runJWT(t, "Bearer not.a.token")
	assert.Nil(t, inner)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubjectID(t *testing.T) {
	uid, ok := subjectID(jwt.MapClaims{"sub": float64(7)})
	assert.True(t, ok)
	assert.Equal(t, uint64(7), uid)

	uid, ok = subjectID(jwt.MapClaims{"sub": "19"})
	assert.True(t, ok)
	assert.Equal(t, uint64(19), uid)

	for _, sub := range []any{float64(0), float64(-3), "0", "abc", nil, true} {
		_, ok := subjectID(jwt.MapClaims{"sub": sub})
		assert.False(t, ok, "sub=%v must not yield an id", sub)
	}
}

func TestRequireRole(t *testing.T) {
	run := func(role any, allowed ...string) (*httptest.ResponseRecorder, bool) {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		if role != nil {
			c.Set("role", role)
		}
		ran := false
		h := RequireRole(allowed...)(func(c echo.Context) error {
			ran = true
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, h(c))
		return rec, ran
	}

	rec, ran := run("CUSTOMER", "CUSTOMER")
	assert.True(t, ran)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, ran = run("STAFF", "CUSTOMER")
	assert.False(t, ran)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, ran = run(nil, "CUSTOMER")
	assert.False(t, ran)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestContextIdentity(t *testing.T) {
	ctx := WithUserID(context.Background(), 31)
	uid, ok := ContextIdentity{}.CurrentUser(ctx)
	assert.True(t, ok)
	assert.Equal(t, uint64(31), uid)

	_, ok = ContextIdentity{}.CurrentUser(context.Background())
	assert.False(t, ok)
}

func TestCurrentUserID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "anon", currentUserID(c))

	c.Set("user_id", uint64(12))
	assert.Equal(t, "12", currentUserID(c))
}
