package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aihub/internal/domain"
)

var testSecret = []byte("test-secret")

// nextHandler records the context principal the middleware installed.
func nextHandler() (http.Handler, func() (domain.ContextPrincipal, bool)) {
	var cp domain.ContextPrincipal
	var found bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cp, found = domain.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, func() (domain.ContextPrincipal, bool) { return cp, found }
}

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestAuth_ValidJWT(t *testing.T) {
	t.Parallel()

	handler, getPrincipal := nextHandler()
	mw := Auth(testSecret, "", "")(handler)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/datasets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	cp, found := getPrincipal()
	require.True(t, found)
	assert.Equal(t, "alice", cp.Name)
	assert.Equal(t, "user", cp.Type)
}

func TestAuth_WrongSecretRejected(t *testing.T) {
	t.Parallel()

	handler, _ := nextHandler()
	mw := Auth(testSecret, "", "")(handler)

	token := signToken(t, []byte("other-secret"), jwt.MapClaims{"sub": "alice"})

	req := httptest.NewRequest(http.MethodGet, "/v1/datasets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ExpiredTokenRejected(t *testing.T) {
	t.Parallel()

	handler, _ := nextHandler()
	mw := Auth(testSecret, "", "")(handler)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/datasets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_MissingSubRejected(t *testing.T) {
	t.Parallel()

	handler, _ := nextHandler()
	mw := Auth(testSecret, "", "")(handler)

	token := signToken(t, testSecret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	req := httptest.NewRequest(http.MethodGet, "/v1/datasets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ValidAPIKey(t *testing.T) {
	t.Parallel()

	handler, getPrincipal := nextHandler()
	mw := Auth(testSecret, "sekret-key", "ingest-bot")(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/datasets", nil)
	req.Header.Set("X-API-Key", "sekret-key")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	cp, found := getPrincipal()
	require.True(t, found)
	assert.Equal(t, "ingest-bot", cp.Name)
	assert.Equal(t, "service_principal", cp.Type)
}

func TestAuth_WrongAPIKeyRejected(t *testing.T) {
	t.Parallel()

	handler, _ := nextHandler()
	mw := Auth(testSecret, "sekret-key", "ingest-bot")(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/datasets", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_APIKeyDisabledWhenUnconfigured(t *testing.T) {
	t.Parallel()

	handler, _ := nextHandler()
	mw := Auth(testSecret, "", "")(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/datasets", nil)
	req.Header.Set("X-API-Key", "anything")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_NoCredentialsRejected(t *testing.T) {
	t.Parallel()

	handler, _ := nextHandler()
	mw := Auth(testSecret, "", "")(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/datasets", nil)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
