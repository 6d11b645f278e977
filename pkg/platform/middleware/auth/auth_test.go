package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "atelier/pkg/domain"
	dErrors "atelier/pkg/domain-errors"
	"atelier/pkg/requestcontext"
)

const testKey = "test-signing-key"

func TestJWTServiceRoundTrip(t *testing.T) {
	svc := NewJWTService(testKey)

	token, err := svc.IssueToken("usr-1", []string{"admin"}, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.Subject)
	assert.Equal(t, []string{"admin"}, claims.Roles)
}

func TestJWTServiceRejects(t *testing.T) {
	svc := NewJWTService(testKey)

	t.Run("expired", func(t *testing.T) {
		past := NewJWTService(testKey)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := past.IssueToken("usr-1", nil, time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
		assert.Equal(t, "token_expired", dErrors.MessageOf(err))
	})

	t.Run("wrong key", func(t *testing.T) {
		token, err := NewJWTService("other-key").IssueToken("usr-1", nil, time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Equal(t, "token_invalid", dErrors.MessageOf(err))
	})

	t.Run("missing subject", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := token.SignedString([]byte(testKey))
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		assert.Equal(t, "token_invalid", dErrors.MessageOf(err))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-jwt")
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}

func TestAuthenticate(t *testing.T) {
	svc := NewJWTService(testKey)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var (
		gotActor id.UserID
		gotAdmin bool
	)
	handler := Authenticate(svc, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor = requestcontext.ActorID(r.Context())
		gotAdmin = requestcontext.HasRole(r.Context(), "admin")
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("anonymous passes through", func(t *testing.T) {
		gotActor = ""
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/events", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, gotActor)
	})

	t.Run("valid bearer sets actor", func(t *testing.T) {
		token, err := svc.IssueToken("usr-admin", []string{"admin"}, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, id.UserID("usr-admin"), gotActor)
		assert.True(t, gotAdmin)
	})

	t.Run("invalid bearer is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	})

	t.Run("non bearer scheme is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
