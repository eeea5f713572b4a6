package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framefolio/framefolio/pkg/config"
)

func newTestOAuthService(t *testing.T) *OAuthService {
	t.Helper()
	s, err := NewOAuthService(config.Auth{
		IssuerBaseURL:         "https://idp.example",
		ClientID:              "client",
		ClientSecret:          "secret",
		SessionSecret:         "session-secret",
		SessionLifetimeHours:  24,
		SessionTimeoutSeconds: 1,
	}, "http://localhost:3000")
	require.NoError(t, err)
	return s
}

func TestNewOAuthServiceRequiresSessionSecret(t *testing.T) {
	_, err := NewOAuthService(config.Auth{}, "http://localhost:3000")
	require.Error(t, err)
}

func TestVerifyAcceptsFreshSessionCookie(t *testing.T) {
	s := newTestOAuthService(t)

	claims := map[string]interface{}{"sub": "auth0|owner", "email": "owner@example.com"}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, time.Hour)
	_, sessionJWT, err := s.sessions.Encode(claims)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/galleries", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionJWT})

	session, err := s.Verify(req.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, "auth0|owner", session.Subject)
	assert.Equal(t, "owner@example.com", session.Email)
}

func TestVerifyRejectsMissingCookie(t *testing.T) {
	s := newTestOAuthService(t)

	req := httptest.NewRequest(http.MethodGet, "/galleries", nil)
	_, err := s.Verify(req.Context(), req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestVerifyRejectsExpiredSession(t *testing.T) {
	s := newTestOAuthService(t)

	claims := map[string]interface{}{"sub": "auth0|owner"}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiry(claims, time.Now().Add(-time.Hour))
	_, sessionJWT, err := s.sessions.Encode(claims)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/galleries", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionJWT})

	_, err = s.Verify(req.Context(), req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestVerifyRejectsForgedSessionCookie(t *testing.T) {
	s := newTestOAuthService(t)

	forger := jwtauth.New("HS256", []byte("wrong-secret"), nil)
	claims := map[string]interface{}{"sub": "auth0|attacker"}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, time.Hour)
	_, forgedJWT, err := forger.Encode(claims)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/galleries", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: forgedJWT})

	_, err = s.Verify(req.Context(), req)
	assert.ErrorIs(t, err, ErrNoSession)
}
