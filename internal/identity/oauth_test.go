package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newOAuthServer(t *testing.T, userinfo map[string]interface{}) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userinfo)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testProvider(srv *httptest.Server) *OAuthProvider {
	return NewLinkedInProvider("client", "secret", "http://api.local/").WithEndpoints(oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}, srv.URL+"/userinfo")
}

func TestOAuthProvider_AuthURL(t *testing.T) {
	p := NewGoogleProvider("client-id", "secret", "http://localhost:8375/")
	u, err := url.Parse(p.AuthURL("state-xyz"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "state-xyz", q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8375/api/auth/google/callback", q.Get("redirect_uri"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
}

func TestOAuthProvider_Exchange(t *testing.T) {
	srv := newOAuthServer(t, map[string]interface{}{
		"sub":            "li-42",
		"email":          "Eric@Example.RW",
		"email_verified": "true",
		"given_name":     "Eric",
		"family_name":    "Mugisha",
	})

	id, err := testProvider(srv).Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, ProviderLinkedIn, id.Provider)
	assert.Equal(t, "li-42", id.Subject)
	assert.Equal(t, "eric@example.rw", id.Email)
	assert.True(t, id.EmailVerified)
	assert.Equal(t, "Eric Mugisha", id.Name)
}

func TestOAuthProvider_ExchangeBadCode(t *testing.T) {
	srv := newOAuthServer(t, map[string]interface{}{"sub": "x", "email": "x@example.rw"})
	_, err := testProvider(srv).Exchange(context.Background(), "bad-code")
	require.Error(t, err)
}

func TestOAuthProvider_ExchangeMissingEmail(t *testing.T) {
	srv := newOAuthServer(t, map[string]interface{}{"sub": "li-42"})
	_, err := testProvider(srv).Exchange(context.Background(), "good-code")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestOAuthProvider_NotConfigured(t *testing.T) {
	p := NewGoogleProvider("", "", "http://localhost")
	assert.False(t, p.Configured())
	_, err := p.Exchange(context.Background(), "code")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
