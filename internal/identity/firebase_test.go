package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProject = "bizrwanda-test"

type certServer struct {
	*httptest.Server
	key  *rsa.PrivateKey
	hits atomic.Int32
}

func newCertServer(t *testing.T) *certServer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	certPEM := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))

	cs := &certServer{key: key}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits.Add(1)
		w.Header().Set("Cache-Control", "public, max-age=600, must-revalidate")
		_ = json.NewEncoder(w).Encode(map[string]string{"kid-1": certPEM})
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *certServer) sign(t *testing.T, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(cs.key)
	require.NoError(t, err)
	return signed
}

func validClaims(now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            "https://securetoken.google.com/" + testProject,
		"aud":            testProject,
		"sub":            "firebase-uid-1",
		"email":          "Amina@Example.RW",
		"email_verified": true,
		"name":           "Amina Uwase",
		"iat":            now.Add(-time.Minute).Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	}
}

func TestFirebaseVerifier_ValidToken(t *testing.T) {
	cs := newCertServer(t)
	v := NewFirebaseVerifier(testProject).WithCertsURL(cs.URL)

	id, err := v.Verify(context.Background(), cs.sign(t, "kid-1", validClaims(time.Now())))
	require.NoError(t, err)
	assert.Equal(t, "firebase", id.Provider)
	assert.Equal(t, "firebase-uid-1", id.Subject)
	assert.Equal(t, "amina@example.rw", id.Email)
	assert.True(t, id.EmailVerified)
	assert.Equal(t, "Amina Uwase", id.Name)
}

func TestFirebaseVerifier_CachesCertificates(t *testing.T) {
	cs := newCertServer(t)
	v := NewFirebaseVerifier(testProject).WithCertsURL(cs.URL)

	token := cs.sign(t, "kid-1", validClaims(time.Now()))
	for i := 0; i < 3; i++ {
		_, err := v.Verify(context.Background(), token)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), cs.hits.Load())
}

func TestFirebaseVerifier_Rejects(t *testing.T) {
	cs := newCertServer(t)
	now := time.Now()

	tests := []struct {
		name   string
		kid    string
		mutate func(jwt.MapClaims)
	}{
		{"wrong audience", "kid-1", func(c jwt.MapClaims) { c["aud"] = "other-project" }},
		{"wrong issuer", "kid-1", func(c jwt.MapClaims) { c["iss"] = "https://accounts.google.com" }},
		{"expired", "kid-1", func(c jwt.MapClaims) { c["exp"] = now.Add(-time.Minute).Unix() }},
		{"missing expiry", "kid-1", func(c jwt.MapClaims) { delete(c, "exp") }},
		{"empty subject", "kid-1", func(c jwt.MapClaims) { c["sub"] = "" }},
		{"unknown key", "kid-2", func(jwt.MapClaims) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFirebaseVerifier(testProject).WithCertsURL(cs.URL)
			claims := validClaims(now)
			tt.mutate(claims)
			_, err := v.Verify(context.Background(), cs.sign(t, tt.kid, claims))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestFirebaseVerifier_RejectsHMAC(t *testing.T) {
	cs := newCertServer(t)
	v := NewFirebaseVerifier(testProject).WithCertsURL(cs.URL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims(time.Now()))
	token.Header["kid"] = "kid-1"
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFirebaseVerifier_NotConfigured(t *testing.T) {
	_, err := NewFirebaseVerifier("").Verify(context.Background(), "token")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestMaxAge(t *testing.T) {
	assert.Equal(t, 600*time.Second, maxAge("public, max-age=600, must-revalidate"))
	assert.Equal(t, defaultCertTTL, maxAge("no-cache"))
	assert.Equal(t, defaultCertTTL, maxAge("max-age=abc"))
}

func TestFirebaseVerifier_UnknownKidRefreshIsThrottled(t *testing.T) {
	cs := newCertServer(t)
	clock := time.Now()
	v := NewFirebaseVerifier(testProject).WithCertsURL(cs.URL)
	v.now = func() time.Time { return clock }

	forged := cs.sign(t, "kid-forged", validClaims(clock))
	for i := 0; i < 5; i++ {
		_, err := v.Verify(context.Background(), forged)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
	assert.Equal(t, int32(1), cs.hits.Load())

	clock = clock.Add(2 * time.Minute)
	_, err := v.Verify(context.Background(), forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, int32(2), cs.hits.Load())

	_, err = v.Verify(context.Background(), cs.sign(t, "kid-1", validClaims(clock)))
	require.NoError(t, err)
	assert.Equal(t, int32(2), cs.hits.Load())

	clock = clock.Add(11 * time.Minute)
	_, err = v.Verify(context.Background(), cs.sign(t, "kid-1", validClaims(clock)))
	require.NoError(t, err)
	assert.Equal(t, int32(3), cs.hits.Load())
}
