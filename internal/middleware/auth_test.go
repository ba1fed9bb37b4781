package middleware

import (
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func signClaims(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func baseClaims(userID uint, exp time.Duration) jwt.MapClaims {
	return jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"exp": time.Now().Add(exp).Unix(),
		"jti": "abc",
	}
}

func TestParseToken(t *testing.T) {
	issued, err := IssueToken(testSecret, 123, "jti-1", time.Hour)
	require.NoError(t, err)

	wrongIssuer := baseClaims(1, time.Hour)
	wrongIssuer["iss"] = "someone-else"

	noSubject := baseClaims(1, time.Hour)
	delete(noSubject, "sub")

	noExpiry := baseClaims(1, time.Hour)
	delete(noExpiry, "exp")

	tests := []struct {
		name    string
		token   string
		wantErr error
		wantID  uint
	}{
		{"issued token", issued, nil, 123},
		{"empty", "", ErrMissingToken, 0},
		{"garbage", "not-a-jwt", ErrInvalidToken, 0},
		{"expired", signClaims(t, baseClaims(1, -time.Hour), jwt.SigningMethodHS256, []byte(testSecret)), ErrInvalidToken, 0},
		{"wrong secret", signClaims(t, baseClaims(1, time.Hour), jwt.SigningMethodHS256, []byte("other")), ErrInvalidToken, 0},
		{"wrong issuer", signClaims(t, wrongIssuer, jwt.SigningMethodHS256, []byte(testSecret)), ErrInvalidToken, 0},
		{"missing subject", signClaims(t, noSubject, jwt.SigningMethodHS256, []byte(testSecret)), ErrInvalidToken, 0},
		{"missing expiry", signClaims(t, noExpiry, jwt.SigningMethodHS256, []byte(testSecret)), ErrInvalidToken, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(testSecret, tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, claims.UserID)
			assert.Equal(t, "jti-1", claims.JTI)
			assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
		})
	}
}

func TestBearerToken(t *testing.T) {
	app := fiber.New()
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def", "abc.def"},
		{"bearer abc.def", "abc.def"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"", ""},
	}

	for _, tt := range tests {
		c := app.AcquireCtx(&fasthttp.RequestCtx{})
		c.Request().Header.Set(fiber.HeaderAuthorization, tt.header)
		assert.Equal(t, tt.want, BearerToken(c), tt.header)
		app.ReleaseCtx(c)
	}
}
