package identity

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GoogleSecureTokenCertsURL publishes the x509 certificates Firebase signs ID tokens with.
const GoogleSecureTokenCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

const (
	defaultCertTTL = time.Hour
	// minRefreshInterval bounds how often an unknown kid can trigger a fetch.
	minRefreshInterval = time.Minute
)

type firebaseClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	jwt.RegisteredClaims
}

// FirebaseVerifier checks Firebase ID tokens against Google's published
// signing certificates. Certificates are cached for the max-age the
// endpoint advertises.
type FirebaseVerifier struct {
	projectID string
	certsURL  string
	client    *http.Client
	now       func() time.Time

	refreshMu sync.Mutex
	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	expires   time.Time
}

// NewFirebaseVerifier returns a verifier for projectID.
func NewFirebaseVerifier(projectID string) *FirebaseVerifier {
	return &FirebaseVerifier{
		projectID: projectID,
		certsURL:  GoogleSecureTokenCertsURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		now:       time.Now,
	}
}

// WithCertsURL points the verifier at another certificate endpoint.
func (v *FirebaseVerifier) WithCertsURL(url string) *FirebaseVerifier {
	v.certsURL = url
	return v
}

// Verify validates idToken and returns the identity it asserts.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if v == nil || v.projectID == "" {
		return nil, ErrNotConfigured
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer("https://securetoken.google.com/"+v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)

	claims := &firebaseClaims{}
	_, err := parser.ParseWithClaims(idToken, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid header")
		}
		return v.key(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	return &Identity{
		Provider:      "firebase",
		Subject:       claims.Subject,
		Email:         strings.ToLower(strings.TrimSpace(claims.Email)),
		EmailVerified: claims.EmailVerified,
		Name:          strings.TrimSpace(claims.Name),
	}, nil
}

func (v *FirebaseVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	key, ok, stale := v.lookup(kid)
	if stale {
		v.refreshMu.Lock()
		// A concurrent caller may have refreshed while this one waited.
		if key, ok, stale = v.lookup(kid); stale {
			if err := v.refresh(ctx); err != nil {
				v.refreshMu.Unlock()
				return nil, err
			}
			key, ok, _ = v.lookup(kid)
		}
		v.refreshMu.Unlock()
	}
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	return key, nil
}

// lookup reports the cached key for kid and whether the key set should be
// fetched again: always once it has expired, and for an unknown kid at most
// once per minRefreshInterval.
func (v *FirebaseVerifier) lookup(kid string) (key *rsa.PublicKey, ok, stale bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	key, ok = v.keys[kid]
	now := v.now()
	switch {
	case !now.Before(v.expires):
		stale = true
	case !ok:
		stale = now.Sub(v.fetchedAt) >= minRefreshInterval
	}
	return key, ok, stale
}

func (v *FirebaseVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch signing certificates: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch signing certificates: status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("decode signing certificates: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pem := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return fmt.Errorf("parse certificate %q: %w", kid, err)
		}
		keys[kid] = key
	}

	v.mu.Lock()
	v.keys = keys
	v.fetchedAt = v.now()
	v.expires = v.fetchedAt.Add(maxAge(resp.Header.Get("Cache-Control")))
	v.mu.Unlock()
	return nil
}

// maxAge extracts max-age from a Cache-Control header.
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		directive = strings.TrimSpace(directive)
		if !strings.HasPrefix(directive, "max-age=") {
			continue
		}
		secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
		if err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultCertTTL
}
