package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// Provider names.
const (
	ProviderGoogle   = "google"
	ProviderLinkedIn = "linkedin"
)

const (
	googleUserInfoURL   = "https://openidconnect.googleapis.com/v1/userinfo"
	linkedInUserInfoURL = "https://api.linkedin.com/v2/userinfo"
)

// OAuthProvider runs the authorization code flow against one provider and
// resolves the resulting token to an Identity through its OpenID userinfo
// endpoint.
type OAuthProvider struct {
	name        string
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider returns the Google sign-in provider. callbackBase is the
// public API origin; the redirect is <callbackBase>/api/auth/google/callback.
func NewGoogleProvider(clientID, clientSecret, callbackBase string) *OAuthProvider {
	return newProvider(ProviderGoogle, clientID, clientSecret, callbackBase, endpoints.Google, googleUserInfoURL)
}

// NewLinkedInProvider returns the LinkedIn sign-in provider.
func NewLinkedInProvider(clientID, clientSecret, callbackBase string) *OAuthProvider {
	return newProvider(ProviderLinkedIn, clientID, clientSecret, callbackBase, endpoints.LinkedIn, linkedInUserInfoURL)
}

func newProvider(name, clientID, clientSecret, callbackBase string, endpoint oauth2.Endpoint, userInfoURL string) *OAuthProvider {
	return &OAuthProvider{
		name: name,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoint,
			RedirectURL:  strings.TrimRight(callbackBase, "/") + "/api/auth/" + name + "/callback",
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: userInfoURL,
	}
}

// WithEndpoints overrides the token and userinfo endpoints.
func (p *OAuthProvider) WithEndpoints(endpoint oauth2.Endpoint, userInfoURL string) *OAuthProvider {
	p.config.Endpoint = endpoint
	p.userInfoURL = userInfoURL
	return p
}

// Name returns the provider name used in routes and on user records.
func (p *OAuthProvider) Name() string { return p.name }

// Configured reports whether client credentials are set.
func (p *OAuthProvider) Configured() bool {
	return p != nil && p.config.ClientID != "" && p.config.ClientSecret != ""
}

// AuthURL returns the consent page URL carrying state.
func (p *OAuthProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

type userInfo struct {
	Sub           string      `json:"sub"`
	Email         string      `json:"email"`
	EmailVerified interface{} `json:"email_verified"`
	Name          string      `json:"name"`
	GivenName     string      `json:"given_name"`
	FamilyName    string      `json:"family_name"`
}

// Exchange trades an authorization code for the caller's identity.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	if !p.Configured() {
		return nil, ErrNotConfigured
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: exchange code: %w", p.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch userinfo: %w", p.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s: userinfo status %d: %s", p.name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%s: decode userinfo: %w", p.name, err)
	}
	if info.Sub == "" || info.Email == "" {
		return nil, fmt.Errorf("%w: %s userinfo missing subject or email", ErrInvalidToken, p.name)
	}

	name := strings.TrimSpace(info.Name)
	if name == "" {
		name = strings.TrimSpace(info.GivenName + " " + info.FamilyName)
	}
	return &Identity{
		Provider:      p.name,
		Subject:       info.Sub,
		Email:         strings.ToLower(strings.TrimSpace(info.Email)),
		EmailVerified: truthy(info.EmailVerified),
		Name:          name,
	}, nil
}

// truthy accepts both the boolean and the string form of email_verified.
func truthy(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true")
	}
	return false
}
