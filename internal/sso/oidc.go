package sso

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Config holds the settings for an institutional OIDC login provider
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// ConfigFromEnv reads the provider settings from the environment.
// The second return is false when SSO is not configured at all.
func ConfigFromEnv() (Config, bool) {
	issuer := os.Getenv("LIBRARY_SSO_ISSUER")
	if issuer == "" {
		return Config{}, false
	}
	cfg := Config{
		IssuerURL:    issuer,
		ClientID:     os.Getenv("LIBRARY_SSO_CLIENT_ID"),
		ClientSecret: os.Getenv("LIBRARY_SSO_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("LIBRARY_SSO_REDIRECT_URL"),
	}
	if scopes := os.Getenv("LIBRARY_SSO_SCOPES"); scopes != "" {
		cfg.Scopes = strings.Fields(scopes)
	}
	return cfg, true
}

// Client wraps the go-oidc provider for institutional logins
type Client struct {
	provider     *oidc.Provider
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

// Identity is the subset of claims the library cares about
type Identity struct {
	Subject     string
	Email       string
	DisplayName string
}

// New discovers the provider and prepares the OAuth2 flow
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.IssuerURL == "" {
		return nil, fmt.Errorf("issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	provider, err := oidc.NewProvider(initCtx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       scopes,
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: cfg.ClientID,
	})

	return &Client{
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     verifier,
	}, nil
}

// AuthURL generates the authorization URL for the login redirect
func (c *Client) AuthURL(state string) string {
	if state == "" {
		state = GenerateState()
	}
	return c.oauth2Config.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	token, err := c.oauth2Config.Exchange(exchangeCtx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

// Identity verifies an ID token and extracts the member-facing claims
func (c *Client) Identity(ctx context.Context, rawIDToken string) (*Identity, error) {
	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	idToken, err := c.verifier.Verify(verifyCtx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims map[string]interface{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to extract claims: %w", err)
	}

	identity := &Identity{
		Subject: idToken.Subject,
	}

	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}

	if name, ok := claims["name"].(string); ok {
		identity.DisplayName = name
	} else if given, ok := claims["given_name"].(string); ok {
		if family, ok := claims["family_name"].(string); ok {
			identity.DisplayName = given + " " + family
		} else {
			identity.DisplayName = given
		}
	} else {
		identity.DisplayName = identity.Email
	}

	return identity, nil
}

// GenerateState generates a random state parameter for the OAuth2 flow
func GenerateState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
