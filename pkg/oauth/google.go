package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/beam-cloud/mailtriage/pkg/types"
)

// GmailReadonlyScope is requested when no scopes are configured
const GmailReadonlyScope = "https://www.googleapis.com/auth/gmail.readonly"

// GoogleClient handles the Google OAuth authorization-code flow for Gmail
type GoogleClient struct {
	config *oauth2.Config
}

// NewGoogleClient creates a Google OAuth client from config. A credentials
// file, when set, supplies the client id, secret and redirect URL; an inline
// redirect URL still takes precedence.
func NewGoogleClient(cfg types.GoogleOAuthConfig) (*GoogleClient, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("google oauth requires a credentials file or client id, secret and redirect url")
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{GmailReadonlyScope}
	}

	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}

		oc, err := google.ConfigFromJSON(data, scopes...)
		if err != nil {
			return nil, fmt.Errorf("parse credentials file: %w", err)
		}
		if cfg.RedirectURL != "" {
			oc.RedirectURL = cfg.RedirectURL
		}
		return &GoogleClient{config: oc}, nil
	}

	return &GoogleClient{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		},
	}, nil
}

// Config exposes the underlying oauth2 config
func (g *GoogleClient) Config() *oauth2.Config {
	return g.config
}

// AuthorizeURL generates the consent URL. Offline access is requested so the
// token carries a refresh token.
func (g *GoogleClient) AuthorizeURL(state string) string {
	return g.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange exchanges an authorization code for a token
func (g *GoogleClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("authorization code is empty")
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange failed: %w", err)
	}
	return token, nil
}

// TokenSource returns a token source that refreshes token as it expires
func (g *GoogleClient) TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return g.config.TokenSource(ctx, token)
}

// NewState returns a random value for the OAuth state parameter
func NewState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
