// Package identity integrates external identity providers.
// The rest of the system only sees a verified email and display name;
// the redirect dance stays contained here.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrNoEmail indicates the provider returned a profile without an email.
var ErrNoEmail = errors.New("identity provider returned no email")

// Identity is a verified external identity.
type Identity struct {
	Email string
	Name  string
}

// Provider abstracts an external OAuth identity provider.
type Provider interface {
	// AuthCodeURL builds the provider's consent page URL for the given
	// anti-CSRF state value.
	AuthCodeURL(state string) string
	// FetchIdentity exchanges an authorization code for a verified identity.
	FetchIdentity(ctx context.Context, code string) (*Identity, error)
}

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProvider implements Provider against Google's OAuth endpoints.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider creates a GoogleProvider with the standard Google
// endpoints and the email/profile scopes.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// AuthCodeURL builds the Google consent page URL.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// FetchIdentity exchanges the authorization code and fetches the user's
// profile from the userinfo endpoint.
func (p *GoogleProvider) FetchIdentity(ctx context.Context, code string) (*Identity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	client := p.config.Client(ctx, token)
	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	if info.Email == "" {
		return nil, ErrNoEmail
	}

	return &Identity{Email: info.Email, Name: info.Name}, nil
}
