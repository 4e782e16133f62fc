package auth

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCredentials configures the OAuth2 client_credentials grant.
type ClientCredentials struct {
	TokenURL     string   `mapstructure:"token_url"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	Scopes       []string `mapstructure:"scopes"`
}

// Validate checks the required fields.
func (cc ClientCredentials) Validate() error {
	if cc.TokenURL == "" {
		return fmt.Errorf("'token_url' is required")
	}
	if cc.ClientID == "" {
		return fmt.Errorf("'client_id' is required")
	}
	if cc.ClientSecret == "" {
		return fmt.Errorf("'client_secret' is required")
	}
	return nil
}

// FetchClientCredentialsToken performs the client_credentials flow and returns
// the access token. httpClient may be nil.
func FetchClientCredentialsToken(ctx context.Context, httpClient *http.Client, cc ClientCredentials) (string, error) {
	if err := cc.Validate(); err != nil {
		return "", err
	}

	config := clientcredentials.Config{
		ClientID:     cc.ClientID,
		ClientSecret: cc.ClientSecret,
		TokenURL:     cc.TokenURL,
		Scopes:       cc.Scopes,
	}

	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}

	token, err := config.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("OAuth2 client_credentials flow failed: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("OAuth2 client_credentials flow returned an empty access token")
	}
	return token.AccessToken, nil
}
