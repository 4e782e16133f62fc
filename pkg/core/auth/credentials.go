// Package auth builds authentication headers for scenario requests. Only one
// credential style is active at a time: setting a new one replaces the old.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// Style identifies a credential kind.
type Style int

const (
	None Style = iota
	Bearer
	APIKey
	Basic
)

func (s Style) String() string {
	switch s {
	case Bearer:
		return "bearer token"
	case APIKey:
		return "API key"
	case Basic:
		return "basic auth"
	default:
		return "none"
	}
}

// APIKeyHeader carries the key for the API key style.
const APIKeyHeader = "X-API-Key"

// APIKeyQueryParam carries the key when sent in the query string.
const APIKeyQueryParam = "api_key"

// ErrNotConfigured is returned when a request asks for a credential style that
// is not the active one.
var ErrNotConfigured = errors.New("credentials not configured")

// Credentials holds the active credential for a scenario.
type Credentials struct {
	style    Style
	token    string
	apiKey   string
	username string
	password string
}

// Style returns the active style.
func (c *Credentials) Style() Style {
	return c.style
}

// SetBearer activates a bearer token.
func (c *Credentials) SetBearer(token string) {
	*c = Credentials{style: Bearer, token: token}
}

// SetAPIKey activates an API key.
func (c *Credentials) SetAPIKey(key string) {
	*c = Credentials{style: APIKey, apiKey: key}
}

// SetBasic activates a username/password pair.
func (c *Credentials) SetBasic(username, password string) {
	*c = Credentials{style: Basic, username: username, password: password}
}

// Clear removes any active credential.
func (c *Credentials) Clear() {
	*c = Credentials{}
}

// Headers returns the headers for the requested style. The style must be the
// active one.
func (c *Credentials) Headers(style Style) (map[string]string, error) {
	if style == None {
		return map[string]string{}, nil
	}
	if c.style != style {
		return nil, fmt.Errorf("%w: %s requested, active is %s", ErrNotConfigured, style, c.style)
	}

	switch style {
	case Bearer:
		return map[string]string{"Authorization": BearerHeader(c.token)}, nil
	case APIKey:
		return map[string]string{APIKeyHeader: c.apiKey}, nil
	case Basic:
		return map[string]string{"Authorization": BasicHeader(c.username, c.password)}, nil
	default:
		return nil, fmt.Errorf("unknown auth style %d", int(style))
	}
}

// Query returns the query parameters for sending the API key in the URL.
func (c *Credentials) Query() (map[string]string, error) {
	if c.style != APIKey {
		return nil, fmt.Errorf("%w: %s requested, active is %s", ErrNotConfigured, APIKey, c.style)
	}
	return map[string]string{APIKeyQueryParam: c.apiKey}, nil
}

// BearerHeader formats an Authorization value for a token.
func BearerHeader(token string) string {
	return fmt.Sprintf("Bearer %s", token)
}

// BasicHeader encodes username:password in the standard "Basic <encoded>" format.
func BasicHeader(username, password string) string {
	credentials := fmt.Sprintf("%s:%s", username, password)
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}
