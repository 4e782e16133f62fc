// Package storage reads and writes the project files under .apicheck:
// environments, saved requests and payload fixtures.
package storage

import (
	"github.com/blackcoderx/apicheck/pkg/core/client"
)

// Request is a saved request in YAML form. Path may be relative to the
// configured base URL and may contain {{VAR}} and {name} placeholders.
type Request struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Method      string            `yaml:"method"`
	Path        string            `yaml:"path"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	Query       map[string]string `yaml:"query,omitempty"`
	Body        any               `yaml:"body,omitempty"`
}

// ClientRequest converts a saved request into the client's request type.
func (r *Request) ClientRequest() client.Request {
	return client.Request{
		Method:  r.Method,
		Path:    r.Path,
		Headers: r.Headers,
		Query:   r.Query,
		Body:    r.Body,
	}
}

// Environment is a named set of variables, e.g. dev or staging.
type Environment struct {
	Name      string
	Variables map[string]string
}
