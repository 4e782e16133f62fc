package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blackcoderx/apicheck/pkg/core/value"
)

// Header is a flattened header map keyed by lower-case name.
type Header map[string]string

// NewHeader flattens multi-valued headers with ", ".
func NewHeader(h http.Header) Header {
	out := make(Header, len(h))
	for key, values := range h {
		out[strings.ToLower(key)] = strings.Join(values, ", ")
	}
	return out
}

// Get looks a header up by case-insensitive name.
func (h Header) Get(name string) (string, bool) {
	v, ok := h[strings.ToLower(name)]
	return v, ok
}

// Names returns the header names in sorted order.
func (h Header) Names() []string {
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Response is an immutable snapshot of one HTTP exchange. The body is parsed
// as JSON on first use.
type Response struct {
	StatusCode int
	Headers    Header
	Duration   time.Duration

	body      []byte
	parseOnce sync.Once
	parsed    value.Value
	parseErr  error
}

// NewResponse builds a snapshot. body is copied.
func NewResponse(status int, headers http.Header, body []byte, duration time.Duration) *Response {
	return &Response{
		StatusCode: status,
		Headers:    NewHeader(headers),
		Duration:   duration,
		body:       append([]byte(nil), body...),
	}
}

// Text returns the raw body.
func (r *Response) Text() string {
	return string(r.body)
}

// Bytes returns a copy of the raw body.
func (r *Response) Bytes() []byte {
	return append([]byte(nil), r.body...)
}

// Size returns the body length in bytes.
func (r *Response) Size() int {
	return len(r.body)
}

// JSON returns the parsed body.
func (r *Response) JSON() (value.Value, error) {
	r.parseOnce.Do(func() {
		r.parsed, r.parseErr = value.Parse(r.body)
	})
	return r.parsed, r.parseErr
}

// Format renders the response as Markdown for terminal display.
func (r *Response) Format() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("**Status:** %d %s (%dms)\n\n", r.StatusCode, http.StatusText(r.StatusCode), r.Duration.Milliseconds()))

	sb.WriteString("**Headers:**\n\n")
	for _, key := range r.Headers.Names() {
		sb.WriteString(fmt.Sprintf("- `%s`: %s\n", key, r.Headers[key]))
	}
	sb.WriteString("\n")

	sb.WriteString("**Body:**\n\n")
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, r.body, "", "  "); err == nil {
		sb.WriteString("```json\n")
		sb.WriteString(prettyJSON.String())
		sb.WriteString("\n```\n")
	} else {
		sb.WriteString("```\n")
		sb.WriteString(string(r.body))
		sb.WriteString("\n```\n")
	}

	return sb.String()
}
