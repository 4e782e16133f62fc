package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackcoderx/apicheck/pkg/testutil/fakeapi"
)

func TestHTTPClient_GetPost(t *testing.T) {
	_, srv := fakeapi.NewServer(t)
	c := New(Options{BaseURL: srv.URL, DefaultHeaders: map[string]string{"Accept": "application/json"}})
	defer c.Close()

	resp, err := c.Do(context.Background(), Request{Method: "get", Path: "/posts/1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ct, ok := resp.Headers.Get("CONTENT-TYPE")
	require.True(t, ok)
	assert.Contains(t, ct, "application/json")

	body, err := resp.JSON()
	require.NoError(t, err)
	id, err := body.Field("id")
	require.NoError(t, err)
	n, err := id.AsNumber()
	require.NoError(t, err)
	assert.Equal(t, float64(1), n)
	assert.Greater(t, resp.Size(), 0)
}

func TestHTTPClient_SendsJSONBodyAndHeaders(t *testing.T) {
	var gotContentType, gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL + "/", DefaultHeaders: map[string]string{"Accept": "application/json"}})
	resp, err := c.Do(context.Background(), Request{
		Method:  http.MethodPost,
		Path:    "posts",
		Headers: map[string]string{"Authorization": "Bearer abc"},
		Body:    map[string]any{"title": "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestHTTPClient_ResolveURL(t *testing.T) {
	c := New(Options{BaseURL: "https://example.com/api/"})

	tests := []struct {
		name  string
		path  string
		query map[string]string
		want  string
	}{
		{name: "relative with slash", path: "/posts", want: "https://example.com/api/posts"},
		{name: "relative without slash", path: "posts/1", want: "https://example.com/api/posts/1"},
		{name: "existing query kept", path: "/posts?_limit=5", want: "https://example.com/api/posts?_limit=5"},
		{name: "query merged", path: "/data", query: map[string]string{"api_key": "k"}, want: "https://example.com/api/data?api_key=k"},
		{name: "absolute url", path: "http://other.test/x", want: "http://other.test/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ResolveURL(tt.path, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url, Timeout: time.Second})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/posts"})
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.MethodGet, te.Method)
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	_, srv := fakeapi.NewServer(t)
	c := New(Options{BaseURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/posts"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestResponse_NonJSONBody(t *testing.T) {
	resp := NewResponse(http.StatusOK, http.Header{"X-Test": {"a", "b"}}, []byte("plain text"), time.Millisecond)

	_, err := resp.JSON()
	assert.Error(t, err)
	assert.Equal(t, "plain text", resp.Text())

	v, ok := resp.Headers.Get("x-test")
	require.True(t, ok)
	assert.Equal(t, "a, b", v)
	assert.Contains(t, resp.Format(), "plain text")
}
