// Package fakeapi is an in-memory stand-in for the posts/users/comments REST API.
// Unlike the public placeholder service it applies writes, so deletes are
// observable by later requests.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Default credentials accepted by /protected and /oauth/token.
const (
	BearerToken  = "test-bearer-token"
	APIKey       = "test-api-key"
	Username     = "user"
	Password     = "pass"
	ClientID     = "test-client"
	ClientSecret = "test-secret"
	AccessToken  = "issued-access-token"
)

// API holds the fake's state. It is safe for concurrent use.
type API struct {
	mu         sync.Mutex
	posts      map[int]Post
	users      map[int]User
	comments   map[int]Comment
	nextPostID int
	requests   int
}

// New creates an API loaded with seed data.
func New() *API {
	a := &API{}
	a.Reset()
	return a
}

// NewServer starts the fake on a local port and closes it when the test ends.
func NewServer(t testing.TB) (*API, *httptest.Server) {
	t.Helper()
	a := New()
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return a, srv
}

// Reset restores the seed data.
func (a *API) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.posts = make(map[int]Post)
	for _, p := range seedPosts() {
		a.posts[p.ID] = p
	}
	a.users = make(map[int]User)
	for _, u := range seedUsers() {
		a.users[u.ID] = u
	}
	a.comments = make(map[int]Comment)
	for _, c := range seedComments() {
		a.comments[c.ID] = c
	}
	a.nextPostID = 101
	a.requests = 0
}

// Requests returns the number of requests served since the last Reset.
func (a *API) Requests() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests
}

// Handler returns the router.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(a.countRequests)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", a.listPosts)
		r.Post("/", a.createPost)
		r.Get("/{id}", a.getPost)
		r.Put("/{id}", a.updatePost)
		r.Delete("/{id}", a.deletePost)
	})
	r.Get("/users", a.listUsers)
	r.Get("/users/{id}", a.getUser)
	r.Get("/comments", a.listComments)
	r.Get("/comments/{id}", a.getComment)

	r.Get("/protected", a.protected)
	r.Post("/oauth/token", a.issueToken)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{})
	})
	return r
}

func (a *API) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.requests++
		a.mu.Unlock()
		w.Header().Set("X-Powered-By", "fakeapi")
		w.Header().Set("Cache-Control", "max-age=43200")
		next.ServeHTTP(w, r)
	})
}

func (a *API) listPosts(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	items := make([]any, 0, len(a.posts))
	for _, p := range a.posts {
		items = append(items, p)
	}
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, query(items, r))
}

func (a *API) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	a.mu.Lock()
	p, found := a.posts[id]
	a.mu.Unlock()
	if !ok || !found {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) createPost(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	a.mu.Lock()
	id := a.nextPostID
	a.nextPostID++
	a.posts[id] = postFromBody(id, body)
	a.mu.Unlock()

	body["id"] = id
	writeJSON(w, http.StatusCreated, body)
}

func (a *API) updatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	a.mu.Lock()
	_, found := a.posts[id]
	if ok && found {
		a.posts[id] = postFromBody(id, body)
	}
	a.mu.Unlock()

	if !ok || !found {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	body["id"] = id
	writeJSON(w, http.StatusOK, body)
}

func (a *API) deletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	a.mu.Lock()
	_, found := a.posts[id]
	delete(a.posts, id)
	a.mu.Unlock()

	if !ok || !found {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	items := make([]any, 0, len(a.users))
	for _, u := range a.users {
		items = append(items, u)
	}
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, query(items, r))
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	a.mu.Lock()
	u, found := a.users[id]
	a.mu.Unlock()
	if !ok || !found {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) listComments(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	items := make([]any, 0, len(a.comments))
	for _, c := range a.comments {
		items = append(items, c)
	}
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, query(items, r))
}

func (a *API) getComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	a.mu.Lock()
	c, found := a.comments[id]
	a.mu.Unlock()
	if !ok || !found {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// protected accepts any one of the supported credential styles.
func (a *API) protected(w http.ResponseWriter, r *http.Request) {
	method := ""
	auth := r.Header.Get("Authorization")
	switch {
	case auth == "Bearer "+BearerToken || auth == "Bearer "+AccessToken:
		method = "bearer"
	case r.Header.Get("X-API-Key") == APIKey:
		method = "api_key"
	case r.URL.Query().Get("api_key") == APIKey:
		method = "api_key_query"
	default:
		if user, pass, ok := r.BasicAuth(); ok && user == Username && pass == Password {
			method = "basic"
		}
	}

	if method == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "method": method})
}

// issueToken implements the client_credentials grant.
func (a *API) issueToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_request"})
		return
	}

	id, secret, ok := r.BasicAuth()
	if !ok {
		id, secret = r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
	}
	if r.PostForm.Get("grant_type") != "client_credentials" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unsupported_grant_type"})
		return
	}
	if id != ClientID || secret != ClientSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid_client"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": AccessToken,
		"token_type":   "bearer",
		"expires_in":   3600,
	})
}

func postFromBody(id int, body map[string]any) Post {
	p := Post{ID: id}
	if v, ok := body["userId"].(float64); ok {
		p.UserID = int(v)
	}
	p.Title, _ = body["title"].(string)
	p.Body, _ = body["body"].(string)
	return p
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil
}

// query applies the json-server style filters: field equality, _sort/_order
// and _limit with _page. Items are ordered by id unless _sort says otherwise.
func query(items []any, r *http.Request) []map[string]any {
	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		data, _ := json.Marshal(item)
		var m map[string]any
		_ = json.Unmarshal(data, &m)
		rows = append(rows, m)
	}

	q := r.URL.Query()
	filtered := rows[:0]
	for _, row := range rows {
		keep := true
		for key, vals := range q {
			if strings.HasPrefix(key, "_") || key == "api_key" {
				continue
			}
			if formatField(row[key]) != vals[0] {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, row)
		}
	}

	sortField := q.Get("_sort")
	if sortField == "" {
		sortField = "id"
	}
	desc := strings.EqualFold(q.Get("_order"), "desc")
	sort.SliceStable(filtered, func(i, j int) bool {
		less := lessField(filtered[i][sortField], filtered[j][sortField])
		if desc {
			return lessField(filtered[j][sortField], filtered[i][sortField])
		}
		return less
	})

	limit, err := strconv.Atoi(q.Get("_limit"))
	if err != nil || limit < 0 {
		return filtered
	}
	if page, err := strconv.Atoi(q.Get("_page")); err == nil && page > 1 {
		start := (page - 1) * limit
		if start >= len(filtered) {
			return filtered[:0]
		}
		filtered = filtered[start:]
	}
	if limit < len(filtered) {
		filtered = filtered[:limit]
	}
	return filtered
}

func formatField(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return t
	default:
		data, _ := json.Marshal(t)
		return string(data)
	}
}

func lessField(a, b any) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af < bf
	}
	return formatField(a) < formatField(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}
