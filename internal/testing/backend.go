package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/moodcrowd/internal/models"
)

// Backend credentials and cookie accepted by [NewBackend].
const (
	BackendPassword = "secret"
	SessionCookie   = "session"
	SessionValue    = "abc"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Router is a small method-aware mux with a middleware stack.
type Router struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewRouter creates an empty [Router].
func NewRouter() *Router {
	return &Router{mux: http.NewServeMux()}
}

// Use adds middleware, applied in the order it's added.
func (r *Router) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers handler for method and path, wrapped in the current middleware and any extra given.
func (r *Router) Handle(method, path string, handler http.HandlerFunc, extra ...Middleware) {
	wrapped := apply(handler, extra)
	wrapped = apply(wrapped, r.middlewares)

	r.mux.Handle(path, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !strings.EqualFold(req.Method, method) {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wrapped.ServeHTTP(w, req)
	}))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// apply wraps handler so that the first middleware runs outermost.
func apply(handler http.Handler, middlewares []Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// RequireSession rejects requests without the session cookie.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(SessionCookie); err != nil || c.Value != SessionValue {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"not authenticated"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Backend is an in-memory moodcrowd server.
//
// Login accepts [BackendPassword]; playlist routes need the cookie it sets. /analyze answers
// with one track per uploaded file titled "Song <stem>" at 120 bpm.
type Backend struct {
	*httptest.Server

	mu        sync.Mutex
	playlists []models.Playlist
	requests  []string
}

// NewBackend starts a [Backend] that is closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{}

	r := NewRouter()
	r.Use(b.record)
	r.Handle(http.MethodPost, "/auth/register", b.register)
	r.Handle(http.MethodPost, "/auth/login", b.login)
	r.Handle(http.MethodGet, "/playlists/list", b.list, RequireSession)
	r.Handle(http.MethodPost, "/playlists/save", b.save, RequireSession)
	r.Handle(http.MethodPost, "/analyze", b.analyze)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Close)
	return b
}

// Playlists returns a copy of the saved playlists.
func (b *Backend) Playlists() []models.Playlist {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Playlist(nil), b.playlists...)
}

// Requests returns "METHOD /path" for every request received.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(`{"message":"created"}`))
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Password != BackendPassword {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid credentials"}`))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: SessionValue, Path: "/"})
	w.Write([]byte(`{"message":"ok"}`))
}

func (b *Backend) list(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	json.NewEncoder(w).Encode(b.playlists)
}

func (b *Backend) save(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string         `json:"name"`
		Tracks []models.Track `json:"tracks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playlists = append(b.playlists, models.Playlist{
		ID:     models.PlaylistID(fmt.Sprint(len(b.playlists) + 1)),
		Name:   req.Name,
		Tracks: req.Tracks,
	})
	w.Write([]byte(`{"message":"saved"}`))
}

func (b *Backend) analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var tracks []models.Track
	for _, fh := range r.MultipartForm.File["files"] {
		tracks = append(tracks, Track(fh.Filename, "Song "+strings.TrimSuffix(fh.Filename, ".mp3"), 120))
	}
	json.NewEncoder(w).Encode(tracks)
}
