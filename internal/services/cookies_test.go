package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/moodcrowd/internal/shared"
	tu "github.com/desertthunder/moodcrowd/internal/testing"
)

func TestSessionPersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("Saved Session Is Shared Across Clients", func(t *testing.T) {
		server := backend(t, `[]`)
		defer server.Close()
		path := filepath.Join(t.TempDir(), "nested", "session.json")

		first := newTestClient(t, ClientOptions{BaseURL: server.URL})
		if err := first.Login(ctx, "a@b.c", "secret"); err != nil {
			t.Fatalf("login: %v", err)
		}
		if err := first.SaveSession(path); err != nil {
			t.Fatalf("save: %v", err)
		}
		tu.AssertFileExists(t, path)

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
		}

		second := newTestClient(t, ClientOptions{BaseURL: server.URL})
		if err := second.LoadSession(path); err != nil {
			t.Fatalf("load: %v", err)
		}
		if err := second.Probe(ctx); err != nil {
			t.Errorf("expected restored session to authenticate, got %v", err)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		c := newTestClient(t, ClientOptions{BaseURL: "http://example.com"})
		if err := c.LoadSession(filepath.Join(t.TempDir(), "none.json")); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if c.HasSession() {
			t.Error("expected no session")
		}
	})

	t.Run("Other Backend Ignored", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		content := `{"url": "http://other.example.com", "cookies": [{"name": "session", "value": "x"}]}`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("write: %v", err)
		}

		c := newTestClient(t, ClientOptions{BaseURL: "http://example.com"})
		if err := c.LoadSession(path); err != nil {
			t.Fatalf("load: %v", err)
		}
		if c.HasSession() {
			t.Error("expected cookies for another backend to be ignored")
		}
	})

	t.Run("Corrupt File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		os.WriteFile(path, []byte("{"), 0600)

		c := newTestClient(t, ClientOptions{BaseURL: "http://example.com"})
		if err := c.LoadSession(path); err == nil {
			t.Error("expected error for corrupt session file")
		}
	})

	t.Run("Import From cURL", func(t *testing.T) {
		server := backend(t, `[]`)
		defer server.Close()

		captured, err := shared.ParseCurlCommand([]byte("curl '" + server.URL + "/playlists/list' -b 'session=abc123'"))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}

		c := newTestClient(t, ClientOptions{BaseURL: server.URL})
		if err := c.ImportSession(captured); err != nil {
			t.Fatalf("import: %v", err)
		}
		if err := c.Probe(ctx); err != nil {
			t.Errorf("expected imported cookie to authenticate, got %v", err)
		}
		if err := c.ImportSession(&shared.CapturedSession{}); err == nil {
			t.Error("expected error when nothing to import")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123", Path: "/"})
		}))
		defer server.Close()
		path := filepath.Join(t.TempDir(), "session.json")

		c := newTestClient(t, ClientOptions{BaseURL: server.URL})
		if _, err := c.Call(ctx, "/auth/login", http.MethodPost, nil, nil); err != nil {
			t.Fatalf("call: %v", err)
		}
		if err := c.SaveSession(path); err != nil {
			t.Fatalf("save: %v", err)
		}

		if err := c.ClearSession(path); err != nil {
			t.Fatalf("clear: %v", err)
		}
		if c.HasSession() {
			t.Error("expected cookies to be dropped")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected session file to be removed")
		}
		if err := c.ClearSession(path); err != nil {
			t.Errorf("clearing twice should succeed, got %v", err)
		}
	})
}
