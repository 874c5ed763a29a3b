package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/moodcrowd/internal/shared"
)

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type sessionFile struct {
	URL     string         `json:"url"`
	SavedAt time.Time      `json:"saved_at"`
	Cookies []storedCookie `json:"cookies"`
}

// HasSession reports whether the jar holds any cookie for the backend.
func (c *APIClient) HasSession() bool {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return len(c.jar.Cookies(u)) > 0
}

// SaveSession writes the backend cookies to path.
func (c *APIClient) SaveSession(path string) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}

	sf := sessionFile{URL: c.baseURL, SavedAt: time.Now().UTC()}
	for _, ck := range c.jar.Cookies(u) {
		sf.Cookies = append(sf.Cookies, storedCookie{Name: ck.Name, Value: ck.Value})
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	path = shared.ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	c.logger.Debug("session saved", "path", path, "cookies", len(sf.Cookies))
	return nil
}

// LoadSession restores cookies saved by [APIClient.SaveSession].
//
// A missing file is not an error; the client simply starts unauthenticated.
// Cookies saved for a different backend are ignored.
func (c *APIClient) LoadSession(path string) error {
	path = shared.ExpandHome(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var sf sessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("%w: session file %s: %v", shared.ErrInvalidInput, path, err)
	}
	if sf.URL != c.baseURL {
		c.logger.Warn("ignoring session for another backend", "saved", sf.URL, "current", c.baseURL)
		return nil
	}

	cookies := make([]*http.Cookie, 0, len(sf.Cookies))
	for _, sc := range sf.Cookies {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
	}
	return c.setCookies(cookies)
}

// ImportSession seeds the jar from a browser request captured as cURL.
func (c *APIClient) ImportSession(captured *shared.CapturedSession) error {
	if captured == nil || len(captured.Cookies) == 0 {
		return fmt.Errorf("%w: no cookies to import", shared.ErrInvalidInput)
	}
	cookies := make([]*http.Cookie, 0, len(captured.Cookies))
	for _, ck := range captured.Cookies {
		cookies = append(cookies, &http.Cookie{Name: ck.Name, Value: ck.Value, Path: "/"})
	}
	return c.setCookies(cookies)
}

// ClearSession drops every cookie and removes the session file at path, if any.
func (c *APIClient) ClearSession(path string) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}

	expired := make([]*http.Cookie, 0)
	for _, ck := range c.jar.Cookies(u) {
		expired = append(expired, &http.Cookie{Name: ck.Name, Path: "/", MaxAge: -1})
	}
	c.jar.SetCookies(u, expired)

	if path == "" {
		return nil
	}
	if err := os.Remove(shared.ExpandHome(path)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (c *APIClient) setCookies(cookies []*http.Cookie) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	c.jar.SetCookies(u, cookies)
	return nil
}
