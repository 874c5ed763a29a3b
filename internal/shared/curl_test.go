package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	tt := []struct {
		name        string
		curlCmd     string
		wantURL     string
		wantCookies map[string]string
		wantErr     bool
	}{
		{
			name:        "cookie in -b flag with single quotes",
			curlCmd:     `curl 'https://moodcrowd.onrender.com/playlists/list' -b 'session=abc123'`,
			wantURL:     "https://moodcrowd.onrender.com/playlists/list",
			wantCookies: map[string]string{"session": "abc123"},
		},
		{
			name:        "cookie in -b flag with double quotes",
			curlCmd:     `curl "https://example.com/x" -b "session=abc123"`,
			wantURL:     "https://example.com/x",
			wantCookies: map[string]string{"session": "abc123"},
		},
		{
			name:        "cookie in -H header",
			curlCmd:     `curl https://example.com -H 'Cookie: session=abc123; token=xyz'`,
			wantURL:     "https://example.com",
			wantCookies: map[string]string{"session": "abc123", "token": "xyz"},
		},
		{
			name:        "lowercase cookie header among others",
			curlCmd:     `curl 'https://example.com' -H 'accept: */*' -H 'cookie: session=s1'`,
			wantURL:     "https://example.com",
			wantCookies: map[string]string{"session": "s1"},
		},
		{
			name:        "-b cookie takes precedence over -H cookie",
			curlCmd:     `curl 'https://example.com' -H 'Cookie: old=value' -b 'new=value'`,
			wantURL:     "https://example.com",
			wantCookies: map[string]string{"new": "value"},
		},
		{
			name: "multiline curl with backslashes",
			curlCmd: `curl 'https://example.com/playlists/list' \
  -H 'accept: application/json' \
  -H 'cookie: session=multi'`,
			wantURL:     "https://example.com/playlists/list",
			wantCookies: map[string]string{"session": "multi"},
		},
		{
			name:    "no cookies",
			curlCmd: `curl -H 'Authorization: Bearer token' https://api.example.com`,
			wantErr: true,
		},
		{
			name:    "empty command",
			curlCmd: "",
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseCurlCommand([]byte(tc.curlCmd))

			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseCurlCommand() error = %v, wantErr %v", err, tc.wantErr)
			}

			if tc.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}

			if result.URL != tc.wantURL {
				t.Errorf("URL = %q, want %q", result.URL, tc.wantURL)
			}

			if len(result.Cookies) != len(tc.wantCookies) {
				t.Fatalf("cookie count = %d, want %d", len(result.Cookies), len(tc.wantCookies))
			}

			for _, c := range result.Cookies {
				if want, ok := tc.wantCookies[c.Name]; !ok || want != c.Value {
					t.Errorf("unexpected cookie %s=%s", c.Name, c.Value)
				}
			}
		})
	}
}

func TestParseCurlFile(t *testing.T) {
	t.Run("successful file parse", func(t *testing.T) {
		curlFile := filepath.Join(t.TempDir(), "curl.sh")
		curlCmd := `curl 'https://example.com/playlists/list' -b 'session=fromfile'`
		if err := os.WriteFile(curlFile, []byte(curlCmd), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		result, err := ParseCurlFile(curlFile)
		if err != nil {
			t.Fatalf("ParseCurlFile() error = %v", err)
		}

		if len(result.Cookies) != 1 || result.Cookies[0].Value != "fromfile" {
			t.Errorf("unexpected cookies %v", result.Cookies)
		}
	})

	t.Run("file does not exist", func(t *testing.T) {
		if _, err := ParseCurlFile("/nonexistent/file.sh"); err == nil {
			t.Error("ParseCurlFile() expected error for nonexistent file")
		}
	})
}
