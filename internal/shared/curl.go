// Utilities for lifting a browser session out of a "Copy as cURL" command.
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRe = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']+)'|"([^"]+)")`)
	curlCookieRe = regexp.MustCompile(`(?:-b|--cookie)\s+(?:'([^']+)'|"([^"]+)")`)
	curlURLRe    = regexp.MustCompile(`curl\s+(?:'([^']+)'|"([^"]+)"|(https?://\S+))`)
)

// CapturedSession is the part of a browser request needed to reuse its login.
type CapturedSession struct {
	URL     string
	Cookies []*http.Cookie
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts the session.
func ParseCurlFile(path string) (*CapturedSession, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand extracts the request URL and cookies from a cURL command.
//
// A -b/--cookie flag wins over a Cookie header.
func ParseCurlCommand(data []byte) (*CapturedSession, error) {
	cmd := strings.ReplaceAll(string(data), "\\\n", " ")

	session := &CapturedSession{}
	if m := curlURLRe.FindStringSubmatch(cmd); m != nil {
		session.URL = firstNonEmpty(m[1:]...)
	}

	var raw string
	if m := curlCookieRe.FindStringSubmatch(cmd); m != nil {
		raw = firstNonEmpty(m[1:]...)
	}

	if raw == "" {
		for _, m := range curlHeaderRe.FindAllStringSubmatch(cmd, -1) {
			key, value, ok := strings.Cut(firstNonEmpty(m[1:]...), ":")
			if ok && strings.EqualFold(strings.TrimSpace(key), "cookie") {
				raw = strings.TrimSpace(value)
				break
			}
		}
	}

	if raw == "" {
		return nil, fmt.Errorf("%w: no cookies found in curl command", ErrInvalidInput)
	}

	cookies, err := http.ParseCookie(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cookie header: %v", ErrInvalidInput, err)
	}
	session.Cookies = cookies

	return session, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
