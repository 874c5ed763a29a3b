package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/moodcrowd/internal/prefs"
	"github.com/desertthunder/moodcrowd/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthStatusResult is the --json shape of 'auth status'.
type AuthStatusResult struct {
	BaseURL       string `json:"base_url"`
	Storage       string `json:"storage"`
	HasCookie     bool   `json:"has_cookie"`
	Authenticated bool   `json:"authenticated"`
	Error         string `json:"error,omitempty"`
}

// credentials reads --email and --password, defaulting the email to the last one used.
func (r *Runner) credentials(cmd *cli.Command) (string, string, error) {
	email := strings.TrimSpace(cmd.String("email"))
	if email == "" {
		email = r.loadPrefs().LastEmail
	}
	password := cmd.String("password")

	if email == "" || password == "" {
		return "", "", fmt.Errorf("%w: --email and --password (or MOODCROWD_PASSWORD) are required", shared.ErrMissingArgument)
	}
	return email, password, nil
}

// AuthRegister creates an account on the backend.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	email, password, err := r.credentials(cmd)
	if err != nil {
		return err
	}

	if err := r.newApp(nil, nil).Register(ctx, email, password); err != nil {
		return err
	}

	r.updatePrefs(func(p *prefs.Prefs) { p.LastEmail = email })
	return r.writePlain("✓ Account created for %s\nRun 'moodcrowd auth login' to sign in.\n", email)
}

// AuthLogin logs in and saves the session cookie for later commands.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email, password, err := r.credentials(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("logging in", "email", email, "backend", r.client.BaseURL())
	if err := r.newApp(nil, nil).Login(ctx, email, password); err != nil {
		return err
	}

	r.saveSession()
	r.updatePrefs(func(p *prefs.Prefs) { p.LastEmail = email })
	return r.writePlain("✓ Logged in as %s\n", email)
}

// AuthStatus probes the backend with the stored session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	result := AuthStatusResult{
		BaseURL:   r.client.BaseURL(),
		Storage:   r.config.Storage.Mode,
		HasCookie: r.client.HasSession(),
	}

	if err := r.client.Probe(ctx); err == nil {
		result.Authenticated = true
	} else {
		result.Error = err.Error()
		if errors.Is(err, shared.ErrServiceUnavailable) {
			r.logger.Warn("backend unreachable", "error", err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlain("Backend: %s\n", result.BaseURL)
	r.writePlain("Storage: %s\n", result.Storage)
	if result.Authenticated {
		return r.writePlain("Authentication: ✓ Authenticated\n")
	}
	r.writePlain("Authentication: ✗ Not authenticated\n")
	if result.Error != "" {
		r.writePlain("Reason: %s\n", result.Error)
	}
	return nil
}

// AuthImport reuses a browser login captured with "Copy as cURL".
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var captured *shared.CapturedSession
	var err error

	if curlFile != "" {
		captured, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		captured, err = shared.ParseCurlCommand([]byte(curlCmd))
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	if captured.URL != "" && !strings.HasPrefix(captured.URL, r.client.BaseURL()) {
		r.logger.Warn("captured request targets another host", "url", captured.URL, "backend", r.client.BaseURL())
	}

	if err := r.client.ImportSession(captured); err != nil {
		return err
	}

	if err := r.client.Probe(ctx); err != nil {
		return fmt.Errorf("%w: imported cookies were rejected: %v", shared.ErrAuthFailed, err)
	}

	r.saveSession()
	r.writePlain("✓ Imported %d cookies\n", len(captured.Cookies))
	return r.writePlain("Session saved to: %s\n", r.config.Session.CookieFile)
}

// AuthLogout forgets the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.client.ClearSession(r.config.Session.CookieFile); err != nil {
		return err
	}
	r.logger.Info("session cleared")
	return r.writePlain("✓ Logged out\n")
}
