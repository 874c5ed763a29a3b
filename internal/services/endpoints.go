package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/shared"
)

// MaxAnalyzeFiles is the most files the analyzer accepts per request.
const MaxAnalyzeFiles = 10

// Credentials is the body of the register and login calls.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type saveRequest struct {
	Name   string         `json:"name"`
	Tracks []models.Track `json:"tracks"`
}

// Register creates an account. The backend does not log the user in.
func (c *APIClient) Register(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", shared.ErrMissingArgument)
	}
	return c.callJSON(ctx, "/auth/register", http.MethodPost, Credentials{Email: email, Password: password}, nil)
}

// Login authenticates and stores the session cookie in the jar.
func (c *APIClient) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", shared.ErrMissingArgument)
	}
	if err := c.callJSON(ctx, "/auth/login", http.MethodPost, Credentials{Email: email, Password: password}, nil); err != nil {
		return err
	}
	c.logger.Info("logged in", "email", email)
	return nil
}

// Probe makes an authenticated call to find out whether the session is still valid.
func (c *APIClient) Probe(ctx context.Context) error {
	_, err := c.Call(ctx, "/playlists/list", http.MethodGet, nil, nil)
	return err
}

// ListPlaylists fetches the user's saved playlists.
func (c *APIClient) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	if err := c.callJSON(ctx, "/playlists/list", http.MethodGet, nil, &playlists); err != nil {
		return nil, err
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	return playlists, nil
}

// SavePlaylist stores a named track list on the backend.
func (c *APIClient) SavePlaylist(ctx context.Context, name string, tracks []models.Track) error {
	return c.callJSON(ctx, "/playlists/save", http.MethodPost, saveRequest{Name: name, Tracks: tracks}, nil)
}

// Analyze uploads files to the analyzer and returns one [models.Track] per file, in upload order.
//
// The upload is streamed and sent without session cookies.
func (c *APIClient) Analyze(ctx context.Context, files []models.FileHandle) ([]models.Track, error) {
	switch {
	case len(files) == 0:
		return nil, shared.ErrNoFiles
	case len(files) > MaxAnalyzeFiles:
		return nil, fmt.Errorf("%w: %d files, at most %d", shared.ErrTooManyFiles, len(files), MaxAnalyzeFiles)
	}

	pr, pw := io.Pipe()
	defer pr.Close()

	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeFiles(mw, files))
	}()

	header := http.Header{"Content-Type": []string{mw.FormDataContentType()}}
	raw, err := c.do(ctx, c.analyzer, c.analyzeURL, "/analyze", http.MethodPost, header, pr)
	if err != nil {
		return nil, err
	}

	var tracks []models.Track
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil, fmt.Errorf("%w: failed to decode /analyze response: %v", shared.ErrAPIRequest, err)
	}
	c.logger.Info("analysis finished", "files", len(files), "tracks", len(tracks))
	return tracks, nil
}

func writeFiles(mw *multipart.Writer, files []models.FileHandle) error {
	for _, fh := range files {
		if err := writeFile(mw, fh); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writeFile(mw *multipart.Writer, fh models.FileHandle) error {
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fh.Name, err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile("files", fh.Name)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}
