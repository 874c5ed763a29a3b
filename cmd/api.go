package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/moodcrowd/internal/shared"
	"github.com/urfave/cli/v3"
)

func apiPath(cmd *cli.Command) (string, error) {
	path := strings.TrimSpace(cmd.StringArg("path"))
	if path == "" {
		return "", fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, nil
}

// APIGet makes a direct GET request to the backend with the stored session.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path, err := apiPath(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	raw, err := r.client.Call(ctx, path, http.MethodGet, nil, nil)
	if err != nil {
		return err
	}
	return r.writeRaw(raw, cmd.Bool("pretty"))
}

// APIPost makes a direct POST request with a JSON body.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path, err := apiPath(cmd)
	if err != nil {
		return err
	}

	data := cmd.String("data")
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}

	if !json.Valid([]byte(data)) {
		return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
	}

	r.logger.Info("POST request", "path", path)

	header := http.Header{"Content-Type": []string{"application/json"}}
	raw, err := r.client.Call(ctx, path, http.MethodPost, header, bytes.NewReader([]byte(data)))
	if err != nil {
		return err
	}
	return r.writeRaw(raw, cmd.Bool("pretty"))
}

func (r *Runner) writeRaw(raw json.RawMessage, pretty bool) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return r.writePlain("✓ No content\n")
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return r.writePlain("%s\n", raw)
	}
	return r.writeJSON(data, pretty)
}
