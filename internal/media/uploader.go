// Package media uploads images to an unsigned-upload hosting endpoint and
// returns durable public URLs. Upload failures are surfaced to the caller,
// never swallowed.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Uploader stores a binary file under a logical folder and returns its
// public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, file io.Reader, folder string) (string, error)
}

// Client implements Uploader against a Cloudinary-style unsigned upload
// endpoint.
type Client struct {
	endpoint string
	preset   string
	http     *http.Client
}

// NewClient creates a Client. endpoint is the full upload URL; preset is
// the unsigned upload preset name.
func NewClient(endpoint, preset string) *Client {
	return &Client{
		endpoint: endpoint,
		preset:   preset,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload implements Uploader.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader, folder string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("media: failed to build form: %w", err)
	}
	if _, err := io.Copy(fw, file); err != nil {
		return "", fmt.Errorf("media: failed to read file: %w", err)
	}
	if err := mw.WriteField("upload_preset", c.preset); err != nil {
		return "", fmt.Errorf("media: failed to build form: %w", err)
	}
	if folder != "" {
		if err := mw.WriteField("folder", folder); err != nil {
			return "", fmt.Errorf("media: failed to build form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("media: failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("media: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("media: upload request failed: %w", err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("media: failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error.Message != "" {
			return "", fmt.Errorf("media: upload failed: %s", out.Error.Message)
		}
		return "", fmt.Errorf("media: upload failed with status %s", resp.Status)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("media: upload response missing secure_url")
	}
	return out.SecureURL, nil
}
