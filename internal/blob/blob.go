// Package blob uploads rendered video artifacts to object storage.
package blob

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Uploader stores a local file under name and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, localPath, name string) (string, error)
}

// HTTPStore uploads to a storage endpoint with bucket-style object paths
// (Supabase-storage compatible).
type HTTPStore struct {
	endpoint string
	bucket   string
	apiKey   string
	client   *http.Client
}

// NewHTTPStore returns nil when no endpoint is configured.
func NewHTTPStore(endpoint, bucket, apiKey string) *HTTPStore {
	if endpoint == "" {
		return nil
	}
	return &HTTPStore{
		endpoint: strings.TrimRight(endpoint, "/"),
		bucket:   bucket,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Upload implements Uploader.
func (s *HTTPStore) Upload(ctx context.Context, localPath, name string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.endpoint, s.bucket, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, f)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", contentTypeFor(name))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("upload %s: status %d", name, resp.StatusCode)
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.endpoint, s.bucket, name), nil
}

// PublishFile uploads a local artifact and deletes it afterwards whether or
// not the upload succeeded, so temp directories never accumulate videos.
func PublishFile(ctx context.Context, up Uploader, localPath, name string) (string, error) {
	defer func() {
		if rmErr := os.Remove(localPath); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Warn("Failed to remove temp artifact", "path", localPath, "error", rmErr)
		}
	}()

	if up == nil {
		return "", fmt.Errorf("no blob store configured")
	}
	return up.Upload(ctx, localPath, name)
}

func contentTypeFor(name string) string {
	switch filepath.Ext(name) {
	case ".mp4":
		return "video/mp4"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
