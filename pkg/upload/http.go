package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/goliatone/go-gridform/pkg/adminerr"
)

// HTTPUploader PUTs the raw file bytes to the presigned URL. The URL carries
// the authorization, so no auth header is sent.
type HTTPUploader struct {
	Client *http.Client
}

// NewHTTPUploader returns an uploader using client, or http.DefaultClient.
func NewHTTPUploader(client *http.Client) *HTTPUploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPUploader{Client: client}
}

// Upload implements Uploader.
func (u *HTTPUploader) Upload(ctx context.Context, slot Slot, file File) error {
	if file.Open == nil {
		return fmt.Errorf("upload: file %q has no content", file.Name)
	}
	body, err := file.Open()
	if err != nil {
		return fmt.Errorf("upload: open %q: %w", file.Name, err)
	}
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, slot.URL, body)
	if err != nil {
		return fmt.Errorf("upload: build request for %q: %w", file.Name, err)
	}
	if file.Size > 0 {
		req.ContentLength = file.Size
	}
	if file.ContentType != "" {
		req.Header.Set("Content-Type", file.ContentType)
	}

	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return adminerr.NewTransport(err)
	}
	defer resp.Body.Close()
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return adminerr.NewAPI(resp.StatusCode, adminerr.MessageFromBody(payload, "")).
			WithDetail("file", file.Name)
	}
	return nil
}

// BytesFile wraps in-memory content.
func BytesFile(name, contentType string, data []byte) File {
	return File{
		Name:        name,
		ContentType: contentTypeFor(name, contentType),
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// DiskFile opens path lazily. The content type is derived from the extension.
func DiskFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("upload: stat %q: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("upload: %q is a directory", path)
	}
	return File{
		Name:        filepath.Base(path),
		ContentType: contentTypeFor(path, ""),
		Size:        info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

func contentTypeFor(name, given string) string {
	if given != "" {
		return given
	}
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}
