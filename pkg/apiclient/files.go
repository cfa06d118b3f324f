package apiclient

import (
	"context"
	"net/http"

	"github.com/goliatone/go-gridform/pkg/upload"
)

var _ upload.Presigner = (*Client)(nil)

type presignRequest struct {
	ParentID       string   `json:"parentId"`
	Classification string   `json:"classification,omitempty"`
	FileNames      []string `json:"fileNames"`
}

// Presign requests presigned upload URLs for names in one call. It
// implements upload.Presigner.
func (c *Client) Presign(ctx context.Context, parentID string, names []string, classification string) ([]upload.Slot, error) {
	var slots []upload.Slot
	err := c.do(ctx, http.MethodPost, "api/files/presign", nil, presignRequest{
		ParentID:       parentID,
		Classification: classification,
		FileNames:      names,
	}, &slots)
	if err != nil {
		return nil, err
	}
	return slots, nil
}

type persistRequest struct {
	Classification string   `json:"classification,omitempty"`
	Keys           []string `json:"keys"`
}

// FilesPersister records uploaded keys on records of resource.
type FilesPersister struct {
	client   *Client
	resource string
}

var _ upload.Persister = FilesPersister{}

// FilesPersister returns the upload.Persister for resource.
func (c *Client) FilesPersister(resource string) FilesPersister {
	return FilesPersister{client: c, resource: resource}
}

// Persist implements upload.Persister.
func (p FilesPersister) Persist(ctx context.Context, parentID string, keys []string, classification string) error {
	return p.client.do(ctx, http.MethodPost, resourcePath(p.resource, parentID, "files"), nil, persistRequest{
		Classification: classification,
		Keys:           keys,
	}, nil)
}
