package backend

import (
	"bytes"
	"context"
	"net/http"
)

// Upload stores data at path inside the configured bucket.
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	req := "/storage/v1/object/" + c.bucket + "/" + path
	return c.do(ctx, http.MethodPost, req, contentType, bytes.NewReader(data), nil)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, "/storage/v1/object/"+c.bucket+"/"+path, "", nil, nil)
}

func (c *Client) PublicURL(path string) string {
	return c.baseURL + "/storage/v1/object/public/" + c.bucket + "/" + path
}
