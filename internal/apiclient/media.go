package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
)

// MediaUpload is one file plus its metadata for the multipart upload.
type MediaUpload struct {
	Title       string
	Description string
	Category    string
	FileName    string
	Content     io.Reader
}

func (c *Client) ListMedia(ctx context.Context, kind domain.MediaKind) ([]domain.MediaItem, error) {
	var out []domain.MediaItem
	path := "/api/" + string(kind)
	err := c.do(ctx, call{method: http.MethodGet, route: path, path: path}, &out)
	return out, err
}

// UploadMedia posts a multipart form with the file under "file".
func (c *Client) UploadMedia(ctx context.Context, kind domain.MediaKind, up MediaUpload) (*domain.MediaItem, error) {
	if up.Content == nil || up.FileName == "" {
		return nil, domain.NewValidationError("file", "is required")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, value := range map[string]string{
		"title":       up.Title,
		"description": up.Description,
		"category":    up.Category,
	} {
		if value == "" {
			continue
		}
		if err := w.WriteField(field, value); err != nil {
			return nil, fmt.Errorf("write %s field: %w", field, err)
		}
	}
	part, err := w.CreateFormFile("file", up.FileName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, up.Content); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var out domain.MediaItem
	path := "/api/" + string(kind) + "/upload"
	err = c.do(ctx, call{method: http.MethodPost, route: path, path: path, rawBody: &buf, contentType: w.FormDataContentType()}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMedia(ctx context.Context, kind domain.MediaKind, id string, upd domain.MediaUpdate) (*domain.MediaItem, error) {
	var out domain.MediaItem
	route := "/api/" + string(kind) + "/{id}"
	path := "/api/" + string(kind) + "/" + pathEscape(id)
	if err := c.do(ctx, call{method: http.MethodPut, route: route, path: path, body: upd}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMedia(ctx context.Context, kind domain.MediaKind, id string) error {
	route := "/api/" + string(kind) + "/{id}"
	path := "/api/" + string(kind) + "/" + pathEscape(id)
	return c.do(ctx, call{method: http.MethodDelete, route: route, path: path}, nil)
}
