package sheets

import (
	"context"
	"fmt"
	"net/http"
)

// CreateDocument creates a Google Doc with the given title, returning its ID.
func (c *Client) CreateDocument(ctx context.Context, title string) (string, error) {
	body := map[string]any{"title": title}

	var created struct {
		DocumentID string `json:"documentId"`
	}
	if err := c.do(ctx, http.MethodPost, c.docsURL+"/documents", body, &created); err != nil {
		return "", err
	}
	if created.DocumentID == "" {
		return "", fmt.Errorf("%w: documents.create returned no ID", ErrAPIError)
	}
	return created.DocumentID, nil
}

// PrependText inserts text at the top of a document body (index 1), so the
// newest content reads first. Matches the weekly todo-doc convention.
func (c *Client) PrependText(ctx context.Context, docID, text string) error {
	body := map[string]any{
		"requests": []any{
			map[string]any{
				"insertText": map[string]any{
					"location": map[string]any{"index": 1},
					"text":     text,
				},
			},
		},
	}

	path := fmt.Sprintf("%s/documents/%s:batchUpdate", c.docsURL, docID)
	return c.do(ctx, http.MethodPost, path, body, nil)
}
