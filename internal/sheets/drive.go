package sheets

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const folderMimeType = "application/vnd.google-apps.folder"

// FindFolder looks up a Drive folder by name. Returns empty string when no
// folder with that name exists.
func (c *Client) FindFolder(ctx context.Context, name string) (string, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("mimeType = '%s' and name = '%s' and trashed = false", folderMimeType, name))
	q.Set("fields", "files(id, name)")

	var result struct {
		Files []struct {
			ID string `json:"id"`
		} `json:"files"`
	}
	if err := c.do(ctx, http.MethodGet, c.driveURL+"/files?"+q.Encode(), nil, &result); err != nil {
		return "", err
	}
	if len(result.Files) == 0 {
		return "", nil
	}
	return result.Files[0].ID, nil
}

// CreateFolder creates a Drive folder, returning its ID.
func (c *Client) CreateFolder(ctx context.Context, name string) (string, error) {
	body := map[string]any{
		"name":     name,
		"mimeType": folderMimeType,
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, c.driveURL+"/files", body, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: files.create returned no ID", ErrAPIError)
	}
	return created.ID, nil
}

// MoveFile moves a file into a folder.
func (c *Client) MoveFile(ctx context.Context, fileID, folderID string) error {
	path := fmt.Sprintf("%s/files/%s?addParents=%s&fields=id,parents", c.driveURL, fileID, folderID)
	return c.do(ctx, http.MethodPatch, path, map[string]any{}, nil)
}

// ShareWithEmail grants writer access on a file to an email address.
func (c *Client) ShareWithEmail(ctx context.Context, fileID, email string) error {
	body := map[string]any{
		"type":         "user",
		"role":         "writer",
		"emailAddress": email,
	}
	path := fmt.Sprintf("%s/files/%s/permissions", c.driveURL, fileID)
	return c.do(ctx, http.MethodPost, path, body, nil)
}
