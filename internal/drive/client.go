// Package drive lists and downloads files from a Microsoft Graph drive.
package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"docsearch/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL          = "https://graph.microsoft.com/v1.0"
	defaultMaxDownloadBytes = 50 << 20
	maxErrorBody            = 4 << 10
)

// StatusError is returned when the drive API answers with a non-200 status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("drive %s failed: %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("drive %s failed: %d, %s", e.Op, e.StatusCode, e.Body)
}

type Client struct {
	BaseURL          string
	HTTPClient       *http.Client
	MaxDownloadBytes int64
}

func NewClient(baseURL string, maxDownloadBytes int64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxDownloadBytes <= 0 {
		maxDownloadBytes = defaultMaxDownloadBytes
	}
	return &Client{
		BaseURL:          strings.TrimRight(baseURL, "/"),
		HTTPClient:       http.DefaultClient,
		MaxDownloadBytes: maxDownloadBytes,
	}
}

// ListRoot returns the children of the drive root in listing order.
func (c *Client) ListRoot(ctx context.Context, token string) ([]models.RemoteFile, error) {
	resp, err := c.get(ctx, token, c.BaseURL+"/me/drive/root/children")
	if err != nil {
		return nil, fmt.Errorf("listing drive root: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("list", resp)
	}

	var page struct {
		Value []models.RemoteFile `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding drive listing: %w", err)
	}
	log.Debug().Int("count", len(page.Value)).Msg("Listed drive root")
	return page.Value, nil
}

// Download fetches the raw content of the item with the given id.
func (c *Client) Download(ctx context.Context, token, id string) ([]byte, error) {
	resp, err := c.get(ctx, token, c.BaseURL+"/me/drive/items/"+url.PathEscape(id)+"/content")
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("download", resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.MaxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", id, err)
	}
	if int64(len(data)) > c.MaxDownloadBytes {
		return nil, fmt.Errorf("item %s exceeds %d bytes", id, c.MaxDownloadBytes)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, token, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.HTTPClient.Do(req)
}

func statusError(op string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
