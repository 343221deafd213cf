package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"saledash/internal/domain/ingestion"
)

const (
	DefaultURL     = "https://s3.amazonaws.com/roxiler.com/product_transaction.json"
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 32 << 20
)

// Client downloads the product transaction dataset
type Client struct {
	httpClient *http.Client
	url        string
}

// Ensure Client implements ingestion.DatasetSource
var _ ingestion.DatasetSource = (*Client)(nil)

// NewClient creates a dataset client for url. Empty url and zero timeout use defaults.
func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		url: url,
	}
}

// URL is the dataset location the client downloads from.
func (c *Client) URL() string {
	return c.url
}

// Fetch retrieves and decodes the dataset JSON array
func (c *Client) Fetch(ctx context.Context) ([]ingestion.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset request failed with status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var records []ingestion.RawRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return records, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
