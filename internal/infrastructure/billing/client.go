// Package billing talks to the external billing system that owns purchase
// records. Every call is a single attempt bounded by the client timeout.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
	"github.com/oksasatya/ebook-storefront/internal/domain/repository"
)

// maxErrorBody caps how much of a failed response is kept for logs.
const maxErrorBody = 512

// Config configures the billing client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client implements PurchaseSource and DownloadVerifier over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}
}

type purchasesResponse struct {
	Purchases []string `json:"purchases"`
}

type verifyRequest struct {
	ProductID string `json:"productId"`
	UserID    string `json:"userId"`
}

type verifyResponse struct {
	URL       string `json:"url"`
	Object    string `json:"object"`
	ExpiresAt string `json:"expiresAt"`
}

// Purchases fetches GET /purchases?userId=. A missing or null list is an empty set.
func (c *Client) Purchases(ctx context.Context, userID string) (entity.EntitlementSet, error) {
	q := url.Values{}
	q.Set("userId", userID)

	resp, err := c.do(ctx, http.MethodGet, "/purchases?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	var body purchasesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode purchases: %v", repository.ErrUnavailable, err)
	}
	return entity.NewEntitlementSet(body.Purchases...), nil
}

// VerifyDownload calls POST /downloads/verify. 403 and 404 mean the user does
// not own the product; anything else that is not 2xx is treated as transient.
func (c *Client) VerifyDownload(ctx context.Context, productID, userID string) (*repository.DownloadGrant, error) {
	resp, err := c.do(ctx, http.MethodPost, "/downloads/verify", verifyRequest{ProductID: productID, UserID: userID})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: product %s for user %s", repository.ErrDenied, productID, userID)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, statusError(resp)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode verify: %v", repository.ErrUnavailable, err)
	}
	return &repository.DownloadGrant{URL: body.URL, Object: body.Object, ExpiresAt: body.ExpiresAt}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", repository.ErrUnavailable, method, path, err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%w: status %d: %s", repository.ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(b)))
}

var (
	_ repository.PurchaseSource   = (*Client)(nil)
	_ repository.DownloadVerifier = (*Client)(nil)
)
