// Package supabase implements the store provider against the Supabase
// PostgREST API.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/salambumi/property-edge/internal/listing"
	"github.com/salambumi/property-edge/internal/store"
)

const defaultTimeout = 10 * time.Second

// Config holds the connection parameters for the PostgREST endpoint.
type Config struct {
	// BaseURL is the project URL, e.g. https://xyz.supabase.co.
	BaseURL string
	// APIKey is the anon key, sent both as bearer token and apikey header.
	APIKey string
	// PropertiesTable and LeadsTable default to "properties" and
	// "lead_captures".
	PropertiesTable string
	LeadsTable      string
	// Timeout bounds each outbound call. Zero means 10s.
	Timeout time.Duration
}

// Client talks to Supabase over its REST contract: query-by-exact-match
// returning a JSON array, empty array meaning not-found.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New creates a Client. The http.Client is shared across requests; per-call
// deadlines come from the configured timeout.
func New(cfg Config) *Client {
	if cfg.PropertiesTable == "" {
		cfg.PropertiesTable = "properties"
	}
	if cfg.LeadsTable == "" {
		cfg.LeadsTable = "lead_captures"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// FetchByCode implements store.Provider.
func (c *Client) FetchByCode(ctx context.Context, code string) (listing.Listing, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?kode_listing=eq.%s&select=*",
		c.cfg.BaseURL, c.cfg.PropertiesTable, url.QueryEscape(code))

	var records []listing.Listing
	if err := c.getJSON(ctx, endpoint, &records); err != nil {
		return listing.Listing{}, err
	}
	if len(records) == 0 {
		return listing.Listing{}, store.ErrNotFound
	}
	return records[0], nil
}

// CreateLead implements store.Provider.
func (c *Client) CreateLead(ctx context.Context, lead Lead) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.cfg.BaseURL, c.cfg.LeadsTable)

	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("marshal lead: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build lead request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: insert status %d", store.ErrLookupFailed, resp.StatusCode)
	}
	return nil
}

// ListLeads implements store.Provider.
func (c *Client) ListLeads(ctx context.Context, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 100
	}
	endpoint := fmt.Sprintf("%s/rest/v1/%s?select=*&order=created_at.desc&limit=%d",
		c.cfg.BaseURL, c.cfg.LeadsTable, limit)

	var leads []Lead
	if err := c.getJSON(ctx, endpoint, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

// Lead aliases the store type so call sites read naturally.
type Lead = store.Lead

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Includes context deadline: the caller treats cancellation as a
		// retryable lookup failure.
		return fmt.Errorf("%w: %v", store.ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", store.ErrLookupFailed, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", store.ErrLookupFailed, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
}
