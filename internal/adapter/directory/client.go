// internal/adapter/directory/client.go

package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/location"
)

// ClientConfig contains configuration for the directory client
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the upstream location directory API over HTTP. It
// implements location.Source.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a directory API client
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// locationPayload mirrors the directory's location object. The upstream API
// speaks snake_case; mapping to the domain model happens here and nowhere
// else.
type locationPayload struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Category      string   `json:"category"`
	CategoryLabel string   `json:"category_label"`
	Status        string   `json:"status"`
	Confidence    *float64 `json:"confidence_score"`
}

func (p locationPayload) toDomain() location.Record {
	return location.Record{
		ID:            p.ID,
		Name:          p.Name,
		Address:       p.Address,
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		CategoryKey:   p.Category,
		CategoryLabel: p.CategoryLabel,
		Status:        location.Status(strings.ToLower(p.Status)),
		Confidence:    p.Confidence,
	}
}

// categoryPayload mirrors the directory's category object.
type categoryPayload struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// FetchLocationCount returns the number of records inside the viewport, or
// the size of the whole directory when vp is nil.
func (c *Client) FetchLocationCount(ctx context.Context, vp *location.Viewport) (int, error) {
	query := url.Values{}
	if vp != nil {
		query.Set("bbox", vp.String())
	}

	var payload struct {
		Count int `json:"count"`
	}
	if err := c.getJSON(ctx, "/locations/count", query, &payload); err != nil {
		return 0, err
	}

	if payload.Count < 0 {
		return 0, fmt.Errorf("directory: negative count %d", payload.Count)
	}
	return payload.Count, nil
}

// FetchLocations returns one page of records inside the viewport. A nil
// viewport means no spatial filter.
func (c *Client) FetchLocations(ctx context.Context, vp *location.Viewport, limit, offset int) ([]location.Record, error) {
	query := url.Values{}
	if vp != nil {
		query.Set("bbox", vp.String())
	}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var payload []locationPayload
	if err := c.getJSON(ctx, "/locations", query, &payload); err != nil {
		return nil, err
	}

	records := make([]location.Record, 0, len(payload))
	for _, item := range payload {
		records = append(records, item.toDomain())
	}
	return records, nil
}

// FetchCategories returns the directory's canonical category list.
func (c *Client) FetchCategories(ctx context.Context) ([]location.Category, error) {
	var payload []categoryPayload
	if err := c.getJSON(ctx, "/categories", nil, &payload); err != nil {
		return nil, err
	}

	categories := make([]location.Category, 0, len(payload))
	for _, item := range payload {
		categories = append(categories, location.Category{Key: item.Key, Label: item.Label})
	}
	return categories, nil
}

// getJSON performs a GET request and decodes the JSON response. Errors wrap
// the transport error so context cancellation stays visible to errors.Is.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("directory: build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("directory: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("directory: %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("directory: decode %s response: %w", path, err)
	}
	return nil
}
