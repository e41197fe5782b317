package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/localmart/shopdata/internal/models"
)

// Client fetches products from the remote catalog service (a fakestore-style
// JSON API). Catalog data is read-only here: the collections copy fields out
// of the returned products and never write back.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a catalog client for the given base URL with a bounded
// request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Products returns the full catalog.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.get(ctx, c.baseURL+"/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product returns one catalog product by id.
func (c *Client) Product(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := c.get(ctx, fmt.Sprintf("%s/products/%d", c.baseURL, id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("catalog returned status %d for %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding catalog response: %w", err)
	}
	return nil
}
