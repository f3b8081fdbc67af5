// Package catalog translates plan criteria into WooCommerce product
// queries. Mirrors the store's REST v3 read contract: published items,
// relevance ordering, credential query parameters.
//
// Category, brand and attribute criteria need a taxonomy slug mapping on
// the store side before they can be forwarded; until that exists only the
// free-text term and price bounds reach the backend.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bazaarbot/bazaarbot/internal/models"
)

const (
	// maxPerPage is the hard ceiling the backend accepts per request.
	maxPerPage = 10

	// maxQueryRunes clips the free-text search term before it is sent.
	maxQueryRunes = 80

	defaultTimeout = 20 * time.Second
)

// searchTermCleaner keeps digits, latin letters, the Arabic/Persian script
// block, whitespace, hyphen and underscore.
var searchTermCleaner = regexp.MustCompile(`[^0-9A-Za-z\x{0600}-\x{06FF}\s\-_]`)

// Client queries a WooCommerce store. Safe for concurrent use: request
// state lives entirely in each call.
type Client struct {
	baseURL string
	key     string
	secret  string
	client  *http.Client
}

// NewClient creates a catalog client. A non-positive timeout falls back to
// the 20 second default.
func NewClient(baseURL, key, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		secret:  secret,
		client:  &http.Client{Timeout: timeout},
	}
}

// SearchProducts fetches published products matching the criteria, keeps
// in-stock items only and clips the result to limit. Backend failures are
// logged and collapse to an empty result; the caller never sees an error.
func (c *Client) SearchProducts(ctx context.Context, criteria *models.Criteria, limit int) []models.ProductRecord {
	if criteria == nil {
		criteria = &models.Criteria{}
	}

	perPage := limit
	if perPage < 1 {
		perPage = 1
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	params := url.Values{}
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("status", "publish")
	params.Set("orderby", "relevance")
	params.Set("order", "desc")
	if criteria.Query != "" {
		if term := CleanSearchTerm(criteria.Query); term != "" {
			params.Set("search", term)
		}
	}
	if criteria.MinPrice > 0 {
		params.Set("min_price", formatAmount(criteria.MinPrice))
	}
	if criteria.MaxPrice > 0 {
		params.Set("max_price", formatAmount(criteria.MaxPrice))
	}

	items, err := c.get(ctx, "products", params)
	if err != nil {
		log.Error().Err(err).Msg("woocommerce product fetch failed")
		return []models.ProductRecord{}
	}

	inStock := make([]models.ProductRecord, 0, len(items))
	for i := range items {
		if items[i].InStock() {
			inStock = append(inStock, items[i])
		}
	}
	if limit < 0 {
		limit = 0
	}
	if len(inStock) > limit {
		inStock = inStock[:limit]
	}
	return inStock
}

// CleanSearchTerm strips characters the store search endpoint should never
// see and clips the term to 80 runes.
func CleanSearchTerm(q string) string {
	cleaned := searchTermCleaner.ReplaceAllString(q, " ")
	runes := []rune(cleaned)
	if len(runes) > maxQueryRunes {
		runes = runes[:maxQueryRunes]
	}
	return strings.TrimSpace(string(runes))
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]models.ProductRecord, error) {
	params.Set("consumer_key", c.key)
	params.Set("consumer_secret", c.secret)

	endpoint := fmt.Sprintf("%s/wp-json/wc/v3/%s?%s", c.baseURL, strings.TrimLeft(path, "/"), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	// Decode records one by one so a single malformed item doesn't sink
	// the whole page.
	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	records := make([]models.ProductRecord, 0, len(raw))
	for _, item := range raw {
		var p models.ProductRecord
		if err := json.Unmarshal(item, &p); err != nil {
			log.Warn().Err(err).Msg("skipping malformed product record")
			continue
		}
		records = append(records, p)
	}
	return records, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
