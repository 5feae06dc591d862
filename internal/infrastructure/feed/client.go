package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/partsmarket/backend/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	maxAttempts        = 3
	defaultPageSize    = 100
	defaultPerMinute   = 60
	defaultBackoffBase = 500 * time.Millisecond
	maxPages           = 1000
)

// Config holds vendor feed client settings
type Config struct {
	BaseURL           string
	APIKey            string
	PageSize          int
	RequestsPerMinute int
	Timeout           time.Duration
}

// Client pulls the vendor's product catalog page by page
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	pageSize    int
	rateLimiter *rate.Limiter
	backoffBase time.Duration
	debug       bool
}

// NewClient creates a new vendor feed client
func NewClient(cfg Config) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = defaultPerMinute
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		pageSize:    pageSize,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 10),
		backoffBase: defaultBackoffBase,
	}
}

// SetDebug enables logging of raw feed pages
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns the wait before retrying after attempt n (1-based)
func (c *Client) exponentialBackoff(attempt int) time.Duration {
	return c.backoffBase * time.Duration(1<<(attempt-1))
}

// FetchProducts downloads every feed page and maps the items to products
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	var items []Item

	for page := 1; page <= maxPages; page++ {
		resp, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}

		items = append(items, resp.Items...)

		if page >= resp.TotalPages || len(resp.Items) == 0 {
			break
		}
	}

	log.Info().Str("component", "feed").Int("items", len(items)).Msg("vendor feed downloaded")

	return MapToProducts(items), nil
}

// fetchPage requests one page, retrying transport errors, 429 and 5xx
func (c *Client) fetchPage(ctx context.Context, page int) (*PageResponse, error) {
	params := url.Values{}
	params.Add("page", strconv.Itoa(page))
	params.Add("page_size", strconv.Itoa(c.pageSize))
	reqURL := fmt.Sprintf("%s/products?%s", c.baseURL, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, c.exponentialBackoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			log.Warn().Err(err).Str("component", "feed").Int("page", page).Int("attempt", attempt).Msg("feed request failed")
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: reading body: %v", domain.ErrFeedFailure, err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if c.debug {
				log.Debug().Str("component", "feed").Int("page", page).RawJSON("body", body).Msg("feed page")
			}
			var pageResp PageResponse
			if err := json.Unmarshal(body, &pageResp); err != nil {
				return nil, fmt.Errorf("%w: failed to decode page %d: %v", domain.ErrFeedFailure, page, err)
			}
			return &pageResp, nil

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			log.Warn().Str("component", "feed").Int("page", page).Int("attempt", attempt).Int("status", resp.StatusCode).Msg("feed returned retryable status")
			lastErr = fmt.Errorf("%w: status %d", domain.ErrFeedFailure, resp.StatusCode)

		default:
			return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrFeedFailure, resp.StatusCode, string(body))
		}
	}

	return nil, lastErr
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "PartsMarket/1.0")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFeedFailure, err)
	}

	return resp, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
