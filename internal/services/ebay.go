package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/collectique/backend/internal/metrics"
	"github.com/collectique/backend/internal/models"
)

const (
	ebayBaseURL        = "https://api.ebay.com/buy/browse/v1/item_summary/search"
	ebayDefaultTimeout = 10 * time.Second

	// maxSampleListings bounds how many raw listings are kept on a quote.
	maxSampleListings = 5
	// searchResultLimit is how many listings we ask the marketplace for.
	searchResultLimit = 25

	defaultMaxRetries = 3
	defaultRetryBase  = time.Second
)

// EbayClient fetches market-price quotes from the eBay Browse API. It is
// pure transport plus normalization: the cache and rate limiter are the
// caller's responsibility.
type EbayClient struct {
	client  *http.Client
	apiKey  string
	baseURL string

	maxRetries int
	retryBase  time.Duration
}

// browseSearchResponse is the Browse API search envelope. Fields are
// parsed defensively; absent arrays and alternate error envelopes are
// all possible.
type browseSearchResponse struct {
	Total         int                 `json:"total"`
	ItemSummaries []browseItemSummary `json:"itemSummaries"`
	Errors        []browseError       `json:"errors"`
}

type browseItemSummary struct {
	Title      string       `json:"title"`
	Price      *browsePrice `json:"price"`
	Condition  string       `json:"condition"`
	ItemWebURL string       `json:"itemWebUrl"`
	Image      *browseImage `json:"image"`
}

type browsePrice struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type browseImage struct {
	ImageURL string `json:"imageUrl"`
}

type browseError struct {
	ErrorID     int    `json:"errorId"`
	Category    string `json:"category"`
	Message     string `json:"message"`
	LongMessage string `json:"longMessage"`
}

// NewEbayClient creates a Browse API client. maxRetries is the total
// number of attempts for throttled/5xx faults (3 when zero).
func NewEbayClient(apiKey, baseURL string, maxRetries int) *EbayClient {
	if baseURL == "" {
		baseURL = ebayBaseURL
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &EbayClient{
		client: &http.Client{
			Timeout: ebayDefaultTimeout,
		},
		apiKey:     apiKey,
		baseURL:    baseURL,
		maxRetries: maxRetries,
		retryBase:  defaultRetryBase,
	}
}

// Fetch searches the marketplace and returns a normalized quote. Throttled
// and 5xx responses are retried with exponential backoff (1s, 2s, 4s);
// every other failure aborts immediately with a typed error.
func (c *EbayClient) Fetch(ctx context.Context, searchTerms, currency string) (models.Quote, error) {
	var quote models.Quote
	err := withRetry(ctx, c.maxRetries, c.retryBase, func() error {
		q, err := c.fetchOnce(ctx, searchTerms, currency)
		if err != nil {
			return err
		}
		quote = q
		return nil
	})
	if err != nil {
		metrics.QuoteFetchesTotal.WithLabelValues("error").Inc()
		return models.Quote{}, err
	}

	metrics.QuoteFetchesTotal.WithLabelValues("success").Inc()
	return quote, nil
}

func (c *EbayClient) fetchOnce(ctx context.Context, searchTerms, currency string) (models.Quote, error) {
	params := url.Values{}
	params.Set("q", searchTerms)
	params.Set("limit", strconv.Itoa(searchResultLimit))
	params.Set("offset", "0")
	params.Set("sort", "price")
	params.Set("filter", "buyingOptions:{FIXED_PRICE}")

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return models.Quote{}, fmt.Errorf("failed to create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", marketplaceForCurrency(currency))

	resp, err := c.client.Do(req)
	if err != nil {
		// A cancelled or expired context is the caller's doing, not a
		// marketplace fault, and must not be retried.
		if ctx.Err() != nil {
			return models.Quote{}, ctx.Err()
		}
		return models.Quote{}, &TransientServerError{StatusCode: 0}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return models.Quote{}, &AuthenticationError{StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return models.Quote{}, &ThrottledError{StatusCode: resp.StatusCode}
	case resp.StatusCode >= 500:
		return models.Quote{}, &TransientServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return models.Quote{}, &MalformedResponseError{
			Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	var searchResp browseSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return models.Quote{}, &MalformedResponseError{Detail: "failed to decode search response", Err: err}
	}

	// Some faults arrive as an error envelope on a 200.
	if len(searchResp.Errors) > 0 {
		apiErr := searchResp.Errors[0]
		if apiErr.Category == "REQUEST" && (apiErr.ErrorID >= 1001 && apiErr.ErrorID <= 1100) {
			return models.Quote{}, &AuthenticationError{StatusCode: resp.StatusCode}
		}
		return models.Quote{}, &MalformedResponseError{
			Detail: fmt.Sprintf("marketplace error %d: %s", apiErr.ErrorID, apiErr.Message),
		}
	}

	return normalizeQuote(searchTerms, currency, searchResp.ItemSummaries)
}

// normalizeQuote aggregates raw listings into a quote. Listings with a
// missing or non-positive price are dropped before aggregation; an empty
// survivor set is ErrNoResults rather than a degenerate quote.
func normalizeQuote(searchTerms, currency string, summaries []browseItemSummary) (models.Quote, error) {
	var listings []models.Listing
	var sum, min, max float64

	for _, s := range summaries {
		if s.Price == nil {
			continue
		}
		price, err := strconv.ParseFloat(s.Price.Value, 64)
		if err != nil || price <= 0 {
			continue
		}

		if len(listings) == 0 || price < min {
			min = price
		}
		if price > max {
			max = price
		}
		sum += price

		listingCurrency := s.Price.Currency
		if listingCurrency == "" {
			listingCurrency = currency
		}
		imageURL := ""
		if s.Image != nil {
			imageURL = s.Image.ImageURL
		}
		listings = append(listings, models.Listing{
			Title:     s.Title,
			Price:     price,
			Currency:  listingCurrency,
			Condition: s.Condition,
			URL:       s.ItemWebURL,
			ImageURL:  imageURL,
		})
	}

	if len(listings) == 0 {
		return models.Quote{}, ErrNoResults
	}

	count := len(listings)
	samples := listings
	if len(samples) > maxSampleListings {
		samples = samples[:maxSampleListings]
	}

	return models.Quote{
		SearchTerms:  searchTerms,
		Currency:     currency,
		AveragePrice: sum / float64(count),
		PriceRange: models.PriceRange{
			Min: min,
			Max: max,
		},
		ItemCount:      count,
		SampleListings: samples,
		Timestamp:      time.Now().UTC(),
		Source:         models.QuoteSourceRemote,
	}, nil
}

// marketplaceForCurrency maps a currency code to a Browse API marketplace.
func marketplaceForCurrency(currency string) string {
	switch currency {
	case "EUR":
		return "EBAY_DE"
	case "GBP":
		return "EBAY_GB"
	case "CAD":
		return "EBAY_CA"
	case "AUD":
		return "EBAY_AU"
	default:
		return "EBAY_US"
	}
}
