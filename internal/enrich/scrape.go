package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Scraping public listing pages is unreliable and of questionable legality;
// it exists only as a last-chance fallback and must be enabled explicitly.
type Scraper struct {
	client  *http.Client
	limiter *rate.Limiter
	enabled bool
}

func NewScraper(enabled bool) *Scraper {
	return &Scraper{
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(0.5), 2), // ~1 request per 2s
		enabled: enabled,
	}
}

var (
	sqftPattern  = regexp.MustCompile(`([\d,]+)\s*(?:sq\.?\s?ft|square feet)`)
	yearPattern  = regexp.MustCompile(`[Bb]uilt(?:\s+in)?[:\s]+(\d{4})`)
	jsonLDScript = regexp.MustCompile(`(?s)<script[^>]+application/ld\+json[^>]*>(.*?)</script>`)
)

type listingJSONLD struct {
	FloorSize struct {
		Value json.Number `json:"value"`
	} `json:"floorSize"`
	NumberOfRooms json.Number `json:"numberOfRooms"`
	YearBuilt     json.Number `json:"yearBuilt"`
}

// Fetch pulls a listing page and extracts what it can from JSON-LD, falling
// back to regex over the raw HTML. Any failure returns (nil, error); callers
// treat that as a miss.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (*PropertyData, error) {
	if !s.enabled {
		return nil, fmt.Errorf("scraping disabled")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; homekeep/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("read listing: %w", err)
	}

	data := extractListing(string(body))
	if data == nil {
		return nil, fmt.Errorf("no property details found")
	}
	return data, nil
}

func extractListing(html string) *PropertyData {
	// Structured data first.
	for _, m := range jsonLDScript.FindAllStringSubmatch(html, -1) {
		var ld listingJSONLD
		if err := json.Unmarshal([]byte(m[1]), &ld); err != nil {
			continue
		}
		data := &PropertyData{Source: "scrape:jsonld"}
		if v, err := ld.FloorSize.Value.Int64(); err == nil && v > 0 {
			data.SquareFeet = int(v)
		}
		if v, err := ld.YearBuilt.Int64(); err == nil && v > 0 {
			data.YearBuilt = int(v)
		}
		if data.SquareFeet > 0 || data.YearBuilt > 0 {
			data.Found = true
			return data
		}
	}

	// Regex over raw markup as the cruder second pass.
	data := &PropertyData{Source: "scrape:regex"}
	if m := sqftPattern.FindStringSubmatch(html); m != nil {
		if v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			data.SquareFeet = v
		}
	}
	if m := yearPattern.FindStringSubmatch(html); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			data.YearBuilt = v
		}
	}
	if data.SquareFeet > 0 || data.YearBuilt > 0 {
		data.Found = true
		return data
	}
	return nil
}
