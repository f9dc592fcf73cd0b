package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// PropertyData is what enrichment could learn about an address. Found=false
// with ManualEntry=true is the terminal "enter it yourself" response; the
// chain never surfaces provider failures to the caller.
type PropertyData struct {
	Address     string  `json:"address,omitempty"`
	YearBuilt   int     `json:"year_built,omitempty"`
	SquareFeet  int     `json:"square_feet,omitempty"`
	Bedrooms    int     `json:"bedrooms,omitempty"`
	Bathrooms   float64 `json:"bathrooms,omitempty"`
	LotSizeAcre float64 `json:"lot_size_acres,omitempty"`
	Source      string  `json:"source,omitempty"`
	Found       bool    `json:"found"`
	ManualEntry bool    `json:"manual_entry"`
}

// PropertyQuery identifies the home being enriched.
type PropertyQuery struct {
	Address string
	City    string
	State   string
	ZIP     string
	PageURL string
}

// PropertyProvider is one strategy in the ordered enrichment chain.
type PropertyProvider interface {
	Name() string
	Lookup(ctx context.Context, q PropertyQuery) (*PropertyData, error)
}

// PropertyService walks providers in order and returns the first hit. When
// every provider misses or fails, the caller gets a manual-entry response.
type PropertyService struct {
	providers []PropertyProvider
	logger    *slog.Logger
}

func NewPropertyService(logger *slog.Logger, providers ...PropertyProvider) *PropertyService {
	return &PropertyService{providers: providers, logger: logger}
}

func (s *PropertyService) Lookup(ctx context.Context, q PropertyQuery) PropertyData {
	for _, p := range s.providers {
		data, err := p.Lookup(ctx, q)
		if err != nil {
			s.logger.Warn("property provider failed", "provider", p.Name(), "error", err)
			continue
		}
		if data != nil && data.Found {
			return *data
		}
	}
	return PropertyData{Address: q.Address, ManualEntry: true}
}

// RapidAPIProvider queries a RapidAPI-hosted property records service.
type RapidAPIProvider struct {
	client *http.Client
	apiKey string
	host   string
}

func NewRapidAPIProvider(apiKey string) *RapidAPIProvider {
	if apiKey == "" {
		return nil
	}
	return &RapidAPIProvider{
		client: &http.Client{Timeout: 10 * time.Second},
		apiKey: apiKey,
		host:   "realty-mole-property-api.p.rapidapi.com",
	}
}

func (p *RapidAPIProvider) Name() string { return "rapidapi" }

type rapidAPIRecord struct {
	YearBuilt     int     `json:"yearBuilt"`
	SquareFootage int     `json:"squareFootage"`
	Bedrooms      int     `json:"bedrooms"`
	Bathrooms     float64 `json:"bathrooms"`
	LotSize       float64 `json:"lotSize"`
}

func (p *RapidAPIProvider) Lookup(ctx context.Context, q PropertyQuery) (*PropertyData, error) {
	addr := fmt.Sprintf("%s, %s, %s %s", q.Address, q.City, q.State, q.ZIP)
	reqURL := fmt.Sprintf("https://%s/properties?address=%s", p.host, url.QueryEscape(addr))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", p.apiKey)
	req.Header.Set("X-RapidAPI-Host", p.host)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("property request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("property API returned status %d", resp.StatusCode)
	}

	var records []rapidAPIRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode property response: %w", err)
	}
	if len(records) == 0 {
		return &PropertyData{ManualEntry: true}, nil
	}

	r := records[0]
	return &PropertyData{
		Address:     addr,
		YearBuilt:   r.YearBuilt,
		SquareFeet:  r.SquareFootage,
		Bedrooms:    r.Bedrooms,
		Bathrooms:   r.Bathrooms,
		LotSizeAcre: r.LotSize,
		Source:      "rapidapi",
		Found:       r.YearBuilt > 0 || r.SquareFootage > 0,
	}, nil
}

// ScrapeProvider adapts the Scraper to the provider chain. It only fires
// when the caller supplied a listing URL.
type ScrapeProvider struct {
	scraper *Scraper
}

func NewScrapeProvider(scraper *Scraper) *ScrapeProvider {
	return &ScrapeProvider{scraper: scraper}
}

func (p *ScrapeProvider) Name() string { return "scrape" }

func (p *ScrapeProvider) Lookup(ctx context.Context, q PropertyQuery) (*PropertyData, error) {
	if q.PageURL == "" {
		return nil, fmt.Errorf("no listing URL provided")
	}
	return p.scraper.Fetch(ctx, q.PageURL)
}
