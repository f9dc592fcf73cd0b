package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const climateCacheTTL = 24 * time.Hour

// ClimateData summarizes local climate for maintenance scheduling hints.
type ClimateData struct {
	ZIP         string  `json:"zip"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Place       string  `json:"place,omitempty"`
	SummerHighF float64 `json:"summer_high_f"`
	WinterLowF  float64 `json:"winter_low_f"`
	FreezeRisk  bool    `json:"freeze_risk"`
	Found       bool    `json:"found"`
	ManualEntry bool    `json:"manual_entry"`
}

type cachedClimate struct {
	data    ClimateData
	fetched time.Time
}

// ClimateService geocodes a ZIP and fetches a temperature summary, caching
// results per ZIP. On fetch errors it serves stale data when present.
type ClimateService struct {
	client     *http.Client
	geocodeURL string
	climateURL string

	mu    sync.Mutex
	cache map[string]cachedClimate
}

func NewClimateService() *ClimateService {
	return &ClimateService{
		client:     &http.Client{Timeout: 10 * time.Second},
		geocodeURL: "https://geocoding-api.open-meteo.com/v1/search",
		climateURL: "https://api.open-meteo.com/v1/forecast",
		cache:      make(map[string]cachedClimate),
	}
}

// Lookup returns climate data for a normalized ZIP. A lookup miss is a valid
// manual-entry response, not an error; errors are reserved for caller misuse.
func (s *ClimateService) Lookup(ctx context.Context, zip string) ClimateData {
	s.mu.Lock()
	entry, ok := s.cache[zip]
	s.mu.Unlock()

	if ok && time.Since(entry.fetched) < climateCacheTTL {
		return entry.data
	}

	data, err := s.fetch(ctx, zip)
	if err != nil {
		if ok {
			// Stale beats nothing.
			return entry.data
		}
		return ClimateData{ZIP: zip, ManualEntry: true}
	}

	s.mu.Lock()
	s.cache[zip] = cachedClimate{data: data, fetched: time.Now()}
	s.mu.Unlock()
	return data
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Daily struct {
		TempMax []float64 `json:"temperature_2m_max"`
		TempMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func (s *ClimateService) fetch(ctx context.Context, zip string) (ClimateData, error) {
	var geo geocodeResponse
	geoURL := fmt.Sprintf("%s?name=%s&count=1&country_code=US", s.geocodeURL, url.QueryEscape(zip))
	if err := s.getJSON(ctx, geoURL, &geo); err != nil {
		return ClimateData{}, err
	}
	if len(geo.Results) == 0 {
		return ClimateData{ZIP: zip, ManualEntry: true}, nil
	}

	loc := geo.Results[0]
	var fc forecastResponse
	fcURL := fmt.Sprintf(
		"%s?latitude=%f&longitude=%f&daily=temperature_2m_max,temperature_2m_min&temperature_unit=fahrenheit&past_days=92&forecast_days=1",
		s.climateURL, loc.Latitude, loc.Longitude,
	)
	if err := s.getJSON(ctx, fcURL, &fc); err != nil {
		return ClimateData{}, err
	}

	data := ClimateData{
		ZIP:       zip,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Place:     loc.Name,
		Found:     true,
	}
	for _, v := range fc.Daily.TempMax {
		if v > data.SummerHighF {
			data.SummerHighF = v
		}
	}
	if len(fc.Daily.TempMin) > 0 {
		data.WinterLowF = fc.Daily.TempMin[0]
		for _, v := range fc.Daily.TempMin {
			if v < data.WinterLowF {
				data.WinterLowF = v
			}
		}
	}
	data.FreezeRisk = data.WinterLowF <= 32

	return data, nil
}

func (s *ClimateService) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("climate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("climate API returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode climate response: %w", err)
	}
	return nil
}
