// Package fetch holds the thin data-provider clients. These are I/O
// wrappers around REST endpoints; the scoring core never talks to them
// directly, it only sees the readings they return.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultFREDURL is the St. Louis Fed API root.
const DefaultFREDURL = "https://api.stlouisfed.org/fred"

// FRED series IDs for the tracked indicators.
const (
	SeriesFedFunds = "DFF"
	SeriesTreasury = "GS10"
	SeriesCPI      = "CPIAUCSL"
)

// FRED is a client for the FRED observations API.
type FRED struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewFRED(baseURL, apiKey string, timeout time.Duration) *FRED {
	if baseURL == "" {
		baseURL = DefaultFREDURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FRED{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type observationsResponse struct {
	Observations []observation `json:"observations"`
}

// observations fetches the n most recent observations for a series, newest
// first.
func (f *FRED) observations(ctx context.Context, seriesID string, n int) ([]observation, error) {
	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", f.apiKey)
	q.Set("file_type", "json")
	q.Set("limit", strconv.Itoa(n))
	q.Set("sort_order", "desc")

	u := fmt.Sprintf("%s/series/observations?%s", f.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fred %s: %w", seriesID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fred %s: status %d", seriesID, resp.StatusCode)
	}

	var parsed observationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("fred %s: decode: %w", seriesID, err)
	}
	if len(parsed.Observations) == 0 {
		return nil, fmt.Errorf("fred %s: no observations", seriesID)
	}
	return parsed.Observations, nil
}

// Latest returns the most recent value and its observation date.
func (f *FRED) Latest(ctx context.Context, seriesID string) (float64, time.Time, error) {
	obs, err := f.observations(ctx, seriesID, 1)
	if err != nil {
		return 0, time.Time{}, err
	}
	return parseObservation(obs[0])
}

// CPIYoY computes year-over-year CPI inflation in percent from the index
// series: thirteen monthly observations give latest vs. a year ago.
func (f *FRED) CPIYoY(ctx context.Context) (float64, time.Time, error) {
	obs, err := f.observations(ctx, SeriesCPI, 13)
	if err != nil {
		return 0, time.Time{}, err
	}
	if len(obs) < 13 {
		return 0, time.Time{}, fmt.Errorf("fred %s: need 13 observations for YoY, got %d", SeriesCPI, len(obs))
	}
	latest, when, err := parseObservation(obs[0])
	if err != nil {
		return 0, time.Time{}, err
	}
	yearAgo, _, err := parseObservation(obs[12])
	if err != nil {
		return 0, time.Time{}, err
	}
	if yearAgo == 0 {
		return 0, time.Time{}, fmt.Errorf("fred %s: zero base value", SeriesCPI)
	}
	return (latest/yearAgo - 1) * 100, when, nil
}

func parseObservation(o observation) (float64, time.Time, error) {
	v, err := strconv.ParseFloat(o.Value, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("parse observation %q: %w", o.Value, err)
	}
	when, err := time.Parse("2006-01-02", o.Date)
	if err != nil {
		return v, time.Time{}, nil
	}
	return v, when, nil
}
