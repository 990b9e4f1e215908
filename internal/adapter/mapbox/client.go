// Package mapbox locates counties through the Mapbox Geocoding API. The
// preprocess command uses it for SDOH counties that have no PLACES row to
// borrow coordinates from.
package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/paulmach/orb"
)

// DefaultMinRelevance is the lowest Mapbox relevance score accepted as a match.
const DefaultMinRelevance = 0.5

// Client implements ingest.Geocoder using the Mapbox Geocoding API.
type Client struct {
	token        string
	httpClient   *http.Client
	baseURL      string
	minRelevance float64
	logger       *slog.Logger
}

// NewClient creates a Mapbox geocoding client.
func NewClient(token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:      "https://api.mapbox.com/geocoding/v5/mapbox.places",
		minRelevance: DefaultMinRelevance,
		logger:       logger,
	}
}

// LocateCounty returns the center of "<county> County, <state>". ok is false
// when Mapbox has no sufficiently relevant US district for the query.
func (c *Client) LocateCounty(ctx context.Context, county, state string) (orb.Point, bool, error) {
	query := county + " County"
	if state != "" {
		query = fmt.Sprintf("%s, %s", query, state)
	}

	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(query))
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"country":      {"us"},
		"types":        {"district"},
	}

	f, found, err := c.doRequest(ctx, u+"?"+params.Encode())
	if err != nil || !found {
		return orb.Point{}, false, err
	}
	if f.Relevance < c.minRelevance || len(f.Center) != 2 {
		c.logger.Debug("mapbox match rejected", "query", query, "place", f.PlaceName, "relevance", f.Relevance)
		return orb.Point{}, false, nil
	}
	return orb.Point{f.Center[0], f.Center[1]}, true, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (feature, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return feature{}, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return feature{}, false, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return feature{}, false, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return feature{}, false, fmt.Errorf("decode response: %w", err)
	}
	if len(mapboxResp.Features) == 0 {
		return feature{}, false, nil
	}
	return mapboxResp.Features[0], true, nil
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // [lon, lat]
	PlaceName string    `json:"place_name"`
	Relevance float64   `json:"relevance"`
}
