package ipapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
)

// Client implements ports.LocationProvider using the ip-api geolocation
// service. IP geolocation is coarse but requires no consent flow, which makes
// it the right default for a server-side deployment.
type Client struct {
	url        string
	httpClient *http.Client
}

// New creates a Client. An empty apiURL disables the provider entirely:
// Supported reports false and callers fall back to the default map view.
func New(apiURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		url:        apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Supported reports whether a geolocation endpoint is configured.
func (c *Client) Supported() bool {
	return c.url != ""
}

type apiResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// CurrentLocation resolves the caller's position. Failures are folded into
// the domain location errors so callers need not know the provider.
func (c *Client) CurrentLocation(ctx context.Context) (domain.GeoPoint, error) {
	if !c.Supported() {
		return domain.GeoPoint{}, domain.ErrLocationUnsupported
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%w: %v", domain.ErrLocationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return domain.GeoPoint{}, fmt.Errorf("%w: geolocation status %d", domain.ErrLocationDenied, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.GeoPoint{}, fmt.Errorf("%w: geolocation status %d", domain.ErrLocationUnavailable, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%w: decode answer: %v", domain.ErrLocationUnavailable, err)
	}
	if body.Status != "success" {
		return domain.GeoPoint{}, fmt.Errorf("%w: %s", domain.ErrLocationUnavailable, body.Message)
	}

	loc := domain.GeoPoint{Lat: body.Lat, Lon: body.Lon}
	if !loc.Valid() {
		return domain.GeoPoint{}, fmt.Errorf("%w: out-of-range coordinates", domain.ErrLocationUnavailable)
	}
	return loc, nil
}
