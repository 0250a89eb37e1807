package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
	"github.com/Sjnjen/safety-for-her/internal/pkg/geospatial"
	"github.com/Sjnjen/safety-for-her/internal/pkg/metrics"
)

const maxResults = 20

// Client implements ports.PlaceLookup against an Overpass API endpoint.
// It never surfaces transport errors: any failure yields the fixed fallback
// entries for the requested kind, so the map always has services to show.
type Client struct {
	url        string
	httpClient *http.Client
}

// New creates a Client with a bounded request timeout.
func New(apiURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:        apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FindNearby queries amenities of the given kind around center, sorted by
// distance. On any failure it returns FallbackPlaces(kind).
func (c *Client) FindNearby(ctx context.Context, kind domain.PlaceKind, center domain.GeoPoint, radiusMeters float64) []domain.ServicePlace {
	places, err := c.query(ctx, kind, center, radiusMeters)
	if err != nil || len(places) == 0 {
		metrics.PlaceLookupFallbacks.WithLabelValues(string(kind)).Inc()
		slog.Warn("place lookup degraded to fallback data", "kind", kind, "error", err)
		return FallbackPlaces(kind)
	}
	return places
}

// overpassResponse is the wire shape of an Overpass JSON answer.
type overpassResponse struct {
	Elements []struct {
		Lat  float64           `json:"lat"`
		Lon  float64           `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

func (c *Client) query(ctx context.Context, kind domain.PlaceKind, center domain.GeoPoint, radiusMeters float64) ([]domain.ServicePlace, error) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(center.Lat, center.Lon, radiusMeters)
	ql := fmt.Sprintf(
		`[out:json][timeout:10][bbox:%f,%f,%f,%f];node["amenity"=%q];out;`,
		minLat, minLon, maxLat, maxLon, string(kind),
	)

	q := url.Values{}
	q.Set("data", ql)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass status %d", resp.StatusCode)
	}

	var body overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}

	places := make([]domain.ServicePlace, 0, len(body.Elements))
	for _, el := range body.Elements {
		loc := domain.GeoPoint{Lat: el.Lat, Lon: el.Lon}
		if !loc.Valid() {
			continue
		}
		// The bbox corners reach past the radius
		if geospatial.Distance(center.Lat, center.Lon, loc.Lat, loc.Lon) > radiusMeters {
			continue
		}
		places = append(places, domain.ServicePlace{
			Location: loc,
			Name:     el.Tags["name"],
			Address:  el.Tags["addr:street"],
			Kind:     kind,
		})
	}

	sort.Slice(places, func(i, j int) bool {
		di := geospatial.Distance(center.Lat, center.Lon, places[i].Location.Lat, places[i].Location.Lon)
		dj := geospatial.Distance(center.Lat, center.Lon, places[j].Location.Lat, places[j].Location.Lon)
		return di < dj
	})
	if len(places) > maxResults {
		places = places[:maxResults]
	}
	return places, nil
}

// FallbackPlaces returns the fixed two entries served when the live lookup
// is unavailable.
func FallbackPlaces(kind domain.PlaceKind) []domain.ServicePlace {
	if kind == domain.PlacePolice {
		return []domain.ServicePlace{
			{
				Location: domain.GeoPoint{Lat: -26.2051, Lon: 28.0417},
				Name:     "Johannesburg Central Police Station",
				Address:  "1 Commissioner Street",
				Kind:     domain.PlacePolice,
			},
			{
				Location: domain.GeoPoint{Lat: -26.1893, Lon: 28.0497},
				Name:     "Hillbrow Police Station",
				Address:  "Esselen Street",
				Kind:     domain.PlacePolice,
			},
		}
	}
	return []domain.ServicePlace{
		{
			Location: domain.GeoPoint{Lat: -26.1875, Lon: 28.0460},
			Name:     "Charlotte Maxeke Johannesburg Academic Hospital",
			Address:  "17 Jubilee Road",
			Kind:     domain.PlaceHospital,
		},
		{
			Location: domain.GeoPoint{Lat: -26.1773, Lon: 28.0094},
			Name:     "Milpark Hospital",
			Address:  "9 Guild Road",
			Kind:     domain.PlaceHospital,
		},
	}
}
