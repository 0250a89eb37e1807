package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
	"github.com/Sjnjen/safety-for-her/internal/core/ports"
	"github.com/Sjnjen/safety-for-her/internal/pkg/metrics"
)

// MapView is what a map client needs to draw itself.
type MapView struct {
	Center  domain.GeoPoint `json:"center"`
	Zoom    int             `json:"zoom"`
	Located bool            `json:"located"`
}

// MapService orchestrates the incident map: it seeds incidents on load,
// resolves the user position on demand, and pulls nearby service places into
// the marker set. Provider and lookup failures degrade to the default view or
// fallback data; they never propagate past this service.
type MapService struct {
	markers   *MarkerService
	provider  ports.LocationProvider
	places    ports.PlaceLookup
	incidents ports.IncidentSource
	cache     ports.CacheService

	defaultCenter domain.GeoPoint
	zoom          int
	serviceRadius float64

	mu      sync.Mutex
	center  domain.GeoPoint
	located bool
}

// NewMapService creates a MapService centered on defaultCenter. cache may be
// nil to disable place-lookup caching.
func NewMapService(
	markers *MarkerService,
	provider ports.LocationProvider,
	places ports.PlaceLookup,
	incidents ports.IncidentSource,
	cache ports.CacheService,
	defaultCenter domain.GeoPoint,
	zoom int,
	serviceRadiusMeters float64,
) *MapService {
	return &MapService{
		markers:       markers,
		provider:      provider,
		places:        places,
		incidents:     incidents,
		cache:         cache,
		defaultCenter: defaultCenter,
		zoom:          zoom,
		serviceRadius: serviceRadiusMeters,
		center:        defaultCenter,
	}
}

// Initialize loads the incident set and attempts one best-effort position
// fix. A failed fix keeps the default view, exactly like the map falling
// back when the device denies geolocation.
func (s *MapService) Initialize(ctx context.Context) error {
	if err := s.ReloadIncidents(ctx); err != nil {
		return err
	}
	if _, err := s.RefreshUserPosition(ctx); err != nil {
		slog.Info("using default map view", "reason", err)
	}
	return nil
}

// ReloadIncidents replaces the incident overlay batch from the source.
func (s *MapService) ReloadIncidents(ctx context.Context) error {
	incidents, err := s.incidents.Incidents(ctx)
	if err != nil {
		return fmt.Errorf("load incidents: %w", err)
	}
	s.markers.ReplaceIncidents(ctx, incidents)
	return nil
}

// RefreshUserPosition issues one single-shot location query. On success the
// view recenters on the fix and the user overlay is created or moved.
func (s *MapService) RefreshUserPosition(ctx context.Context) (domain.GeoPoint, error) {
	if s.provider == nil || !s.provider.Supported() {
		return domain.GeoPoint{}, domain.ErrLocationUnsupported
	}

	metrics.LocationQueries.Inc()
	loc, err := s.provider.CurrentLocation(ctx)
	if err != nil {
		metrics.LocationFailures.WithLabelValues(locationFailureReason(err)).Inc()
		return domain.GeoPoint{}, err
	}

	s.markers.SetUserPosition(ctx, loc)

	s.mu.Lock()
	s.center = loc
	s.located = true
	s.mu.Unlock()

	return loc, nil
}

// LoadNearbyServices queries service places of the given kind around the
// current view center and swaps them into the marker set. Results are cached
// per kind, center and radius for 5 minutes. The lookup itself never fails;
// an unknown kind is the only error.
func (s *MapService) LoadNearbyServices(ctx context.Context, kind domain.PlaceKind) ([]domain.ServicePlace, error) {
	if !domain.KnownPlaceKind(kind) {
		return nil, fmt.Errorf("%q: %w", kind, domain.ErrUnknownServiceKind)
	}

	center := s.Center()
	places := s.loadPlaces(ctx, kind, center)
	s.markers.ReplaceServicePlaces(ctx, kind, places)
	return places, nil
}

func (s *MapService) loadPlaces(ctx context.Context, kind domain.PlaceKind, center domain.GeoPoint) []domain.ServicePlace {
	key := fmt.Sprintf("places:%s:%.4f:%.4f:%.0f", kind, center.Lat, center.Lon, s.serviceRadius)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var places []domain.ServicePlace
			if err := json.Unmarshal(data, &places); err == nil {
				metrics.CacheHits.WithLabelValues("places").Inc()
				return places
			}
		}
		metrics.CacheMisses.WithLabelValues("places").Inc()
	}

	places := s.places.FindNearby(ctx, kind, center, s.serviceRadius)
	if s.cache != nil {
		if data, err := json.Marshal(places); err == nil {
			_ = s.cache.Set(ctx, key, data, 300)
		}
	}
	return places
}

// Center returns the current view center.
func (s *MapService) Center() domain.GeoPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center
}

// View returns the current map view.
func (s *MapService) View() MapView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return MapView{Center: s.center, Zoom: s.zoom, Located: s.located}
}
