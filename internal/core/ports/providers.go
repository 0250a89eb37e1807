package ports

import (
	"context"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
)

// LocationProvider answers single-shot position queries. It issues no retries;
// the caller decides whether to ask again.
type LocationProvider interface {
	// Supported reports whether the location capability exists at all.
	Supported() bool
	// CurrentLocation resolves one position fix or fails with one of
	// domain.ErrLocationUnsupported / ErrLocationDenied / ErrLocationUnavailable.
	CurrentLocation(ctx context.Context) (domain.GeoPoint, error)
}

// PlaceLookup finds emergency service places near a point. Implementations
// never surface transport errors: on any failure they return the fixed
// fallback entries for the kind, so the map always has something to show.
type PlaceLookup interface {
	FindNearby(ctx context.Context, kind domain.PlaceKind, center domain.GeoPoint, radiusMeters float64) []domain.ServicePlace
}

// NewsSource fetches safety news. Like PlaceLookup it trades correctness for
// availability: any fetch or parse failure yields the static fallback feed.
type NewsSource interface {
	Fetch(ctx context.Context) []domain.NewsItem
}

// IncidentSource supplies the incidents drawn on each map load.
type IncidentSource interface {
	Incidents(ctx context.Context) ([]domain.Incident, error)
}
