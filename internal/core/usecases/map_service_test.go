package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
	"github.com/Sjnjen/safety-for-her/internal/core/usecases"
)

// --- Mock PlaceLookup ---

type mockPlaceLookup struct {
	findFn func(ctx context.Context, kind domain.PlaceKind, center domain.GeoPoint, radius float64) []domain.ServicePlace
}

func (m *mockPlaceLookup) FindNearby(ctx context.Context, kind domain.PlaceKind, center domain.GeoPoint, radius float64) []domain.ServicePlace {
	if m.findFn != nil {
		return m.findFn(ctx, kind, center, radius)
	}
	return nil
}

// --- Mock IncidentSource ---

type mockIncidentSource struct {
	incidents []domain.Incident
	err       error
}

func (m *mockIncidentSource) Incidents(ctx context.Context) ([]domain.Incident, error) {
	return m.incidents, m.err
}

// --- Tests ---

var johannesburg = domain.GeoPoint{Lat: -26.2041, Lon: 28.0473}

func newMapService(provider *mockProvider, lookup *mockPlaceLookup, incidents *mockIncidentSource) (*usecases.MapService, *usecases.MarkerService) {
	markers := usecases.NewMarkerService(nil)
	svc := usecases.NewMapService(markers, provider, lookup, incidents, nil, johannesburg, 12, 5000)
	return svc, markers
}

func TestMapService_Initialize_SeedsIncidents(t *testing.T) {
	source := &mockIncidentSource{incidents: []domain.Incident{
		{ID: "i1", Type: domain.IncidentAssault},
		{ID: "i2", Type: domain.IncidentTheft},
	}}
	svc, markers := newMapService(&mockProvider{}, &mockPlaceLookup{}, source)

	if err := svc.Initialize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(markers.Snapshot()[domain.MarkerIncident]); got != 2 {
		t.Errorf("expected 2 incident markers, got %d", got)
	}
}

func TestMapService_Initialize_LocationFailureKeepsDefaultView(t *testing.T) {
	provider := &mockProvider{
		currentFn: func(ctx context.Context) (domain.GeoPoint, error) {
			return domain.GeoPoint{}, domain.ErrLocationDenied
		},
	}
	svc, _ := newMapService(provider, &mockPlaceLookup{}, &mockIncidentSource{})

	if err := svc.Initialize(context.Background()); err != nil {
		t.Fatalf("a denied location must not fail initialization: %v", err)
	}

	view := svc.View()
	if view.Located {
		t.Error("view must not claim a located user")
	}
	if view.Center != johannesburg {
		t.Errorf("expected default center, got %+v", view.Center)
	}
}

func TestMapService_RefreshUserPosition_RecentersView(t *testing.T) {
	fix := domain.GeoPoint{Lat: -26.10, Lon: 28.10}
	provider := &mockProvider{
		currentFn: func(ctx context.Context) (domain.GeoPoint, error) { return fix, nil },
	}
	svc, markers := newMapService(provider, &mockPlaceLookup{}, &mockIncidentSource{})

	got, err := svc.RefreshUserPosition(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != fix {
		t.Errorf("expected %+v, got %+v", fix, got)
	}
	if svc.Center() != fix {
		t.Errorf("view did not recenter: %+v", svc.Center())
	}
	if users := markers.Snapshot()[domain.MarkerUser]; len(users) != 1 || users[0].Location != fix {
		t.Errorf("user overlay not placed: %+v", users)
	}
}

func TestMapService_RefreshUserPosition_Unsupported(t *testing.T) {
	svc, _ := newMapService(&mockProvider{unsupported: true}, &mockPlaceLookup{}, &mockIncidentSource{})

	if _, err := svc.RefreshUserPosition(context.Background()); !errors.Is(err, domain.ErrLocationUnsupported) {
		t.Fatalf("expected ErrLocationUnsupported, got %v", err)
	}
}

func TestMapService_LoadNearbyServices(t *testing.T) {
	lookup := &mockPlaceLookup{
		findFn: func(ctx context.Context, kind domain.PlaceKind, center domain.GeoPoint, radius float64) []domain.ServicePlace {
			if kind != domain.PlaceHospital {
				t.Errorf("expected hospital lookup, got %s", kind)
			}
			if center != johannesburg {
				t.Errorf("expected lookup around view center, got %+v", center)
			}
			if radius != 5000 {
				t.Errorf("expected configured radius, got %f", radius)
			}
			return []domain.ServicePlace{
				{Kind: domain.PlaceHospital, Name: "Charlotte Maxeke Hospital"},
				{Kind: domain.PlaceHospital, Name: "Milpark Hospital"},
			}
		},
	}
	svc, markers := newMapService(&mockProvider{}, lookup, &mockIncidentSource{})

	places, err := svc.LoadNearbyServices(context.Background(), domain.PlaceHospital)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 places, got %d", len(places))
	}
	if got := len(markers.Snapshot()[domain.MarkerHospital]); got != 2 {
		t.Errorf("expected 2 hospital markers, got %d", got)
	}
}

func TestMapService_LoadNearbyServices_CachesResults(t *testing.T) {
	calls := 0
	lookup := &mockPlaceLookup{
		findFn: func(ctx context.Context, kind domain.PlaceKind, center domain.GeoPoint, radius float64) []domain.ServicePlace {
			calls++
			return []domain.ServicePlace{{Kind: domain.PlacePolice, Name: "Johannesburg Central Police Station"}}
		},
	}
	markers := usecases.NewMarkerService(nil)
	svc := usecases.NewMapService(markers, &mockProvider{}, lookup, &mockIncidentSource{}, newMockCache(), johannesburg, 12, 5000)

	for i := 0; i < 3; i++ {
		places, err := svc.LoadNearbyServices(context.Background(), domain.PlacePolice)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(places) != 1 || places[0].Name != "Johannesburg Central Police Station" {
			t.Fatalf("round %d: got %+v", i, places)
		}
	}
	if calls != 1 {
		t.Errorf("expected a single live lookup behind the cache, got %d", calls)
	}
}

func TestMapService_LoadNearbyServices_UnknownKind(t *testing.T) {
	svc, _ := newMapService(&mockProvider{}, &mockPlaceLookup{}, &mockIncidentSource{})

	_, err := svc.LoadNearbyServices(context.Background(), "pharmacy")
	if !errors.Is(err, domain.ErrUnknownServiceKind) {
		t.Fatalf("expected ErrUnknownServiceKind, got %v", err)
	}
}
