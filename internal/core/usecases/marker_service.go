package usecases

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
	"github.com/Sjnjen/safety-for-her/internal/core/ports"
	"github.com/Sjnjen/safety-for-her/internal/pkg/metrics"
)

// Marker colors per incident type, matching the map legend.
const (
	colorAssault    = "#e53935"
	colorHarassment = "#ffb300"
	colorTheft      = "#6a1b9a"
	colorOther      = "#1e88e5"
	colorHospital   = "#2e7d32"
	colorPolice     = "#1565c0"
)

// MarkerService owns the set of live map overlays. A whole category is
// replaced as a unit: every previously drawn overlay in the category is
// removed before the new batch is added, so stale overlays never coexist
// with fresh ones. Categories are independent and guarded by their own lock.
type MarkerService struct {
	locks   map[domain.MarkerCategory]*sync.Mutex
	markers map[domain.MarkerCategory][]domain.Marker
	sink    ports.MarkerSink
}

// NewMarkerService creates an empty MarkerService. sink may be nil.
func NewMarkerService(sink ports.MarkerSink) *MarkerService {
	categories := []domain.MarkerCategory{
		domain.MarkerUser, domain.MarkerIncident, domain.MarkerHospital, domain.MarkerPolice,
	}
	locks := make(map[domain.MarkerCategory]*sync.Mutex, len(categories))
	markers := make(map[domain.MarkerCategory][]domain.Marker, len(categories))
	for _, c := range categories {
		locks[c] = &sync.Mutex{}
		markers[c] = nil
	}
	return &MarkerService{locks: locks, markers: markers, sink: sink}
}

// SetUserPosition creates or moves the single user overlay. At most one user
// overlay exists at a time; a move keeps the overlay ID and re-emits it to the
// sink, which treats an add with a known ID as an upsert.
func (s *MarkerService) SetUserPosition(ctx context.Context, pos domain.GeoPoint) domain.Marker {
	mu := s.locks[domain.MarkerUser]
	mu.Lock()
	defer mu.Unlock()

	existing := s.markers[domain.MarkerUser]
	var m domain.Marker
	if len(existing) > 0 {
		m = existing[0]
		m.Location = pos
	} else {
		m = domain.Marker{
			ID:       uuid.NewString(),
			Category: domain.MarkerUser,
			Location: pos,
			Label:    "Your location",
			Icon:     "user",
		}
	}
	s.markers[domain.MarkerUser] = []domain.Marker{m}
	if s.sink != nil {
		s.sink.MarkerAdded(ctx, m)
	}
	metrics.ActiveMarkers.WithLabelValues(string(domain.MarkerUser)).Set(1)
	return m
}

// ReplaceIncidents swaps the incident overlay batch atomically.
func (s *MarkerService) ReplaceIncidents(ctx context.Context, incidents []domain.Incident) []domain.Marker {
	batch := make([]domain.Marker, 0, len(incidents))
	for _, in := range incidents {
		batch = append(batch, domain.Marker{
			ID:       uuid.NewString(),
			Category: domain.MarkerIncident,
			Location: in.Location,
			Label:    incidentLabel(in),
			Icon:     "exclamation",
			Color:    incidentColor(in.Type),
		})
	}
	return s.replace(ctx, domain.MarkerIncident, batch)
}

// ReplaceServicePlaces swaps the overlay batch for one service kind.
func (s *MarkerService) ReplaceServicePlaces(ctx context.Context, kind domain.PlaceKind, places []domain.ServicePlace) []domain.Marker {
	category := domain.MarkerHospital
	icon, color, fallbackName := "hospital", colorHospital, "Hospital"
	if kind == domain.PlacePolice {
		category = domain.MarkerPolice
		icon, color, fallbackName = "shield", colorPolice, "Police Station"
	}

	batch := make([]domain.Marker, 0, len(places))
	for _, p := range places {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = fallbackName
		}
		label := name
		if p.Address != "" {
			label = name + ", " + p.Address
		}
		batch = append(batch, domain.Marker{
			ID:       uuid.NewString(),
			Category: category,
			Location: p.Location,
			Label:    label,
			Icon:     icon,
			Color:    color,
		})
	}
	return s.replace(ctx, category, batch)
}

// replace removes every overlay in the category, then adds the new batch.
// The category lock is held for the whole swap so concurrent replaces for the
// same category cannot interleave.
func (s *MarkerService) replace(ctx context.Context, category domain.MarkerCategory, batch []domain.Marker) []domain.Marker {
	mu := s.locks[category]
	mu.Lock()
	defer mu.Unlock()

	if s.sink != nil {
		for _, old := range s.markers[category] {
			s.sink.MarkerRemoved(ctx, old.ID)
		}
		for _, m := range batch {
			s.sink.MarkerAdded(ctx, m)
		}
	}
	s.markers[category] = batch
	metrics.ActiveMarkers.WithLabelValues(string(category)).Set(float64(len(batch)))

	out := make([]domain.Marker, len(batch))
	copy(out, batch)
	return out
}

// Snapshot returns a copy of every live overlay grouped by category.
func (s *MarkerService) Snapshot() map[domain.MarkerCategory][]domain.Marker {
	out := make(map[domain.MarkerCategory][]domain.Marker, len(s.markers))
	for category, mu := range s.locks {
		mu.Lock()
		batch := make([]domain.Marker, len(s.markers[category]))
		copy(batch, s.markers[category])
		mu.Unlock()
		out[category] = batch
	}
	return out
}

func incidentLabel(in domain.Incident) string {
	t := string(in.Type)
	if t != "" {
		t = strings.ToUpper(t[:1]) + t[1:]
	}
	return fmt.Sprintf("%s (%s): %s", t, in.OccurredAt.Format("2006-01-02"), in.Description)
}

func incidentColor(t domain.IncidentType) string {
	switch t {
	case domain.IncidentAssault:
		return colorAssault
	case domain.IncidentHarassment:
		return colorHarassment
	case domain.IncidentTheft:
		return colorTheft
	default:
		return colorOther
	}
}
