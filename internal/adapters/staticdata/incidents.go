package staticdata

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
)

// IncidentSource implements ports.IncidentSource with a fixed sample set.
// It stands in for a crime-data integration that is not part of this
// deployment; the map layer treats it like any other source.
type IncidentSource struct {
	incidents []domain.Incident
}

// NewIncidentSource builds the sample source. IDs are generated once so
// marker identity stays stable across reloads within a process.
func NewIncidentSource() *IncidentSource {
	day := func(d int) time.Time {
		return time.Date(2023, time.May, d, 0, 0, 0, 0, time.UTC)
	}
	samples := []struct {
		typ  domain.IncidentType
		loc  domain.GeoPoint
		at   time.Time
		desc string
	}{
		{domain.IncidentAssault, domain.GeoPoint{Lat: -26.1941, Lon: 28.0373}, day(15), "Reported assault near this location"},
		{domain.IncidentHarassment, domain.GeoPoint{Lat: -26.2141, Lon: 28.0573}, day(14), "Catcalling and verbal harassment reported"},
		{domain.IncidentTheft, domain.GeoPoint{Lat: -26.2041, Lon: 28.0273}, day(13), "Bag snatching incident"},
		{domain.IncidentOther, domain.GeoPoint{Lat: -26.2241, Lon: 28.0473}, day(12), "Suspicious behavior reported"},
		{domain.IncidentAssault, domain.GeoPoint{Lat: -26.1841, Lon: 28.0673}, day(11), "Physical assault reported"},
	}

	incidents := make([]domain.Incident, 0, len(samples))
	for _, s := range samples {
		incidents = append(incidents, domain.Incident{
			ID:          uuid.NewString(),
			Type:        s.typ,
			Location:    s.loc,
			OccurredAt:  s.at,
			Description: s.desc,
		})
	}
	return &IncidentSource{incidents: incidents}
}

// Incidents returns a copy of the sample set.
func (s *IncidentSource) Incidents(ctx context.Context) ([]domain.Incident, error) {
	out := make([]domain.Incident, len(s.incidents))
	copy(out, s.incidents)
	return out, nil
}
