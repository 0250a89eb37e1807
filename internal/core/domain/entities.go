package domain

import (
	"time"
)

// IncidentType classifies a reported incident.
type IncidentType string

const (
	IncidentAssault    IncidentType = "assault"
	IncidentHarassment IncidentType = "harassment"
	IncidentTheft      IncidentType = "theft"
	IncidentOther      IncidentType = "other"
)

// KnownIncidentType reports whether t is one of the recognised incident types.
func KnownIncidentType(t IncidentType) bool {
	switch t {
	case IncidentAssault, IncidentHarassment, IncidentTheft, IncidentOther:
		return true
	}
	return false
}

// Incident is a point-in-time safety incident shown on the map.
// Incidents are immutable once fetched; each map load replaces the whole set.
type Incident struct {
	ID          string       `json:"id"`
	Type        IncidentType `json:"type"`
	Location    GeoPoint     `json:"location"`
	OccurredAt  time.Time    `json:"occurred_at"`
	Description string       `json:"description"`
}

// PlaceKind is the amenity category of a nearby service place.
type PlaceKind string

const (
	PlaceHospital PlaceKind = "hospital"
	PlacePolice   PlaceKind = "police"
)

// KnownPlaceKind reports whether k is a supported amenity kind.
func KnownPlaceKind(k PlaceKind) bool {
	return k == PlaceHospital || k == PlacePolice
}

// ServicePlace is an emergency service location (hospital or police station).
type ServicePlace struct {
	Location GeoPoint  `json:"location"`
	Name     string    `json:"name"`
	Address  string    `json:"address,omitempty"`
	Kind     PlaceKind `json:"kind"`
}

// Contact is a trusted contact the user can share her location with.
// Contacts are addressed by a generated ID rather than list position so that
// concurrent edits from multiple views cannot target the wrong entry.
type Contact struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Shared bool   `json:"shared"`
}

// NewsCategory partitions news items for client-side filtering.
type NewsCategory string

const (
	NewsAssault    NewsCategory = "assault"
	NewsHarassment NewsCategory = "harassment"
	NewsSafetyTips NewsCategory = "safety-tips"
)

// NewsItem is a single article in the safety news feed.
type NewsItem struct {
	Title       string       `json:"title"`
	Excerpt     string       `json:"excerpt"`
	Category    NewsCategory `json:"category"`
	URL         string       `json:"url,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
	Source      string       `json:"source,omitempty"`
	PublishedAt time.Time    `json:"published_at"`
}

// MarkerCategory partitions map overlays. A whole category is replaced
// atomically as a unit.
type MarkerCategory string

const (
	MarkerUser     MarkerCategory = "user"
	MarkerIncident MarkerCategory = "incident"
	MarkerHospital MarkerCategory = "hospital"
	MarkerPolice   MarkerCategory = "police"
)

// Marker is a live overlay drawn on the map.
type Marker struct {
	ID       string         `json:"id"`
	Category MarkerCategory `json:"category"`
	Location GeoPoint       `json:"location"`
	Label    string         `json:"label"`
	Icon     string         `json:"icon"`
	Color    string         `json:"color,omitempty"`
}

// Report is an incident report submitted through the report form.
type Report struct {
	ID          string       `json:"id"`
	Type        IncidentType `json:"type"`
	Location    string       `json:"location"`
	OccurredAt  time.Time    `json:"occurred_at"`
	Description string       `json:"description"`
	Anonymous   bool         `json:"anonymous"`
	ReceivedAt  time.Time    `json:"received_at"`
}

// CrimeAlert is the headline figure shown in the alert banner.
type CrimeAlert struct {
	Count int    `json:"count"`
	Date  string `json:"date"`
}

// LocationSample is one position reading shared with a contact during an
// active tracking session.
type LocationSample struct {
	ContactID string    `json:"contact_id"`
	Location  GeoPoint  `json:"location"`
	Time      time.Time `json:"time"`
}

// TrackingStatus is the lifecycle state of the tracking session.
type TrackingStatus string

const (
	TrackingIdle   TrackingStatus = "idle"
	TrackingActive TrackingStatus = "active"
)
