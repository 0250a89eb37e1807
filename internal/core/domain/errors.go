package domain

import "errors"

var (
	// Location provider failures.
	ErrLocationUnsupported = errors.New("location capability not supported")
	ErrLocationDenied      = errors.New("location permission denied")
	ErrLocationUnavailable = errors.New("location unavailable")

	// Contact store failures.
	ErrEmptyField      = errors.New("field must not be empty")
	ErrContactNotFound = errors.New("contact not found")
	ErrNoRecipients    = errors.New("no contacts selected for sharing")

	// Report intake failures.
	ErrInvalidIncidentType = errors.New("unknown incident type")

	// Place lookup failures.
	ErrUnknownServiceKind = errors.New("unknown service kind")

	// Tracking session failures.
	ErrTrackingActive = errors.New("tracking session already active")
)
