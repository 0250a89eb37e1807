package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
)

// EmergencyNumber is the police emergency line surfaced by the emergency
// endpoint. Dialing is always client-initiated and confirmed.
const EmergencyNumber = "10111"

// MapViewHandler returns the current map view (center, zoom, whether the
// user has been located).
func MapViewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Map.View())
	}
}

// MapMarkersHandler returns all live overlays grouped by category.
func MapMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snapshot := deps.Markers.Snapshot()
		if category := c.Query("category"); category != "" {
			markers := snapshot[domain.MarkerCategory(category)]
			if markers == nil {
				markers = []domain.Marker{}
			}
			return c.JSON(markers)
		}
		return c.JSON(snapshot)
	}
}

// RefreshLocationHandler performs one position query and recenters the map.
// A failed query is not an error at this boundary: the map stays on its
// default view and the response carries a status message instead.
func RefreshLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loc, err := deps.Map.RefreshUserPosition(c.Context())
		if err != nil {
			return c.JSON(fiber.Map{
				"located": false,
				"message": locationStatusMessage(err),
			})
		}
		return c.JSON(fiber.Map{
			"located":  true,
			"location": loc,
		})
	}
}

// locationStatusMessage translates location errors into user-facing text.
func locationStatusMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrLocationUnsupported):
		return "Location services are not available."
	case errors.Is(err, domain.ErrLocationDenied):
		return "Location access was denied. Showing the default area."
	default:
		return "Unable to determine your location. Showing the default area."
	}
}

// ReloadIncidentsHandler re-fetches incidents and redraws their overlays.
func ReloadIncidentsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Map.ReloadIncidents(c.Context()); err != nil {
			return errInternal(c, err.Error())
		}
		markers := deps.Markers.Snapshot()[domain.MarkerIncident]
		return c.JSON(fiber.Map{"markers": markers, "count": len(markers)})
	}
}

// NearbyServicesHandler loads hospitals or police stations around the map
// center and replaces their overlays.
func NearbyServicesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind := domain.PlaceKind(c.Params("kind"))
		places, err := deps.Map.LoadNearbyServices(c.Context(), kind)
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(fiber.Map{"kind": kind, "places": places})
	}
}

// AlertHandler returns the crime alert banner figure.
func AlertHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Alerts.Current())
	}
}

// EmergencyHandler returns the emergency dial information. The number is
// returned, never dialed: confirmation stays with the caller.
func EmergencyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"number":                EmergencyNumber,
			"confirmation_required": true,
		})
	}
}

// ListContactsHandler returns the trusted-contact list.
func ListContactsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		contacts := deps.Contacts.List(c.Context())
		if contacts == nil {
			contacts = []domain.Contact{}
		}
		return c.JSON(contacts)
	}
}

type addContactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// AddContactHandler creates a contact from name and phone.
func AddContactHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addContactRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		contact, err := deps.Contacts.Add(c.Context(), req.Name, req.Phone)
		if err != nil {
			return domainError(c, err)
		}
		return c.Status(201).JSON(contact)
	}
}

// RemoveContactHandler deletes a contact by ID.
func RemoveContactHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Contacts.Remove(c.Context(), c.Params("id")); err != nil {
			return domainError(c, err)
		}
		return c.SendStatus(204)
	}
}

type sharedRequest struct {
	Shared bool `json:"shared"`
}

// SetContactSharedHandler toggles whether a contact receives live location.
func SetContactSharedHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req sharedRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		id := c.Params("id")
		if err := deps.Contacts.SetShared(c.Context(), id, req.Shared); err != nil {
			return domainError(c, err)
		}
		return c.JSON(fiber.Map{"id": id, "shared": req.Shared})
	}
}

type startTrackingRequest struct {
	DurationHours int `json:"duration_hours"`
}

// StartTrackingHandler begins a tracking session towards all contacts
// currently marked as shared. The recipient set is frozen at start.
func StartTrackingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req startTrackingRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.DurationHours <= 0 || req.DurationHours > 24 {
			return errBadRequest(c, "duration_hours must be between 1 and 24")
		}

		recipients := deps.Contacts.SharedContacts(c.Context())
		if err := deps.Tracking.Start(recipients, req.DurationHours); err != nil {
			return domainError(c, err)
		}
		return c.Status(201).JSON(fiber.Map{
			"status":     domain.TrackingActive,
			"recipients": len(recipients),
			"expires_at": time.Now().Add(time.Duration(req.DurationHours) * time.Hour).UTC(),
		})
	}
}

// StopTrackingHandler ends the session. Stopping an idle session is a no-op.
func StopTrackingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deps.Tracking.Stop()
		return c.JSON(fiber.Map{"status": domain.TrackingIdle})
	}
}

// TrackingStatusHandler reports the session state and recipient count.
func TrackingStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     deps.Tracking.Status(),
			"recipients": len(deps.Tracking.Recipients()),
		})
	}
}

// NewsHandler returns the safety news feed, optionally filtered by category.
func NewsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items := deps.News.Fetch(c.Context(), c.Query("category", "all"))
		if items == nil {
			items = []domain.NewsItem{}
		}

		total := len(items)
		offset, limit, start, end := pageBounds(c, total, 20, 100)
		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: items[start:end], Pagination: pg})
	}
}

type submitReportRequest struct {
	Type        string `json:"type"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Anonymous   bool   `json:"anonymous"`
}

// SubmitReportHandler accepts an incident report.
func SubmitReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req submitReportRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		occurredAt := time.Now().UTC()
		if req.Date != "" {
			parsed, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				return errBadRequest(c, "date must be YYYY-MM-DD")
			}
			occurredAt = parsed
		}

		report, err := deps.Reports.Submit(c.Context(), domain.Report{
			Type:        domain.IncidentType(req.Type),
			Location:    req.Location,
			OccurredAt:  occurredAt,
			Description: req.Description,
			Anonymous:   req.Anonymous,
		})
		if err != nil {
			return domainError(c, err)
		}
		return c.Status(201).JSON(report)
	}
}

// ListReportsHandler returns submitted reports in submission order.
func ListReportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reports := deps.Reports.List(c.Context())
		if reports == nil {
			reports = []domain.Report{}
		}

		total := len(reports)
		offset, limit, start, end := pageBounds(c, total, 50, 200)
		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: reports[start:end], Pagination: pg})
	}
}

// ReportLocationHandler fills the report form's location field from the
// current position, formatted as "lat, lon".
func ReportLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		text, err := deps.Reports.CurrentLocationText(c.Context())
		if err != nil {
			return c.JSON(fiber.Map{
				"located": false,
				"message": locationStatusMessage(err),
			})
		}
		return c.JSON(fiber.Map{"located": true, "location": text})
	}
}
