package http

import (
	"github.com/nats-io/nats.go"

	"github.com/Sjnjen/safety-for-her/internal/adapters/valkey"
	"github.com/Sjnjen/safety-for-her/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Map      *usecases.MapService
	Markers  *usecases.MarkerService
	Contacts *usecases.ContactService
	Tracking *usecases.TrackingService
	News     *usecases.NewsService
	Reports  *usecases.ReportService
	Alerts   *usecases.AlertService
	NATS     *nats.Conn
	Cache    *valkey.Cache
}
