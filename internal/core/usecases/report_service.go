package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
	"github.com/Sjnjen/safety-for-her/internal/core/ports"
)

// ReportService takes in incident reports. Reports are kept in memory for the
// lifetime of the process; durable report storage is deliberately out of
// scope. Accepted reports are broadcast to live clients.
type ReportService struct {
	provider  ports.LocationProvider
	publisher ports.EventPublisher

	mu      sync.Mutex
	reports []domain.Report
}

// NewReportService creates a ReportService. publisher may be nil.
func NewReportService(provider ports.LocationProvider, publisher ports.EventPublisher) *ReportService {
	return &ReportService{provider: provider, publisher: publisher}
}

// Submit validates and records one report. Validation failures block the
// submission; nothing is stored.
func (s *ReportService) Submit(ctx context.Context, report domain.Report) (domain.Report, error) {
	if !domain.KnownIncidentType(report.Type) {
		return domain.Report{}, fmt.Errorf("%q: %w", report.Type, domain.ErrInvalidIncidentType)
	}
	report.Location = strings.TrimSpace(report.Location)
	report.Description = strings.TrimSpace(report.Description)
	if report.Location == "" {
		return domain.Report{}, fmt.Errorf("location: %w", domain.ErrEmptyField)
	}
	if report.Description == "" {
		return domain.Report{}, fmt.Errorf("description: %w", domain.ErrEmptyField)
	}

	report.ID = uuid.NewString()
	report.ReceivedAt = time.Now()

	s.mu.Lock()
	s.reports = append(s.reports, report)
	s.mu.Unlock()

	slog.Info("incident report received",
		"id", report.ID, "type", report.Type, "anonymous", report.Anonymous)

	if s.publisher != nil {
		payload, err := json.Marshal(map[string]any{
			"type":   "report",
			"report": report,
		})
		if err == nil {
			if err := s.publisher.PublishBroadcast(ctx, payload); err != nil {
				slog.Warn("report broadcast failed", "id", report.ID, "error", err)
			}
		}
	}

	return report, nil
}

// List returns every report received this session, oldest first.
func (s *ReportService) List(ctx context.Context) []domain.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// CurrentLocationText resolves the provider position formatted for the
// report form's location field.
func (s *ReportService) CurrentLocationText(ctx context.Context) (string, error) {
	if s.provider == nil || !s.provider.Supported() {
		return "", domain.ErrLocationUnsupported
	}
	loc, err := s.provider.CurrentLocation(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%.4f, %.4f", loc.Lat, loc.Lon), nil
}
