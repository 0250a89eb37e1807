package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
	"github.com/Sjnjen/safety-for-her/internal/core/usecases"
)

func TestReportService_Submit_Validation(t *testing.T) {
	svc := usecases.NewReportService(&mockProvider{}, nil)
	ctx := context.Background()

	_, err := svc.Submit(ctx, domain.Report{
		Type: "gossip", Location: "Main St", Description: "something",
	})
	if !errors.Is(err, domain.ErrInvalidIncidentType) {
		t.Errorf("expected ErrInvalidIncidentType, got %v", err)
	}

	_, err = svc.Submit(ctx, domain.Report{
		Type: domain.IncidentTheft, Location: "  ", Description: "bag snatching",
	})
	if !errors.Is(err, domain.ErrEmptyField) {
		t.Errorf("expected ErrEmptyField for location, got %v", err)
	}

	_, err = svc.Submit(ctx, domain.Report{
		Type: domain.IncidentTheft, Location: "Main St", Description: "",
	})
	if !errors.Is(err, domain.ErrEmptyField) {
		t.Errorf("expected ErrEmptyField for description, got %v", err)
	}

	if got := len(svc.List(ctx)); got != 0 {
		t.Errorf("rejected reports must not be stored, got %d", got)
	}
}

func TestReportService_Submit_Success(t *testing.T) {
	svc := usecases.NewReportService(&mockProvider{}, nil)
	ctx := context.Background()

	report, err := svc.Submit(ctx, domain.Report{
		Type:        domain.IncidentHarassment,
		Location:    "-26.2041, 28.0473",
		Description: "Catcalling near the taxi rank",
		Anonymous:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ID == "" {
		t.Error("expected a generated report ID")
	}
	if report.ReceivedAt.IsZero() {
		t.Error("expected a receipt timestamp")
	}
	if got := len(svc.List(ctx)); got != 1 {
		t.Errorf("expected 1 stored report, got %d", got)
	}
}

type mockPublisher struct {
	publishFn func(ctx context.Context, data []byte) error
	published [][]byte
}

func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error {
	if m.publishFn != nil {
		if err := m.publishFn(ctx, data); err != nil {
			return err
		}
	}
	m.published = append(m.published, data)
	return nil
}

func TestReportService_Submit_BroadcastFailureDoesNotFailSubmit(t *testing.T) {
	publisher := &mockPublisher{
		publishFn: func(ctx context.Context, data []byte) error {
			return errors.New("broker unreachable")
		},
	}
	svc := usecases.NewReportService(&mockProvider{}, publisher)
	ctx := context.Background()

	report, err := svc.Submit(ctx, domain.Report{
		Type:        domain.IncidentTheft,
		Location:    "Bree Street taxi rank",
		Description: "Phone grabbed from a pedestrian",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ID == "" {
		t.Error("expected a generated report ID")
	}
	if got := len(svc.List(ctx)); got != 1 {
		t.Errorf("expected the report stored despite the failed broadcast, got %d", got)
	}
}

func TestReportService_CurrentLocationText(t *testing.T) {
	provider := &mockProvider{
		currentFn: func(ctx context.Context) (domain.GeoPoint, error) {
			return domain.GeoPoint{Lat: -26.20412, Lon: 28.04731}, nil
		},
	}
	svc := usecases.NewReportService(provider, nil)

	text, err := svc.CurrentLocationText(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "-26.2041, 28.0473" {
		t.Errorf("expected 4-decimal formatting, got %q", text)
	}
}

func TestAlertService_Current(t *testing.T) {
	svc := usecases.NewAlertService()

	for i := 0; i < 50; i++ {
		alert := svc.Current()
		if alert.Count < 5 || alert.Count > 19 {
			t.Fatalf("count out of range: %d", alert.Count)
		}
		if alert.Date == "" {
			t.Fatal("expected a formatted date")
		}
	}
}
