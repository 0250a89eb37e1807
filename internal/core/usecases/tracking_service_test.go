package usecases_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
	"github.com/Sjnjen/safety-for-her/internal/core/usecases"
)

// --- Mock LocationProvider ---

type mockProvider struct {
	mu          sync.Mutex
	unsupported bool
	currentFn   func(ctx context.Context) (domain.GeoPoint, error)
	queries     int
	queried     chan struct{}
}

func (m *mockProvider) Supported() bool { return !m.unsupported }

func (m *mockProvider) CurrentLocation(ctx context.Context) (domain.GeoPoint, error) {
	m.mu.Lock()
	m.queries++
	m.mu.Unlock()
	if m.queried != nil {
		select {
		case m.queried <- struct{}{}:
		default:
		}
	}
	if m.currentFn != nil {
		return m.currentFn(ctx)
	}
	return domain.GeoPoint{Lat: -26.2041, Lon: 28.0473}, nil
}

func (m *mockProvider) queryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries
}

// --- Mock Notifier ---

type mockNotifier struct {
	mu       sync.Mutex
	notifyFn func(ctx context.Context, c domain.Contact, s domain.LocationSample) error
	sent     []domain.LocationSample
}

func (m *mockNotifier) Notify(ctx context.Context, c domain.Contact, s domain.LocationSample) error {
	if m.notifyFn != nil {
		if err := m.notifyFn(ctx, c, s); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, s)
	return nil
}

func (m *mockNotifier) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// --- Tests ---

var contactA = domain.Contact{ID: "c-a", Name: "Jane", Phone: "0721234567", Shared: true}

func TestTrackingService_Start_NoRecipients(t *testing.T) {
	provider := &mockProvider{}
	svc := usecases.NewTrackingService(provider, &mockNotifier{}, 20*time.Millisecond)

	if err := svc.Start(nil, 1); !errors.Is(err, domain.ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}
	if svc.Status() != domain.TrackingIdle {
		t.Error("session must stay idle")
	}

	// No timer was armed: advancing time produces zero location queries.
	time.Sleep(80 * time.Millisecond)
	if got := provider.queryCount(); got != 0 {
		t.Errorf("expected 0 location queries, got %d", got)
	}
}

func TestTrackingService_Start_Unsupported(t *testing.T) {
	svc := usecases.NewTrackingService(&mockProvider{unsupported: true}, &mockNotifier{}, 20*time.Millisecond)

	if err := svc.Start([]domain.Contact{contactA}, 0); !errors.Is(err, domain.ErrLocationUnsupported) {
		t.Fatalf("expected ErrLocationUnsupported, got %v", err)
	}
}

func TestTrackingService_SamplesAndNotifies(t *testing.T) {
	provider := &mockProvider{queried: make(chan struct{}, 16)}
	notifier := &mockNotifier{}
	svc := usecases.NewTrackingService(provider, notifier, 20*time.Millisecond)

	// Duration 0 means unbounded.
	if err := svc.Start([]domain.Contact{contactA}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Status() != domain.TrackingActive {
		t.Fatal("expected active session")
	}

	for i := 0; i < 3; i++ {
		select {
		case <-provider.queried:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d never fired", i+1)
		}
	}

	svc.Stop()
	if svc.Status() != domain.TrackingIdle {
		t.Fatal("expected idle session after stop")
	}

	// Cancellation prevents future ticks: the counts settle.
	time.Sleep(60 * time.Millisecond)
	queriesAfterStop := provider.queryCount()
	sentAfterStop := notifier.sentCount()
	if queriesAfterStop < 3 {
		t.Errorf("expected at least 3 location queries, got %d", queriesAfterStop)
	}

	time.Sleep(100 * time.Millisecond)
	if got := provider.queryCount(); got != queriesAfterStop {
		t.Errorf("queries continued after stop: %d -> %d", queriesAfterStop, got)
	}
	if got := notifier.sentCount(); got != sentAfterStop {
		t.Errorf("notifications continued after stop: %d -> %d", sentAfterStop, got)
	}
	if sentAfterStop < 3 {
		t.Errorf("expected one notification per tick, got %d", sentAfterStop)
	}
}

func TestTrackingService_NotificationFailureDoesNotHaltSession(t *testing.T) {
	provider := &mockProvider{queried: make(chan struct{}, 16)}
	notifier := &mockNotifier{
		notifyFn: func(ctx context.Context, c domain.Contact, s domain.LocationSample) error {
			return errors.New("unreachable")
		},
	}
	svc := usecases.NewTrackingService(provider, notifier, 20*time.Millisecond)

	if err := svc.Start([]domain.Contact{contactA}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer svc.Stop()

	for i := 0; i < 2; i++ {
		select {
		case <-provider.queried:
		case <-time.After(2 * time.Second):
			t.Fatal("session halted after a failed notification")
		}
	}
	if svc.Status() != domain.TrackingActive {
		t.Error("failed notifications must not stop the session")
	}
}

func TestTrackingService_ProviderFailureKeepsSessionRunning(t *testing.T) {
	provider := &mockProvider{
		queried: make(chan struct{}, 16),
		currentFn: func(ctx context.Context) (domain.GeoPoint, error) {
			return domain.GeoPoint{}, domain.ErrLocationUnavailable
		},
	}
	notifier := &mockNotifier{}
	svc := usecases.NewTrackingService(provider, notifier, 20*time.Millisecond)

	if err := svc.Start([]domain.Contact{contactA}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer svc.Stop()

	for i := 0; i < 2; i++ {
		select {
		case <-provider.queried:
		case <-time.After(2 * time.Second):
			t.Fatal("sampler stopped after a provider failure")
		}
	}
	if got := notifier.sentCount(); got != 0 {
		t.Errorf("failed samples must not notify, got %d notifications", got)
	}
}

func TestTrackingService_Stop_Idempotent(t *testing.T) {
	provider := &mockProvider{}
	svc := usecases.NewTrackingService(provider, &mockNotifier{}, 20*time.Millisecond)

	// Stopping an idle session is a no-op.
	svc.Stop()

	if err := svc.Start([]domain.Contact{contactA}, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc.Stop()
	svc.Stop()

	if svc.Status() != domain.TrackingIdle {
		t.Error("expected idle after repeated stops")
	}
}

func TestTrackingService_Expiry_StopsSession(t *testing.T) {
	svc := usecases.NewTrackingService(&mockProvider{}, &mockNotifier{}, 20*time.Millisecond)

	if err := svc.StartFor([]domain.Contact{contactA}, 30*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for svc.Status() != domain.TrackingIdle {
		select {
		case <-deadline:
			t.Fatal("session never expired")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestTrackingService_StaleExpiryDoesNotStopNewSession(t *testing.T) {
	svc := usecases.NewTrackingService(&mockProvider{}, &mockNotifier{}, 20*time.Millisecond)

	// A nanosecond expiry has fired before Stop runs, so the timer cannot
	// be cancelled, only guarded. The fired callback must not tear down a
	// session started after its own session was stopped.
	for i := 0; i < 20; i++ {
		if err := svc.StartFor([]domain.Contact{contactA}, time.Nanosecond); err != nil {
			t.Fatalf("round %d: unexpected error: %v", i, err)
		}
		svc.Stop()

		if err := svc.StartFor([]domain.Contact{contactA}, 0); err != nil {
			t.Fatalf("round %d: unexpected error: %v", i, err)
		}
		time.Sleep(5 * time.Millisecond)
		if svc.Status() != domain.TrackingActive {
			t.Fatalf("round %d: session stopped by a stale expiry", i)
		}
		svc.Stop()
	}
}

func TestTrackingService_Start_WhileActive(t *testing.T) {
	svc := usecases.NewTrackingService(&mockProvider{}, &mockNotifier{}, 20*time.Millisecond)

	if err := svc.Start([]domain.Contact{contactA}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer svc.Stop()

	if err := svc.Start([]domain.Contact{contactA}, 0); !errors.Is(err, domain.ErrTrackingActive) {
		t.Fatalf("expected ErrTrackingActive, got %v", err)
	}
}

func TestTrackingService_RecipientsFrozenAtStart(t *testing.T) {
	svc := usecases.NewTrackingService(&mockProvider{}, &mockNotifier{}, 20*time.Millisecond)

	recipients := []domain.Contact{contactA}
	if err := svc.Start(recipients, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer svc.Stop()

	// Mutating the caller's slice must not affect the session snapshot.
	recipients[0] = domain.Contact{ID: "someone-else"}

	frozen := svc.Recipients()
	if len(frozen) != 1 || frozen[0].ID != contactA.ID {
		t.Errorf("recipient snapshot not frozen: %+v", frozen)
	}
}
