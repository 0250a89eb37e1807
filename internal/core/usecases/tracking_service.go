package usecases

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
	"github.com/Sjnjen/safety-for-her/internal/core/ports"
	"github.com/Sjnjen/safety-for-her/internal/pkg/metrics"
)

// DefaultSampleInterval is how often an active session samples the location.
const DefaultSampleInterval = 5 * time.Second

// TrackingService is the location-sharing state machine: Idle until Start,
// then Active until Stop or expiry. While Active it issues one single-shot
// location query per interval tick and fans the result out to the recipient
// snapshot frozen at Start. The snapshot is deliberately not re-read from the
// contact list mid-session.
type TrackingService struct {
	provider ports.LocationProvider
	notifier ports.Notifier
	interval time.Duration

	mu         sync.Mutex
	status     domain.TrackingStatus
	gen        uint64
	cancel     context.CancelFunc
	expiry     *time.Timer
	recipients []domain.Contact
}

// NewTrackingService creates an Idle session. A non-positive interval falls
// back to DefaultSampleInterval.
func NewTrackingService(provider ports.LocationProvider, notifier ports.Notifier, interval time.Duration) *TrackingService {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	return &TrackingService{
		provider: provider,
		notifier: notifier,
		interval: interval,
		status:   domain.TrackingIdle,
	}
}

// Start arms the repeating sampler and, when durationHours > 0, a one-shot
// expiry. It fails without arming anything when recipients is empty or the
// location capability is absent.
func (s *TrackingService) Start(recipients []domain.Contact, durationHours int) error {
	return s.StartFor(recipients, time.Duration(durationHours)*time.Hour)
}

// StartFor is Start with a duration instead of whole hours. A non-positive
// duration arms no expiry.
func (s *TrackingService) StartFor(recipients []domain.Contact, duration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.TrackingActive {
		return domain.ErrTrackingActive
	}
	if len(recipients) == 0 {
		return domain.ErrNoRecipients
	}
	if s.provider == nil || !s.provider.Supported() {
		return domain.ErrLocationUnsupported
	}

	snapshot := make([]domain.Contact, len(recipients))
	copy(snapshot, recipients)

	ctx, cancel := context.WithCancel(context.Background())
	s.gen++
	s.cancel = cancel
	s.recipients = snapshot
	s.status = domain.TrackingActive

	go s.run(ctx, snapshot)

	if duration > 0 {
		// The timer callback may be in flight when the session it belongs
		// to is stopped; the generation check keeps a stale expiry from
		// tearing down a session started afterwards.
		gen := s.gen
		s.expiry = time.AfterFunc(duration, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.gen != gen || s.status != domain.TrackingActive {
				return
			}
			metrics.TrackingSessionsExpired.Inc()
			s.stopLocked()
		})
	}

	metrics.TrackingSessionsStarted.Inc()
	slog.Info("tracking session started",
		"recipients", len(snapshot), "duration", duration)
	return nil
}

// Stop cancels the sampler and any pending expiry. Stopping an Idle session
// is a no-op. Cancellation is cooperative: an already-dispatched location
// query completes, and its result is discarded by the active-session check.
func (s *TrackingService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *TrackingService) stopLocked() {
	if s.status == domain.TrackingIdle {
		return
	}
	s.cancel()
	if s.expiry != nil {
		s.expiry.Stop()
		s.expiry = nil
	}
	s.status = domain.TrackingIdle
	s.recipients = nil
	slog.Info("tracking session stopped")
}

// Status reports whether a session is currently active.
func (s *TrackingService) Status() domain.TrackingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Recipients returns the frozen recipient snapshot of the active session.
func (s *TrackingService) Recipients() []domain.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Contact, len(s.recipients))
	copy(out, s.recipients)
	return out
}

func (s *TrackingService) run(ctx context.Context, recipients []domain.Contact) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sample(ctx, recipients)
		}
	}
}

// sample issues exactly one location query and, on success, exactly one
// notification per recipient. A failed notification is logged and counted,
// never retried; it does not halt the session.
func (s *TrackingService) sample(ctx context.Context, recipients []domain.Contact) {
	metrics.LocationQueries.Inc()
	loc, err := s.provider.CurrentLocation(ctx)
	if err != nil {
		metrics.LocationFailures.WithLabelValues(locationFailureReason(err)).Inc()
		slog.Warn("tracking sample failed", "error", err)
		return
	}

	// The session may have been stopped while the query was in flight.
	if ctx.Err() != nil {
		return
	}

	now := time.Now()
	for _, contact := range recipients {
		sample := domain.LocationSample{
			ContactID: contact.ID,
			Location:  loc,
			Time:      now,
		}
		if err := s.notifier.Notify(ctx, contact, sample); err != nil {
			metrics.NotificationsFailed.Inc()
			slog.Warn("location notification failed",
				"contact", contact.ID, "error", err)
			continue
		}
		metrics.NotificationsSent.Inc()
	}
}

func locationFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrLocationUnsupported):
		return "unsupported"
	case errors.Is(err, domain.ErrLocationDenied):
		return "denied"
	default:
		return "unavailable"
	}
}
