package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
	"github.com/Sjnjen/safety-for-her/internal/core/ports"
)

// ContactService owns the trusted-contact list. Every mutation writes the
// full list through to storage before returning, so the persisted and
// in-memory representations are never allowed to drift.
type ContactService struct {
	storage ports.ContactStorage

	mu       sync.Mutex
	contacts []domain.Contact
}

// NewContactService creates a ContactService over the given storage.
func NewContactService(storage ports.ContactStorage) *ContactService {
	return &ContactService{storage: storage}
}

// Load reads the persisted list at startup. Absent or corrupt stored data is
// treated as "no contacts" rather than a fatal condition.
func (s *ContactService) Load(ctx context.Context) error {
	data, err := s.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("load contacts: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(data) == 0 {
		s.contacts = nil
		return nil
	}

	var contacts []domain.Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		slog.Warn("stored contacts unreadable, starting empty", "error", err)
		s.contacts = nil
		return nil
	}
	s.contacts = contacts
	return nil
}

// Add validates, appends, and persists a new contact with shared=false.
func (s *ContactService) Add(ctx context.Context, name, phone string) (domain.Contact, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return domain.Contact{}, fmt.Errorf("name: %w", domain.ErrEmptyField)
	}
	if phone == "" {
		return domain.Contact{}, fmt.Errorf("phone: %w", domain.ErrEmptyField)
	}

	contact := domain.Contact{
		ID:    uuid.NewString(),
		Name:  name,
		Phone: phone,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(append([]domain.Contact(nil), s.contacts...), contact)
	if err := s.persist(ctx, next); err != nil {
		return domain.Contact{}, err
	}
	s.contacts = next
	return contact, nil
}

// Remove deletes the contact with the given ID and persists the list.
func (s *ContactService) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.ErrContactNotFound
	}

	next := append([]domain.Contact(nil), s.contacts...)
	next = append(next[:idx], next[idx+1:]...)
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.contacts = next
	return nil
}

// SetShared flips the sharing flag on one contact and persists the list.
func (s *ContactService) SetShared(ctx context.Context, id string, shared bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.ErrContactNotFound
	}

	next := append([]domain.Contact(nil), s.contacts...)
	next[idx].Shared = shared
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.contacts = next
	return nil
}

// List returns all contacts in stored order.
func (s *ContactService) List(ctx context.Context) []domain.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Contact, len(s.contacts))
	copy(out, s.contacts)
	return out
}

// SharedContacts returns the contacts flagged for sharing, order preserved.
func (s *ContactService) SharedContacts(ctx context.Context) []domain.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Contact
	for _, c := range s.contacts {
		if c.Shared {
			out = append(out, c)
		}
	}
	return out
}

// persist writes the candidate list through to storage. Callers commit the
// in-memory state only after persist succeeds. Caller holds s.mu.
func (s *ContactService) persist(ctx context.Context, contacts []domain.Contact) error {
	data, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("encode contacts: %w", err)
	}
	if err := s.storage.Save(ctx, data); err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}
	return nil
}

func (s *ContactService) indexOf(id string) int {
	for i, c := range s.contacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}
