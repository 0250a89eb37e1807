package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
	"github.com/Sjnjen/safety-for-her/internal/core/usecases"
)

// --- Mock ContactStorage ---

type mockStorage struct {
	mu      sync.Mutex
	data    []byte
	loadErr error
	saveErr error
	saves   int
}

func (m *mockStorage) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data, nil
}

func (m *mockStorage) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

func (m *mockStorage) stored(t *testing.T) []domain.Contact {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	var contacts []domain.Contact
	if err := json.Unmarshal(m.data, &contacts); err != nil {
		t.Fatalf("stored data unreadable: %v", err)
	}
	return contacts
}

// --- Tests ---

func TestContactService_Add_EmptyFields(t *testing.T) {
	svc := usecases.NewContactService(&mockStorage{})
	ctx := context.Background()

	if _, err := svc.Add(ctx, "", "0721234567"); !errors.Is(err, domain.ErrEmptyField) {
		t.Errorf("empty name: expected ErrEmptyField, got %v", err)
	}
	if _, err := svc.Add(ctx, "Jane", ""); !errors.Is(err, domain.ErrEmptyField) {
		t.Errorf("empty phone: expected ErrEmptyField, got %v", err)
	}
	if _, err := svc.Add(ctx, "   ", "0721234567"); !errors.Is(err, domain.ErrEmptyField) {
		t.Errorf("whitespace name: expected ErrEmptyField, got %v", err)
	}
}

func TestContactService_Add_PersistsImmediately(t *testing.T) {
	storage := &mockStorage{}
	svc := usecases.NewContactService(storage)
	ctx := context.Background()

	contact, err := svc.Add(ctx, "Jane", "0721234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contact.ID == "" {
		t.Error("expected a generated contact ID")
	}
	if contact.Shared {
		t.Error("new contacts must start unshared")
	}

	stored := storage.stored(t)
	if len(stored) != 1 {
		t.Fatalf("expected persisted length 1, got %d", len(stored))
	}
	if stored[0].Name != "Jane" || stored[0].Phone != "0721234567" {
		t.Errorf("persisted contact mismatch: %+v", stored[0])
	}
}

func TestContactService_Remove_UnknownID(t *testing.T) {
	storage := &mockStorage{}
	svc := usecases.NewContactService(storage)
	ctx := context.Background()

	svc.Add(ctx, "Jane", "0721234567")
	svc.Add(ctx, "Thandi", "0827654321")

	if err := svc.Remove(ctx, "nope"); !errors.Is(err, domain.ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
	if got := len(svc.List(ctx)); got != 2 {
		t.Errorf("store must be unchanged after a failed remove, got %d contacts", got)
	}
}

func TestContactService_Remove_Persists(t *testing.T) {
	storage := &mockStorage{}
	svc := usecases.NewContactService(storage)
	ctx := context.Background()

	jane, _ := svc.Add(ctx, "Jane", "0721234567")
	svc.Add(ctx, "Thandi", "0827654321")

	if err := svc.Remove(ctx, jane.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := storage.stored(t)
	if len(stored) != 1 || stored[0].Name != "Thandi" {
		t.Errorf("unexpected persisted state: %+v", stored)
	}
}

func TestContactService_SetShared(t *testing.T) {
	storage := &mockStorage{}
	svc := usecases.NewContactService(storage)
	ctx := context.Background()

	jane, _ := svc.Add(ctx, "Jane", "0721234567")

	if err := svc.SetShared(ctx, "nope", true); !errors.Is(err, domain.ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
	if err := svc.SetShared(ctx, jane.ID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored := storage.stored(t); !stored[0].Shared {
		t.Error("shared flag not persisted")
	}

	shared := svc.SharedContacts(ctx)
	if len(shared) != 1 || shared[0].ID != jane.ID {
		t.Errorf("unexpected shared contacts: %+v", shared)
	}
}

func TestContactService_RoundTrip(t *testing.T) {
	storage := &mockStorage{}
	ctx := context.Background()

	first := usecases.NewContactService(storage)
	first.Add(ctx, "Jane", "0721234567")
	second, _ := first.Add(ctx, "Thandi", "0827654321")
	first.Add(ctx, "Lerato", "0731112222")
	first.SetShared(ctx, second.ID, true)

	// A fresh service over the same storage sees the identical list.
	reloaded := usecases.NewContactService(storage)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	contacts := reloaded.List(ctx)
	if len(contacts) != 3 {
		t.Fatalf("expected 3 contacts, got %d", len(contacts))
	}
	want := []string{"Jane", "Thandi", "Lerato"}
	for i, name := range want {
		if contacts[i].Name != name {
			t.Errorf("contact %d: expected %s, got %s", i, name, contacts[i].Name)
		}
	}
	if !contacts[1].Shared || contacts[0].Shared || contacts[2].Shared {
		t.Error("shared flags not preserved across reload")
	}
}

func TestContactService_Load_CorruptData(t *testing.T) {
	storage := &mockStorage{data: []byte("{not json")}
	svc := usecases.NewContactService(storage)

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("corrupt data must not be fatal, got %v", err)
	}
	if got := len(svc.List(context.Background())); got != 0 {
		t.Errorf("expected empty store, got %d contacts", got)
	}
}

func TestContactService_Add_SaveFailureRollsBack(t *testing.T) {
	storage := &mockStorage{saveErr: errors.New("storage offline")}
	svc := usecases.NewContactService(storage)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "Jane", "0721234567"); err == nil {
		t.Fatal("expected error when storage rejects the write")
	}
	if got := len(svc.List(ctx)); got != 0 {
		t.Errorf("in-memory state must match storage, got %d contacts", got)
	}
}
