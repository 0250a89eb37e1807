package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// safetyContactsKey is the key the contact list lives under. The browser
// build kept the same list under this name in local storage; reusing it lets
// exported data migrate without translation.
const safetyContactsKey = "safetyContacts"

// Cache implements ports.CacheService using Valkey (Redis-compatible).
type Cache struct {
	client valkey.Client
}

// New creates a new Valkey cache client.
func New(addr string) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Cache{client: client}, nil
}

// Get retrieves a value by key. A missing key is returned as an error the
// same way the underlying client reports it; use the contact store for
// absent-is-empty semantics.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if cmd.Error() != nil {
		return nil, cmd.Error()
	}
	b, err := cmd.AsBytes()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Set stores a value with a TTL in seconds.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	cmd := c.client.Do(ctx,
		c.client.B().Set().Key(key).Value(string(value)).Ex(time.Duration(ttlSeconds)*time.Second).Build(),
	)
	return cmd.Error()
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	cmd := c.client.Do(ctx, c.client.B().Del().Key(key).Build())
	return cmd.Error()
}

// Ping verifies the connection, for readiness checks.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (c *Cache) Close() {
	c.client.Close()
}

// ContactStore implements ports.ContactStorage on top of the same client.
// The whole contact list is stored as one JSON document under a single key
// with no expiry.
type ContactStore struct {
	cache *Cache
	key   string
}

// NewContactStore creates a ContactStore using the shared cache client.
func NewContactStore(cache *Cache) *ContactStore {
	return &ContactStore{cache: cache, key: safetyContactsKey}
}

// Load returns the stored contact list document, or (nil, nil) when no list
// has been saved yet.
func (s *ContactStore) Load(ctx context.Context) ([]byte, error) {
	cmd := s.cache.client.Do(ctx, s.cache.client.B().Get().Key(s.key).Build())
	if err := cmd.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	b, err := cmd.AsBytes()
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	return b, nil
}

// Save persists the contact list document without expiry.
func (s *ContactStore) Save(ctx context.Context, data []byte) error {
	cmd := s.cache.client.Do(ctx,
		s.cache.client.B().Set().Key(s.key).Value(string(data)).Build(),
	)
	if err := cmd.Error(); err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}
	return nil
}
