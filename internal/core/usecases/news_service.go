package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
	"github.com/Sjnjen/safety-for-her/internal/core/ports"
	"github.com/Sjnjen/safety-for-her/internal/pkg/metrics"
)

const newsCacheKey = "news:all"

// NewsService serves the safety news feed. The underlying source never fails
// at the interface (it substitutes fallback data), so Fetch always returns a
// usable feed; filtering happens client-side by exact category match.
type NewsService struct {
	source    ports.NewsSource
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewNewsService creates a NewsService. cache and publisher may be nil.
func NewNewsService(source ports.NewsSource, cache ports.CacheService, publisher ports.EventPublisher) *NewsService {
	return &NewsService{source: source, cache: cache, publisher: publisher}
}

// Fetch returns the feed filtered to the given category. "all" or an empty
// filter passes everything through.
func (s *NewsService) Fetch(ctx context.Context, filter string) []domain.NewsItem {
	items := s.load(ctx)
	if filter == "" || filter == "all" {
		return items
	}

	var out []domain.NewsItem
	for _, item := range items {
		if string(item.Category) == filter {
			out = append(out, item)
		}
	}
	return out
}

// AutoRefresh re-fetches the feed on a fixed interval and broadcasts the
// fresh items to live clients. It returns when ctx is cancelled.
func (s *NewsService) AutoRefresh(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			items := s.source.Fetch(ctx)
			s.store(ctx, items)
			if s.publisher != nil {
				payload, err := json.Marshal(map[string]any{
					"type":  "news",
					"items": items,
				})
				if err == nil {
					if err := s.publisher.PublishBroadcast(ctx, payload); err != nil {
						slog.Warn("news broadcast failed", "error", err)
					}
				}
			}
		}
	}
}

func (s *NewsService) load(ctx context.Context) []domain.NewsItem {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, newsCacheKey); err == nil {
			var items []domain.NewsItem
			if err := json.Unmarshal(data, &items); err == nil {
				metrics.CacheHits.WithLabelValues("news").Inc()
				return items
			}
		}
		metrics.CacheMisses.WithLabelValues("news").Inc()
	}

	items := s.source.Fetch(ctx)
	s.store(ctx, items)
	return items
}

// store caches the feed for 2 minutes.
func (s *NewsService) store(ctx context.Context, items []domain.NewsItem) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(items); err == nil {
		_ = s.cache.Set(ctx, newsCacheKey, data, 120)
	}
}
