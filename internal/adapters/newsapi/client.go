package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
	"github.com/Sjnjen/safety-for-her/internal/pkg/metrics"
)

const (
	defaultQuery = `"women safety" OR "gender-based violence" OR harassment`
	pageSize     = 20
)

// Client implements ports.NewsSource against the NewsAPI everything endpoint.
// Like the place lookup, it never surfaces errors: a missing key, a transport
// failure or an empty answer all degrade to the built-in feed.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client. An empty apiKey is allowed; Fetch then always serves
// the built-in feed.
func New(apiURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:        apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch returns the latest categorised safety articles, or FallbackItems on
// any failure.
func (c *Client) Fetch(ctx context.Context) []domain.NewsItem {
	if c.apiKey == "" {
		metrics.NewsFallbacks.Inc()
		return FallbackItems()
	}

	items, err := c.fetchLive(ctx)
	if err != nil || len(items) == 0 {
		metrics.NewsFallbacks.Inc()
		slog.Warn("news feed degraded to built-in articles", "error", err)
		return FallbackItems()
	}
	return items
}

type apiResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (c *Client) fetchLive(ctx context.Context) ([]domain.NewsItem, error) {
	q := url.Values{}
	q.Set("q", defaultQuery)
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", fmt.Sprint(pageSize))
	q.Set("language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("newsapi status field %q", body.Status)
	}

	items := make([]domain.NewsItem, 0, len(body.Articles))
	for _, a := range body.Articles {
		if a.Title == "" {
			continue
		}
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		items = append(items, domain.NewsItem{
			Title:       a.Title,
			Excerpt:     a.Description,
			Category:    Categorize(a.Title + " " + a.Description),
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			Source:      a.Source.Name,
			PublishedAt: published,
		})
	}
	return items, nil
}

// Categorize maps free text onto a news category. Assault keywords win over
// harassment keywords; anything else is filed under safety tips.
func Categorize(text string) domain.NewsCategory {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "assault") || strings.Contains(lower, "attack") || strings.Contains(lower, "violence"):
		return domain.NewsAssault
	case strings.Contains(lower, "harass") || strings.Contains(lower, "catcall") || strings.Contains(lower, "stalking"):
		return domain.NewsHarassment
	default:
		return domain.NewsSafetyTips
	}
}

// FallbackItems returns the built-in feed served when the live source is
// unavailable.
func FallbackItems() []domain.NewsItem {
	day := func(d int) time.Time {
		return time.Date(2023, time.May, d, 0, 0, 0, 0, time.UTC)
	}
	return []domain.NewsItem{
		{
			Title:       "Increase in Gender-Based Violence Cases Reported",
			Excerpt:     "Recent statistics show a worrying increase in GBV cases across major cities.",
			Category:    domain.NewsAssault,
			ImageURL:    "https://source.unsplash.com/random/600x400/?violence",
			PublishedAt: day(15),
		},
		{
			Title:       "New Safety App Launched for Women",
			Excerpt:     "Local developers create app to help women alert contacts when in danger.",
			Category:    domain.NewsSafetyTips,
			ImageURL:    "https://source.unsplash.com/random/600x400/?safety",
			PublishedAt: day(14),
		},
		{
			Title:       "Street Harassment Campaign Gains Momentum",
			Excerpt:     "Community initiative aims to reduce catcalling and street harassment.",
			Category:    domain.NewsHarassment,
			ImageURL:    "https://source.unsplash.com/random/600x400/?protest",
			PublishedAt: day(13),
		},
		{
			Title:       "Self-Defense Workshops for Women",
			Excerpt:     "Free self-defense classes being offered at community centers.",
			Category:    domain.NewsSafetyTips,
			ImageURL:    "https://source.unsplash.com/random/600x400/?self-defense",
			PublishedAt: day(12),
		},
		{
			Title:       "Arrest Made in Recent Assault Case",
			Excerpt:     "Police apprehend suspect in connection with downtown assault.",
			Category:    domain.NewsAssault,
			ImageURL:    "https://source.unsplash.com/random/600x400/?police",
			PublishedAt: day(11),
		},
		{
			Title:       "Safe Ride Program Expands to More Areas",
			Excerpt:     "Initiative providing safe transportation for women expands coverage.",
			Category:    domain.NewsSafetyTips,
			ImageURL:    "https://source.unsplash.com/random/600x400/?taxi",
			PublishedAt: day(10),
		},
	}
}
