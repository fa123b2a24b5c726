package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/hoopsight/hoopsight/internal/models"
	"github.com/hoopsight/hoopsight/internal/services"
)

// PredictionsClient fetches leaderboard and season data from the
// predictions backend. Each leaderboard fetch walks the endpoint
// fallback chain, feeding every stage through the normalizer, and the
// result is cached per season slug for the freshness window. All
// stages failing surfaces one error; partial data is never returned.
type PredictionsClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	cache      *services.CacheService
	cacheTTL   time.Duration
	normalizer *services.Normalizer
	logger     *logrus.Logger

	mu sync.Mutex
	// generation guards cache writes: a fetch that was superseded by a
	// newer one for the same slug must not overwrite its result.
	generation map[string]uint64
	tracked    map[string]bool
}

// NewPredictionsClient creates the upstream client. cache may be nil,
// which disables the freshness window (used by tests and the CLI).
func NewPredictionsClient(baseURL string, timeout time.Duration, ratePerSec int, breakerThreshold int, cache *services.CacheService, cacheTTL time.Duration, logger *logrus.Logger) *PredictionsClient {
	settings := gobreaker.Settings{
		Name:        "predictions-api",
		MaxRequests: uint32(breakerThreshold),
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Info("Circuit breaker state changed")
		},
	}

	if ratePerSec < 1 {
		ratePerSec = 1
	}

	return &PredictionsClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		breaker:    gobreaker.NewCircuitBreaker(settings),
		cache:      cache,
		cacheTTL:   cacheTTL,
		normalizer: services.NewNormalizer(logger),
		logger:     logger,
		generation: make(map[string]uint64),
		tracked:    make(map[string]bool),
	}
}

// FetchLeaderboard returns the canonical leaderboard for a season
// slug, serving from cache inside the freshness window.
func (c *PredictionsClient) FetchLeaderboard(ctx context.Context, seasonSlug string) (*models.Leaderboard, error) {
	c.track(seasonSlug)

	if c.cache != nil {
		var cached models.Leaderboard
		if err := c.cache.Get(ctx, services.LeaderboardCacheKey(seasonSlug), &cached); err == nil {
			return &cached, nil
		}
	}
	return c.fetchAndStore(ctx, seasonSlug)
}

// RefreshLeaderboard bypasses the cache and re-warms it. Used by the
// background refresh job once the freshness window has expired.
func (c *PredictionsClient) RefreshLeaderboard(ctx context.Context, seasonSlug string) error {
	_, err := c.fetchAndStore(ctx, seasonSlug)
	return err
}

// TrackedSlugs lists the season slugs requested since startup, for
// background re-warming.
func (c *PredictionsClient) TrackedSlugs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	slugs := make([]string, 0, len(c.tracked))
	for slug := range c.tracked {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

func (c *PredictionsClient) fetchAndStore(ctx context.Context, seasonSlug string) (*models.Leaderboard, error) {
	gen := c.beginFetch(seasonSlug)

	endpoints := []string{
		fmt.Sprintf("%s/api/v2/leaderboards/%s", c.baseURL, url.PathEscape(seasonSlug)),
		fmt.Sprintf("%s/api/v2/leaderboard/%s", c.baseURL, url.PathEscape(seasonSlug)),
		fmt.Sprintf("%s/api/v2/answers/all-by-season/?season_slug=%s", c.baseURL, url.QueryEscape(seasonSlug)),
	}

	var lastErr error
	for _, endpoint := range endpoints {
		body, err := c.get(ctx, endpoint)
		if err != nil {
			lastErr = err
			c.logger.WithFields(logrus.Fields{
				"component": "predictions_client",
				"endpoint":  endpoint,
				"season":    seasonSlug,
			}).WithError(err).Debug("Leaderboard endpoint failed, trying fallback")
			continue
		}

		board := c.normalizer.Normalize(body)
		if len(board.Entries) == 0 && board.Season == nil {
			lastErr = fmt.Errorf("endpoint %s returned an empty leaderboard", endpoint)
			continue
		}

		c.storeFetch(ctx, seasonSlug, gen, board)
		return board, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no leaderboard endpoints configured")
	}
	return nil, fmt.Errorf("leaderboard unavailable for season %q: %w", seasonSlug, lastErr)
}

// FetchSeasons returns the participated-seasons list for the picker.
func (c *PredictionsClient) FetchSeasons(ctx context.Context) ([]models.SeasonRef, error) {
	if c.cache != nil {
		var cached []models.SeasonRef
		if err := c.cache.Get(ctx, services.SeasonsCacheKey(), &cached); err == nil {
			return cached, nil
		}
	}

	body, err := c.get(ctx, fmt.Sprintf("%s/api/v2/seasons/user-participated", c.baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seasons: %w", err)
	}

	var seasons []models.SeasonRef
	if err := unmarshalSeasons(body, &seasons); err != nil {
		return nil, fmt.Errorf("failed to decode seasons: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, services.SeasonsCacheKey(), seasons, c.cacheTTL); err != nil {
			c.logger.WithError(err).Warn("Failed to cache seasons list")
		}
	}
	return seasons, nil
}

// unmarshalSeasons accepts both the bare list and the {seasons}
// envelope the backend has shipped at different times.
func unmarshalSeasons(body []byte, dest *[]models.SeasonRef) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, dest)
	}
	var env struct {
		Seasons []models.SeasonRef `json:"seasons"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	*dest = env.Seasons
	return nil
}

// get performs one rate-limited, circuit-broken GET; any non-2xx
// status is an error so the caller can fall back.
func (c *PredictionsClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *PredictionsClient) track(seasonSlug string) {
	c.mu.Lock()
	c.tracked[seasonSlug] = true
	c.mu.Unlock()
}

func (c *PredictionsClient) beginFetch(seasonSlug string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation[seasonSlug]++
	return c.generation[seasonSlug]
}

// storeFetch writes the result to cache unless a newer fetch for the
// same slug has started since.
func (c *PredictionsClient) storeFetch(ctx context.Context, seasonSlug string, gen uint64, board *models.Leaderboard) {
	if c.cache == nil {
		return
	}

	c.mu.Lock()
	stale := c.generation[seasonSlug] != gen
	c.mu.Unlock()
	if stale {
		return
	}

	if err := c.cache.Set(ctx, services.LeaderboardCacheKey(seasonSlug), board, c.cacheTTL); err != nil {
		c.logger.WithError(err).WithField("season", seasonSlug).Warn("Failed to cache leaderboard")
	}
}
