package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Belphemur/PlutoDownloader/internal/apperrors"
	"github.com/Belphemur/PlutoDownloader/internal/config"
	"github.com/Belphemur/PlutoDownloader/internal/models"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"golang.org/x/sync/errgroup"
)

const (
	// thumbnailFailureThreshold consecutive failures open the breaker.
	thumbnailFailureThreshold = 5
	// thumbnailBreakerDelay is how long the breaker stays open before probing again.
	thumbnailBreakerDelay = 30 * time.Second
	// thumbnailPrefetchLimit caps concurrent thumbnail requests.
	thumbnailPrefetchLimit = 4
)

var errEmptyThumbnailURL = errors.New("empty thumbnail URL")

// newThumbnailBreaker stops hammering the image CDN once it keeps failing.
// Cancelled requests do not count as failures.
func newThumbnailBreaker() circuitbreaker.CircuitBreaker[[]byte] {
	return circuitbreaker.NewBuilder[[]byte]().
		HandleIf(func(_ []byte, err error) bool {
			return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}).
		WithFailureThreshold(thumbnailFailureThreshold).
		WithDelay(thumbnailBreakerDelay).
		Build()
}

// FetchThumbnail returns the thumbnail bytes, serving repeated URLs from the cache
func (c *client) FetchThumbnail(ctx context.Context, thumbnailURL string) ([]byte, error) {
	if thumbnailURL == "" {
		return nil, apperrors.NewNetworkError(thumbnailURL, errEmptyThumbnailURL)
	}
	if data, ok := c.thumbnails.Get(thumbnailURL); ok {
		return data, nil
	}

	data, err := failsafe.Get(func() ([]byte, error) {
		body, _, err := c.fetch(ctx, thumbnailURL)
		return body, err
	}, c.breaker)
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpen) {
			return nil, apperrors.NewNetworkError(thumbnailURL, err)
		}
		return nil, err
	}

	c.thumbnails.Set(thumbnailURL, data)
	return data, nil
}

// PrefetchThumbnails warms the cache for every distinct thumbnail of episodes
func (c *client) PrefetchThumbnails(ctx context.Context, episodes []models.Episode) map[string][]byte {
	logger := config.GetLogger()

	var mu sync.Mutex
	results := make(map[string][]byte)
	seen := make(map[string]struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(thumbnailPrefetchLimit)

	for _, ep := range episodes {
		ep := ep
		thumbnailURL := ep.ThumbnailURL
		if thumbnailURL == "" {
			continue
		}
		if _, dup := seen[thumbnailURL]; dup {
			continue
		}
		seen[thumbnailURL] = struct{}{}

		g.Go(func() error {
			data, err := c.FetchThumbnail(gctx, thumbnailURL)
			if err != nil {
				logger.Warn().Err(err).Str("url", thumbnailURL).Str("episode", ep.Title).Msg("Failed to fetch thumbnail")
				return nil
			}
			mu.Lock()
			results[thumbnailURL] = data
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	logger.Debug().Int("requested", len(seen)).Int("fetched", len(results)).Msg("Prefetched thumbnails")
	return results
}
