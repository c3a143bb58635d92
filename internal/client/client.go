package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/Belphemur/PlutoDownloader/internal/cache"
	"github.com/Belphemur/PlutoDownloader/internal/config"
	"github.com/Belphemur/PlutoDownloader/internal/models"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
)

// thumbnailCacheGroup labels the thumbnail cache metrics.
const thumbnailCacheGroup = "thumbnails"

// Client fetches Pluto TV catalog pages and the artwork they reference
type Client interface {
	// LoadEpisodes fetches catalogURL and returns its episodes in document order.
	// Calling it again re-fetches the page; nothing is cached between loads.
	LoadEpisodes(ctx context.Context, catalogURL string) ([]models.Episode, error)

	// StreamEpisodes is LoadEpisodes delivered one episode at a time. A failed fetch
	// yields a single StreamResult with Err set. The channel is closed when done.
	StreamEpisodes(ctx context.Context, catalogURL string) <-chan models.StreamResult[models.Episode]

	// FetchThumbnail returns the image bytes at thumbnailURL, from cache when possible.
	FetchThumbnail(ctx context.Context, thumbnailURL string) ([]byte, error)

	// PrefetchThumbnails fetches the thumbnails of episodes concurrently and returns
	// the ones that succeeded keyed by URL. Individual failures are logged and skipped.
	PrefetchThumbnails(ctx context.Context, episodes []models.Episode) map[string][]byte

	// Close releases the thumbnail cache.
	Close() error
}

// client implements the Client interface
type client struct {
	httpClient *http.Client
	thumbnails cache.Cache
	breaker    circuitbreaker.CircuitBreaker[[]byte]
}

// NewClient creates a new client instance with proxy configuration if provided.
// A thumbnail cache that cannot be built (redis unreachable, sqlite file not writable)
// falls back to memory.
func NewClient(cfg *config.Config) Client {
	logger := config.GetLogger()

	timeout := 30 * time.Second
	if cfg.ClientTimeout != "" {
		if parsedTimeout, err := time.ParseDuration(cfg.ClientTimeout); err != nil {
			logger.Warn().Err(err).Str("timeout", cfg.ClientTimeout).Msg("Invalid timeout duration, using default 30s")
		} else {
			timeout = parsedTimeout
		}
	}

	// Clone DefaultTransport to keep its pooling and HTTP/2 settings
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	thumbnails, err := cache.NewFromConfig(cfg, thumbnailCacheGroup, cacheLogger{})
	if err != nil {
		logger.Warn().Err(err).Str("type", cfg.Cache.Type).Msg("Thumbnail cache unavailable, using in-memory cache")
		thumbnails, err = cache.New(cache.ProviderMemory, cache.ProviderConfig{
			MaxBytes: cfg.Cache.MaxBytes,
			Group:    thumbnailCacheGroup,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create in-memory thumbnail cache")
		}
	}

	return newClient(&http.Client{
		Timeout:   timeout,
		Transport: newCompressionTransport(baseTransport),
	}, thumbnails)
}

func newClient(httpClient *http.Client, thumbnails cache.Cache) *client {
	return &client{
		httpClient: httpClient,
		thumbnails: thumbnails,
		breaker:    newThumbnailBreaker(),
	}
}

// Close releases any resources held by the client, such as cache connections.
func (c *client) Close() error {
	return c.thumbnails.Close()
}

// cacheLogger forwards cache backend failures to the application logger.
type cacheLogger struct{}

func (cacheLogger) Error(msg string, err error) {
	logger := config.GetLogger()
	logger.Warn().Err(err).Msg(msg)
}
