package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Belphemur/PlutoDownloader/internal/apperrors"
	"github.com/Belphemur/PlutoDownloader/internal/config"
	"github.com/Belphemur/PlutoDownloader/internal/metrics"
	"github.com/Belphemur/PlutoDownloader/internal/models"
	"github.com/Belphemur/PlutoDownloader/internal/parser"
)

// LoadEpisodes fetches the catalog page and extracts its episodes
func (c *client) LoadEpisodes(ctx context.Context, catalogURL string) ([]models.Episode, error) {
	logger := config.GetLogger()
	logger.Info().Str("url", catalogURL).Msg("Loading episodes from catalog page")

	body, contentType, err := c.fetch(ctx, catalogURL)
	if err != nil {
		metrics.PageFetchesTotal.WithLabelValues("error").Inc()
		logger.Error().Err(err).Str("url", catalogURL).Msg("Failed to fetch catalog page")
		return nil, err
	}
	metrics.PageFetchesTotal.WithLabelValues("success").Inc()

	reader, err := parser.NewUTF8Reader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", catalogURL, err)
	}

	episodes, err := parser.NewEpisodeParser(catalogURL).ParseHtml(reader)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", catalogURL, err)
	}
	metrics.EpisodesExtractedTotal.Add(float64(len(episodes)))

	logger.Info().Str("url", catalogURL).Int("episodes", len(episodes)).Msg("Loaded episodes")
	return episodes, nil
}

// StreamEpisodes loads the catalog page and then delivers its episodes one at a time,
// stopping early when ctx is cancelled
func (c *client) StreamEpisodes(ctx context.Context, catalogURL string) <-chan models.StreamResult[models.Episode] {
	ch := make(chan models.StreamResult[models.Episode])

	go func() {
		defer close(ch)

		episodes, err := c.LoadEpisodes(ctx, catalogURL)
		if err != nil {
			select {
			case ch <- models.StreamResult[models.Episode]{Err: err}:
			case <-ctx.Done():
			}
			return
		}

		for _, ep := range episodes {
			select {
			case ch <- models.StreamResult[models.Episode]{Value: ep}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

// fetch performs an HTTP GET and returns the body with its Content-Type.
// Every failure, including a non-2xx status, is an *apperrors.ErrNetwork.
func (c *client) fetch(ctx context.Context, target string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", apperrors.NewNetworkError(target, err)
	}
	req.Header.Set("User-Agent", config.GetUserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", apperrors.NewNetworkError(target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", apperrors.NewStatusError(target, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", apperrors.NewNetworkError(target, fmt.Errorf("read body: %w", err))
	}
	return body, resp.Header.Get("Content-Type"), nil
}
