package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Belphemur/PlutoDownloader/internal/apperrors"
	"github.com/Belphemur/PlutoDownloader/internal/cache"
	"github.com/Belphemur/PlutoDownloader/internal/config"
	"github.com/Belphemur/PlutoDownloader/internal/models"
	"github.com/Belphemur/PlutoDownloader/internal/testutil"
)

func newTestClient(t *testing.T) *client {
	t.Helper()
	thumbnails, err := cache.New(cache.ProviderMemory, cache.ProviderConfig{Size: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	c := newClient(&http.Client{Timeout: 5 * time.Second, Transport: newCompressionTransport(nil)}, thumbnails)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func catalogServer(t *testing.T, hits *int64) *httptest.Server {
	t.Helper()
	page := testutil.GenerateCatalogHTML([]testutil.EpisodeCardOptions{
		{Href: "temporada-1/episodio-1", Text: "O Começo", ImageSrc: "/img/1.jpg"},
		{Href: "temporada-1/episodio-2", Text: "A Volta"},
	})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt64(hits, 1)
		}
		if r.URL.Path != "/br/on-demand/series/o-show/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("User-Agent") != config.GetUserAgent() {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_LoadEpisodes(t *testing.T) {
	server := catalogServer(t, nil)
	c := newTestClient(t)

	episodes, err := c.LoadEpisodes(context.Background(), server.URL+"/br/on-demand/series/o-show/")
	if err != nil {
		t.Fatalf("LoadEpisodes: %v", err)
	}
	if len(episodes) != 2 {
		t.Fatalf("Expected 2 episodes, got %d: %+v", len(episodes), episodes)
	}

	first := episodes[0]
	if first.URL != server.URL+"/br/on-demand/series/o-show/temporada-1/episodio-1" {
		t.Errorf("URL = %q", first.URL)
	}
	if first.Title != "O Começo" || first.Season != 1 || first.Number != 1 {
		t.Errorf("Unexpected first episode: %+v", first)
	}
	if first.FileName != "Temporada01_Episodio01_O_Começo.mp4" {
		t.Errorf("FileName = %q", first.FileName)
	}
	if episodes[1].Number != 2 {
		t.Errorf("Expected second episode number 2, got %d", episodes[1].Number)
	}
}

func TestClient_LoadEpisodes_RefreshRefetches(t *testing.T) {
	var hits int64
	server := catalogServer(t, &hits)
	c := newTestClient(t)
	url := server.URL + "/br/on-demand/series/o-show/"

	first, err := c.LoadEpisodes(context.Background(), url)
	if err != nil {
		t.Fatalf("LoadEpisodes: %v", err)
	}
	second, err := c.LoadEpisodes(context.Background(), url)
	if err != nil {
		t.Fatalf("LoadEpisodes (refresh): %v", err)
	}

	if atomic.LoadInt64(&hits) != 2 {
		t.Errorf("Expected 2 page fetches, got %d", hits)
	}
	if len(first) != len(second) {
		t.Errorf("Refresh changed episode count: %d vs %d", len(first), len(second))
	}
}

func TestClient_LoadEpisodes_StatusError(t *testing.T) {
	server := catalogServer(t, nil)
	c := newTestClient(t)

	_, err := c.LoadEpisodes(context.Background(), server.URL+"/missing")
	var netErr *apperrors.ErrNetwork
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected ErrNetwork, got %v", err)
	}
	if netErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", netErr.StatusCode)
	}
}

func TestClient_LoadEpisodes_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	c := newTestClient(t)
	_, err := c.LoadEpisodes(context.Background(), url)
	if !errors.Is(err, &apperrors.ErrNetwork{}) {
		t.Fatalf("Expected ErrNetwork, got %v", err)
	}
}

func TestClient_LoadEpisodes_Latin1Page(t *testing.T) {
	// "Episódio Único" encoded as ISO-8859-1
	page := []byte("<html><body><a href=\"/t1e4\">Epis\xf3dio \xdanico</a></body></html>")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write(page)
	}))
	defer server.Close()

	c := newTestClient(t)
	episodes, err := c.LoadEpisodes(context.Background(), server.URL+"/")
	if err != nil {
		t.Fatalf("LoadEpisodes: %v", err)
	}
	if len(episodes) != 1 {
		t.Fatalf("Expected 1 episode, got %d", len(episodes))
	}
	if episodes[0].Title != "Episódio Único" {
		t.Errorf("Title = %q", episodes[0].Title)
	}
	if episodes[0].Season != 1 || episodes[0].Number != 4 {
		t.Errorf("Expected T1E4, got S%d E%d", episodes[0].Season, episodes[0].Number)
	}
}

func TestClient_StreamEpisodes(t *testing.T) {
	server := catalogServer(t, nil)
	c := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	episodes, err := testutil.CollectEpisodes(ctx, c.StreamEpisodes(ctx, server.URL+"/br/on-demand/series/o-show/"))
	if err != nil {
		t.Fatalf("StreamEpisodes: %v", err)
	}
	if len(episodes) != 2 || episodes[0].Title != "O Começo" || episodes[1].Title != "A Volta" {
		t.Errorf("Unexpected stream result: %+v", episodes)
	}
}

func TestClient_StreamEpisodes_Error(t *testing.T) {
	server := catalogServer(t, nil)
	c := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var results []models.StreamResult[models.Episode]
	for r := range c.StreamEpisodes(ctx, server.URL+"/gone") {
		results = append(results, r)
	}
	if len(results) != 1 || !errors.Is(results[0].Err, &apperrors.ErrNetwork{}) {
		t.Errorf("Expected a single ErrNetwork result, got %+v", results)
	}
}

func TestClient_StreamEpisodes_CancelledConsumer(t *testing.T) {
	server := catalogServer(t, nil)
	c := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	stream := c.StreamEpisodes(ctx, server.URL+"/br/on-demand/series/o-show/")
	<-stream
	cancel()

	// The producer must observe cancellation and close the channel
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-stream:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("Stream was not closed after cancellation")
		}
	}
}

func TestNewClient_FallsBackToMemoryCache(t *testing.T) {
	cfg := &config.Config{ClientTimeout: "not-a-duration"}
	cfg.Cache.Type = "redis"
	cfg.Cache.TTL = "1h"
	cfg.Cache.Redis.Address = "localhost:59999"

	c := NewClient(cfg)
	defer c.Close()

	impl := c.(*client)
	if impl.httpClient.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want default 30s", impl.httpClient.Timeout)
	}
	impl.thumbnails.Set("k", []byte("v"))
	if _, ok := impl.thumbnails.Get("k"); !ok {
		t.Error("Expected fallback cache to be usable")
	}
}

func TestNewClient_ThumbnailsReusedAcrossRuns(t *testing.T) {
	var hits int64
	server := thumbnailServer(t, &hits)

	cfg := &config.Config{ClientTimeout: "5s"}
	cfg.Cache.Type = cache.ProviderSQLite
	cfg.Cache.TTL = "1h"
	cfg.Cache.SQLite.Path = filepath.Join(t.TempDir(), "cache.db")

	episodes := []models.Episode{
		models.NewEpisode("Um", "", "https://pluto.tv/s/T1E01", server.URL+"/img/1.jpg", 1, 1),
		models.NewEpisode("Dois", "", "https://pluto.tv/s/T1E02", server.URL+"/img/2.jpg", 1, 2),
	}

	for run := 0; run < 2; run++ {
		c := NewClient(cfg)
		thumbnails := c.PrefetchThumbnails(context.Background(), episodes)
		if err := c.Close(); err != nil {
			t.Fatalf("run %d: Close: %v", run, err)
		}
		if len(thumbnails) != 2 || string(thumbnails[server.URL+"/img/2.jpg"]) != "jpeg:/img/2.jpg" {
			t.Fatalf("run %d: thumbnails = %v", run, thumbnails)
		}
	}

	if got := atomic.LoadInt64(&hits); got != 2 {
		t.Errorf("Expected the second run to be served from the cache file, got %d requests", got)
	}
}

func TestNewClient_Proxy(t *testing.T) {
	cfg := &config.Config{ClientTimeout: "5s", ProxyConnectionString: "http://proxy.local:3128"}
	cfg.Cache.Type = cache.ProviderMemory
	cfg.Cache.TTL = "1h"

	c := NewClient(cfg)
	defer c.Close()

	impl := c.(*client)
	if impl.httpClient.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", impl.httpClient.Timeout)
	}
	transport := impl.httpClient.Transport.(*compressionTransport).next.(*http.Transport)
	req, _ := http.NewRequest(http.MethodGet, "https://pluto.tv/", nil)
	proxyURL, err := transport.Proxy(req)
	if err != nil || proxyURL == nil || proxyURL.Host != "proxy.local:3128" {
		t.Errorf("Proxy = %v, %v", proxyURL, err)
	}
}
