package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Belphemur/PlutoDownloader/internal/client"
	"github.com/Belphemur/PlutoDownloader/internal/config"
	"github.com/Belphemur/PlutoDownloader/internal/metrics"
	"github.com/Belphemur/PlutoDownloader/internal/services"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
)

var version = "dev"

// Constructors and the state store, swapped out by tests.
var (
	newEpisodeClient   = client.NewClient
	newQueueRunner     = services.NewQueueRunnerFromConfig
	lastCatalogURL     = config.LastCatalogURL
	saveLastCatalogURL = config.SaveLastCatalogURL
)

var errNoCatalogURL = errors.New("no catalog URL: pass one as argument, set catalog_url or load a series once")

type rootOptions struct {
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "plutodl",
		Short: "List and download Pluto TV episodes",
		Long: `plutodl - list and download Pluto TV episodes

Reads a Pluto TV series page, extracts its episodes with season and episode
numbers, and downloads them one at a time with ffmpeg, yt-dlp or streamlink.

Settings are read from config.yaml and APP_* environment variables.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")
	root.Version = version
	root.SetVersionTemplate("plutodl {{.Version}}\n")

	root.AddCommand(
		newListCmd(opts),
		newSaveCmd(),
		newDownloadCmd(opts),
		newDirectCmd(opts),
		newMethodsCmd(opts),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.GetConfig()
	defer setupSentry(cfg)()
	defer startMetricsServer(cfg)()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		sentry.CaptureException(err)
		return 1
	}
	return 0
}

// setupSentry enables error reporting when a DSN is configured and returns the flush hook.
func setupSentry(cfg *config.Config) func() {
	if cfg.SentryDSN == "" {
		return func() {}
	}

	logger := config.GetLogger()
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:     cfg.SentryDSN,
		Release: "plutodl@" + version,
	}); err != nil {
		logger.Warn().Err(err).Msg("Failed to initialise Sentry, error reporting disabled")
		return func() {}
	}

	logger.Debug().Msg("Sentry error reporting enabled")
	return func() {
		sentry.Flush(2 * time.Second)
	}
}

// startMetricsServer serves /metrics while the command runs and returns the shutdown hook.
func startMetricsServer(cfg *config.Config) func() {
	if !cfg.Metrics.Enabled {
		return func() {}
	}

	logger := config.GetLogger()
	server := metrics.NewHTTPServer(cfg.Metrics.Address, cfg.Metrics.Port)
	go func() {
		logger.Info().Str("address", server.Addr).Msg("Starting Prometheus metrics HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Failed to serve metrics")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown metrics server")
		}
	}
}

// catalogURLFrom returns the URL given on the command line, falling back to catalog_url
// and then to the URL of the last series loaded successfully.
func catalogURLFrom(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if url := config.GetConfig().CatalogURL; url != "" {
		return url, nil
	}
	if url := lastCatalogURL(); url != "" {
		return url, nil
	}
	return "", errNoCatalogURL
}

// rememberCatalogURL records a catalog URL that loaded successfully. Failures are
// logged and otherwise ignored.
func rememberCatalogURL(url string) {
	if err := saveLastCatalogURL(url); err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("url", url).Msg("Failed to remember catalog URL")
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printJSONLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
