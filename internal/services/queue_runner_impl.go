package services

import (
	"context"
	"fmt"

	"github.com/Belphemur/PlutoDownloader/internal/apperrors"
	"github.com/Belphemur/PlutoDownloader/internal/config"
	"github.com/Belphemur/PlutoDownloader/internal/metrics"
	"github.com/Belphemur/PlutoDownloader/internal/models"

	"github.com/google/uuid"
)

// DefaultQueueRunner implements QueueRunner on top of an Executor
type DefaultQueueRunner struct {
	executor    Executor
	executables map[models.DownloadMethod]string
}

// NewQueueRunner creates a runner. executables optionally overrides argv[0] per method
// (e.g. an absolute path to ffmpeg); methods without an entry use the tool name.
func NewQueueRunner(executor Executor, executables map[models.DownloadMethod]string) QueueRunner {
	return &DefaultQueueRunner{
		executor:    executor,
		executables: executables,
	}
}

// NewQueueRunnerFromConfig creates a runner using real processes and the executable
// paths configured under download.*
func NewQueueRunnerFromConfig(cfg *config.Config) QueueRunner {
	executables := map[models.DownloadMethod]string{}
	if cfg.Download.FFmpegPath != "" {
		executables[models.MethodFFmpeg] = cfg.Download.FFmpegPath
	}
	if cfg.Download.YtDlpPath != "" {
		executables[models.MethodYtDlp] = cfg.Download.YtDlpPath
	}
	if cfg.Download.StreamlinkPath != "" {
		executables[models.MethodStreamlink] = cfg.Download.StreamlinkPath
	}
	return NewQueueRunner(NewProcessExecutor(), executables)
}

// Run implements QueueRunner
func (r *DefaultQueueRunner) Run(ctx context.Context, requests []models.DownloadRequest, method string) (<-chan models.QueueEvent, error) {
	m, err := models.ParseDownloadMethod(method)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	// Sized for every event of the run so the worker never blocks on a slow consumer
	ch := make(chan models.QueueEvent, 2*len(requests)+1)

	go func() {
		defer close(ch)
		logger := config.GetLogger().With().Str("run_id", runID).Str("method", m.String()).Logger()
		logger.Info().Int("items", len(requests)).Msg("Starting download queue")

		failed := 0
		for i, req := range requests {
			if ctx.Err() != nil {
				remaining := len(requests) - i
				logger.Warn().Int("remaining", remaining).Msg("Download queue cancelled")
				metrics.QueueRunsTotal.WithLabelValues("cancelled").Inc()
				ch <- models.QueueEvent{
					Kind:      models.QueueEventOutcome,
					RunID:     runID,
					Index:     -1,
					Message:   fmt.Sprintf("Cancelado: %d itens restantes", remaining),
					Cancelled: true,
					Err:       ctx.Err(),
				}
				return
			}

			ch <- models.QueueEvent{
				Kind:    models.QueueEventProgress,
				RunID:   runID,
				Index:   i,
				Title:   req.Title,
				Message: "Baixando: " + req.Title,
			}

			outcome := r.download(m, i, req)
			outcome.RunID = runID
			if outcome.Succeeded {
				logger.Info().Int("index", i).Str("title", req.Title).Str("path", req.DestinationPath).Msg("Download finished")
				metrics.QueueItemsTotal.WithLabelValues(m.String(), "success").Inc()
			} else {
				failed++
				logger.Error().Err(outcome.Err).Int("index", i).Str("title", req.Title).Msg("Download failed")
				metrics.QueueItemsTotal.WithLabelValues(m.String(), "error").Inc()
			}
			ch <- outcome
		}

		logger.Info().Int("items", len(requests)).Int("failed", failed).Msg("Download queue finished")
		metrics.QueueRunsTotal.WithLabelValues("completed").Inc()
	}()

	return ch, nil
}

// download runs a single request and converts any failure into an outcome event.
func (r *DefaultQueueRunner) download(method models.DownloadMethod, index int, req models.DownloadRequest) models.QueueEvent {
	failure := func(err error) models.QueueEvent {
		return models.QueueEvent{
			Kind:    models.QueueEventOutcome,
			Index:   index,
			Title:   req.Title,
			Message: "Erro ao baixar: " + req.Title,
			Err:     err,
		}
	}

	argv, err := BuildCommand(method, req.SourceURL, req.DestinationPath)
	if err != nil {
		return failure(err)
	}
	if exe, ok := r.executables[method]; ok {
		argv[0] = exe
	}

	code, err := r.executor.Execute(argv)
	if err != nil {
		return failure(err)
	}
	if code != 0 {
		return failure(&apperrors.ErrExitStatus{Executable: argv[0], Code: code})
	}

	return models.QueueEvent{
		Kind:      models.QueueEventOutcome,
		Index:     index,
		Title:     req.Title,
		Message:   "Concluído: " + req.Title,
		Succeeded: true,
	}
}
