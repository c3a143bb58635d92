package services

import (
	"context"

	"github.com/Belphemur/PlutoDownloader/internal/models"
)

// QueueRunner downloads a list of requests one at a time with an external tool
type QueueRunner interface {
	// Run validates method and starts a worker that processes requests in order.
	// Every request yields a progress event followed by exactly one outcome; failures
	// never stop the queue. The channel is closed once the run is over.
	//
	// ctx is only observed between items. A cancelled run emits one terminal
	// outcome with Cancelled set instead of starting the next item.
	Run(ctx context.Context, requests []models.DownloadRequest, method string) (<-chan models.QueueEvent, error)
}

// RunWithCallback runs the queue and invokes onEvent for every event on the caller's
// goroutine, returning when the run is over.
func RunWithCallback(ctx context.Context, runner QueueRunner, requests []models.DownloadRequest, method string, onEvent func(models.QueueEvent)) error {
	events, err := runner.Run(ctx, requests, method)
	if err != nil {
		return err
	}
	for event := range events {
		onEvent(event)
	}
	return nil
}
