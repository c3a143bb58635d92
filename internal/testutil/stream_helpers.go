package testutil

import (
	"context"

	"github.com/Belphemur/PlutoDownloader/internal/models"
)

// CollectEpisodes consumes an episode stream and returns the episodes in arrival order.
// This is a test helper and should not be used in production code.
func CollectEpisodes(ctx context.Context, stream <-chan models.StreamResult[models.Episode]) ([]models.Episode, error) {
	var episodes []models.Episode
	for {
		select {
		case result, ok := <-stream:
			if !ok {
				return episodes, nil
			}
			if result.Err != nil {
				return nil, result.Err
			}
			episodes = append(episodes, result.Value)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// CollectQueueEvents drains a queue event stream until it is closed.
// This is a test helper and should not be used in production code.
func CollectQueueEvents(ctx context.Context, stream <-chan models.QueueEvent) ([]models.QueueEvent, error) {
	var events []models.QueueEvent
	for {
		select {
		case event, ok := <-stream:
			if !ok {
				return events, nil
			}
			events = append(events, event)
		case <-ctx.Done():
			return events, ctx.Err()
		}
	}
}
