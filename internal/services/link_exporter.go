package services

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Belphemur/PlutoDownloader/internal/config"
	"github.com/Belphemur/PlutoDownloader/internal/models"
)

// ErrNoEpisodes is returned when saving an empty episode list
var ErrNoEpisodes = errors.New("no episodes to save")

// WriteLinkList writes one block per episode: title, description, URL and a blank line.
func WriteLinkList(w io.Writer, episodes []models.Episode) error {
	bw := bufio.NewWriter(w)
	for _, ep := range episodes {
		if _, err := fmt.Fprintf(bw, "%s\n%s\n%s\n\n", ep.Title, ep.Description, ep.URL); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveLinkList writes the episode link list to path as UTF-8 text, replacing any existing file.
func SaveLinkList(path string, episodes []models.Episode) error {
	if len(episodes) == 0 {
		return ErrNoEpisodes
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create link list: %w", err)
	}

	if err := WriteLinkList(f, episodes); err != nil {
		_ = f.Close()
		return fmt.Errorf("write link list: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close link list: %w", err)
	}

	logger := config.GetLogger()
	logger.Info().Str("path", path).Int("episodes", len(episodes)).Msg("Saved episode link list")
	return nil
}
