package models

import (
	"fmt"
	"strings"
)

// Episode represents one downloadable stream found on a catalog page
type Episode struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	URL          string `json:"url"`          // Absolute episode URL
	ThumbnailURL string `json:"thumbnailUrl"` // Empty when the anchor has no image
	Season       int    `json:"season"`
	Number       int    `json:"episode"`
	FileName     string `json:"fileName"`
}

// NewEpisode builds an Episode and derives its file name from season, number and title.
func NewEpisode(title, description, url, thumbnailURL string, season, number int) Episode {
	return Episode{
		Title:        title,
		Description:  description,
		URL:          url,
		ThumbnailURL: thumbnailURL,
		Season:       season,
		Number:       number,
		FileName:     EpisodeFileName(season, number, title),
	}
}

// EpisodeFileName returns Temporada{SS}_Episodio{EE}_{Title_With_Underscores}.mp4
func EpisodeFileName(season, number int, title string) string {
	return fmt.Sprintf("Temporada%02d_Episodio%02d_%s.mp4", season, number, strings.ReplaceAll(title, " ", "_"))
}
