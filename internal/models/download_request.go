package models

import "path/filepath"

// DownloadRequest represents one queued download: what to fetch and where to write it
type DownloadRequest struct {
	Title           string
	SourceURL       string
	DestinationPath string
}

// NewDownloadRequest queues an episode into outputDir using its derived file name.
func NewDownloadRequest(ep Episode, outputDir string) DownloadRequest {
	return DownloadRequest{
		Title:           ep.Title,
		SourceURL:       ep.URL,
		DestinationPath: filepath.Join(outputDir, ep.FileName),
	}
}

// NewDirectDownloadRequest queues a raw stream URL. The output file's base name doubles as the title.
func NewDirectDownloadRequest(streamURL, outputPath string) DownloadRequest {
	return DownloadRequest{
		Title:           filepath.Base(outputPath),
		SourceURL:       streamURL,
		DestinationPath: outputPath,
	}
}
