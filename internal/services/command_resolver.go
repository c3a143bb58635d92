package services

import (
	"github.com/Belphemur/PlutoDownloader/internal/apperrors"
	"github.com/Belphemur/PlutoDownloader/internal/models"
)

// ResolveCommand builds the argument vector for downloading sourceURL into
// destinationPath with the named method. Unknown methods fail with
// *apperrors.ErrConfiguration.
func ResolveCommand(method, sourceURL, destinationPath string) ([]string, error) {
	m, err := models.ParseDownloadMethod(method)
	if err != nil {
		return nil, err
	}
	return BuildCommand(m, sourceURL, destinationPath)
}

// BuildCommand builds the argument vector for a parsed download method.
// argv[0] is the tool name; callers wanting a custom executable path replace it.
func BuildCommand(method models.DownloadMethod, sourceURL, destinationPath string) ([]string, error) {
	switch method {
	case models.MethodFFmpeg:
		return []string{
			"ffmpeg", "-i", sourceURL,
			"-c", "copy",
			"-bsf:a", "aac_adtstoasc",
			"-movflags", "faststart",
			destinationPath,
		}, nil
	case models.MethodYtDlp:
		return []string{"yt-dlp", "--fixup", "never", "-o", destinationPath, sourceURL}, nil
	case models.MethodStreamlink:
		return []string{"streamlink", "--hls-live-restart", sourceURL, "best", "-o", destinationPath}, nil
	default:
		return nil, apperrors.NewUnknownMethodError(method.String())
	}
}
