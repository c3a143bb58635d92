package models

import (
	"github.com/Belphemur/PlutoDownloader/internal/apperrors"
)

// DownloadMethod identifies the external tool used to download a stream
type DownloadMethod int

const (
	MethodUnknown DownloadMethod = iota
	MethodFFmpeg
	MethodYtDlp
	MethodStreamlink
)

// String returns the method name, which is also the executable name
func (m DownloadMethod) String() string {
	switch m {
	case MethodFFmpeg:
		return "ffmpeg"
	case MethodYtDlp:
		return "yt-dlp"
	case MethodStreamlink:
		return "streamlink"
	default:
		return "unknown"
	}
}

// DownloadMethods returns every supported method in the order shells should offer them.
func DownloadMethods() []DownloadMethod {
	return []DownloadMethod{MethodFFmpeg, MethodYtDlp, MethodStreamlink}
}

// ParseDownloadMethod converts a method name to a DownloadMethod.
// Names must match exactly; anything else, including a different case or surrounding
// whitespace, yields an *apperrors.ErrConfiguration.
func ParseDownloadMethod(name string) (DownloadMethod, error) {
	switch name {
	case "ffmpeg":
		return MethodFFmpeg, nil
	case "yt-dlp":
		return MethodYtDlp, nil
	case "streamlink":
		return MethodStreamlink, nil
	default:
		return MethodUnknown, apperrors.NewUnknownMethodError(name)
	}
}

// MarshalText implements encoding.TextMarshaler
func (m DownloadMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *DownloadMethod) UnmarshalText(data []byte) error {
	parsed, err := ParseDownloadMethod(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
