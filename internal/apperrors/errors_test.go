// Package apperrors tests verify the custom error types (ErrNetwork,
// ErrConfiguration, ErrLaunch, ErrExitStatus), their Error() messages,
// Is() matching semantics and compatibility with errors.Is()/errors.As()
// through fmt.Errorf wrapping.
package apperrors

import (
	"errors"
	"fmt"
	"os/exec"
	"testing"
)

// ---------------------------------------------------------------------------
// ErrNetwork
// ---------------------------------------------------------------------------

func TestErrNetwork_Error(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      *ErrNetwork
		expected string
	}{
		{
			name:     "status code",
			err:      NewStatusError("https://pluto.tv/x", 503),
			expected: "fetch https://pluto.tv/x: unexpected status 503",
		},
		{
			name:     "transport error",
			err:      NewNetworkError("https://pluto.tv/x", errors.New("connection refused")),
			expected: "fetch https://pluto.tv/x: connection refused",
		},
		{
			name:     "no details",
			err:      &ErrNetwork{URL: "https://pluto.tv/x"},
			expected: "fetch https://pluto.tv/x failed",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrNetwork_IsAndUnwrap(t *testing.T) {
	t.Parallel()
	cause := errors.New("i/o timeout")
	err := fmt.Errorf("load catalog: %w", NewNetworkError("https://pluto.tv/x", cause))

	if !errors.Is(err, &ErrNetwork{}) {
		t.Error("expected errors.Is to match *ErrNetwork through wrapping")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the wrapped cause")
	}
	if errors.Is(err, &ErrLaunch{}) {
		t.Error("expected errors.Is not to match *ErrLaunch")
	}

	var netErr *ErrNetwork
	if !errors.As(err, &netErr) {
		t.Fatal("expected errors.As to extract *ErrNetwork")
	}
	if netErr.URL != "https://pluto.tv/x" {
		t.Errorf("URL = %q", netErr.URL)
	}
}

// ---------------------------------------------------------------------------
// ErrConfiguration
// ---------------------------------------------------------------------------

func TestErrConfiguration(t *testing.T) {
	t.Parallel()
	err := NewUnknownMethodError("wget")

	if got, want := err.Error(), `invalid download method "wget"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(fmt.Errorf("resolve: %w", err), &ErrConfiguration{}) {
		t.Error("expected errors.Is to match *ErrConfiguration")
	}
	if errors.Is(err, &ErrNetwork{}) {
		t.Error("expected errors.Is not to match *ErrNetwork")
	}
}

// ---------------------------------------------------------------------------
// ErrLaunch / ErrExitStatus
// ---------------------------------------------------------------------------

func TestErrLaunch(t *testing.T) {
	t.Parallel()
	err := &ErrLaunch{Executable: "streamlink", Err: exec.ErrNotFound}

	if got, want := err.Error(), "failed to launch streamlink: executable file not found in $PATH"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Error("expected errors.Is to reach exec.ErrNotFound")
	}
	if !errors.Is(err, &ErrLaunch{}) {
		t.Error("expected errors.Is to match *ErrLaunch")
	}
}

func TestErrExitStatus(t *testing.T) {
	t.Parallel()
	err := &ErrExitStatus{Executable: "ffmpeg", Code: 1}

	if got, want := err.Error(), "ffmpeg exited with status 1"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, &ErrExitStatus{}) {
		t.Error("expected errors.Is to match *ErrExitStatus")
	}
	if errors.Is(err, &ErrLaunch{}) {
		t.Error("expected errors.Is not to match *ErrLaunch")
	}
}
