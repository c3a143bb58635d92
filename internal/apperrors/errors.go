package apperrors

import "fmt"

// ErrNetwork represents a failed page or thumbnail fetch: unreachable host, timeout,
// or a non-2xx response.
type ErrNetwork struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

// Error implements the error interface.
func (e *ErrNetwork) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s failed", e.URL)
}

// Unwrap returns the underlying transport error, if any.
func (e *ErrNetwork) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrNetwork) Is(target error) bool {
	_, ok := target.(*ErrNetwork)
	return ok
}

// NewNetworkError wraps a transport error for the given URL.
func NewNetworkError(url string, err error) *ErrNetwork {
	return &ErrNetwork{URL: url, Err: err}
}

// NewStatusError reports a non-2xx response for the given URL.
func NewStatusError(url string, statusCode int) *ErrNetwork {
	return &ErrNetwork{URL: url, StatusCode: statusCode}
}

// ErrConfiguration is returned when a configured value is outside its closed set,
// e.g. an unknown download method.
type ErrConfiguration struct {
	Key   string
	Value string
}

// Error implements the error interface.
func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Key, e.Value)
}

// Is allows for error checking with errors.Is().
func (e *ErrConfiguration) Is(target error) bool {
	_, ok := target.(*ErrConfiguration)
	return ok
}

// NewUnknownMethodError creates a configuration error for an unsupported download method.
func NewUnknownMethodError(method string) *ErrConfiguration {
	return &ErrConfiguration{
		Key:   "download method",
		Value: method,
	}
}

// ErrLaunch is returned when an external downloader cannot be found or started.
type ErrLaunch struct {
	Executable string
	Err        error
}

// Error implements the error interface.
func (e *ErrLaunch) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Executable, e.Err)
}

// Unwrap returns the underlying start error.
func (e *ErrLaunch) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrLaunch) Is(target error) bool {
	_, ok := target.(*ErrLaunch)
	return ok
}

// ErrExitStatus is returned when an external downloader exits with a non-zero code.
type ErrExitStatus struct {
	Executable string
	Code       int
}

// Error implements the error interface.
func (e *ErrExitStatus) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Executable, e.Code)
}

// Is allows for error checking with errors.Is().
func (e *ErrExitStatus) Is(target error) bool {
	_, ok := target.(*ErrExitStatus)
	return ok
}
