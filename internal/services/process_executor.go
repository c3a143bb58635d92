package services

import (
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/Belphemur/PlutoDownloader/internal/apperrors"
	"github.com/Belphemur/PlutoDownloader/internal/config"
)

// Executor runs an external process to completion
type Executor interface {
	// Execute runs argv and returns its exit code. A process that cannot be found or
	// started yields an *apperrors.ErrLaunch.
	Execute(argv []string) (int, error)
}

// ProcessExecutor runs commands with os/exec, forwarding the tool's output
type ProcessExecutor struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewProcessExecutor creates an executor that sends both output streams of the tool to
// the current process' stderr, keeping stdout for the CLI's own output.
func NewProcessExecutor() *ProcessExecutor {
	return &ProcessExecutor{
		Stdout: os.Stderr,
		Stderr: os.Stderr,
	}
}

// Execute runs argv synchronously. The process is not bound to a context; once
// started it runs until the tool exits.
func (e *ProcessExecutor) Execute(argv []string) (int, error) {
	if len(argv) == 0 {
		return -1, &apperrors.ErrLaunch{Executable: "", Err: errors.New("empty command")}
	}

	logger := config.GetLogger()
	logger.Debug().Strs("argv", argv).Msg("Starting external process")

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Start(); err != nil {
		return -1, &apperrors.ErrLaunch{Executable: argv[0], Err: err}
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, &apperrors.ErrLaunch{Executable: argv[0], Err: err}
	}

	return 0, nil
}
