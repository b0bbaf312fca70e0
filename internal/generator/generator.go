// Package generator runs the landscape generator application.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// Errors returned by Runner.Run.
var (
	ErrWorkingDir    = errors.New("working directory not found")
	ErrNoApplication = errors.New("no app found")
	ErrNoSettings    = errors.New("no settings file found")
	ErrProcess       = errors.New("generator failed")
)

// Status is the outcome of a generator run.
type Status int

// Statuses reported to the caller.
const (
	StatusCancelled Status = iota
	StatusFinished
)

func (s Status) String() string {
	if s == StatusFinished {
		return "FINISHED"
	}
	return "CANCELLED"
}

// Request names the generator and its inputs. Relative Application and
// Settings paths are resolved against WorkingDir.
type Request struct {
	Application string
	Settings    string
	WorkingDir  string
}

// Dependencies holds the collaborators of a Runner. All fields are optional.
type Dependencies struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// Runner starts the generator as a child process.
type Runner struct {
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

// New creates a Runner. Output goes to the process' stdout/stderr by default.
func New(deps Dependencies) *Runner {
	r := &Runner{
		logger: deps.Logger,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.stderr == nil {
		r.stderr = os.Stderr
	}
	return r
}

// Run executes "<application> <settings>" inside the working directory and
// waits for it to exit.
func (r *Runner) Run(ctx context.Context, req Request) (Status, error) {
	if req.WorkingDir == "" {
		return StatusCancelled, ErrWorkingDir
	}
	// relative paths below are joined onto dir, which cmd.Dir would otherwise apply twice
	dir, err := filepath.Abs(req.WorkingDir)
	if err != nil {
		return StatusCancelled, fmt.Errorf("%w: %w", ErrWorkingDir, err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return StatusCancelled, fmt.Errorf("%w: %s", ErrWorkingDir, req.WorkingDir)
	}

	app := resolve(dir, req.Application)
	if !exists(app) {
		r.logger.Error("Generator not found", "application", req.Application)
		return StatusCancelled, fmt.Errorf("%w: %s", ErrNoApplication, req.Application)
	}
	if !exists(resolve(dir, req.Settings)) {
		r.logger.Error("Generator settings not found", "settings", req.Settings)
		return StatusCancelled, fmt.Errorf("%w: %s", ErrNoSettings, req.Settings)
	}

	cmd := exec.CommandContext(ctx, app, req.Settings)
	cmd.Dir = dir
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	r.logger.Info("Starting generator", "application", app, "settings", req.Settings, "workingDir", dir)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			r.logger.Error("Generator finished with error",
				"application", app,
				"settings", req.Settings,
				"code", exitErr.ExitCode(),
			)
			return StatusCancelled, fmt.Errorf("%w: exit code %d", ErrProcess, exitErr.ExitCode())
		}
		return StatusCancelled, fmt.Errorf("%w: %w", ErrProcess, err)
	}

	r.logger.Info("Generation succeeded")
	return StatusFinished, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
