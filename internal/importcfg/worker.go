// Package importcfg checks import configs written by the landscape generator
// and flattens them into placement records.
//
// A config describes the generated landscape either as a grid of chunk meshes
// ("chunks") or as one mesh ("complex"), each carrying external models placed
// on it. Validation stats every referenced file; extraction re-reads the
// config and trusts the caller's mode.
package importcfg

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
)

// Dependencies holds the collaborators of a Worker.
type Dependencies struct {
	// Fs is the filesystem configs and models are read from. Defaults to the OS filesystem.
	Fs afero.Fs
	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
	// BaseDir is the directory relative paths are resolved against.
	// When empty, the process working directory is used.
	BaseDir string
}

// Worker validates import configs and extracts import info from them.
// It holds no state between calls.
type Worker struct {
	fs      afero.Fs
	log     *slog.Logger
	baseDir string
}

// New creates a Worker.
func New(deps Dependencies) *Worker {
	w := &Worker{
		fs:      deps.Fs,
		log:     deps.Logger,
		baseDir: deps.BaseDir,
	}
	if w.fs == nil {
		w.fs = afero.NewOsFs()
	}
	if w.log == nil {
		w.log = slog.Default()
	}
	return w
}

// LoadDocument reads the JSON object at path.
func (w *Worker) LoadDocument(path string) (map[string]any, error) {
	abs, err := w.absPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return readDocument(w.fs, abs)
}

// absPath resolves p against BaseDir, or the working directory when unset.
func (w *Worker) absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	if w.baseDir != "" {
		return filepath.Abs(filepath.Join(w.baseDir, p))
	}
	return filepath.Abs(p)
}

// fileExists returns ErrReferential unless p names an existing file.
func (w *Worker) fileExists(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrReferential)
	}
	abs, err := w.absPath(p)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrReferential, p, err)
	}
	if _, err := w.fs.Stat(abs); err != nil {
		return fmt.Errorf("%w: %q", ErrReferential, p)
	}
	return nil
}

// fileExistsOrEmpty is fileExists for optional paths.
func (w *Worker) fileExistsOrEmpty(p string) error {
	if p == "" {
		return nil
	}
	return w.fileExists(p)
}
