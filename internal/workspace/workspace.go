// Package workspace lays out the scratch directory used by a pipeline run.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	ierrors "github.com/five82/icecale/internal/errors"
	"github.com/five82/icecale/internal/util"
)

// Directory and file names inside the workspace root.
const (
	FramesRawDir      = "frames_raw"
	FramesUpscaledDir = "frames_upscaled"
	AudioFileName     = "audio.mka"
)

// Workspace is the fixed scratch layout. It is never removed after a run,
// and a later run at the same root reuses it.
type Workspace struct {
	Root           string
	FramesRaw      string
	FramesUpscaled string
	AudioFile      string
}

// Layout returns the workspace paths under parent/name without touching disk.
func Layout(parent, name string) *Workspace {
	root := filepath.Join(parent, name)
	return &Workspace{
		Root:           root,
		FramesRaw:      filepath.Join(root, FramesRawDir),
		FramesUpscaled: filepath.Join(root, FramesUpscaledDir),
		AudioFile:      filepath.Join(root, AudioFileName),
	}
}

// New creates the workspace directories under parent/name.
func New(parent, name string) (*Workspace, error) {
	ws := Layout(parent, name)
	for _, dir := range []string{ws.Root, ws.FramesRaw, ws.FramesUpscaled} {
		if err := util.EnsureDirectory(dir); err != nil {
			return nil, ierrors.NewIOError(fmt.Sprintf("failed to create workspace directory %s", dir), err)
		}
	}
	return ws, nil
}

// HasAudio reports whether audio extraction left a non-empty track.
func (w *Workspace) HasAudio() bool {
	return util.NonEmptyFile(w.AudioFile)
}

// Reset discards frames and audio left by an earlier run so they cannot
// leak into this one. The directories themselves are kept.
func (w *Workspace) Reset() error {
	for _, dir := range []string{w.FramesRaw, w.FramesUpscaled} {
		if err := os.RemoveAll(dir); err != nil {
			return ierrors.NewIOError(fmt.Sprintf("failed to clear %s", dir), err)
		}
		if err := util.EnsureDirectory(dir); err != nil {
			return ierrors.NewIOError(fmt.Sprintf("failed to create workspace directory %s", dir), err)
		}
	}
	if err := os.Remove(w.AudioFile); err != nil && !os.IsNotExist(err) {
		return ierrors.NewIOError(fmt.Sprintf("failed to remove %s", w.AudioFile), err)
	}
	return nil
}
