// Package upscale runs the super-resolution tool over a directory of frames.
package upscale

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/five82/icecale/internal/config"
	ierrors "github.com/five82/icecale/internal/errors"
	"github.com/five82/icecale/internal/logging"
	"github.com/five82/icecale/internal/runner"
	"github.com/five82/icecale/internal/util"
)

// Progress reports how many frames have been upscaled.
type Progress struct {
	Completed int64
	Total     int64
}

// Percent returns the completion percentage, or false when the total is unknown.
func (p Progress) Percent() (float64, bool) {
	if p.Total <= 0 {
		return 0, false
	}
	return math.Min(100, 100*float64(p.Completed)/float64(p.Total)), true
}

// ProgressFunc is called after each frame succeeds.
type ProgressFunc func(Progress)

// EnumerateFrames returns the regular files in dir sorted by name.
func EnumerateFrames(dir string) ([]string, error) {
	if !util.DirectoryExists(dir) {
		return nil, ierrors.NewIOError(fmt.Sprintf("frames directory %s does not exist", dir), nil).InStage(ierrors.StageUpscale)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ierrors.NewIOError(fmt.Sprintf("cannot read frames directory %s", dir), err).InStage(ierrors.StageUpscale)
	}

	var frames []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		frames = append(frames, filepath.Join(dir, entry.Name()))
	}

	if len(frames) == 0 {
		return nil, ierrors.NewEmptyInputError(ierrors.StageUpscale, fmt.Sprintf("no frames found in %s", dir))
	}

	sort.Strings(frames)
	return frames, nil
}

// Driver invokes the upscaler once per frame.
type Driver struct {
	Runner    runner.Runner
	ToolPath  string
	Model     string
	Scale     int
	GPUID     int
	Logger    *logging.Logger
	// OnStart, when set, receives the progress total before the first frame.
	OnStart   func(total int64)
	// OnWarning, when set, receives non-fatal notices raised during the run.
	OnWarning func(message string)
}

// NewDriver creates a Driver with the default model, scale and device.
func NewDriver(r runner.Runner, toolPath string) *Driver {
	return &Driver{
		Runner:   r,
		ToolPath: toolPath,
		Model:    config.DefaultModel,
		Scale:    config.DefaultScale,
		GPUID:    config.DefaultGPUID,
	}
}

func (d *Driver) frameArgs(in, out string) []string {
	return []string{
		"-i", in,
		"-o", out,
		"-n", d.Model,
		"-s", strconv.Itoa(d.Scale),
		"-g", strconv.Itoa(d.GPUID),
	}
}

// Run upscales every frame in inDir into outDir under the same file name,
// strictly in order. The first failing frame aborts the run; later frames
// are not attempted. The progress total is the number of frames found in
// inDir; totalHint is only compared against it and a mismatch is reported
// through OnWarning. It returns the number of frames upscaled.
func (d *Driver) Run(ctx context.Context, inDir, outDir string, totalHint int64, onProgress ProgressFunc) (int64, error) {
	frames, err := EnumerateFrames(inDir)
	if err != nil {
		return 0, err
	}

	total := int64(len(frames))
	log := logging.OrGlobal(d.Logger)
	if totalHint > 0 && totalHint != total {
		msg := fmt.Sprintf("metadata reported %d frames but %d were extracted; progress uses %d", totalHint, total, total)
		log.Warn("frame count mismatch", "expected", totalHint, "found", total)
		if d.OnWarning != nil {
			d.OnWarning(msg)
		}
	}
	log.Info("upscaling frames", "frames", len(frames), "total", total, "model", d.Model, "scale", d.Scale)
	if d.OnStart != nil {
		d.OnStart(total)
	}

	var completed int64
	for _, frame := range frames {
		if err := ctx.Err(); err != nil {
			return completed, ierrors.WithStage(err, ierrors.StageUpscale)
		}

		out, err := d.Runner.Run(ctx, d.ToolPath, d.frameArgs(frame, filepath.Join(outDir, util.GetFilename(frame)))...)
		if err != nil {
			return completed, ierrors.WithStage(err, ierrors.StageUpscale)
		}
		if !out.Success() {
			return completed, ierrors.NewStageFailureError(ierrors.StageUpscale,
				fmt.Sprintf("failed to upscale frame %s", frame), d.ToolPath, out.ExitCode, out.Output)
		}

		completed++
		if onProgress != nil {
			onProgress(Progress{Completed: completed, Total: total})
		}
	}

	return completed, nil
}
