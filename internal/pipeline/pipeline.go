// Package pipeline runs the linear upscale sequence:
// validate, probe, split, upscale, assemble.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/five82/icecale/internal/config"
	ierrors "github.com/five82/icecale/internal/errors"
	"github.com/five82/icecale/internal/ffmpeg"
	"github.com/five82/icecale/internal/ffprobe"
	"github.com/five82/icecale/internal/logging"
	"github.com/five82/icecale/internal/reporter"
	"github.com/five82/icecale/internal/runner"
	"github.com/five82/icecale/internal/toolchain"
	"github.com/five82/icecale/internal/upscale"
	"github.com/five82/icecale/internal/util"
	"github.com/five82/icecale/internal/workspace"
	"github.com/google/uuid"
)

// Deps are the collaborators of a run.
type Deps struct {
	Runner   runner.Runner
	Locator  toolchain.Locator
	Config   *config.Config
	Reporter reporter.Reporter
	Logger   *logging.Logger
}

// Result describes a finished run.
type Result struct {
	RunID          string
	OutputPath     string
	Metadata       ffprobe.VideoMetadata
	OutputWidth    int
	OutputHeight   int
	HasAudio       bool
	FramesUpscaled int64
	OutputSize     uint64
	Workspace      string
	Elapsed        time.Duration
}

// run carries the per-invocation state shared by the stage functions.
type run struct {
	deps Deps
	cfg  *config.Config
	rep  reporter.Reporter
	log  *logging.Logger
}

// Run upscales input into output. Every stage finishes before the next
// starts and the first error aborts the run.
func Run(ctx context.Context, deps Deps, input, output string) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	r := &run{
		deps: deps,
		cfg:  deps.Config,
		rep:  deps.Reporter,
		log:  logging.OrGlobal(deps.Logger).WithRun(runID).WithComponent("pipeline"),
	}
	if r.cfg == nil {
		r.cfg = config.NewConfig()
	}
	if r.rep == nil {
		r.rep = reporter.NullReporter{}
	}
	if deps.Runner == nil || deps.Locator == nil {
		return nil, ierrors.NewConfigError("pipeline requires a runner and a tool locator", nil)
	}

	input, output = absPath(input), absPath(output)
	r.log.Info("run started", "input", input, "output", output)

	if !util.FileExists(input) {
		return nil, r.fail(ierrors.NewPathError(fmt.Sprintf("Input file does not exist: %s", input)).InStage(ierrors.StageValidate))
	}

	env, err := r.validate(ctx)
	if err != nil {
		return nil, r.fail(err)
	}

	meta, err := r.probe(ctx, env, input, output)
	if err != nil {
		return nil, r.fail(err)
	}

	ws, hasAudio, err := r.split(ctx, env, input)
	if err != nil {
		return nil, r.fail(err)
	}

	frames, err := r.upscale(ctx, env, ws, meta)
	if err != nil {
		return nil, r.fail(err)
	}

	if err := r.assemble(ctx, env, ws, meta, hasAudio, output); err != nil {
		return nil, r.fail(err)
	}

	outW, outH := r.outputDimensions(meta)
	size, err := util.GetFileSize(output)
	if err != nil {
		return nil, r.fail(ierrors.NewIOError(fmt.Sprintf("output file was not written: %s", output), err).InStage(ierrors.StageAssemble))
	}
	inputSize, _ := util.GetFileSize(input)

	result := &Result{
		RunID:          runID,
		OutputPath:     output,
		Metadata:       *meta,
		OutputWidth:    outW,
		OutputHeight:   outH,
		HasAudio:       hasAudio,
		FramesUpscaled: frames,
		OutputSize:     size,
		Workspace:      ws.Root,
		Elapsed:        time.Since(start),
	}

	r.rep.Complete(reporter.CompletionSummary{
		InputFile:      input,
		OutputFile:     output,
		InputSize:      inputSize,
		OutputSize:     size,
		OutputWidth:    outW,
		OutputHeight:   outH,
		HasAudio:       hasAudio,
		FramesUpscaled: frames,
		TotalTime:      result.Elapsed,
	})
	r.log.Info("run finished", "output", output, "frames", frames, "elapsed", result.Elapsed)
	return result, nil
}

func (r *run) fail(err error) error {
	r.log.Error("run failed", "stage", ierrors.StageOf(err), "error", err)
	return err
}

func (r *run) stage(name, message string) {
	r.log.Info("stage started", "stage", name)
	r.rep.StageStarted(reporter.StageInfo{Stage: name, Message: message})
}

// validate checks the GPU and tools. It performs no file I/O.
func (r *run) validate(ctx context.Context) (*toolchain.Environment, error) {
	r.stage(ierrors.StageValidate, "Checking GPU and tools")

	env, err := toolchain.Validate(ctx, r.deps.Runner, r.deps.Locator)
	if err != nil {
		return nil, err
	}

	host := util.CurrentHost()
	r.rep.Environment(reporter.EnvironmentSummary{
		Hostname: host.Name,
		Platform: host.Platform(),
		CPUs:     host.CPUs,
		GPUName:  env.GPUName,
		FFmpeg:   env.FFmpeg,
		FFprobe:  env.FFprobe,
		Upscaler: env.Upscaler,
		LogFile:  r.log.FilePath(),
	})
	return env, nil
}

func (r *run) probe(ctx context.Context, env *toolchain.Environment, input, output string) (*ffprobe.VideoMetadata, error) {
	r.stage(ierrors.StageProbe, "Reading video metadata")

	meta, err := ffprobe.Probe(ctx, r.deps.Runner, env.FFprobe, input)
	if err != nil {
		return nil, err
	}

	outW, outH := r.outputDimensions(meta)
	r.rep.VideoInfo(reporter.VideoSummary{
		InputFile:       input,
		OutputFile:      output,
		Width:           meta.Width,
		Height:          meta.Height,
		FrameRate:       meta.FPSRaw,
		FPS:             meta.FPS,
		DurationSeconds: meta.DurationSeconds,
		TotalFrames:     meta.TotalFrames,
		OutputWidth:     outW,
		OutputHeight:    outH,
	})
	if meta.TotalFrames == 0 {
		r.rep.Warning("frame count unknown; progress total will come from the extracted frames")
	}
	return meta, nil
}

// split creates the workspace, then extracts audio and frames.
func (r *run) split(ctx context.Context, env *toolchain.Environment, input string) (*workspace.Workspace, bool, error) {
	r.stage(ierrors.StageSplit, "Extracting audio and frames")

	ws, err := workspace.New(r.cfg.GetWorkDir(), r.cfg.WorkspaceName)
	if err != nil {
		return nil, false, ierrors.WithStage(err, ierrors.StageSplit)
	}
	if err := ws.Reset(); err != nil {
		return nil, false, ierrors.WithStage(err, ierrors.StageSplit)
	}
	r.log.Debug("workspace ready", "root", ws.Root)

	ffmpeg.ExtractAudio(ctx, r.deps.Runner, env.FFmpeg, input, ws.AudioFile)
	if err := ctx.Err(); err != nil {
		return nil, false, ierrors.WithStage(err, ierrors.StageSplit)
	}
	hasAudio := ws.HasAudio()
	r.rep.AudioResult(hasAudio)

	if err := ffmpeg.ExtractFrames(ctx, r.deps.Runner, env.FFmpeg, input, ws.FramesRaw); err != nil {
		return nil, false, err
	}
	return ws, hasAudio, nil
}

func (r *run) upscale(ctx context.Context, env *toolchain.Environment, ws *workspace.Workspace, meta *ffprobe.VideoMetadata) (int64, error) {
	r.stage(ierrors.StageUpscale, "Upscaling frames")

	driver := &upscale.Driver{
		Runner:    r.deps.Runner,
		ToolPath:  env.Upscaler,
		Model:     r.cfg.Model,
		Scale:     r.cfg.Scale,
		GPUID:     r.cfg.GPUID,
		Logger:    r.log,
		OnStart:   r.rep.UpscaleStarted,
		OnWarning: r.rep.Warning,
	}

	return driver.Run(ctx, ws.FramesRaw, ws.FramesUpscaled, meta.TotalFrames, func(p upscale.Progress) {
		pct, known := p.Percent()
		r.rep.UpscaleProgress(reporter.ProgressSnapshot{
			Completed: p.Completed,
			Total:     p.Total,
			Percent:   pct,
			Known:     known,
		})
	})
}

func (r *run) assemble(ctx context.Context, env *toolchain.Environment, ws *workspace.Workspace, meta *ffprobe.VideoMetadata, hasAudio bool, output string) error {
	r.stage(ierrors.StageAssemble, "Encoding output video")

	if err := util.EnsureDirectory(filepath.Dir(output)); err != nil {
		return ierrors.NewIOError(fmt.Sprintf("failed to create output directory for %s", output), err).InStage(ierrors.StageAssemble)
	}

	params := ffmpeg.AssembleParams{
		FramesDir:   ws.FramesUpscaled,
		FrameRate:   r.cfg.FrameRateOrDefault(meta.FPSRaw, meta.FPS),
		Filter:      ffmpeg.ScaleFilter(r.cfg.MaxWidth, r.cfg.MaxHeight),
		VideoCodec:  r.cfg.VideoCodec,
		Preset:      r.cfg.EncoderPreset,
		PixelFormat: r.cfg.PixelFormat,
		Output:      output,
	}
	if hasAudio {
		params.AudioPath = ws.AudioFile
	}

	return ffmpeg.Assemble(ctx, r.deps.Runner, env.FFmpeg, params)
}

// outputDimensions predicts the final size: the upscaled frame size fitted
// inside the resolution cap.
func (r *run) outputDimensions(meta *ffprobe.VideoMetadata) (int, int) {
	return ffmpeg.CappedDimensions(meta.Width*r.cfg.Scale, meta.Height*r.cfg.Scale, r.cfg.MaxWidth, r.cfg.MaxHeight)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
