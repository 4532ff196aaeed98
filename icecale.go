// Package icecale upscales videos with a GPU super-resolution model.
//
// A run validates the GPU and the external tools (nvidia-smi, ffprobe,
// ffmpeg, realesrgan-ncnn-vulkan), probes the input, splits it into PNG
// frames and an audio track, upscales every frame, and reassembles the
// result with NVENC, capped at 2560x1440.
//
// Basic usage:
//
//	up, err := icecale.New(icecale.WithScale(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := up.Upscale(ctx, "input.mp4", "output.mp4", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Upscaled %d frames to %dx%d\n",
//	    result.FramesUpscaled, result.Width, result.Height)
package icecale

import (
	"context"
	"time"

	"github.com/five82/icecale/internal/config"
	"github.com/five82/icecale/internal/logging"
	"github.com/five82/icecale/internal/pipeline"
	"github.com/five82/icecale/internal/reporter"
	"github.com/five82/icecale/internal/runner"
	"github.com/five82/icecale/internal/toolchain"
	"github.com/five82/icecale/internal/util"
)

// Reporter receives progress events during a run.
type Reporter = reporter.Reporter

// Upscaler is the main entry point for video upscaling.
type Upscaler struct {
	config  *config.Config
	logger  *logging.Logger
	runner  runner.Runner
	locator toolchain.Locator
}

// Result contains the result of a single upscale.
type Result struct {
	OutputFile     string
	Width          int
	Height         int
	SourceWidth    int
	SourceHeight   int
	FrameRate      string
	HasAudio       bool
	FramesUpscaled int64
	OutputSize     uint64
	Elapsed        time.Duration
}

// Option configures the upscaler.
type Option func(*Upscaler)

// New creates a new Upscaler with the given options.
func New(opts ...Option) (*Upscaler, error) {
	u := &Upscaler{config: config.NewConfig()}

	for _, opt := range opts {
		opt(u)
	}

	if err := u.config.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

// WithConfig replaces the whole configuration. Later options still apply.
func WithConfig(cfg *config.Config) Option {
	return func(u *Upscaler) {
		c := *cfg
		u.config = &c
	}
}

// WithModel sets the super-resolution model name.
func WithModel(model string) Option {
	return func(u *Upscaler) {
		u.config.Model = model
	}
}

// WithScale sets the upscale factor (2-4).
func WithScale(scale int) Option {
	return func(u *Upscaler) {
		u.config.Scale = scale
	}
}

// WithGPU selects the GPU device used by the upscaler.
func WithGPU(id int) Option {
	return func(u *Upscaler) {
		u.config.GPUID = id
	}
}

// WithMaxResolution sets the output resolution cap. Both sides must be even.
func WithMaxResolution(width, height int) Option {
	return func(u *Upscaler) {
		u.config.MaxWidth = width
		u.config.MaxHeight = height
	}
}

// WithToolsDir adds a directory searched for the external tools before the
// executable's own directory.
func WithToolsDir(dir string) Option {
	return func(u *Upscaler) {
		u.config.ToolsDir = dir
	}
}

// WithWorkDir sets the parent directory of the workspace.
func WithWorkDir(dir string) Option {
	return func(u *Upscaler) {
		u.config.WorkDir = dir
	}
}

// WithStageTimeout bounds every external tool invocation.
func WithStageTimeout(d time.Duration) Option {
	return func(u *Upscaler) {
		u.config.StageTimeout = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *logging.Logger) Option {
	return func(u *Upscaler) {
		u.logger = l
	}
}

// WithRunner replaces the process runner used for every tool invocation.
func WithRunner(r runner.Runner) Option {
	return func(u *Upscaler) {
		u.runner = r
	}
}

// WithLocator replaces the tool search strategy.
func WithLocator(l toolchain.Locator) Option {
	return func(u *Upscaler) {
		u.locator = l
	}
}

// Config returns a copy of the effective configuration.
func (u *Upscaler) Config() config.Config {
	return *u.config
}

// Upscale upscales input into output. A nil reporter discards progress.
func (u *Upscaler) Upscale(ctx context.Context, input, output string, rep Reporter) (*Result, error) {
	logger := logging.OrGlobal(u.logger)

	r := u.runner
	if r == nil {
		r = runner.NewExecRunner(u.config.StageTimeout, logger)
	}

	loc := u.locator
	if loc == nil {
		exeDir, err := util.ExecutableDir()
		if err != nil {
			exeDir = "."
		}
		loc = toolchain.NewLocator(u.config.ToolsDir, exeDir)
	}

	if rep == nil {
		rep = reporter.NullReporter{}
	}

	res, err := pipeline.Run(ctx, pipeline.Deps{
		Runner:   r,
		Locator:  loc,
		Config:   u.config,
		Reporter: reporter.NewCompositeReporter(rep, reporter.NewLogReporter(logger)),
		Logger:   logger,
	}, input, output)
	if err != nil {
		return nil, err
	}

	return &Result{
		OutputFile:     res.OutputPath,
		Width:          res.OutputWidth,
		Height:         res.OutputHeight,
		SourceWidth:    res.Metadata.Width,
		SourceHeight:   res.Metadata.Height,
		FrameRate:      res.Metadata.FPSRaw,
		HasAudio:       res.HasAudio,
		FramesUpscaled: res.FramesUpscaled,
		OutputSize:     res.OutputSize,
		Elapsed:        res.Elapsed,
	}, nil
}
