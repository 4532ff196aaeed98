package toolchain

import (
	"context"

	"github.com/five82/icecale/internal/config"
	"github.com/five82/icecale/internal/runner"
)

// Tool describes one collaborator and how to check that it runs.
type Tool struct {
	Name      string
	ProbeFlag string
}

// RequiredTools are the collaborators located and verified before any work.
var RequiredTools = []Tool{
	{Name: config.ToolFFmpeg, ProbeFlag: "-version"},
	{Name: config.ToolFFprobe, ProbeFlag: "-version"},
	{Name: config.ToolUpscaler, ProbeFlag: "-h"},
}

// Environment is the result of a successful validation.
type Environment struct {
	GPUName  string
	FFmpeg   string
	FFprobe  string
	Upscaler string
}

// Validate detects the GPU, then locates and verifies each required tool.
// The first failure is returned; nothing touches the filesystem.
func Validate(ctx context.Context, r runner.Runner, loc Locator) (*Environment, error) {
	gpu, err := DetectGPU(ctx, r, config.ToolGPUProbe)
	if err != nil {
		return nil, err
	}

	env := &Environment{GPUName: gpu}
	for _, tool := range RequiredTools {
		path, err := loc.Locate(tool.Name)
		if err != nil {
			return nil, err
		}
		if err := VerifyTool(ctx, r, path, tool.ProbeFlag); err != nil {
			return nil, err
		}
		switch tool.Name {
		case config.ToolFFmpeg:
			env.FFmpeg = path
		case config.ToolFFprobe:
			env.FFprobe = path
		case config.ToolUpscaler:
			env.Upscaler = path
		}
	}
	return env, nil
}
