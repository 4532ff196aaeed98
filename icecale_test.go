package icecale

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/five82/icecale/internal/config"
	ierrors "github.com/five82/icecale/internal/errors"
	"github.com/five82/icecale/internal/runner/runnertest"
	"github.com/five82/icecale/internal/toolchain"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{name: "defaults"},
		{name: "scale 2", opts: []Option{WithScale(2)}},
		{name: "scale out of range", opts: []Option{WithScale(8)}, wantErr: config.ErrInvalidScale},
		{name: "odd cap", opts: []Option{WithMaxResolution(1919, 1080)}, wantErr: config.ErrInvalidResolutionCap},
		{name: "negative gpu", opts: []Option{WithGPU(-1)}, wantErr: config.ErrInvalidGPU},
		{name: "empty model", opts: []Option{WithModel("")}, wantErr: config.ErrMissingModel},
		{name: "negative timeout", opts: []Option{WithStageTimeout(-time.Second)}, wantErr: config.ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithConfigCopies(t *testing.T) {
	cfg := config.NewConfig()
	up, err := New(WithConfig(cfg), WithScale(3), WithWorkDir("/scratch"), WithToolsDir("/opt/tools"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scale != config.DefaultScale {
		t.Error("options must not modify the caller's config")
	}
	got := up.Config()
	if got.Scale != 3 || got.WorkDir != "/scratch" || got.ToolsDir != "/opt/tools" {
		t.Errorf("Config() = %+v", got)
	}
}

func TestUpscale(t *testing.T) {
	root := t.TempDir()
	tools := filepath.Join(root, "tools")
	for _, name := range []string{config.ToolFFmpeg, config.ToolFFprobe, config.ToolUpscaler} {
		path := filepath.Join(tools, name)
		if err := os.MkdirAll(tools, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatal(err)
		}
	}
	input := filepath.Join(root, "clip.mkv")
	if err := os.WriteFile(input, []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(root, "out", "clip.mp4")

	r := runnertest.New().
		On("nvidia-smi", runnertest.Response{Outcome: runnertest.Output(0, "NVIDIA L4\n")}).
		OnArg("ffprobe", "-count_frames", runnertest.Response{Outcome: runnertest.Output(0, "2,2,1280,720,24/1,0.08\n")}).
		OnArg("ffmpeg", "-vsync", runnertest.Response{Effect: func(args []string) error {
			return os.WriteFile(filepath.Join(filepath.Dir(args[len(args)-1]), "frame_00000001.png"), []byte("png"), 0644)
		}}).
		OnArg("ffmpeg", "-framerate", runnertest.Response{Effect: func(args []string) error {
			return os.WriteFile(args[len(args)-1], []byte("mp4"), 0644)
		}})

	up, err := New(
		WithRunner(r),
		WithLocator(toolchain.DirLocator{BaseDir: tools}),
		WithWorkDir(filepath.Join(root, "tmp")),
	)
	if err != nil {
		t.Fatal(err)
	}

	res, err := up.Upscale(context.Background(), input, output, nil)
	if err != nil {
		t.Fatalf("Upscale() error = %v", err)
	}

	if res.OutputFile != output {
		t.Errorf("OutputFile = %q, want %q", res.OutputFile, output)
	}
	if res.Width != 2560 || res.Height != 1440 {
		t.Errorf("output = %dx%d, want 2560x1440", res.Width, res.Height)
	}
	if res.SourceWidth != 1280 || res.FrameRate != "24/1" {
		t.Errorf("source = %dx%d @ %s", res.SourceWidth, res.SourceHeight, res.FrameRate)
	}
	if res.FramesUpscaled != 1 || res.HasAudio {
		t.Errorf("frames = %d, audio = %v", res.FramesUpscaled, res.HasAudio)
	}
}

func TestUpscaleNoGPU(t *testing.T) {
	input := filepath.Join(t.TempDir(), "clip.mkv")
	if err := os.WriteFile(input, []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}
	r := runnertest.New().On("nvidia-smi", runnertest.Response{Outcome: runnertest.Output(9, "")})

	up, err := New(WithRunner(r), WithLocator(toolchain.DirLocator{BaseDir: t.TempDir()}), WithWorkDir(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	_, err = up.Upscale(context.Background(), input, filepath.Join(t.TempDir(), "out.mp4"), nil)
	if !ierrors.IsKind(err, ierrors.KindPrecondition) {
		t.Errorf("Upscale() error = %v, want precondition", err)
	}
}
