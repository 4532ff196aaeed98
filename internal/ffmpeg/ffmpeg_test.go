package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ierrors "github.com/five82/icecale/internal/errors"
	"github.com/five82/icecale/internal/runner/runnertest"
)

func TestScaleFilter(t *testing.T) {
	want := "scale='min(2560,iw)':'min(1440,ih)':force_original_aspect_ratio=decrease,scale=trunc(iw/2)*2:trunc(ih/2)*2"
	if got := ScaleFilter(2560, 1440); got != want {
		t.Errorf("ScaleFilter() = %q, want %q", got, want)
	}
}

func TestVideoFilterChain(t *testing.T) {
	if got := NewVideoFilterChain().Build(); got != "" {
		t.Fatalf("empty chain Build() = %q, want empty", got)
	}

	got := NewVideoFilterChain().AddEvenDimensions().AddCap(1280, 720).Build()
	if got != "scale=trunc(iw/2)*2:trunc(ih/2)*2,scale='min(1280,iw)':'min(720,ih)':force_original_aspect_ratio=decrease" {
		t.Errorf("Build() = %q", got)
	}
}

func TestCappedDimensions(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"4K fits exactly", 3840, 2160, 2560, 1440},
		{"small input unchanged", 1000, 1000, 1000, 1000},
		{"odd input floored to even", 1001, 999, 1000, 998},
		{"upscaled 720p", 5120, 2880, 2560, 1440},
		{"portrait limited by height", 2160, 3840, 810, 1440},
		{"ultrawide limited by width", 7680, 2160, 2560, 720},
		{"square above cap", 4000, 4000, 1440, 1440},
		{"unknown size", 0, 1080, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := CappedDimensions(tt.w, tt.h, 2560, 1440)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("CappedDimensions(%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
			}
			if w > 2560 || h > 1440 || w%2 != 0 || h%2 != 0 {
				t.Errorf("result %dx%d violates the cap", w, h)
			}
		})
	}
}

func TestAssembleArgsWithAudio(t *testing.T) {
	args := AssembleArgs(AssembleParams{
		FramesDir:   "/work/frames_upscaled",
		AudioPath:   "/work/audio.mka",
		FrameRate:   "24000/1001",
		Filter:      ScaleFilter(2560, 1440),
		VideoCodec:  "h264_nvenc",
		Preset:      "p3",
		PixelFormat: "yuv420p",
		Output:      "/out/video.mp4",
	})

	want := []string{
		"-y", "-framerate", "24000/1001",
		"-i", "/work/frames_upscaled/frame_%08d.png",
		"-i", "/work/audio.mka", "-map", "0:v:0", "-map", "1:a:0",
		"-vf", ScaleFilter(2560, 1440),
		"-c:v", "h264_nvenc", "-preset", "p3", "-pix_fmt", "yuv420p",
		"-c:a", "copy",
		"/out/video.mp4",
	}
	if strings.Join(args, " ") != strings.Join(want, " ") {
		t.Errorf("AssembleArgs() =\n  %v\nwant\n  %v", args, want)
	}
}

func TestAssembleArgsWithoutAudio(t *testing.T) {
	args := AssembleArgs(AssembleParams{
		FramesDir:   "/work/frames_upscaled",
		FrameRate:   "30",
		Filter:      ScaleFilter(2560, 1440),
		VideoCodec:  "h264_nvenc",
		Preset:      "p3",
		PixelFormat: "yuv420p",
		Output:      "/out/video.mp4",
	})

	inputs := 0
	for i, a := range args {
		switch a {
		case "-map":
			t.Errorf("unexpected -map at %d in %v", i, args)
		case "-c:a":
			t.Errorf("unexpected audio codec in %v", args)
		case "-i":
			inputs++
		}
	}
	if inputs != 1 {
		t.Errorf("expected a single input, got %d", inputs)
	}
	if args[len(args)-1] != "/out/video.mp4" {
		t.Errorf("output should be last, got %q", args[len(args)-1])
	}
}

func TestExtractFrames(t *testing.T) {
	r := runnertest.New()

	if err := ExtractFrames(context.Background(), r, "/tools/ffmpeg", "in.mkv", "/work/frames_raw"); err != nil {
		t.Fatalf("ExtractFrames() error = %v", err)
	}

	calls := r.CallsTo("ffmpeg")
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	want := "/tools/ffmpeg -y -i in.mkv -vsync 0 /work/frames_raw/frame_%08d.png"
	if got := calls[0].Line(); got != want {
		t.Errorf("invocation = %q, want %q", got, want)
	}
}

func TestExtractFramesFailure(t *testing.T) {
	r := runnertest.New().On("ffmpeg", runnertest.Response{
		Outcome: runnertest.Output(1, "in.mkv: No such file or directory"),
	})

	err := ExtractFrames(context.Background(), r, "ffmpeg", "in.mkv", t.TempDir())
	if !ierrors.IsKind(err, ierrors.KindStageFailure) || ierrors.StageOf(err) != ierrors.StageSplit {
		t.Fatalf("ExtractFrames() error = %v, want split stage failure", err)
	}
	if !strings.Contains(err.Error(), "No such file") {
		t.Errorf("error %q should include captured output", err.Error())
	}
}

func TestExtractAudio(t *testing.T) {
	audio := filepath.Join(t.TempDir(), "audio.mka")
	r := runnertest.New().On("ffmpeg", runnertest.Response{
		Effect: func(args []string) error {
			return os.WriteFile(args[len(args)-1], []byte("matroska"), 0644)
		},
	})

	if !ExtractAudio(context.Background(), r, "ffmpeg", "in.mkv", audio) {
		t.Error("ExtractAudio() = false, want true")
	}
	want := "ffmpeg -y -i in.mkv -vn -acodec copy " + audio
	if got := r.Calls()[0].Line(); got != want {
		t.Errorf("invocation = %q, want %q", got, want)
	}
}

func TestExtractAudioFailureIsNotAnError(t *testing.T) {
	r := runnertest.New().On("ffmpeg", runnertest.Response{
		Outcome: runnertest.Output(1, "Output file #0 does not contain any stream"),
	})

	if ExtractAudio(context.Background(), r, "ffmpeg", "silent.mp4", filepath.Join(t.TempDir(), "audio.mka")) {
		t.Error("ExtractAudio() = true, want false")
	}
}

func TestAssembleFailure(t *testing.T) {
	r := runnertest.New().On("ffmpeg", runnertest.Response{
		Outcome: runnertest.Output(1, "Unknown encoder 'h264_nvenc'"),
	})

	err := Assemble(context.Background(), r, "ffmpeg", AssembleParams{FramesDir: "f", FrameRate: "30", Output: "o.mp4"})
	if ierrors.StageOf(err) != ierrors.StageAssemble {
		t.Fatalf("Assemble() error = %v, want assemble stage", err)
	}
	if ierrors.CommandOutput(err) != "Unknown encoder 'h264_nvenc'" {
		t.Errorf("CommandOutput() = %q", ierrors.CommandOutput(err))
	}
}
