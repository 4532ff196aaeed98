package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"

	ierrors "github.com/five82/icecale/internal/errors"
	"github.com/five82/icecale/internal/logging"
	"github.com/five82/icecale/internal/runner"
)

// FramePattern names extracted and upscaled frames: eight-digit,
// zero-padded, one-based PNG files. Lexical order equals temporal order.
const FramePattern = "frame_%08d.png"

// ExtractAudio copies the input's audio stream, without re-encoding, into
// audioPath. A failure means "no audio" and is never an error; callers
// decide presence by checking that audioPath is non-empty.
func ExtractAudio(ctx context.Context, r runner.Runner, ffmpegPath, input, audioPath string) bool {
	args := NewCommandBuilder().
		Input(input).
		Flag("-vn").
		Option("-acodec", "copy").
		Output(audioPath)

	out, err := r.Run(ctx, ffmpegPath, args...)
	if err != nil || !out.Success() {
		logging.Global().Debug("audio extraction produced nothing", "input", input, "exit_code", out.ExitCode, "error", err)
		return false
	}
	return true
}

// ExtractFrames writes every decoded frame of input into framesDir as
// lossless PNG, one file per frame with no duplication or dropping.
func ExtractFrames(ctx context.Context, r runner.Runner, ffmpegPath, input, framesDir string) error {
	args := NewCommandBuilder().
		Input(input).
		Option("-vsync", "0").
		Output(filepath.Join(framesDir, FramePattern))

	out, err := r.Run(ctx, ffmpegPath, args...)
	if err != nil {
		return ierrors.WithStage(err, ierrors.StageSplit)
	}
	if !out.Success() {
		return ierrors.NewStageFailureError(ierrors.StageSplit,
			fmt.Sprintf("failed to extract frames from %s", input), ffmpegPath, out.ExitCode, out.Output)
	}
	return nil
}
