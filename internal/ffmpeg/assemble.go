package ffmpeg

import (
	"context"
	"path/filepath"

	ierrors "github.com/five82/icecale/internal/errors"
	"github.com/five82/icecale/internal/runner"
)

// AssembleParams describes one reassembly run.
type AssembleParams struct {
	// FramesDir holds frames named by FramePattern.
	FramesDir string
	// AudioPath is muxed in when non-empty.
	AudioPath string
	// FrameRate is declared for the image sequence, e.g. "30000/1001".
	FrameRate   string
	Filter      string
	VideoCodec  string
	Preset      string
	PixelFormat string
	Output      string
}

// HasAudio reports whether an audio track will be muxed.
func (p AssembleParams) HasAudio() bool {
	return p.AudioPath != ""
}

// AssembleArgs returns the ffmpeg arguments for p. Without audio there is a
// single input and no stream mapping.
func AssembleArgs(p AssembleParams) []string {
	b := NewCommandBuilder().
		FrameRate(p.FrameRate).
		Input(filepath.Join(p.FramesDir, FramePattern))

	if p.HasAudio() {
		b.Input(p.AudioPath).
			Map("0:v:0").
			Map("1:a:0")
	}

	b.VideoFilter(p.Filter).
		Option("-c:v", p.VideoCodec).
		Option("-preset", p.Preset).
		Option("-pix_fmt", p.PixelFormat)

	if p.HasAudio() {
		b.Option("-c:a", "copy")
	}

	return b.Output(p.Output)
}

// Assemble encodes the frame sequence (and audio, if any) into p.Output.
func Assemble(ctx context.Context, r runner.Runner, ffmpegPath string, p AssembleParams) error {
	out, err := r.Run(ctx, ffmpegPath, AssembleArgs(p)...)
	if err != nil {
		return ierrors.WithStage(err, ierrors.StageAssemble)
	}
	if !out.Success() {
		return ierrors.NewStageFailureError(ierrors.StageAssemble,
			"failed to assemble video", ffmpegPath, out.ExitCode, out.Output)
	}
	return nil
}
