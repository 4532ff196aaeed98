package toolchain

import (
	"context"

	ierrors "github.com/five82/icecale/internal/errors"
	"github.com/five82/icecale/internal/runner"
)

// VerifyTool runs path with its self-check flag and requires a zero exit.
func VerifyTool(ctx context.Context, r runner.Runner, path, probeFlag string) error {
	out, err := r.Run(ctx, path, probeFlag)
	if err != nil {
		if ctx.Err() != nil || ierrors.IsCancelled(err) {
			return ierrors.WithStage(err, ierrors.StageValidate)
		}
		return ierrors.NewToolUnavailableError(path, -1, err.Error())
	}
	if !out.Success() {
		return ierrors.NewToolUnavailableError(path, out.ExitCode, out.Output)
	}
	return nil
}
