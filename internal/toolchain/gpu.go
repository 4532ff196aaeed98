// Package toolchain checks that the GPU and the external collaborators
// needed by the pipeline are present and runnable.
package toolchain

import (
	"context"

	ierrors "github.com/five82/icecale/internal/errors"
	"github.com/five82/icecale/internal/runner"
)

// gpuQueryArgs asks nvidia-smi for one device name per line.
var gpuQueryArgs = []string{"--query-gpu=name", "--format=csv,noheader"}

// DetectGPU returns the name of the first GPU reported by the GPU prober.
// There is no CPU fallback: any failure is a precondition error.
func DetectGPU(ctx context.Context, r runner.Runner, prober string) (string, error) {
	out, err := r.Run(ctx, prober, gpuQueryArgs...)
	if err != nil {
		if ctx.Err() != nil || ierrors.IsCancelled(err) {
			return "", ierrors.WithStage(err, ierrors.StageValidate)
		}
		return "", ierrors.NewPreconditionError("no compatible GPU detected", err)
	}
	if !out.Success() {
		return "", ierrors.NewPreconditionError("no compatible GPU detected",
			&ierrors.CommandError{Command: prober, Kind: ierrors.CommandFailed, ExitCode: out.ExitCode, Output: out.Output})
	}

	name := out.FirstLine()
	if name == "" {
		return "", ierrors.NewPreconditionError("no compatible GPU detected: prober listed no devices", nil)
	}
	return name, nil
}
