// Package errors provides structured error types for icecale operations.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindIO represents I/O errors.
	KindIO ErrorKind = iota
	// KindPath represents path-related errors.
	KindPath
	// KindCommand represents external command execution errors.
	KindCommand
	// KindPrecondition represents a missing hardware requirement (no GPU).
	KindPrecondition
	// KindToolNotFound represents a collaborator binary that could not be located.
	KindToolNotFound
	// KindToolUnavailable represents a collaborator that exists but cannot run.
	KindToolUnavailable
	// KindProbeParse represents malformed media probe output.
	KindProbeParse
	// KindEmptyInput represents a stage that found nothing to process.
	KindEmptyInput
	// KindStageFailure represents a collaborator exiting nonzero during a stage.
	KindStageFailure
	// KindConfig represents configuration validation errors.
	KindConfig
	// KindCancelled represents cancelled or timed-out operations.
	KindCancelled
)

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "I/O error"
	case KindPath:
		return "Path error"
	case KindCommand:
		return "Command error"
	case KindPrecondition:
		return "Precondition failed"
	case KindToolNotFound:
		return "Tool not found"
	case KindToolUnavailable:
		return "Tool unavailable"
	case KindProbeParse:
		return "Probe parse error"
	case KindEmptyInput:
		return "Empty input"
	case KindStageFailure:
		return "Stage failed"
	case KindConfig:
		return "Configuration error"
	case KindCancelled:
		return "Operation cancelled"
	default:
		return "Unknown error"
	}
}

// Pipeline stage labels attached to errors raised while a stage runs.
const (
	StageValidate = "validate"
	StageProbe    = "probe"
	StageSplit    = "split"
	StageUpscale  = "upscale"
	StageAssemble = "assemble"
)

// CommandErrorKind represents the type of command error.
type CommandErrorKind int

const (
	// CommandStart means the command failed to start.
	CommandStart CommandErrorKind = iota
	// CommandWait means waiting for the command failed.
	CommandWait
	// CommandFailed means the command returned non-zero exit status.
	CommandFailed
)

// CommandError represents an error from executing an external command.
type CommandError struct {
	Command    string
	Kind       CommandErrorKind
	ExitCode   int
	Output     string
	Underlying error
}

func (e *CommandError) Error() string {
	switch e.Kind {
	case CommandStart:
		return fmt.Sprintf("failed to execute %s: %v", e.Command, e.Underlying)
	case CommandWait:
		return fmt.Sprintf("failed to wait for %s: %v", e.Command, e.Underlying)
	case CommandFailed:
		if out := strings.TrimSpace(e.Output); out != "" {
			return fmt.Sprintf("command %s failed with exit code %d: %s", e.Command, e.ExitCode, out)
		}
		return fmt.Sprintf("command %s failed with exit code %d", e.Command, e.ExitCode)
	default:
		return fmt.Sprintf("command %s error: %v", e.Command, e.Underlying)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Underlying
}

// CoreError is the main error type for icecale operations.
type CoreError struct {
	Kind       ErrorKind
	Stage      string
	Message    string
	Underlying error
}

func (e *CoreError) Error() string {
	var b strings.Builder
	if e.Stage != "" {
		b.WriteString(e.Stage)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}
	return b.String()
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// InStage returns e labelled with the given stage unless it already has one.
func (e *CoreError) InStage(stage string) *CoreError {
	if e.Stage == "" {
		e.Stage = stage
	}
	return e
}

// NewIOError creates a new I/O error.
func NewIOError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Underlying: underlying}
}

// NewPathError creates a new path-related error.
func NewPathError(message string) *CoreError {
	return &CoreError{Kind: KindPath, Message: message}
}

// NewCommandStartError creates an error for when a command fails to start.
func NewCommandStartError(cmd string, err error) *CoreError {
	cmdErr := &CommandError{Command: cmd, Kind: CommandStart, Underlying: err}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewCommandWaitError creates an error for when waiting for a command fails.
func NewCommandWaitError(cmd string, err error) *CoreError {
	cmdErr := &CommandError{Command: cmd, Kind: CommandWait, Underlying: err}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewPreconditionError creates an error for a missing hardware requirement.
func NewPreconditionError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindPrecondition, Stage: StageValidate, Message: message, Underlying: underlying}
}

// NewToolNotFoundError creates an error naming a collaborator that could not be located.
func NewToolNotFoundError(tool string, searched []string) *CoreError {
	msg := fmt.Sprintf("required tool %q not found", tool)
	if len(searched) > 0 {
		msg += " (searched " + strings.Join(searched, ", ") + ")"
	}
	return &CoreError{Kind: KindToolNotFound, Stage: StageValidate, Message: msg}
}

// NewToolUnavailableError creates an error for a collaborator that failed its self-check.
func NewToolUnavailableError(path string, exitCode int, output string) *CoreError {
	cmdErr := &CommandError{Command: path, Kind: CommandFailed, ExitCode: exitCode, Output: output}
	return &CoreError{
		Kind:       KindToolUnavailable,
		Stage:      StageValidate,
		Message:    fmt.Sprintf("required tool %s is not available", path),
		Underlying: cmdErr,
	}
}

// NewProbeParseError creates a new probe output parsing error.
func NewProbeParseError(message string) *CoreError {
	return &CoreError{Kind: KindProbeParse, Stage: StageProbe, Message: message}
}

// NewEmptyInputError creates an error for a stage with nothing to process.
func NewEmptyInputError(stage, message string) *CoreError {
	return &CoreError{Kind: KindEmptyInput, Stage: stage, Message: message}
}

// NewStageFailureError creates an error for a collaborator that exited nonzero during a stage.
func NewStageFailureError(stage, message, cmd string, exitCode int, output string) *CoreError {
	cmdErr := &CommandError{Command: cmd, Kind: CommandFailed, ExitCode: exitCode, Output: output}
	return &CoreError{Kind: KindStageFailure, Stage: stage, Message: message, Underlying: cmdErr}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindConfig, Message: message, Underlying: underlying}
}

// NewCancelledError creates an error for cancelled or timed-out operations.
func NewCancelledError(underlying error) *CoreError {
	msg := "operation was cancelled"
	if errors.Is(underlying, context.DeadlineExceeded) {
		msg = "operation timed out"
	}
	return &CoreError{Kind: KindCancelled, Message: msg, Underlying: underlying}
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// IsCancelled checks if the error is a cancellation error.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}

// StageOf returns the stage label of err, or "" when it carries none.
func StageOf(err error) string {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Stage
	}
	return ""
}

// CommandOutput returns the captured collaborator output carried by err, if any.
func CommandOutput(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Output
	}
	return ""
}

// WithStage labels err with stage. Context errors become cancellation errors
// and any other non-CoreError is wrapped as a command error.
func WithStage(err error, stage string) error {
	if err == nil {
		return nil
	}
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		coreErr.InStage(stage)
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewCancelledError(err).InStage(stage)
	}
	return &CoreError{Kind: KindCommand, Stage: stage, Message: "external command failed", Underlying: err}
}
